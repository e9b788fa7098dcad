package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kingrea/standup-issues/internal/protocol"
)

type promptSet struct {
	extract          string
	extractRequest   string
	summarize        string
	summarizeRequest string
	instructionsLead string
}

var prompts = map[protocol.Locale]promptSet{
	protocol.LocaleEnglish: {
		extract: `You extract work items from the transcript of a team's daily stand-up.
Current time: {{now}}

Extract the tasks that should become tracker issues:
- work that is not finished yet
- items with concrete work to do
- requests and new work

Answer with a JSON array and nothing else:
[
  {
    "title": "[by {{deadline}}] {{task title}}",
    "body": "## Background\n- {{background, if stated}}\n\n## Assignees\n- {{names, if stated}}\n\n## Tasks\n- {{what has to be done}}",
    "deadline": "{{YYYY-MM-DD or empty}}",
    "assignees": ["{{tracker username}}"],
    "labels": []
  }
]

Title deadline prefix:
- deadline the team agreed on: "[tentatively by {{date}}]"
- external request or hard deadline: "[by {{date}}]"
- convert relative dates (today, tomorrow, next Friday) to absolute dates

Body rules:
- Background: only when the transcript explains it, otherwise leave empty
- Assignees: names only, when someone was named, otherwise leave empty
- Tasks: the concrete steps that were mentioned

Extra fields:
- assignees: tracker usernames when they can be identified, otherwise []
- labels: [] unless the meeting asked for specific labels`,
		extractRequest: "Extract the tasks as a JSON array.\n\nTranscript:\n",
		summarize: `You write the minutes of a team's daily stand-up for a chat channel.
Current time: {{now}}

Requirements:
- one bullet per item, each a complete sentence
- no blank lines between bullets
- leave out tasks, they are filed as issues separately
- cover decisions, progress reports, problems and changes of direction
- describe the situation or outcome, not just a heading

Example:
- Member A's API work is on track and about 80% complete.
- The team agreed to split feature X into separate services.
- A database query is causing slow responses and needs tuning.`,
		summarizeRequest: "Write the minutes.\n\nTranscript:\n",
		instructionsLead: "This run comes with additional instructions, listed below. Where they conflict with the instructions above, follow the additional instructions.",
	},
	protocol.LocaleJapanese: {
		extract: `あなたはチーム開発の朝会からタスクを抽出するアシスタントです。
現在時刻: {{now}}

文字起こし結果から、Issue化すべきタスクを抽出してください。

抽出条件:
- まだ完了していないタスク
- 具体的な作業内容が含まれているもの
- 依頼事項や新規作業

JSON配列のみで出力してください:
[
  {
    "title": "【{{deadline}}】{{task_title}}",
    "body": "## 背景\n- {{背景}}\n\n## 担当者\n- {{担当者}}\n\n## やること\n- {{作業内容}}",
    "deadline": "{{YYYY-MM-DD または空}}",
    "assignees": ["{{username}}"],
    "labels": []
  }
]

タイトルの締切形式:
- チーム内決定: "【とりあえず{{日付}}まで】"
- 外部依頼/必須: "【{{日付}}まで】"
- 相対日付は絶対日付に変換する

Issue本文の作成ルール:
- 背景: 読み取れた場合のみ記載、不明な場合は空欄
- 担当者: 話題に出た場合は名前のみ記載、不明な場合は空欄
- やること: そのタスクでやるとされていたことを具体的に記載

追加フィールド:
- assignees: ユーザー名が特定できる場合のみ配列で記載、不明な場合は空配列
- labels: 特別な指示がない限り空配列`,
		extractRequest: "タスクをJSON形式で抽出してください。\n\n文字起こし結果:\n",
		summarize: `あなたはチーム開発の朝会議事録を作成するアシスタントです。
現在時刻: {{now}}

文字起こし結果から、チャット投稿用の簡潔な議事録を作成してください。

要件:
- 内容を箇条書きで記載し、各項目は完結した文章にする
- 箇条書きの間は空行を入れずに詰める
- タスク関連の内容は除外（別途Issue化するため）
- 決定事項、進捗報告、問題点、方針変更などを具体的に記載
- 見出しだけでなく、状況や結果も含めて記述する`,
		summarizeRequest: "議事録を作成してください。\n\n文字起こし結果:\n",
		instructionsLead: "ただし、今回のこのタスクに関しては、追加の指示がありますので、以下に提示します。上記の指示と矛盾する場合は、以下の追加指示を優先してください。",
	},
}

func promptsFor(locale protocol.Locale) promptSet {
	if set, ok := prompts[locale]; ok {
		return set
	}
	return prompts[protocol.LocaleEnglish]
}

// systemPrompt stamps the current time into base and appends the custom
// instructions, which take precedence over base.
func systemPrompt(set promptSet, base, instructions string, now time.Time) string {
	prompt := strings.ReplaceAll(base, "{{now}}", now.Format("2006-01-02 15:04:05"))
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return prompt
	}
	return prompt + "\n\n" + set.instructionsLead + "\n\n" + instructions
}

// LoadInstructions reads the custom instructions file. A missing file or an
// empty path yields "".
func LoadInstructions(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("extract: read instructions %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
