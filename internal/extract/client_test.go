package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kingrea/standup-issues/internal/config"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	}
}

func TestSplitBaseURLs(t *testing.T) {
	t.Parallel()

	got := splitBaseURLs("localhost:1234/v1, http://10.0.0.2:1234 ;localhost:1234/v1")
	if len(got) != 2 {
		t.Fatalf("expected 2 unique URLs, got %d (%v)", len(got), got)
	}
	if got[0] != "http://localhost:1234/v1" {
		t.Fatalf("unexpected first URL: %s", got[0])
	}
	if got[1] != "http://10.0.0.2:1234/v1" {
		t.Fatalf("unexpected second URL: %s", got[1])
	}
}

func TestHTTPClientSendsModelAndKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var body ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "test-model" || len(body.Messages) != 1 {
			t.Errorf("unexpected request: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(completion("pong"))
	}))
	defer server.Close()

	client := NewHTTPClient(config.LLMConfig{BaseURL: server.URL + "/v1", Model: "test-model", TimeoutSeconds: 5}, "secret")
	resp, err := client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "ping"}}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "pong" || resp.FinishReason != "stop" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHTTPClientFallsBackFromHTTP500(t *testing.T) {
	t.Parallel()

	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failServer.Close()
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completion("ok-after-500"))
	}))
	defer okServer.Close()

	client := NewHTTPClient(config.LLMConfig{BaseURL: failServer.URL + "," + okServer.URL, TimeoutSeconds: 5}, "")
	resp, err := client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "ping"}}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "ok-after-500" {
		t.Fatalf("unexpected response: %q", resp.Content)
	}
}

func TestHTTPClientReportsAllFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewHTTPClient(config.LLMConfig{BaseURL: server.URL, TimeoutSeconds: 5}, "")
	_, err := client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "ping"}}})
	if err == nil || !strings.Contains(err.Error(), "missing choices") {
		t.Fatalf("expected missing choices error, got %v", err)
	}
	if _, err := client.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatalf("expected error for empty message list")
	}
}
