package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kingrea/standup-issues/internal/protocol"
)

type healthResponse struct {
	Status        string `json:"status"`
	Version       int    `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		UptimeSeconds: s.uptimeSeconds(),
	})
}

// handleRender turns a JSON array of drafts into a review document.
// Query parameters: locale (en|ja) and header (false omits the comment header).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var drafts []protocol.DraftTask
	if err := json.Unmarshal(body, &drafts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: expected an array of tasks")
		return
	}
	opts := []protocol.RenderOption{protocol.WithLocale(protocol.ParseLocale(r.URL.Query().Get("locale")))}
	if raw := r.URL.Query().Get("header"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "header must be a boolean")
			return
		}
		if !include {
			opts = append(opts, protocol.WithoutHeader())
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, protocol.Render(drafts, opts...))
}

// handleParse turns an edited review document into issues and diagnostics.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	result := protocol.Parse(string(body))
	for _, diag := range result.Diagnostics {
		s.logger.Printf("server: parse: %s", diag)
	}
	writeJSON(w, http.StatusOK, result)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "empty body")
		return nil, false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload exceeds limit")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "unable to read body")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
