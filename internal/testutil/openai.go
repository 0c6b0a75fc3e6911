package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// FakeOpenAI is an httptest server implementing the subset of the
// OpenAI API the llm package calls: POST /v1/embeddings and
// POST /v1/chat/completions. Point a client at BaseURL().
type FakeOpenAI struct {
	srv *httptest.Server

	// ChatAnswer is returned as the assistant message for every chat
	// completion. Empty string yields a response with no choices.
	ChatAnswer string
	// FailWith, when non-zero, makes every endpoint return that HTTP
	// status instead of a normal response.
	FailWith int

	// LastChatMessages captures the messages of the most recent chat
	// completion request.
	LastChatMessages []map[string]string
	// EmbedRequests counts embedding calls; EmbedInputs accumulates
	// every input text across calls.
	EmbedRequests int
	EmbedInputs   []string
}

// NewFakeOpenAI starts the fake server and registers its shutdown with t.
func NewFakeOpenAI(t *testing.T) *FakeOpenAI {
	t.Helper()

	f := &FakeOpenAI{ChatAnswer: "fake answer"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", f.handleEmbeddings)
	mux.HandleFunc("POST /v1/chat/completions", f.handleChat)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// BaseURL returns the URL to use as the OpenAI base URL, including the
// /v1 prefix.
func (f *FakeOpenAI) BaseURL() string {
	return f.srv.URL + "/v1"
}

func (f *FakeOpenAI) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != 0 {
		http.Error(w, "forced failure", f.FailWith)
		return
	}

	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}

	f.EmbedRequests++
	f.EmbedInputs = append(f.EmbedInputs, req.Input...)

	type entry struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	data := make([]entry, len(req.Input))
	for i, text := range req.Input {
		data[i] = entry{Object: "embedding", Index: i, Embedding: HashVector(text)}
	}

	writeResponse(w, map[string]any{
		"object": "list",
		"data":   data,
		"model":  req.Model,
	})
}

func (f *FakeOpenAI) handleChat(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != 0 {
		http.Error(w, "forced failure", f.FailWith)
		return
	}

	var req struct {
		Model    string              `json:"model"`
		Messages []map[string]string `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}
	f.LastChatMessages = req.Messages

	choices := []map[string]any{}
	if f.ChatAnswer != "" {
		choices = append(choices, map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": f.ChatAnswer,
			},
		})
	}

	writeResponse(w, map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"model":   req.Model,
		"choices": choices,
	})
}

func writeResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
