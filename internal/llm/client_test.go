package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/aiagentrag/ragserver/internal/config"
	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/testutil"
)

func newTestClient(t *testing.T, fake *testutil.FakeOpenAI) *Client {
	t.Helper()
	return New(&config.Config{
		OpenAIAPIKey:   "test-key",
		OpenAIBaseURL:  fake.BaseURL(),
		OpenAIModel:    "gpt-4",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.7,
		MaxTokens:      256,
	}, log.NewNop())
}

func TestClient_Embed(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	c := newTestClient(t, fake)

	vectors, err := c.Embed(context.Background(), []string{"first text", "second text"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != testutil.EmbedDim {
			t.Errorf("vector %d has %d dimensions, want %d", i, len(v), testutil.EmbedDim)
		}
	}
	if fake.EmbedRequests != 1 {
		t.Errorf("embed requests = %d, want 1", fake.EmbedRequests)
	}
}

func TestClient_Embed_Deterministic(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	c := newTestClient(t, fake)

	a, err := c.Embed(context.Background(), []string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Embed(context.Background(), []string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at index %d", i)
		}
	}
}

func TestClient_Embed_Empty(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	c := newTestClient(t, fake)

	vectors, err := c.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors != nil {
		t.Errorf("got %d vectors for empty input", len(vectors))
	}
	if fake.EmbedRequests != 0 {
		t.Errorf("embed requests = %d, want 0", fake.EmbedRequests)
	}
}

func TestClient_Embed_Batching(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	c := newTestClient(t, fake)

	texts := make([]string, maxEmbedBatch+10)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	vectors, err := c.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	if fake.EmbedRequests != 2 {
		t.Errorf("embed requests = %d, want 2", fake.EmbedRequests)
	}
	if len(fake.EmbedInputs) != len(texts) {
		t.Errorf("server saw %d inputs, want %d", len(fake.EmbedInputs), len(texts))
	}
}

func TestClient_Embed_ServerError(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	fake.FailWith = http.StatusInternalServerError
	c := newTestClient(t, fake)

	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestClient_Complete(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	fake.ChatAnswer = "  Paris is the capital of France.  "
	c := newTestClient(t, fake)

	answer, err := c.Complete(context.Background(), "What is the capital of France?", "[Context 1] (Source: geo.txt):\nParis is the capital of France.")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Paris is the capital of France." {
		t.Errorf("answer = %q", answer)
	}

	if len(fake.LastChatMessages) != 2 {
		t.Fatalf("got %d messages, want 2", len(fake.LastChatMessages))
	}
	if fake.LastChatMessages[0]["role"] != "system" {
		t.Errorf("first message role = %q", fake.LastChatMessages[0]["role"])
	}
	user := fake.LastChatMessages[1]["content"]
	if !strings.Contains(user, "Question: What is the capital of France?") {
		t.Errorf("user content missing question: %q", user)
	}
	if !strings.Contains(user, "Context:\n[Context 1]") {
		t.Errorf("user content missing context: %q", user)
	}
}

func TestClient_Complete_EmptyResponse(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	fake.ChatAnswer = ""
	c := newTestClient(t, fake)

	_, err := c.Complete(context.Background(), "q", "ctx")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestClient_Complete_ServerError(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t)
	fake.FailWith = http.StatusBadGateway
	c := newTestClient(t, fake)

	if _, err := c.Complete(context.Background(), "q", "ctx"); err == nil {
		t.Fatal("expected error on server failure")
	}
}
