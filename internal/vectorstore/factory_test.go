package vectorstore

import (
	"context"
	"testing"

	"github.com/aiagentrag/ragserver/internal/config"
	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/testutil"
)

func TestNew_LocalBackend(t *testing.T) {
	cfg := &config.Config{
		VectorStoreType:  config.StoreLocal,
		PersistDirectory: t.TempDir(),
	}

	s, err := New(context.Background(), cfg, &testutil.HashEmbedder{}, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, ok := s.(*LocalStore); !ok {
		t.Fatalf("got %T, want *LocalStore", s)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := &config.Config{VectorStoreType: "redis"}

	if _, err := New(context.Background(), cfg, &testutil.HashEmbedder{}, log.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
