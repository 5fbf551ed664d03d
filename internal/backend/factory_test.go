package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func TestTypeIsValid(t *testing.T) {
	for _, bt := range []Type{FileBackend, MemoryBackend, SQLiteBackend} {
		if !bt.IsValid() {
			t.Fatalf("expected %q valid", bt)
		}
	}
	if Type("sheets").IsValid() {
		t.Fatalf("expected unknown type invalid")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := res.Store.Add(context.Background(), core.Draft{
		Amount: 1, Category: core.CategoryOther, Date: "2024-01-01",
	}); err != nil {
		t.Fatalf("add via memory backend: %v", err)
	}
}

func TestCreateFileBackend(t *testing.T) {
	cfg := Config{Type: FileBackend, DataFilePath: filepath.Join(t.TempDir(), "expenses.json")}
	res, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Store == nil {
		t.Fatalf("expected store")
	}

	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: FileBackend}); err == nil {
		t.Fatalf("expected error for missing file path")
	}
}

func TestCreateInvalidBackend(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Fatalf("expected error for invalid type")
	}
}
