package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONStoreLoadMissingFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "ai_updates.json"))

	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty archive, got %d records", len(records))
	}
}

func TestJSONStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ai_updates.json")
	store := NewJSONStore(path)
	ctx := context.Background()

	records := Records{
		"urn:1": {Title: "First", Link: "https://arxiv.org/abs/1", Published: "2024-06-01T10:00:00Z"},
		"urn:2": {Title: "Second", Link: "https://openai.com/blog/2", Published: "2024-06-01T11:00:00Z"},
	}

	if err := store.Save(ctx, records); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(loaded))
	}
	if loaded["urn:1"] != records["urn:1"] {
		t.Errorf("Expected %+v, got %+v", records["urn:1"], loaded["urn:1"])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read archive: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"urn:1\": {\n    \"title\": \"First\"") {
		t.Errorf("Expected pretty-printed JSON, got:\n%s", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the archive file in dir, got %d entries", len(entries))
	}
}

func TestJSONStoreSaveNilWritesEmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_updates.json")
	store := NewJSONStore(path)

	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{}" {
		t.Errorf("Expected '{}', got '%s'", data)
	}
}

func TestJSONStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_updates.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := NewJSONStore(path).Load(context.Background()); err == nil {
		t.Error("Expected error for corrupt archive")
	}
}
