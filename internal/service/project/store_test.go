package project

import (
	"testing"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

func TestSaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	scenes := []story.Scene{
		{SceneID: 1, Description: "Opening: the harbor at dusk."},
		{SceneID: 2, Description: "A deal goes wrong."},
	}
	meta, err := store.Save("Neon Tide: Awakening", scenes)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if meta.ProjectID == "" {
		t.Fatal("expected a project id")
	}
	if meta.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	loaded, err := store.Load(meta.ProjectID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Title != "Neon Tide: Awakening" {
		t.Fatalf("title = %q", loaded.Title)
	}
	if len(loaded.Scenes) != 2 || loaded.Scenes[1].Description != scenes[1].Description {
		t.Fatalf("scenes round trip mismatch: %+v", loaded.Scenes)
	}
}

func TestLoadUnknownProject(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Load("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown project")
	}
}

func TestSaveSanitizesTitle(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	meta, err := store.Save(`a/b\c:tale`, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load(meta.ProjectID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Title itself is preserved verbatim; only the filename is sanitized.
	if loaded.Title != `a/b\c:tale` {
		t.Fatalf("title = %q", loaded.Title)
	}
}
