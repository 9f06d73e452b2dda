package tree

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeTreeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadDir_LoadsValidTrees(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "dpia.json", sampleJSON)

	r, err := LoadDir(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 tree, got %d", r.Len())
	}
	if _, ok := r.Get("dpia"); !ok {
		t.Error("expected dpia tree to be loaded")
	}
}

func TestLoadDir_SkipsInvalidTrees(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "good.json", sampleJSON)
	writeTreeFile(t, dir, "broken.json", `{"id": "broken"`)
	writeTreeFile(t, dir, "dangling.json",
		`{"id": "d", "root": "a", "nodes": {"a": {"text": "A?", "options": {"go": {"next": "ghost"}}}}}`)

	r, err := LoadDir(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("expected only the valid tree to load, got %d", r.Len())
	}
}

func TestLoadDir_SkipsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "a.json", sampleJSON)
	writeTreeFile(t, dir, "b.json", sampleJSON)

	r, err := LoadDir(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("expected duplicate id to be skipped, got %d trees", r.Len())
	}
}

func TestLoadDir_IgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "notes.txt", "not a tree")
	writeTreeFile(t, dir, "tree.json", sampleJSON)

	r, err := LoadDir(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 tree, got %d", r.Len())
	}
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "absent"), discardLogger()); err == nil {
		t.Error("expected missing directory to fail")
	}
}

func TestRegistry_ListMetadata(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "dpia.json", sampleJSON)

	r, err := LoadDir(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	metas := r.List()
	if len(metas) != 1 {
		t.Fatalf("expected 1 catalog entry, got %d", len(metas))
	}
	m := metas[0]
	if m.ID != "dpia" || m.Title != "DPIA Requirement" {
		t.Errorf("unexpected metadata: %+v", m)
	}
	if m.Nodes != 2 || m.Questions != 2 {
		t.Errorf("expected 2 nodes / 2 questions, got %d/%d", m.Nodes, m.Questions)
	}
	if !m.Scored {
		t.Error("expected scored flag for tree with scoring config")
	}
	if m.Version == "" || m.Source != "dpia.json" {
		t.Errorf("unexpected version/source: %+v", m)
	}
}
