package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPathFor_ScrubsLabel(t *testing.T) {
	w, err := NewWorkDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := w.PathFor("Iqlim o'zgarishi: sabab/oqibat?", "pptx")
	base := filepath.Base(path)

	if !strings.HasSuffix(base, ".pptx") {
		t.Fatalf("path = %s, want .pptx suffix", base)
	}
	for _, bad := range []string{"/", ":", "?", "'", " "} {
		if strings.Contains(base, bad) {
			t.Fatalf("scrubbed name %q still contains %q", base, bad)
		}
	}
	if !strings.HasPrefix(base, "Iqlim_ozgarishi") {
		t.Fatalf("base = %q, want words joined with underscores", base)
	}
}

func TestPathFor_EmptyLabelFallsBack(t *testing.T) {
	w, err := NewWorkDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	base := filepath.Base(w.PathFor("!!!???", "pdf"))
	if !strings.HasPrefix(base, "document_") {
		t.Fatalf("base = %q, want the document fallback", base)
	}
}

func TestPathFor_TruncatesLongLabels(t *testing.T) {
	w, err := NewWorkDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	base := filepath.Base(w.PathFor(strings.Repeat("a", 200), "docx"))
	name, _, _ := strings.Cut(base, "_")
	if len(name) > 30 {
		t.Fatalf("label part %q longer than 30 runes", name)
	}
}

func TestSweep_RemovesOnlyStaleFiles(t *testing.T) {
	root := t.TempDir()
	w, err := NewWorkDir(root)
	if err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(root, "old.pptx")
	fresh := filepath.Join(root, "new.pptx")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	if removed := w.Sweep(24 * time.Hour); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale artifact should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh artifact must survive: %v", err)
	}
}

func TestSweep_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := NewWorkDir(root)
	if err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(root, "keep")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	os.Chtimes(sub, past, past)

	if removed := w.Sweep(24 * time.Hour); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if _, err := os.Stat(sub); err != nil {
		t.Fatalf("directory must survive the sweep: %v", err)
	}
}
