// Package storage manages the transient artifact directory: allocating file
// paths for produced documents and sweeping files left behind by failed or
// interrupted tasks.
package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

type WorkDir struct {
	root string
}

func NewWorkDir(root string) (*WorkDir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &WorkDir{root: root}, nil
}

func (w *WorkDir) Root() string { return w.root }

// PathFor builds a timestamped artifact path with a scrubbed label.
func (w *WorkDir) PathFor(label, ext string) string {
	ts := time.Now().Format("20060102_150405")
	name := scrub(label)
	if name == "" {
		name = "document"
	}
	return filepath.Join(w.root, name+"_"+ts+"."+ext)
}

// Sweep removes artifacts older than maxAge and returns how many were
// deleted. Abandoned files from failed tasks accumulate here otherwise.
func (w *WorkDir) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		log.Printf("[storage] sweep read error: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.root, e.Name())); err != nil {
				log.Printf("[storage] sweep remove %s error: %v", e.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed
}

// scrub keeps letters, digits, spaces, dashes and underscores from the first
// 30 characters, then joins words with underscores.
func scrub(s string) string {
	runes := []rune(s)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}
