package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweepRemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()

	oldPath := filepath.Join(dir, "input_old.mp4")
	newPath := filepath.Join(dir, "output_new.mov")
	if err := os.WriteFile(oldPath, []byte("stale"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(newPath, []byte("fresh"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stale := time.Now().Add(-10 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	s := NewScheduler([]string{dir}, 60, 1)
	s.Start() // initial sweep runs synchronously
	s.Stop()

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("stale file survived the sweep")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("fresh file removed by the sweep: %v", err)
	}
}

func TestSweepCoversMultipleDirs(t *testing.T) {
	processing := t.TempDir()
	downloads := t.TempDir()

	for _, dir := range []string{processing, downloads} {
		p := filepath.Join(dir, "leaked")
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		stale := time.Now().Add(-48 * time.Hour)
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	s := NewScheduler([]string{processing, downloads}, 60, 1)
	s.Start()
	s.Stop()

	for _, dir := range []string{processing, downloads} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("dir %s not swept: %d entries", dir, len(entries))
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "processing")
	b := filepath.Join(root, "downloads")

	if err := EnsureDirs(a, b); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}

	for _, dir := range []string{a, b} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("dir %s not created", dir)
		}
	}
}
