// Package cleanup sweeps the scratch directories for leaked files. The
// conversion pipeline removes its own scratch files per request; this is the
// backstop for files orphaned by crashes or failed downloads.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically removes old files from the scratch directories.
type Scheduler struct {
	dirs            []string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a scheduler sweeping the given directories.
func NewScheduler(dirs []string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		dirs:            dirs,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start runs an initial sweep and then sweeps on the configured interval.
func (s *Scheduler) Start() {
	log.Println("Running initial scratch directory sweep...")
	s.sweep()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Scratch sweep scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Scratch sweep scheduler stopped")
}

// sweep removes files older than the configured age from every scratch dir.
func (s *Scheduler) sweep() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var removed int
	for _, dir := range s.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}

			if now.Sub(info.ModTime()) > maxAge {
				if err := os.Remove(path); err != nil {
					log.Printf("Failed to remove old scratch file %s: %v", path, err)
				} else {
					removed++
					log.Printf("Removed leaked scratch file: %s", filepath.Base(path))
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("Error sweeping %s: %v", dir, err)
		}
	}

	if removed > 0 {
		log.Printf("Scratch sweep complete: %d files removed", removed)
	}
}

// EnsureDirs creates the scratch directories if missing.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		log.Printf("Scratch directory ready: %s", dir)
	}
	return nil
}
