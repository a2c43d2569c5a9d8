package artifact

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"docforge/internal/model"
)

// CleanupPolicy is the single age threshold applied uniformly across all
// typed directories.
type CleanupPolicy struct {
	MaxAge time.Duration
}

// Sweep visits every typed directory and deletes files whose last-modified
// time is older than the policy's maximum age. Per-file failures are logged
// and do not abort the sweep of remaining files. It returns the number of
// files removed.
func (s *Store) Sweep(policy CleanupPolicy) int {
	cutoff := time.Now().Add(-policy.MaxAge)
	removed := 0

	for _, t := range []model.ArtifactType{model.ArtifactPDF, model.ArtifactXLSX, model.ArtifactDOCX} {
		dir := s.Dir(t)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				logSweep(map[string]any{
					"event":         "artifact_sweep_dir_failed",
					"status":        "error",
					"dir":           dir,
					"error_message": err.Error(),
				})
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logSweep(map[string]any{
					"event":         "artifact_sweep_remove_failed",
					"status":        "error",
					"path":          path,
					"error_message": err.Error(),
				})
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logSweep(map[string]any{
			"event":   "artifact_sweep",
			"status":  "success",
			"removed": removed,
			"max_age": policy.MaxAge.String(),
		})
	}
	return removed
}

// Sweeper runs cleanup sweeps on a fixed period. The first sweep runs
// immediately on Start; sweeps are not synchronized with in-flight downloads
// or generations.
type Sweeper struct {
	store    *Store
	policy   CleanupPolicy
	interval time.Duration
	stop     chan struct{}
}

// NewSweeper creates a Sweeper over store.
func NewSweeper(store *Store, policy CleanupPolicy, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		policy:   policy,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start sweeps once, then keeps sweeping every interval until Stop is called.
func (w *Sweeper) Start() {
	w.store.Sweep(w.policy)
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.store.Sweep(w.policy)
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop terminates the periodic sweep loop.
func (w *Sweeper) Stop() {
	close(w.stop)
}

func logSweep(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["component"] = "artifact"
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
