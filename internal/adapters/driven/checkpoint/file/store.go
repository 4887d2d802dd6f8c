// Package file persists run checkpoints and the global watermark as JSON
// documents under a data directory, one file per source adapter. Writes
// are atomic (temp file + rename) so a crash mid-save never leaves a
// truncated checkpoint behind.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.CheckpointStore = (*Store)(nil)
	_ driven.WatermarkStore  = (*Watermarks)(nil)
)

// watermarkFile is the fixed name of the global watermark record.
const watermarkFile = "last-run.json"

// Store is a file-based checkpoint and watermark store.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. If dir is empty it defaults to
// "data" relative to the working directory, matching the paths the
// scheduled jobs expect (e.g. data/congress-update-progress.json).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "data"
	}
	return &Store{dir: dir}
}

// path returns the checkpoint file path for a source.
func (s *Store) path(sourceID string) string {
	return filepath.Join(s.dir, sourceID+"-update-progress.json")
}

// Load returns the checkpoint for a source, or domain.ErrNotFound when
// none exists (the normal state after a clean completion).
func (s *Store) Load(_ context.Context, sourceID string) (*domain.RunCheckpoint, error) {
	data, err := os.ReadFile(s.path(sourceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp domain.RunCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return &cp, nil
}

// Save atomically overwrites the checkpoint, creating the data directory
// if absent. Called after every processed page, so a crash loses at most
// one page of work.
func (s *Store) Save(_ context.Context, cp *domain.RunCheckpoint) error {
	if cp == nil || cp.SourceID == "" {
		return domain.ErrInvalidInput
	}
	cp.UpdatedAt = time.Now()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return writeAtomic(s.dir, s.path(cp.SourceID), data)
}

// List returns every persisted checkpoint, sorted by source ID. A
// missing data directory means no checkpoints.
func (s *Store) List(_ context.Context) ([]domain.RunCheckpoint, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*-update-progress.json"))
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	sort.Strings(matches)

	var checkpoints []domain.RunCheckpoint
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read checkpoint: %w", err)
		}
		var cp domain.RunCheckpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, nil
}

// Clear removes a source's checkpoint. Missing files are not an error.
func (s *Store) Clear(_ context.Context, sourceID string) error {
	err := os.Remove(s.path(sourceID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

// Watermarks persists the global last-run time alongside the
// per-source checkpoints.
type Watermarks struct {
	dir string
}

// NewWatermarks creates a watermark store rooted at dir, defaulting to
// "data" like NewStore.
func NewWatermarks(dir string) *Watermarks {
	if dir == "" {
		dir = "data"
	}
	return &Watermarks{dir: dir}
}

// Load returns the global last-run time, or domain.ErrNotFound on
// first run.
func (s *Watermarks) Load(_ context.Context) (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, watermarkFile))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("read watermark: %w", err)
	}

	var wm domain.Watermark
	if err := json.Unmarshal(data, &wm); err != nil {
		return time.Time{}, fmt.Errorf("parse watermark: %w", err)
	}
	return wm.LastRun, nil
}

// Save records the global last-run time.
func (s *Watermarks) Save(_ context.Context, lastRun time.Time) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	data, err := json.MarshalIndent(domain.Watermark{LastRun: lastRun}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode watermark: %w", err)
	}
	return writeAtomic(s.dir, filepath.Join(s.dir, watermarkFile), data)
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
