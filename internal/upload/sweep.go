// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ReferenceFunc returns the base names of every image still referenced.
type ReferenceFunc func(ctx context.Context) (map[string]struct{}, error)

// Sweeper deletes uploaded images that no content row references.
type Sweeper struct {
	dir    string
	grace  time.Duration
	refs   ReferenceFunc
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper creates a sweeper over dir. Files younger than grace are kept
// so an image uploaded for a form that is not yet saved survives.
func NewSweeper(dir string, grace time.Duration, refs ReferenceFunc, logger *slog.Logger) *Sweeper {
	return &Sweeper{dir: dir, grace: grace, refs: refs, logger: logger, now: time.Now}
}

// SweepResult holds the counts of one run.
type SweepResult struct {
	Scanned int
	Removed int
	Kept    int
}

// Run performs one sweep.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("reading uploads: %w", err)
	}

	refs, err := s.refs(ctx)
	if err != nil {
		return res, fmt.Errorf("collecting references: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		res.Scanned++

		if _, ok := refs[e.Name()]; ok {
			res.Kept++
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			res.Kept++
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("failed to remove orphaned upload", "file", e.Name(), "error", err)
			res.Kept++
			continue
		}
		res.Removed++
	}

	s.logger.Info("upload sweep finished", "scanned", res.Scanned, "removed", res.Removed, "kept", res.Kept)
	return res, nil
}
