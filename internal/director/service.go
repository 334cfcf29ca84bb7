// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package director orchestrates the full pipeline behind every request:
// fetch-if-needed, load-if-needed, aggregate, with the snapshot store as
// a shortcut past the parse step. Each user interaction runs through
// here synchronously; there is no background computation besides the
// staleness refresher, which only invalidates between requests.
package director

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/cineaste/internal/aggregate"
	"github.com/tomtom215/cineaste/internal/dataset"
	"github.com/tomtom215/cineaste/internal/fetch"
	"github.com/tomtom215/cineaste/internal/imdb"
	"github.com/tomtom215/cineaste/internal/logging"
	"github.com/tomtom215/cineaste/internal/metrics"
	"github.com/tomtom215/cineaste/internal/snapshot"
)

// Snapshots is the subset of the snapshot store the service uses.
// Satisfied by *snapshot.Store; nil disables snapshotting.
type Snapshots interface {
	Save(fingerprint string, directors []aggregate.DirectorSummary) error
	Load(fingerprint string) ([]aggregate.DirectorSummary, error)
}

// Service owns the pipeline state: the fetcher, the memoizing loader,
// the optional snapshot store, and the current index. The mutex
// serializes pipeline runs, so concurrent requests on a cold start share
// one download+parse instead of racing.
type Service struct {
	mu      sync.Mutex
	fetcher *fetch.Fetcher
	tables  *dataset.Store
	snaps   Snapshots

	index       *aggregate.Index
	fingerprint string
}

// NewService wires the pipeline. snaps may be nil to disable snapshots.
func NewService(fetcher *fetch.Fetcher, tables *dataset.Store, snaps Snapshots) *Service {
	return &Service{fetcher: fetcher, tables: tables, snaps: snaps}
}

func (s *Service) paths() dataset.Paths {
	return dataset.Paths{
		Titles: s.fetcher.Path(imdb.TitleBasicsFile),
		Crew:   s.fetcher.Path(imdb.TitleCrewFile),
		Names:  s.fetcher.Path(imdb.NameBasicsFile),
	}
}

// Index returns the current director index, running as little of the
// pipeline as the cache state allows: memoized index, then snapshot,
// then full download+parse+aggregate.
func (s *Service) Index(ctx context.Context) (*aggregate.Index, error) {
	return s.load(ctx, false)
}

// FullIndex is Index but guarantees filmography data, forcing a table
// load even when a summaries-only snapshot would satisfy Index.
func (s *Service) FullIndex(ctx context.Context) (*aggregate.Index, error) {
	return s.load(ctx, true)
}

func (s *Service) load(ctx context.Context, needFilmography bool) (*aggregate.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fetcher.EnsureAll(ctx); err != nil {
		return nil, err
	}

	paths := s.paths()
	fp, err := dataset.Fingerprint(paths)
	if err != nil {
		return nil, err
	}

	if s.index != nil && s.fingerprint == fp {
		if !needFilmography || s.index.HasFilmography() {
			return s.index, nil
		}
	}

	if !needFilmography && s.snaps != nil && (s.index == nil || s.fingerprint != fp) {
		if directors, err := s.snaps.Load(fp); err == nil {
			metrics.SnapshotHits.Inc()
			s.index = aggregate.Restore(directors)
			s.fingerprint = fp
			return s.index, nil
		} else if !errors.Is(err, snapshot.ErrNotFound) {
			logging.Warn().Err(err).Msg("Snapshot load failed, rebuilding index")
		}
		metrics.SnapshotMisses.Inc()
	}

	tables, err := s.tables.Load(paths)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}

	idx := aggregate.BuildIndex(tables)
	s.index = idx
	s.fingerprint = fp

	if s.snaps != nil {
		if err := s.snaps.Save(fp, idx.AllDirectors()); err != nil {
			// Snapshot failures cost the next restart a re-parse, nothing more.
			logging.Warn().Err(err).Msg("Snapshot save failed")
		}
	}
	return idx, nil
}

// Ready reports whether an index is available without running the
// pipeline. Used by the readiness probe.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index != nil
}

// Invalidate drops the in-memory index and the memoized tables. The next
// request rebuilds from whatever the cache directory then holds.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.index = nil
	s.fingerprint = ""
	s.mu.Unlock()
	s.tables.Clear()
}

// RefreshStale re-downloads any dataset file older than the configured
// max age and invalidates the caches if anything changed. Called by the
// supervised refresher between requests.
func (s *Service) RefreshStale(ctx context.Context) error {
	stale := false
	for _, df := range imdb.Files() {
		if s.fetcher.Stale(df) {
			stale = true
			break
		}
	}
	if !stale {
		return nil
	}

	logging.Info().Msg("Dataset files stale, refreshing")
	if err := s.fetcher.EnsureAll(ctx); err != nil {
		return fmt.Errorf("refresh datasets: %w", err)
	}
	s.Invalidate()
	return nil
}
