// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cineaste/internal/logging"
)

// Refresher re-downloads stale datasets and rebuilds the index.
// Satisfied by *director.Service.
type Refresher interface {
	RefreshStale(ctx context.Context) error
}

// RefresherService runs the dataset refresher on a fixed interval as a
// supervised service. A failed refresh is logged and retried on the
// next tick rather than crashing the service: the API keeps serving
// whatever index it already has.
type RefresherService struct {
	refresher Refresher
	interval  time.Duration
	name      string
}

// NewRefresherService creates a refresher service ticking at interval.
func NewRefresherService(refresher Refresher, interval time.Duration) *RefresherService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &RefresherService{
		refresher: refresher,
		interval:  interval,
		name:      "dataset-refresher",
	}
}

// Serve implements suture.Service. The first refresh runs immediately
// so the index is warm before the first request; later refreshes only
// happen when a dataset file has passed its max age.
func (s *RefresherService) Serve(ctx context.Context) error {
	if err := s.refresher.RefreshStale(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial dataset refresh failed, will retry on next tick")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.refresher.RefreshStale(ctx); err != nil {
				logging.Warn().Err(err).Msg("Dataset refresh failed, will retry on next tick")
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *RefresherService) String() string {
	return s.name
}
