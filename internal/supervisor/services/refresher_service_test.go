// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockRefresher counts RefreshStale calls and can fail on demand.
type mockRefresher struct {
	calls atomic.Int32
	err   error
}

func (m *mockRefresher) RefreshStale(_ context.Context) error {
	m.calls.Add(1)
	return m.err
}

func TestRefresherService_Interface(t *testing.T) {
	var _ suture.Service = (*RefresherService)(nil)
}

func TestNewRefresherService_DefaultInterval(t *testing.T) {
	svc := NewRefresherService(&mockRefresher{}, 0)
	if svc.interval != 6*time.Hour {
		t.Errorf("expected default interval 6h, got %v", svc.interval)
	}
}

func TestRefresherService_RunsImmediatelyAndOnTick(t *testing.T) {
	refresher := &mockRefresher{}
	svc := NewRefresherService(refresher, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d refreshes before deadline", refresher.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after cancellation")
	}
}

func TestRefresherService_SurvivesRefreshErrors(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("remote down")}
	svc := NewRefresherService(refresher, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("service stopped retrying after a refresh error")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after cancellation")
	}
}

func TestRefresherService_String(t *testing.T) {
	svc := NewRefresherService(&mockRefresher{}, time.Minute)
	if svc.String() != "dataset-refresher" {
		t.Errorf("String() = %q, want dataset-refresher", svc.String())
	}
}
