// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package snapshot

import (
	"errors"
	"testing"

	"github.com/tomtom215/cineaste/internal/aggregate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close error: %v", err)
		}
	})
	return store
}

func testDirectors() []aggregate.DirectorSummary {
	return []aggregate.DirectorSummary{
		{ID: "nm1", Name: "Ava Adams", MovieCount: 12},
		{ID: "nm2", Name: "Ben Brook", MovieCount: 3},
	}
}

func TestSaveLoad(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("fp-1", testDirectors()); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Load("fp-1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := testDirectors()
	if len(got) != len(want) {
		t.Fatalf("loaded %d directors, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].MovieCount != want[i].MovieCount {
			t.Errorf("director %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoad_NotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Load("no-such-fingerprint"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSave_DropsStaleGenerations(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("fp-old", testDirectors()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("fp-new", testDirectors()); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load("fp-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale snapshot should be dropped, got error %v", err)
	}
	if _, err := store.Load("fp-new"); err != nil {
		t.Errorf("current snapshot should survive: %v", err)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("fp-1", testDirectors()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := store.Load("fp-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("snapshot should be gone after Clear, got error %v", err)
	}
}

func TestSave_EmptyDirectors(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("fp-empty", nil); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load("fp-empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %v", got)
	}
}
