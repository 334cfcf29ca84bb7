// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package snapshot persists the aggregated director index in BadgerDB,
// keyed by the fingerprint of the source dataset files. A restart with
// unchanged datasets restores the index from here instead of re-parsing
// several GB of TSV. The raw dataset files remain the source of truth;
// a snapshot is only ever an optimization and is invalidated simply by
// the fingerprint no longer matching.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cineaste/internal/aggregate"
	"github.com/tomtom215/cineaste/internal/logging"
)

// ErrNotFound is returned when no snapshot exists for a fingerprint.
var ErrNotFound = errors.New("snapshot not found")

// indexKeyPrefix namespaces index snapshots in BadgerDB.
const indexKeyPrefix = "index:"

// record is the persisted form of one index snapshot.
type record struct {
	Fingerprint string                      `json:"fingerprint"`
	Directors   []aggregate.DirectorSummary `json:"directors"`
	SavedAt     time.Time                   `json:"saved_at"`
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the snapshot database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the director summaries under the dataset fingerprint,
// replacing any previous snapshot (stale fingerprints are dropped so the
// store holds at most one generation).
func (s *Store) Save(fingerprint string, directors []aggregate.DirectorSummary) error {
	data, err := json.Marshal(record{
		Fingerprint: fingerprint,
		Directors:   directors,
		SavedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := s.dropOthers(txn, fingerprint); err != nil {
			return err
		}
		key := []byte(indexKeyPrefix + fingerprint)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info().
		Str("fingerprint", shortFP(fingerprint)).
		Int("directors", len(directors)).
		Msg("Index snapshot saved")
	return nil
}

// Load restores the director summaries for the given fingerprint.
// Returns ErrNotFound when the datasets have changed since the last Save.
func (s *Store) Load(fingerprint string) ([]aggregate.DirectorSummary, error) {
	var rec record

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(indexKeyPrefix + fingerprint)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("fingerprint", shortFP(fingerprint)).
		Int("directors", len(rec.Directors)).
		Time("saved_at", rec.SavedAt).
		Msg("Index snapshot restored")
	return rec.Directors, nil
}

// Clear removes every stored snapshot.
func (s *Store) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.dropOthers(txn, "")
	})
}

// dropOthers deletes all index snapshots except the one for keep.
func (s *Store) dropOthers(txn *badger.Txn, keep string) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(indexKeyPrefix)
	keepKey := indexKeyPrefix + keep
	var stale [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		if keep != "" && string(key) == keepKey {
			continue
		}
		stale = append(stale, key)
	}
	for _, key := range stale {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete stale snapshot: %w", err)
		}
	}
	return nil
}

// shortFP truncates a fingerprint for logging.
func shortFP(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
