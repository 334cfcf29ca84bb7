// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cineaste/internal/config"
	"github.com/tomtom215/cineaste/internal/imdb"
)

func testConfig(cacheDir, baseURL string) *config.DatasetConfig {
	return &config.DatasetConfig{
		CacheDir:          cacheDir,
		BaseURL:           baseURL,
		MaxAge:            time.Hour,
		DownloadTimeout:   5 * time.Second,
		RequestsPerMinute: 600,
	}
}

func TestNew_CreatesCacheDir(t *testing.T) {
	dir := t.TempDir() + "/nested/cache"
	if _, err := New(testConfig(dir, "http://example.invalid")); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestEnsure_Downloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/"+imdb.TitleCrewFile.Name {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if _, err := w.Write([]byte("gzip-bytes")); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	f, err := New(testConfig(t.TempDir(), srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if !f.Stale(imdb.TitleCrewFile) {
		t.Fatal("missing file should be stale")
	}
	if err := f.Ensure(context.Background(), imdb.TitleCrewFile); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}

	data, err := os.ReadFile(f.Path(imdb.TitleCrewFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "gzip-bytes" {
		t.Errorf("cached content = %q", data)
	}
	if f.Stale(imdb.TitleCrewFile) {
		t.Error("freshly downloaded file should not be stale")
	}

	// A second Ensure on a fresh file must not hit the server again.
	if err := f.Ensure(context.Background(), imdb.TitleCrewFile); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestEnsure_RedownloadsStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("fresh")); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	f, err := New(testConfig(t.TempDir(), srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	path := f.Path(imdb.NameBasicsFile)
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	if !f.Stale(imdb.NameBasicsFile) {
		t.Fatal("file older than max age should be stale")
	}
	if err := f.Ensure(context.Background(), imdb.NameBasicsFile); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fresh" {
		t.Errorf("stale file not replaced, content = %q", data)
	}
}

func TestEnsure_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, err := New(testConfig(t.TempDir(), srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	err = f.Ensure(context.Background(), imdb.TitleBasicsFile)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable", err)
	}
	if _, statErr := os.Stat(f.Path(imdb.TitleBasicsFile)); !os.IsNotExist(statErr) {
		t.Error("failed download must not leave a file in the cache")
	}
}

func TestEnsureAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("data")); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	f, err := New(testConfig(t.TempDir(), srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.EnsureAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, df := range imdb.Files() {
		if _, err := os.Stat(f.Path(df)); err != nil {
			t.Errorf("%s not cached: %v", df.Name, err)
		}
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f, err := New(testConfig(t.TempDir(), srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := f.Ensure(ctx, imdb.TitleCrewFile); err == nil {
			t.Fatal("expected failure")
		}
	}

	// The breaker is now open; the next attempt fails without reaching
	// the server and still wraps the retryable sentinel.
	err = f.Ensure(ctx, imdb.TitleCrewFile)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable", err)
	}
	if !isBreakerOpen(err) {
		t.Errorf("expected open-breaker error, got %v", err)
	}
}
