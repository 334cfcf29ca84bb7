// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package fetch downloads the IMDb dataset files into the local cache
// directory. A file already present and younger than the configured max
// age is never re-downloaded; everything else goes over HTTPS through a
// circuit breaker and a rate limiter.
//
// Downloads are atomic: the body streams to a .tmp file which is renamed
// into place only on success, so a crashed download never leaves a
// truncated file that the loader would try to parse.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/cineaste/internal/config"
	"github.com/tomtom215/cineaste/internal/imdb"
	"github.com/tomtom215/cineaste/internal/logging"
	"github.com/tomtom215/cineaste/internal/metrics"
)

// ErrRemoteUnavailable marks download failures that the user can retry.
// All network, HTTP-status, and circuit-breaker failures wrap it.
var ErrRemoteUnavailable = errors.New("dataset host unavailable")

// Fetcher downloads dataset files on demand. Safe for concurrent use;
// concurrent first-runs may race on the same file, which is harmless
// because the content is immutable and the rename is atomic.
type Fetcher struct {
	cacheDir string
	baseURL  string
	maxAge   time.Duration
	client   *http.Client
	breaker  *datasetBreaker
	limiter  *rate.Limiter
}

// New creates a Fetcher for the configured cache directory and remote
// base URL. The cache directory is created if missing.
func New(cfg *config.DatasetConfig) (*Fetcher, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", cfg.CacheDir, err)
	}

	perMinute := cfg.RequestsPerMinute
	if perMinute < 1 {
		perMinute = 1
	}

	return &Fetcher{
		cacheDir: cfg.CacheDir,
		baseURL:  cfg.BaseURL,
		maxAge:   cfg.MaxAge,
		client:   &http.Client{Timeout: cfg.DownloadTimeout},
		breaker:  newDatasetBreaker("imdb-datasets"),
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}, nil
}

// Path returns the local cache path for a dataset file.
func (f *Fetcher) Path(df imdb.DatasetFile) string {
	return filepath.Join(f.cacheDir, df.Name)
}

// Stale reports whether the local copy is missing or older than the
// configured max age.
func (f *Fetcher) Stale(df imdb.DatasetFile) bool {
	info, err := os.Stat(f.Path(df))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > f.maxAge
}

// EnsureAll guarantees fresh local copies of all required dataset files.
// The first missing or failed file aborts the whole pipeline; there is no
// point aggregating over a partial dataset.
func (f *Fetcher) EnsureAll(ctx context.Context) error {
	for _, df := range imdb.Files() {
		if err := f.Ensure(ctx, df); err != nil {
			return err
		}
	}
	return nil
}

// Ensure guarantees a fresh local copy of one dataset file, downloading
// it if absent or stale.
func (f *Fetcher) Ensure(ctx context.Context, df imdb.DatasetFile) error {
	if !f.Stale(df) {
		logging.Debug().Str("file", df.Name).Msg("Dataset file fresh, skipping download")
		return nil
	}
	return f.download(ctx, df)
}

// download fetches one file through the rate limiter and circuit breaker.
func (f *Fetcher) download(ctx context.Context, df imdb.DatasetFile) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	url := f.baseURL + "/" + df.Name
	start := time.Now()

	written, err := f.breaker.execute(func() (int64, error) {
		return f.fetchToCache(ctx, url, df)
	})
	if err != nil {
		reason := "http"
		if isBreakerOpen(err) {
			reason = "breaker"
		}
		metrics.DatasetDownloadErrors.WithLabelValues(df.Name, reason).Inc()
		return fmt.Errorf("download %s: %w: %w", df.Name, ErrRemoteUnavailable, err)
	}

	metrics.DatasetDownloadDuration.WithLabelValues(df.Name).Observe(time.Since(start).Seconds())
	metrics.DatasetDownloadBytes.WithLabelValues(df.Name).Add(float64(written))
	logging.Info().
		Str("file", df.Name).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset file downloaded")
	return nil
}

// fetchToCache performs the HTTP request and atomically writes the body
// into the cache. Returns the number of bytes written.
func (f *Fetcher) fetchToCache(ctx context.Context, url string, df imdb.DatasetFile) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.DatasetDownloadErrors.WithLabelValues(df.Name, "status").Inc()
		return 0, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	dest := f.Path(df)
	tmp, err := os.CreateTemp(f.cacheDir, df.Name+".tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(tmpName); rmErr != nil {
			logging.Warn().Err(rmErr).Str("file", tmpName).Msg("Error removing temp file")
		}
		metrics.DatasetDownloadErrors.WithLabelValues(df.Name, "write").Inc()
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("rename %s: %w", dest, err)
	}
	return written, nil
}
