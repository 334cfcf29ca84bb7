// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package web serves the embedded single-page UI. The page is a thin
// client over the JSON API: all aggregation happens server-side.
package web

import (
	_ "embed"
	"net/http"

	"github.com/tomtom215/cineaste/internal/logging"
)

//go:embed index.html
var indexHTML []byte

// Index serves the UI.
func Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexHTML); err != nil {
		logging.Error().Err(err).Msg("Failed to write index page")
	}
}
