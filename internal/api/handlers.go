// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cineaste/internal/aggregate"
	"github.com/tomtom215/cineaste/internal/config"
	"github.com/tomtom215/cineaste/internal/director"
	"github.com/tomtom215/cineaste/internal/fetch"
	"github.com/tomtom215/cineaste/internal/logging"
)

// Handler implements all API endpoints. Every data endpoint runs the
// full synchronous pipeline through the director service; the first
// request after a cold start blocks on the dataset download.
type Handler struct {
	svc          *director.Service
	defaultCount int
}

// NewHandler creates the API handler.
func NewHandler(svc *director.Service, cfg *config.Config) *Handler {
	return &Handler{
		svc:          svc,
		defaultCount: cfg.Aggregate.DefaultCount,
	}
}

// HealthLive reports process liveness. Always succeeds.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// HealthReady reports readiness: whether a director index is available.
// A cold process is alive but not ready until the first pipeline run.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.svc.Ready() {
		rw.Error(http.StatusServiceUnavailable, ErrCodeExternalServiceFail, "director index not built yet")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// Health reports overall service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":      "ok",
		"index_ready": h.svc.Ready(),
	})
}

// Directors returns the directors whose distinct movie count equals the
// "count" query parameter (default: the configured default, 12).
func (h *Handler) Directors(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, err := countParam(r, h.defaultCount)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if err := validateRequest(&DirectorsRequest{Count: n}); err != nil {
		rw.ValidationFailed(err.Error())
		return
	}

	idx, err := h.svc.Index(r.Context())
	if err != nil {
		h.pipelineError(rw, err)
		return
	}

	summaries, err := idx.Summaries(n)
	if err != nil {
		rw.ValidationFailed(err.Error())
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Debug().Int("count", n).Int("directors", len(summaries)).Msg("Exact-N query served")
	rw.SuccessWithCount(summaries, len(summaries))
}

// DirectorMovies returns the filmography of one director for the
// drill-down view, sorted by year.
func (h *Handler) DirectorMovies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := MoviesRequest{DirectorID: chi.URLParam(r, "id")}
	if err := validateRequest(&req); err != nil {
		rw.ValidationFailed(err.Error())
		return
	}

	// Filmography needs the full tables; a summaries-only snapshot is
	// not enough, so this may trigger the parse the snapshot skipped.
	idx, err := h.svc.FullIndex(r.Context())
	if err != nil {
		h.pipelineError(rw, err)
		return
	}

	movies := idx.Filmography(req.DirectorID)
	if movies == nil {
		rw.NotFound(fmt.Sprintf("no directed movies for %s", req.DirectorID))
		return
	}
	rw.SuccessWithCount(movies, len(movies))
}

// Distribution returns the full movie-count distribution across all
// directors for the histogram view.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	idx, err := h.svc.Index(r.Context())
	if err != nil {
		h.pipelineError(rw, err)
		return
	}
	rw.Success(idx.Distribution())
}

// Stats returns summary statistics over the full director population.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	idx, err := h.svc.Index(r.Context())
	if err != nil {
		h.pipelineError(rw, err)
		return
	}
	rw.Success(idx.Stats())
}

// ExportCSV streams the current exact-N result set as a CSV download
// with columns (director_id, director_name, movie_count). Generated on
// demand, never persisted server-side.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, err := countParam(r, h.defaultCount)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if err := validateRequest(&DirectorsRequest{Count: n}); err != nil {
		rw.ValidationFailed(err.Error())
		return
	}

	idx, err := h.svc.Index(r.Context())
	if err != nil {
		h.pipelineError(rw, err)
		return
	}
	summaries, err := idx.Summaries(n)
	if err != nil {
		rw.ValidationFailed(err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=directors_with_%d_movies.csv", n))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"director_id", "director_name", "movie_count"}); err != nil {
		logging.Error().Err(err).Msg("Failed to write CSV header")
		return
	}
	for _, s := range summaries {
		if err := cw.Write([]string{s.ID, s.Name, strconv.Itoa(s.MovieCount)}); err != nil {
			logging.Error().Err(err).Msg("Failed to write CSV row")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Error().Err(err).Msg("Failed to flush CSV export")
	}
}

// pipelineError maps pipeline failures to API errors. Download failures
// are retryable by design: nothing is fatal to the process, and the user
// recovers by repeating the action.
func (h *Handler) pipelineError(rw *ResponseWriter, err error) {
	if errors.Is(err, fetch.ErrRemoteUnavailable) {
		logging.Warn().Err(err).Msg("Dataset download failed")
		rw.RetryableError(http.StatusServiceUnavailable, ErrCodeExternalServiceFail,
			"dataset download failed; the remote host may be unreachable, retry shortly")
		return
	}
	if errors.Is(err, aggregate.ErrCountOutOfRange) {
		rw.ValidationFailed(err.Error())
		return
	}
	logging.Error().Err(err).Msg("Pipeline failed")
	rw.InternalError("failed to build director index")
}
