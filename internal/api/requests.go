// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DirectorsRequest carries the validated query parameters of the
// exact-N endpoints. Bounds mirror the UI slider.
type DirectorsRequest struct {
	Count int `validate:"gte=1,lte=50"`
}

// MoviesRequest carries the drill-down path parameter. IMDb person IDs
// are "nm" followed by digits.
type MoviesRequest struct {
	DirectorID string `validate:"required,max=16"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the process-wide validator instance. validator
// caches struct metadata internally, so a singleton avoids re-parsing
// tags on every request.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateRequest validates a request struct, returning a user-facing
// message for the first failed field.
func validateRequest(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "gte":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

// countParam parses the "count" query parameter, defaulting when absent.
// Range checking is left to the request validator and the aggregator.
func countParam(r *http.Request, defaultCount int) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return defaultCount, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("count must be an integer, got %q", raw)
	}
	return n, nil
}
