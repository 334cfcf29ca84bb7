// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package aggregate builds the director index: for every director in the
// joined datasets, the set of distinct movies they directed, plus the
// derived views the UI needs (exact-N filter, count distribution,
// summary statistics, per-director filmography).
//
// The index replaces dataframe-style merge/group operations with one
// explicit pass over the crew table: director -> set of distinct movie
// title IDs, with counts derived from set sizes. Identical inputs always
// produce identical output ordering and contents.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/cineaste/internal/dataset"
	"github.com/tomtom215/cineaste/internal/imdb"
	"github.com/tomtom215/cineaste/internal/logging"
	"github.com/tomtom215/cineaste/internal/metrics"
)

// Bounds for the exact-N filter, matching the UI slider.
const (
	MinCount = 1
	MaxCount = 50
)

// ErrCountOutOfRange is returned for N outside [MinCount, MaxCount],
// before any computation happens.
var ErrCountOutOfRange = errors.New("movie count out of range")

// ValidateCount checks an exact-N filter value against the bounds.
func ValidateCount(n int) error {
	if n < MinCount || n > MaxCount {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrCountOutOfRange, n, MinCount, MaxCount)
	}
	return nil
}

// DirectorSummary pairs a director with their distinct movie count.
type DirectorSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MovieCount int    `json:"movie_count"`
}

// Movie is one filmography entry for the drill-down view.
type Movie struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Year   int      `json:"year,omitempty"`
	Genres []string `json:"genres,omitempty"`
}

// Stats summarizes the full (unfiltered) director population.
type Stats struct {
	TotalDirectors int               `json:"total_directors"`
	MostProlific   DirectorSummary   `json:"most_prolific"`
	MeanCount      float64           `json:"mean_count"`
	MedianCount    float64           `json:"median_count"`
	TopDirectors   []DirectorSummary `json:"top_directors"`
}

// PlaceholderName renders a director whose ID is missing from the name
// table. Such directors stay in every view rather than being dropped.
func PlaceholderName(id string) string {
	return "Unknown (" + id + ")"
}

// Index is the aggregated director data, immutable once built.
type Index struct {
	// summaries holds every director, sorted by (Name, ID) ascending.
	summaries []DirectorSummary

	// filmography maps director ID to their movies, sorted by year then
	// title. Nil for snapshot-restored indexes.
	filmography map[string][]Movie
}

// BuildIndex aggregates the loaded tables into a director index.
//
// The pipeline:
//  1. Restrict crew rows to titles present in the movie-filtered title table.
//  2. Explode each crew row's director list into (title, director) pairs.
//  3. Collect distinct title IDs per director (a set, so a director listed
//     twice on one title counts that title once).
//  4. Resolve names, falling back to a placeholder for unknown IDs.
func BuildIndex(tables *dataset.Tables) *Index {
	start := time.Now()

	movies := make(map[string]*imdb.Title, len(tables.Titles))
	for i := range tables.Titles {
		movies[tables.Titles[i].ID] = &tables.Titles[i]
	}

	titleSets := make(map[string]map[string]struct{})
	for i := range tables.Crew {
		crew := &tables.Crew[i]
		title, ok := movies[crew.TitleID]
		if !ok {
			continue
		}
		for _, directorID := range crew.Directors {
			set, ok := titleSets[directorID]
			if !ok {
				set = make(map[string]struct{})
				titleSets[directorID] = set
			}
			if _, dup := set[title.ID]; dup {
				continue
			}
			set[title.ID] = struct{}{}
		}
	}

	// Resolve names with a single pass over the name table, keeping only
	// the directors we actually saw. Loading all ~14M names into a map
	// would roughly double the resident set for no benefit.
	names := make(map[string]string, len(titleSets))
	for i := range tables.Names {
		if _, ok := titleSets[tables.Names[i].ID]; ok {
			names[tables.Names[i].ID] = tables.Names[i].PrimaryName
		}
	}

	summaries := make([]DirectorSummary, 0, len(titleSets))
	filmography := make(map[string][]Movie, len(titleSets))
	for directorID, set := range titleSets {
		name, ok := names[directorID]
		if !ok || name == "" {
			name = PlaceholderName(directorID)
		}
		summaries = append(summaries, DirectorSummary{
			ID:         directorID,
			Name:       name,
			MovieCount: len(set),
		})

		films := make([]Movie, 0, len(set))
		for titleID := range set {
			t := movies[titleID]
			films = append(films, Movie{
				ID:     t.ID,
				Title:  t.PrimaryTitle,
				Year:   t.StartYear,
				Genres: t.Genres,
			})
		}
		sortMovies(films)
		filmography[directorID] = films
	}
	sortSummaries(summaries)

	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	metrics.DirectorsIndexed.Set(float64(len(summaries)))
	logging.Info().
		Int("directors", len(summaries)).
		Int("movies", len(movies)).
		Dur("elapsed", time.Since(start)).
		Msg("Director index built")

	return &Index{summaries: summaries, filmography: filmography}
}

// Restore rebuilds an Index from previously persisted summaries, e.g.
// from the snapshot store. The filmography is unavailable until the full
// tables are loaded; callers check HasFilmography.
func Restore(summaries []DirectorSummary) *Index {
	copied := make([]DirectorSummary, len(summaries))
	copy(copied, summaries)
	sortSummaries(copied)
	metrics.DirectorsIndexed.Set(float64(len(copied)))
	return &Index{summaries: copied}
}

func sortSummaries(s []DirectorSummary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		return s[i].ID < s[j].ID
	})
}

func sortMovies(m []Movie) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Year != m[j].Year {
			return m[i].Year < m[j].Year
		}
		if m[i].Title != m[j].Title {
			return m[i].Title < m[j].Title
		}
		return m[i].ID < m[j].ID
	})
}
