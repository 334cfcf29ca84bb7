// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package aggregate

import "sort"

// Summaries returns the directors whose distinct movie count equals
// exactly n, ordered by name ascending (ties broken by ID). Returns
// ErrCountOutOfRange for n outside [MinCount, MaxCount] without touching
// the data. The result is always non-nil, possibly empty.
func (idx *Index) Summaries(n int) ([]DirectorSummary, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}
	result := make([]DirectorSummary, 0)
	for _, s := range idx.summaries {
		if s.MovieCount == n {
			result = append(result, s)
		}
	}
	return result, nil
}

// Distribution returns the full count-to-frequency mapping across all
// directors, uncapped by the exact-N bounds.
func (idx *Index) Distribution() map[int]int {
	dist := make(map[int]int)
	for _, s := range idx.summaries {
		dist[s.MovieCount]++
	}
	return dist
}

// Stats computes summary statistics over the full director population.
func (idx *Index) Stats() Stats {
	total := len(idx.summaries)
	if total == 0 {
		return Stats{TopDirectors: []DirectorSummary{}}
	}

	counts := make([]int, total)
	var sum int
	for i, s := range idx.summaries {
		counts[i] = s.MovieCount
		sum += s.MovieCount
	}
	sort.Ints(counts)

	var median float64
	if total%2 == 1 {
		median = float64(counts[total/2])
	} else {
		median = float64(counts[total/2-1]+counts[total/2]) / 2
	}

	top := idx.topDirectors(10)
	return Stats{
		TotalDirectors: total,
		MostProlific:   top[0],
		MeanCount:      float64(sum) / float64(total),
		MedianCount:    median,
		TopDirectors:   top,
	}
}

// topDirectors returns the n highest-count directors, ordered by count
// descending then name ascending so the ranking is deterministic.
func (idx *Index) topDirectors(n int) []DirectorSummary {
	top := make([]DirectorSummary, len(idx.summaries))
	copy(top, idx.summaries)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].MovieCount > top[j].MovieCount
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// AllDirectors returns every director summary in name order. The caller
// must not mutate the result; it backs the snapshot serialization.
func (idx *Index) AllDirectors() []DirectorSummary {
	return idx.summaries
}

// Filmography returns the movies directed by the given director, sorted
// by year then title. Returns nil for unknown directors or when the
// index was restored from a snapshot without the full tables.
func (idx *Index) Filmography(directorID string) []Movie {
	if idx.filmography == nil {
		return nil
	}
	return idx.filmography[directorID]
}

// HasFilmography reports whether per-director movie lists are available.
// Snapshot-restored indexes carry only the summaries.
func (idx *Index) HasFilmography() bool {
	return idx.filmography != nil
}
