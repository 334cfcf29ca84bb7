// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package dataset

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cineaste/internal/imdb"
	"github.com/tomtom215/cineaste/internal/logging"
	"github.com/tomtom215/cineaste/internal/metrics"
)

// maxLineBytes bounds a single TSV line. The longest IMDb rows are a few
// KB; 1MB leaves two orders of magnitude headroom.
const maxLineBytes = 1 << 20

// rowFunc consumes one well-formed row (already split into the expected
// number of fields).
type rowFunc func(fields []string)

// parseFile streams one .tsv.gz file through fn, skipping the header row
// and counting rather than failing on rows with the wrong column count.
func parseFile(path string, df imdb.DatasetFile, fn rowFunc) error {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Error closing dataset file")
		}
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gunzip %s: %w", path, err)
	}
	defer func() {
		if err := gz.Close(); err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Error closing gzip reader")
		}
	}()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var parsed, skipped int64
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != df.Columns {
			skipped++
			continue
		}
		fn(fields)
		parsed++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	metrics.DatasetRowsParsed.WithLabelValues(df.Name).Add(float64(parsed))
	metrics.DatasetRowsSkipped.WithLabelValues(df.Name).Add(float64(skipped))
	metrics.DatasetParseDuration.WithLabelValues(df.Name).Observe(time.Since(start).Seconds())

	logging.Info().
		Str("file", df.Name).
		Int64("rows", parsed).
		Int64("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset file parsed")
	return nil
}

// parseTitles loads title.basics, keeping only titleType "movie". The
// filter happens during the streaming pass to bound memory: the full
// title table is an order of magnitude larger than its movie subset.
func parseTitles(path string) ([]imdb.Title, error) {
	var titles []imdb.Title
	err := parseFile(path, imdb.TitleBasicsFile, func(f []string) {
		if f[1] != imdb.TitleTypeMovie {
			return
		}
		titles = append(titles, imdb.Title{
			ID:            f[0],
			TitleType:     f[1],
			PrimaryTitle:  f[2],
			OriginalTitle: f[3],
			IsAdult:       f[4] == "1",
			StartYear:     parseInt(f[5]),
			EndYear:       parseInt(f[6]),
			RuntimeMins:   parseInt(f[7]),
			Genres:        parseList(f[8]),
		})
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// parseCrew loads title.crew unfiltered.
func parseCrew(path string) ([]imdb.Crew, error) {
	var crew []imdb.Crew
	err := parseFile(path, imdb.TitleCrewFile, func(f []string) {
		crew = append(crew, imdb.Crew{
			TitleID:   f[0],
			Directors: parseList(f[1]),
			Writers:   parseList(f[2]),
		})
	})
	if err != nil {
		return nil, err
	}
	return crew, nil
}

// parseNames loads name.basics unfiltered.
func parseNames(path string) ([]imdb.Name, error) {
	var names []imdb.Name
	err := parseFile(path, imdb.NameBasicsFile, func(f []string) {
		names = append(names, imdb.Name{
			ID:          f[0],
			PrimaryName: f[1],
			BirthYear:   parseInt(f[2]),
			DeathYear:   parseInt(f[3]),
			Professions: parseList(f[4]),
			KnownFor:    parseList(f[5]),
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// parseInt converts a numeric field, mapping `\N` and garbage to 0.
func parseInt(s string) int {
	if s == imdb.MissingValue || s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseList splits a comma-separated identifier list, mapping `\N` and
// empty fields to nil.
func parseList(s string) []string {
	if s == imdb.MissingValue || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
