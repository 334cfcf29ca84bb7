// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package imdb defines the record types and dataset descriptors for the
// three public IMDb datasets consumed by Cineaste.
//
// The datasets are published daily at https://datasets.imdbws.com as
// gzip-compressed tab-separated files with a header row. The literal
// token `\N` marks an absent value. Schemas are documented at
// https://developer.imdb.com/non-commercial-datasets/.
package imdb

// MissingValue is the literal token IMDb uses for absent fields.
const MissingValue = `\N`

// TitleTypeMovie is the titleType value Cineaste restricts titles to.
// Shorts, TV episodes, series, and video games are excluded.
const TitleTypeMovie = "movie"

// DatasetFile describes one remote dataset file and its expected schema.
type DatasetFile struct {
	// Name is the file name under both the remote base URL and the
	// local cache directory (e.g. "title.basics.tsv.gz").
	Name string

	// Columns is the exact column count of the published schema.
	// Rows with any other column count are malformed and skipped.
	Columns int
}

// The three dataset files Cineaste requires. Column counts match the
// published schemas and are used to reject malformed rows during parsing.
var (
	TitleBasicsFile = DatasetFile{Name: "title.basics.tsv.gz", Columns: 9}
	TitleCrewFile   = DatasetFile{Name: "title.crew.tsv.gz", Columns: 3}
	NameBasicsFile  = DatasetFile{Name: "name.basics.tsv.gz", Columns: 6}
)

// Files returns the required dataset files in download order.
func Files() []DatasetFile {
	return []DatasetFile{TitleBasicsFile, TitleCrewFile, NameBasicsFile}
}

// DefaultBaseURL is the canonical host for the public IMDb datasets.
const DefaultBaseURL = "https://datasets.imdbws.com"

// Title is one row of title.basics.tsv, restricted by the loader to
// titleType == "movie".
type Title struct {
	ID            string   `json:"id"`             // tconst, e.g. "tt0050083"
	TitleType     string   `json:"title_type"`     // always "movie" after loading
	PrimaryTitle  string   `json:"primary_title"`  //
	OriginalTitle string   `json:"original_title"` //
	IsAdult       bool     `json:"is_adult"`       //
	StartYear     int      `json:"start_year"`     // 0 when absent
	EndYear       int      `json:"end_year"`       // 0 when absent (movies have none)
	RuntimeMins   int      `json:"runtime_mins"`   // 0 when absent
	Genres        []string `json:"genres"`         // nil when absent
}

// Crew is one row of title.crew.tsv: the director and writer identifiers
// for a single title. Directors and Writers are nil when the source field
// is `\N`.
type Crew struct {
	TitleID   string   `json:"title_id"`  // tconst, matches Title.ID
	Directors []string `json:"directors"` // nconst list, source order
	Writers   []string `json:"writers"`   // nconst list, source order
}

// Name is one row of name.basics.tsv: one person.
type Name struct {
	ID          string   `json:"id"`           // nconst, e.g. "nm0000033"
	PrimaryName string   `json:"primary_name"` //
	BirthYear   int      `json:"birth_year"`   // 0 when absent
	DeathYear   int      `json:"death_year"`   // 0 when absent
	Professions []string `json:"professions"`  // nil when absent
	KnownFor    []string `json:"known_for"`    // tconst list, nil when absent
}
