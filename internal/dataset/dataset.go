// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package dataset parses the cached IMDb files into in-memory tables and
// memoizes the result for the lifetime of the process.
//
// Parsing is the expensive step of the whole pipeline (the three files
// decompress to several GB of TSV), so the Store memoizes on the identity
// of the input files: path, size, and modification time. Repeated loads
// within a process return the same tables; a re-downloaded file changes
// the fingerprint and forces a re-parse.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/tomtom215/cineaste/internal/imdb"
)

// Paths locates the three cached dataset files.
type Paths struct {
	Titles string
	Crew   string
	Names  string
}

// Tables holds the parsed datasets. Titles is already restricted to
// titleType "movie"; Crew and Names are unfiltered.
type Tables struct {
	Titles []imdb.Title
	Crew   []imdb.Crew
	Names  []imdb.Name
}

// Fingerprint derives a stable identity for the current dataset files
// from their sizes and modification times. Hashing the ~1GB of content
// itself would cost a full extra read for no benefit: the fetcher only
// ever replaces files atomically, so size+mtime is sufficient identity.
func Fingerprint(p Paths) (string, error) {
	h := sha256.New()
	for _, path := range []string{p.Titles, p.Crew, p.Names} {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		h.Write([]byte(path))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
