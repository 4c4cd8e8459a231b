// Package parser turns raw input bytes into the in-memory sales table.
//
// Each format lives in its own subpackage (csv, xlsx, json); they share the
// header normalization and the format detection defined here. Parsers are
// tolerant of bad rows (skip and count) but strict about unreadable
// containers: no header or a malformed document fails the run.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Parser reads one tabular document into a table. The int reports how many
// malformed rows were skipped.
type Parser interface {
	Parse(r io.Reader) (*records.Table, int, error)
}

// Format identifies an input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat converts a config string into a Format. Empty means detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "json", "ndjson":
		return FormatJSON, nil
	case "", "auto":
		return "", nil
	}
	return "", fmt.Errorf("parser: unknown format %q", s)
}

// Detect guesses the format from the input name and, when the extension is
// inconclusive, the first bytes: xlsx workbooks open with the zip magic,
// JSON documents with '{' or '['; everything else parses as CSV.
func Detect(name string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(stripQuery(name))) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".json", ".ndjson", ".jsonl":
		return FormatJSON
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(head, []byte("PK\x03\x04")) {
		return FormatXLSX
	}
	for _, b := range head {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return FormatJSON
		}
		break
	}
	return FormatCSV
}

// stripQuery cuts query and fragment off a name so URL inputs detect by
// their path extension.
func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}

// accentFolder decomposes, removes nonspacing marks, and recomposes, so
// accented header text folds to plain ASCII letters.
var accentFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeHeader converts arbitrary header text into a lowercase ASCII
// identifier:
//  1. lowercase
//  2. strip accents (NFD, remove Mn, NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "col" if nothing is left
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	ascii, _, _ := transform.String(accentFolder, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}

// NormalizeHeaders normalizes every header and makes the results unique.
// remap overrides the default normalization for exact raw names (after
// trimming); a repeated result gets a numeric suffix in encounter order.
func NormalizeHeaders(hs []string, remap map[string]string) []string {
	out := make([]string, len(hs))
	seen := make(map[string]int, len(hs))
	for i, raw := range hs {
		h := strings.TrimSpace(raw)
		if m, ok := remap[h]; ok && m != "" {
			h = m
		} else {
			h = NormalizeHeader(h)
		}
		if seen[h] == 0 {
			seen[h] = 1
		} else {
			seen[h]++
			cand := fmt.Sprintf("%s_%d", h, seen[h])
			for seen[cand] > 0 {
				seen[h]++
				cand = fmt.Sprintf("%s_%d", h, seen[h])
			}
			seen[cand] = 1
			h = cand
		}
		out[i] = h
	}
	return out
}
