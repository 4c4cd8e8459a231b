// Package csv reads a header-led CSV export into the sales table. Rows that
// fail to parse or do not match the header width are skipped and counted,
// never fatal; a missing or unreadable header is fatal because nothing
// downstream can name the columns.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rajpat739407/Sales-Data-Processor/internal/parser"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading and trailing spaces from each cell.
	TrimSpace bool

	// HeaderMap overrides the default header normalization for exact raw
	// header names, e.g. {"Order No": "order_id"}.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps per-row skip logging so a rotten file cannot flood the
// log; the total always comes back in the skipped count.
const skipLogLimit = 400

// Parse consumes the document and returns the table plus the number of rows
// skipped for parse errors or width mismatches. Empty cells become missing
// values. Column order follows the header.
func (p *Parser) Parse(r io.Reader) (*records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced here against the header, row by row.
	cr.FieldsPerRecord = -1

	rawHeader, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := parser.NormalizeHeaders(stripHeaderBOM(rawHeader), p.opt.HeaderMap)

	t := records.NewTable(headers)
	skipped := 0

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("skipping row %d: incorrect number of fields (expected %d, got %d)",
					line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, skipped, nil
}

// emptyToNil converts an empty string to the missing marker.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
