// Package xlsx reads one worksheet of an Excel workbook into the sales table.
// GetRows trims trailing empty cells, so short rows are padded back to the
// header width with missing values; rows wider than the header are skipped
// and counted.
package xlsx

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rajpat739407/Sales-Data-Processor/internal/parser"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Options configures the workbook parser. All fields are optional.
type Options struct {
	// Sheet selects the worksheet by name. Empty means the first sheet.
	Sheet string

	// TrimSpace trims leading and trailing spaces from each cell.
	TrimSpace bool

	// HeaderMap overrides the default header normalization for exact raw
	// header names, e.g. {"Order No": "order_id"}.
	HeaderMap map[string]string
}

// Parser parses a workbook according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

const skipLogLimit = 400

// Parse loads the workbook, reads the selected sheet and returns the table
// plus the number of rows skipped for being wider than the header. The first
// sheet row is the header; a workbook without one is an error.
func (p *Parser) Parse(r io.Reader) (*records.Table, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, 0, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("sheet %q has no header row", sheet)
	}

	headers := parser.NormalizeHeaders(rows[0], p.opt.HeaderMap)
	t := records.NewTable(headers)
	skipped := 0

	for i, row := range rows[1:] {
		// An entirely empty row comes back zero length.
		if len(row) == 0 {
			continue
		}
		if len(row) > len(headers) {
			if skipped < skipLogLimit {
				log.Printf("skipping row %d: incorrect number of fields (expected %d, got %d)",
					i+2, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(headers))
		for j, col := range headers {
			var val string
			if j < len(row) {
				val = row[j]
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[col] = emptyToNil(val)
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
