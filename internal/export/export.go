// Package export writes the cleaned sales table to disk as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// FileName returns the cleaned-data name for a run date.
func FileName(now time.Time) string {
	return "cleaned_sales_data_" + now.Format("20060102") + ".csv"
}

// WriteFile writes the table into dir, creating it if needed, and returns
// the file path. An empty dir means the working directory. The file name
// carries the run date.
func WriteFile(dir string, t *records.Table, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, FileName(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := Write(f, t); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", path, err)
	}
	return path, nil
}

// Write emits the table as CSV. The header is the table's column order;
// missing cells are empty, dates ISO, floats in minimal round-trip form.
func Write(w io.Writer, t *records.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	row := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, col := range t.Columns {
			row[i] = cellString(r[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellString renders one cell for CSV output.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}
