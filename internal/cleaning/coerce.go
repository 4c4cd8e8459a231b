package cleaning

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const (
	stageCoerceNumbers = "coerce_numbers"
	stageCoerceDates   = "coerce_dates"
)

// parseOutcome classifies one cell parse. Keeping the three cases explicit
// lets each caller pick its own fallback instead of folding empty cells and
// garbage into the same bucket.
type parseOutcome int

const (
	parseOK parseOutcome = iota
	parseMissing
	parseMalformed
)

// parseFloat reads a cell as a float64. Already-coerced floats pass through;
// strings parse after trimming; NaN and infinities count as malformed so no
// non-finite number ever enters the table.
func parseFloat(v any) (float64, parseOutcome) {
	switch t := v.(type) {
	case nil:
		return 0, parseMissing
	case float64:
		return t, parseOK
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, parseMissing
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, parseMalformed
		}
		return f, parseOK
	default:
		return 0, parseMalformed
	}
}

// CoerceNumbers turns the price and quantity columns into float64 cells.
//
// A price that is empty or fails to parse becomes the missing marker, never
// 0: the imputer distinguishes "no price" from "free". Quantity splits the
// two cases. An absent quantity means a single unit in practice and defaults
// to 1; a value that is present but unparseable stays missing so the row
// filter removes the row instead of inventing a unit for garbage.
type CoerceNumbers struct{}

func (CoerceNumbers) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	badPrice, badQty := 0, 0
	for _, r := range t.Rows {
		switch f, out := parseFloat(r[ColPrice]); out {
		case parseOK:
			r[ColPrice] = f
		case parseMissing:
			r[ColPrice] = nil
		case parseMalformed:
			r[ColPrice] = nil
			badPrice++
		}
		switch f, out := parseFloat(r[ColQuantity]); out {
		case parseOK:
			r[ColQuantity] = f
		case parseMissing:
			r[ColQuantity] = 1.0
			st.QuantitiesDefaulted++
		case parseMalformed:
			r[ColQuantity] = nil
			badQty++
		}
	}
	if badPrice > 0 {
		rec.Warnf(stageCoerceNumbers, "%d unparseable price value(s) treated as missing", badPrice)
	}
	if badQty > 0 {
		rec.Warnf(stageCoerceNumbers, "%d unparseable quantity value(s) treated as missing", badQty)
	}
}

// DefaultDateLayouts lists the layouts tried, in order, when parsing the
// date column. ISO forms come first; slash and day-month forms cover the
// exports seen so far.
func DefaultDateLayouts() []string {
	return []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
	}
}

// CoerceDates parses the date column into time.Time cells. A cell that
// matches no layout becomes missing. When the whole column is empty the
// stage skips parsing and warns once: producing no dates beats guessing a
// format from nothing.
type CoerceDates struct {
	// Layouts overrides DefaultDateLayouts when non-empty.
	Layouts []string
}

func (c CoerceDates) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts()
	}

	hasValue := false
	for _, r := range t.Rows {
		switch v := r[ColDate].(type) {
		case nil:
		case string:
			if strings.TrimSpace(v) != "" {
				hasValue = true
			}
		default:
			hasValue = true
		}
		if hasValue {
			break
		}
	}
	if !hasValue {
		// Every cell is nil or blank; normalize the blanks too.
		for _, r := range t.Rows {
			r[ColDate] = nil
		}
		if t.Len() > 0 {
			rec.Warnf(stageCoerceDates, "date column has no values; date parsing skipped")
		}
		return
	}

	bad := 0
	for _, r := range t.Rows {
		switch v := r[ColDate].(type) {
		case nil:
		case time.Time:
			// already coerced
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				r[ColDate] = nil
				continue
			}
			if ts, ok := parseDate(s, layouts); ok {
				r[ColDate] = ts
			} else {
				r[ColDate] = nil
				bad++
			}
		default:
			r[ColDate] = nil
			bad++
		}
	}
	if bad > 0 {
		rec.Warnf(stageCoerceDates, "%d unparseable date value(s) treated as missing", bad)
	}
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	for _, l := range layouts {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
