// Package records defines the in-memory table model shared by parsers, the
// cleaning pipeline, and the output sinks.
//
// A Record is one row: a map from column name to cell value. A cell holds one
// of a small set of states:
//
//   - nil: the missing marker, no value present. Distinct from 0 and from ""
//     so that later stages can decide how to resolve it.
//   - string: raw text as parsed from the input.
//   - float64: a coerced numeric value.
//   - time.Time: a coerced calendar date.
//
// A Table couples rows with an explicit column order. Maps do not preserve
// order, and the cleaned output must keep the input's column layout (with
// synthesized and derived columns appended), so the order lives here.
package records

// Record is a single row keyed by column name. A missing key and a nil value
// are equivalent: both mean the cell is missing.
type Record map[string]any

// Clone returns a shallow copy of the record. Cell values are immutable
// scalars, so a shallow copy is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of rows. Columns lists every column in output
// order; Rows hold the data. Stages mutate a table in place: they may coerce
// cells, drop rows, and append columns, but never reorder surviving rows.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable returns an empty table with the given column order. The slice is
// copied so callers can reuse theirs.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is present in the column list.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the column list unless it is already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Clone returns a deep copy of the table: fresh column slice, fresh row
// slice, fresh record maps.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}
