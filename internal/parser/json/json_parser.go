// Package json reads JSON exports into the sales table.
//
// Three input shapes are accepted:
//
//   - a top-level array of objects: [ {...}, {...} ]
//   - an envelope object whose largest array-of-objects field holds the
//     records: { "meta": {...}, "records": [ {...} ] }
//   - a stream of objects, one per value (NDJSON), including values that
//     trail an initial array or envelope
//
// Object keys are normalized the same way CSV headers are; values that are
// not objects where an object is expected are skipped and counted.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rajpat739407/Sales-Data-Processor/internal/parser"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Options configures the JSON parser. All fields are optional.
type Options struct {
	// ColumnOrder fixes the relative order of known columns in the resulting
	// table. Keys found in the data but not listed are appended in sorted
	// order; listed columns never observed in the data are left out.
	ColumnOrder []string

	// HeaderMap overrides the default key normalization for exact raw keys,
	// e.g. {"Order No": "order_id"}.
	HeaderMap map[string]string
}

// Parser parses JSON input according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

const skipLogLimit = 400

// Parse consumes the document and returns the table plus the number of
// elements skipped for not being objects. Numbers become float64, empty
// strings and nulls become missing values, nested structures keep their JSON
// text. Input with no JSON value at all is an error.
func (p *Parser) Parse(r io.Reader) (*records.Table, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, 0, fmt.Errorf("decode json: empty input")
		}
		return nil, 0, fmt.Errorf("decode json: %w", err)
	}

	var rows []records.Record
	skipped := 0
	ord := 0

	handle := func(v any) {
		ord++
		obj, ok := v.(map[string]any)
		if !ok {
			if skipped < skipLogLimit {
				log.Printf("skipping element %d: not an object (got %T)", ord, v)
			}
			skipped++
			return
		}
		rows = append(rows, p.record(obj))
	}

	switch v := root.(type) {
	case []any:
		for _, elem := range v {
			handle(elem)
		}
	case map[string]any:
		if objs := recordsSlice(v); objs != nil {
			for _, obj := range objs {
				handle(obj)
			}
		} else {
			handle(v)
		}
	default:
		return nil, 0, fmt.Errorf("decode json: unsupported top-level value %T", v)
	}

	// NDJSON style trailing values share the stream with the root.
	for {
		var next any
		if err := dec.Decode(&next); err != nil {
			if err == io.EOF {
				break
			}
			return nil, skipped, fmt.Errorf("decode json value %d: %w", ord+1, err)
		}
		handle(next)
	}

	t := records.NewTable(p.columns(rows))
	t.Rows = rows
	return t, skipped, nil
}

// record converts one JSON object into a row with normalized keys. Keys are
// visited in sorted order so a normalization collision resolves the same way
// on every run.
func (p *Parser) record(obj map[string]any) records.Record {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := make(records.Record, len(obj))
	for _, k := range keys {
		rec[p.columnName(k)] = cellValue(obj[k])
	}
	return rec
}

func (p *Parser) columnName(raw string) string {
	if mapped, ok := p.opt.HeaderMap[strings.TrimSpace(raw)]; ok && mapped != "" {
		return mapped
	}
	return parser.NormalizeHeader(raw)
}

// columns assembles the table columns: ColumnOrder entries that occur in the
// data first, then every other observed key in sorted order.
func (p *Parser) columns(rows []records.Record) []string {
	present := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}

	cols := make([]string, 0, len(present))
	for _, c := range p.opt.ColumnOrder {
		if present[c] {
			present[c] = false
			cols = append(cols, c)
		}
	}
	var extra []string
	for k, keep := range present {
		if keep {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// cellValue maps a decoded JSON value onto the cell types the pipeline
// understands.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// recordsSlice unwraps an envelope object without hard-coding field names:
// among the top-level fields that are arrays of objects it picks the largest,
// scanning keys in sorted order so ties break the same way on every run. Nil
// elements are tolerated; any other non-object element disqualifies the
// field. Returns nil when no field qualifies.
func recordsSlice(root map[string]any) []map[string]any {
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best []map[string]any
	for _, k := range keys {
		rawSlice, ok := root[k].([]any)
		if !ok || len(rawSlice) == 0 {
			continue
		}
		objs := make([]map[string]any, 0, len(rawSlice))
		valid := true
		for _, elem := range rawSlice {
			if elem == nil {
				continue
			}
			m, ok := elem.(map[string]any)
			if !ok {
				valid = false
				break
			}
			objs = append(objs, m)
		}
		if valid && len(objs) > len(best) {
			best = objs
		}
	}
	return best
}
