package cleaning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const stageDeDup = "dedup"

// DeDup removes rows that duplicate an earlier row in every column. The
// first occurrence wins and survivors keep their input order. Two missing
// cells compare equal.
//
// Rows are fingerprinted with xxh3 over a canonical cell encoding and
// bucketed by hash; rows in the same bucket are confirmed by comparing the
// encoded keys, so equality never rests on the hash alone.
type DeDup struct{}

func (DeDup) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	if t.Len() < 2 {
		return
	}
	seen := make(map[uint64][]string, t.Len())
	out := t.Rows[:0]
	removed := 0
	for _, r := range t.Rows {
		key := rowKey(t.Columns, r)
		sum := xxh3.HashString(key)
		bucket := seen[sum]
		dup := false
		for _, k := range bucket {
			if k == key {
				dup = true
				break
			}
		}
		if dup {
			removed++
			continue
		}
		seen[sum] = append(bucket, key)
		out = append(out, r)
	}
	t.Rows = out
	if removed > 0 {
		st.DuplicatesRemoved += removed
		rec.Warnf(stageDeDup, "%d duplicate row(s) removed", removed)
	}
}

// rowKey encodes every cell of r in column order, '\x1f' separated. Cells
// carry a type tag so a numeric 10 and the text "10" never collide; nil
// encodes to a fixed marker so missing cells compare equal.
func rowKey(columns []string, r records.Record) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch v := r[col].(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteByte('s')
			b.WriteString(v)
		case float64:
			b.WriteByte('f')
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case time.Time:
			b.WriteByte('t')
			b.WriteString(v.Format(time.RFC3339Nano))
		default:
			b.WriteByte('?')
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
