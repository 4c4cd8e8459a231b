package cleaning

import (
	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const stageFilterQuantity = "filter_quantity"

// FilterQuantity drops rows whose quantity is missing or not strictly
// positive. Coercion already turned every quantity into a float64 or the
// missing marker, so any other cell type here counts as missing too.
type FilterQuantity struct{}

func (FilterQuantity) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	out := t.Rows[:0]
	dropped := 0
	for _, r := range t.Rows {
		q, ok := r[ColQuantity].(float64)
		if !ok || q <= 0 {
			dropped++
			continue
		}
		out = append(out, r)
	}
	t.Rows = out
	if dropped > 0 {
		st.RowsDroppedQuantity += dropped
		rec.Errorf(stageFilterQuantity, "%d row(s) dropped: quantity missing or not positive", dropped)
	}
}
