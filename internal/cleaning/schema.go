package cleaning

import (
	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const stageReconcile = "reconcile"

// Reconcile makes sure every canonical column exists before coercion runs.
// Older exports predate the customer_id column, so a missing one is
// synthesized already filled with the default id. Any other missing column
// is synthesized empty and warned about; its cells stay missing for the
// later stages to resolve. Reconcile never fails.
type Reconcile struct{}

func (Reconcile) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	for _, col := range RequiredColumns() {
		if t.HasColumn(col) {
			continue
		}
		t.AddColumn(col)
		if col == ColCustomerID {
			for _, r := range t.Rows {
				r[col] = customerUnknown
			}
			st.CustomersDefaulted += t.Len()
			rec.Warnf(stageReconcile, "column %q missing; filled with %q", col, customerUnknown)
			continue
		}
		rec.Warnf(stageReconcile, "column %q missing; filled with missing values", col)
	}
}
