package cleaning

import (
	"math"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// DeriveTotals appends total_sale_usd = price_usd * quantity to every row.
// Earlier stages guarantee both operands; a row that somehow lacks one still
// gets a well-defined 0 rather than a missing total.
type DeriveTotals struct{}

func (DeriveTotals) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	t.AddColumn(ColTotalUSD)
	for _, r := range t.Rows {
		usd, _ := r[ColPriceUSD].(float64)
		qty, _ := r[ColQuantity].(float64)
		total := usd * qty
		if math.IsNaN(total) || math.IsInf(total, 0) {
			total = 0
		}
		r[ColTotalUSD] = total
	}
}
