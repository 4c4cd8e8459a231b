// Package cleaning implements the sales-data cleaning pipeline.
//
// A raw table flows through a fixed chain of stages, each finishing before
// the next starts:
//
//	Reconcile -> CoerceNumbers -> DeDup -> CoerceDates -> Impute ->
//	FilterQuantity -> ConvertCurrency -> DeriveTotals
//
// Stages mutate the table in place. Recoverable data problems never abort a
// run: the stage applies its documented default, bumps the matching Stats
// counter, and records a diagnostic. Every row that survives carries the
// seven canonical columns plus price_usd and total_sale_usd, a strictly
// positive quantity, and well-defined dollar values.
package cleaning

import (
	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/internal/rates"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Canonical column names. The seven input columns are required on every raw
// table; the two derived columns are appended by the pipeline.
const (
	ColOrderID    = "order_id"
	ColDate       = "date"
	ColProduct    = "product"
	ColPrice      = "price"
	ColCurrency   = "currency"
	ColQuantity   = "quantity"
	ColCustomerID = "customer_id"

	ColPriceUSD = "price_usd"
	ColTotalUSD = "total_sale_usd"
)

// customerUnknown fills missing customer ids and synthesized customer_id
// columns.
const customerUnknown = "UNKNOWN"

// RequiredColumns returns the seven canonical input columns in their
// canonical order.
func RequiredColumns() []string {
	return []string{
		ColOrderID, ColDate, ColProduct, ColPrice,
		ColCurrency, ColQuantity, ColCustomerID,
	}
}

// Stage is one step of the pipeline. Apply mutates the table in place,
// bumps st for anything it changed, and records findings on rec. Both
// pointers must be non-nil. Stages run single-threaded.
type Stage interface {
	Apply(t *records.Table, st *Stats, rec *diag.Recorder)
}

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs every stage in order against the same table.
func (c Chain) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	for _, s := range c {
		s.Apply(t, st, rec)
	}
}

// Stats counts what the pipeline changed in one run.
type Stats struct {
	RowsIn  int
	RowsOut int

	DuplicatesRemoved   int
	QuantitiesDefaulted int
	RowsDroppedQuantity int
	PricesImputedGroup  int
	PricesImputedGlobal int
	PricesImputedZero   int
	CustomersDefaulted  int
	UnknownCurrencies   int
}

// RowsRemoved returns how many input rows did not survive the run.
func (s Stats) RowsRemoved() int { return s.RowsIn - s.RowsOut }

// Cleaner runs the fixed stage order against a raw table.
type Cleaner struct {
	// Rates converts non-USD prices. A zero-value table turns every non-USD
	// currency into an unknown code, so callers should pass a fetched and
	// validated table.
	Rates rates.Table

	// DateLayouts overrides DefaultDateLayouts when non-empty.
	DateLayouts []string
}

// Clean mutates t through the full pipeline and returns it together with the
// change counts and the diagnostics the stages recorded. The same raw table
// and rate table always produce the same cleaned table.
func (c Cleaner) Clean(t *records.Table) (*records.Table, Stats, []diag.Diagnostic) {
	var (
		st  Stats
		rec diag.Recorder
	)
	st.RowsIn = t.Len()
	chain := Chain{
		Reconcile{},
		CoerceNumbers{},
		DeDup{},
		CoerceDates{Layouts: c.DateLayouts},
		Impute{},
		FilterQuantity{},
		ConvertCurrency{Rates: c.Rates},
		DeriveTotals{},
	}
	chain.Apply(t, &st, &rec)
	st.RowsOut = t.Len()
	return t, st, rec.All()
}
