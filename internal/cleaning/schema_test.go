package cleaning

import (
	"reflect"
	"testing"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

/*
TestReconcile_SynthesizesCustomerID verifies that a table without the
customer_id column gets one appended with every cell already set to UNKNOWN,
counted as defaulted customers, with a single warning.
*/
func TestReconcile_SynthesizesCustomerID(t *testing.T) {
	t.Parallel()

	in := records.NewTable([]string{ColOrderID, ColDate, ColProduct, ColPrice, ColCurrency, ColQuantity})
	in.Rows = []records.Record{
		{ColOrderID: "1", ColPrice: "10"},
		{ColOrderID: "2", ColPrice: "20"},
	}

	var st Stats
	var rec diag.Recorder
	Reconcile{}.Apply(in, &st, &rec)

	if !in.HasColumn(ColCustomerID) {
		t.Fatalf("customer_id column not added: %v", in.Columns)
	}
	for i, r := range in.Rows {
		if r[ColCustomerID] != "UNKNOWN" {
			t.Fatalf("row %d customer_id = %v, want UNKNOWN", i, r[ColCustomerID])
		}
	}
	if st.CustomersDefaulted != 2 {
		t.Fatalf("CustomersDefaulted = %d, want 2", st.CustomersDefaulted)
	}
	if rec.Count() != 1 {
		t.Fatalf("diagnostics = %v, want exactly one warning", rec.All())
	}
}

/*
TestReconcile_SynthesizesOtherColumns verifies that any other missing
required column is appended with cells left missing, one warning per column,
and that cells stay resolvable downstream (nil, not a filler string).
*/
func TestReconcile_SynthesizesOtherColumns(t *testing.T) {
	t.Parallel()

	in := records.NewTable([]string{ColOrderID})
	in.Rows = []records.Record{{ColOrderID: "1"}}

	var st Stats
	var rec diag.Recorder
	Reconcile{}.Apply(in, &st, &rec)

	want := append(
		[]string{ColOrderID},
		ColDate, ColProduct, ColPrice, ColCurrency, ColQuantity, ColCustomerID,
	)
	if !reflect.DeepEqual(in.Columns, want) {
		t.Fatalf("columns = %v, want %v", in.Columns, want)
	}
	for _, col := range []string{ColDate, ColProduct, ColPrice, ColCurrency, ColQuantity} {
		if v := in.Rows[0][col]; v != nil {
			t.Fatalf("synthesized %s = %v, want missing", col, v)
		}
	}
	// five missing-value columns plus the customer_id fill
	if rec.Count() != 6 {
		t.Fatalf("diagnostics = %d, want 6: %v", rec.Count(), rec.All())
	}
	if rec.CountSeverity(diag.SeverityError) != 0 {
		t.Fatalf("reconcile must never error: %v", rec.All())
	}
}

/*
TestReconcile_AllPresent verifies the no-op path: nothing added, nothing
recorded, extra columns untouched.
*/
func TestReconcile_AllPresent(t *testing.T) {
	t.Parallel()

	cols := append(RequiredColumns(), "region")
	in := records.NewTable(cols)
	in.Rows = []records.Record{base(records.Record{"region": "EMEA"})}

	var st Stats
	var rec diag.Recorder
	Reconcile{}.Apply(in, &st, &rec)

	if !reflect.DeepEqual(in.Columns, cols) {
		t.Fatalf("columns changed: %v", in.Columns)
	}
	if rec.Count() != 0 || st != (Stats{}) {
		t.Fatalf("expected no-op, got stats %+v diags %v", st, rec.All())
	}
}
