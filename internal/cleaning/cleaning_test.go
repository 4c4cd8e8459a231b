package cleaning

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/internal/rates"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// base returns a fully valid raw row; tests override the cells under test.
func base(over records.Record) records.Record {
	r := records.Record{
		ColOrderID:    "1001",
		ColDate:       "2024-01-05",
		ColProduct:    "Widget A",
		ColPrice:      "10",
		ColCurrency:   "USD",
		ColQuantity:   "2",
		ColCustomerID: "C-1",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func tbl(rows ...records.Record) *records.Table {
	t := records.NewTable(RequiredColumns())
	t.Rows = rows
	return t
}

func testRates(t *testing.T) rates.Table {
	t.Helper()
	rt, err := rates.New("USD", map[string]float64{"EUR": 0.9, "GBP": 0.8})
	if err != nil {
		t.Fatalf("rates.New: %v", err)
	}
	return rt
}

// rawTable builds the mixed-quality input shared by the end-to-end tests.
// Built fresh on every call so mutation by one run never leaks into another.
func rawTable() *records.Table {
	return tbl(
		// 0: valid USD row
		base(records.Record{}),
		// 1: exact duplicate of 0
		base(records.Record{}),
		// 2: lowercase padded currency, quantity absent
		base(records.Record{ColOrderID: "1002", ColDate: "2024-01-06", ColProduct: "Widget B", ColPrice: "9", ColCurrency: " eur ", ColQuantity: "", ColCustomerID: "C-2"}),
		// 3: missing price, same product as row 0
		base(records.Record{ColOrderID: "1003", ColDate: "2024-01-07", ColPrice: "", ColQuantity: "1", ColCustomerID: "C-3"}),
		// 4: unknown currency
		base(records.Record{ColOrderID: "1004", ColDate: "2024-01-08", ColProduct: "Gadget", ColPrice: "5", ColCurrency: "ZZZ", ColQuantity: "1", ColCustomerID: "C-4"}),
		// 5: unparseable quantity
		base(records.Record{ColOrderID: "1005", ColDate: "2024-01-09", ColProduct: "Gadget", ColPrice: "4", ColQuantity: "abc", ColCustomerID: "C-5"}),
		// 6: non-positive quantity
		base(records.Record{ColOrderID: "1006", ColDate: "2024-01-10", ColProduct: "Gadget", ColPrice: "4", ColQuantity: "-1", ColCustomerID: "C-6"}),
		// 7: bad date, GBP, missing customer
		base(records.Record{ColOrderID: "1007", ColDate: "not-a-date", ColProduct: "Widget B", ColPrice: "3", ColCurrency: "GBP", ColCustomerID: nil}),
	)
}

/*
TestCleaner_Clean_EndToEnd runs the full chain over a mixed-quality table and
verifies:
  - the exact duplicate disappears and the first occurrence survives,
  - rows with unparseable or non-positive quantities are gone,
  - surviving rows keep input order,
  - the absent quantity defaulted to 1 before conversion,
  - the missing price took the per-product mean of its product,
  - EUR and GBP prices divide by their rates, USD passes through,
  - the unknown currency zeroes price_usd but keeps the row,
  - the untouched currency cell keeps its raw spelling,
  - the missing customer id becomes UNKNOWN,
  - total_sale_usd is price_usd * quantity on every survivor,
  - Stats counts every change and the diagnostics name the unknown code.
*/
func TestCleaner_Clean_EndToEnd(t *testing.T) {
	t.Parallel()

	c := Cleaner{Rates: testRates(t)}
	out, st, diags := c.Clean(rawTable())

	wantCols := append(RequiredColumns(), ColPriceUSD, ColTotalUSD)
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Fatalf("columns = %v, want %v", out.Columns, wantCols)
	}

	var ids []string
	for _, r := range out.Rows {
		ids = append(ids, r[ColOrderID].(string))
	}
	wantIDs := []string{"1001", "1002", "1003", "1004", "1007"}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Fatalf("surviving order ids = %v, want %v", ids, wantIDs)
	}

	wantUSD := map[string]float64{
		"1001": 10,
		"1002": 9.0 / 0.9,
		"1003": 10, // Widget A group mean
		"1004": 0,  // unknown currency
		"1007": 3.0 / 0.8,
	}
	wantQty := map[string]float64{"1001": 2, "1002": 1, "1003": 1, "1004": 1, "1007": 2}
	for _, r := range out.Rows {
		id := r[ColOrderID].(string)
		if got := r[ColPriceUSD].(float64); got != wantUSD[id] {
			t.Fatalf("row %s price_usd = %v, want %v", id, got, wantUSD[id])
		}
		if got := r[ColQuantity].(float64); got != wantQty[id] {
			t.Fatalf("row %s quantity = %v, want %v", id, got, wantQty[id])
		}
		if got := r[ColTotalUSD].(float64); got != wantUSD[id]*wantQty[id] {
			t.Fatalf("row %s total_sale_usd = %v, want %v", id, got, wantUSD[id]*wantQty[id])
		}
	}

	byID := make(map[string]records.Record, len(out.Rows))
	for _, r := range out.Rows {
		byID[r[ColOrderID].(string)] = r
	}
	if got := byID["1002"][ColCurrency]; got != " eur " {
		t.Fatalf("currency cell = %q, want raw %q preserved", got, " eur ")
	}
	if got := byID["1007"][ColCustomerID]; got != "UNKNOWN" {
		t.Fatalf("customer_id = %v, want UNKNOWN", got)
	}
	if got := byID["1007"][ColDate]; got != nil {
		t.Fatalf("unparseable date = %v, want missing", got)
	}
	if got := byID["1001"][ColDate].(time.Time); !got.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v, want 2024-01-05", got)
	}

	wantStats := Stats{
		RowsIn:              8,
		RowsOut:             5,
		DuplicatesRemoved:   1,
		QuantitiesDefaulted: 1,
		RowsDroppedQuantity: 2,
		PricesImputedGroup:  1,
		CustomersDefaulted:  1,
		UnknownCurrencies:   1,
	}
	if st != wantStats {
		t.Fatalf("stats = %+v, want %+v", st, wantStats)
	}
	if got := st.RowsRemoved(); got != 3 {
		t.Fatalf("RowsRemoved() = %d, want 3", got)
	}

	var sawUnknown bool
	for _, d := range diags {
		if d.Stage == "convert_currency" && strings.Contains(d.Message, `"ZZZ"`) {
			sawUnknown = true
		}
	}
	if !sawUnknown {
		t.Fatalf("no diagnostic names the unknown currency: %v", diags)
	}
	if errs := countSeverity(diags, diag.SeverityError); errs != 1 {
		t.Fatalf("error diagnostics = %d, want 1 (the quantity drop)", errs)
	}
}

func countSeverity(ds []diag.Diagnostic, s diag.Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

/*
TestCleaner_Clean_Deterministic cleans two fresh copies of the same raw table
with the same rates and requires identical columns, rows, and stats.
*/
func TestCleaner_Clean_Deterministic(t *testing.T) {
	t.Parallel()

	c := Cleaner{Rates: testRates(t)}
	a, stA, _ := c.Clean(rawTable())
	b, stB, _ := c.Clean(rawTable())

	if !reflect.DeepEqual(a.Columns, b.Columns) {
		t.Fatalf("columns differ: %v vs %v", a.Columns, b.Columns)
	}
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Fatalf("rows differ:\n%#v\n%#v", a.Rows, b.Rows)
	}
	if stA != stB {
		t.Fatalf("stats differ: %+v vs %+v", stA, stB)
	}
}

/*
TestCleaner_Clean_EmptyTable feeds a zero-row table with all columns present:
the derived columns still appear, counts are zero, and nothing is diagnosed.
*/
func TestCleaner_Clean_EmptyTable(t *testing.T) {
	t.Parallel()

	c := Cleaner{Rates: testRates(t)}
	out, st, diags := c.Clean(tbl())

	if out.Len() != 0 {
		t.Fatalf("rows = %d, want 0", out.Len())
	}
	if !out.HasColumn(ColPriceUSD) || !out.HasColumn(ColTotalUSD) {
		t.Fatalf("derived columns missing: %v", out.Columns)
	}
	if st != (Stats{}) {
		t.Fatalf("stats = %+v, want zero", st)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", diags)
	}
}

/*
TestCleaner_Clean_MissingColumns starts from a table that only has order_id,
product, and quantity. The run must synthesize the other four columns, zero
every price (nothing to average), default every customer id, skip date
parsing, and still produce well-defined dollar values.
*/
func TestCleaner_Clean_MissingColumns(t *testing.T) {
	t.Parallel()

	in := records.NewTable([]string{ColOrderID, ColProduct, ColQuantity})
	in.Rows = []records.Record{
		{ColOrderID: "2001", ColProduct: "Widget A", ColQuantity: "2"},
		{ColOrderID: "2002", ColProduct: "Widget B", ColQuantity: "3"},
	}

	c := Cleaner{Rates: testRates(t)}
	out, st, diags := c.Clean(in)

	wantCols := []string{
		ColOrderID, ColProduct, ColQuantity,
		ColDate, ColPrice, ColCurrency, ColCustomerID,
		ColPriceUSD, ColTotalUSD,
	}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Fatalf("columns = %v, want %v", out.Columns, wantCols)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	for _, r := range out.Rows {
		if got := r[ColPrice].(float64); got != 0 {
			t.Fatalf("price = %v, want 0", got)
		}
		if got := r[ColPriceUSD].(float64); got != 0 {
			t.Fatalf("price_usd = %v, want 0", got)
		}
		if got := r[ColTotalUSD].(float64); got != 0 {
			t.Fatalf("total_sale_usd = %v, want 0", got)
		}
		if got := r[ColCustomerID]; got != "UNKNOWN" {
			t.Fatalf("customer_id = %v, want UNKNOWN", got)
		}
		if r[ColDate] != nil {
			t.Fatalf("date = %v, want missing", r[ColDate])
		}
	}
	if st.PricesImputedZero != 2 || st.CustomersDefaulted != 2 {
		t.Fatalf("stats = %+v, want 2 zero-imputed prices and 2 defaulted customers", st)
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics for synthesized columns, got none")
	}
}

/*
TestDeriveTotals_MissingOperands checks the guard: rows without price_usd or
quantity still get a 0 total instead of a missing cell.
*/
func TestDeriveTotals_MissingOperands(t *testing.T) {
	t.Parallel()

	in := tbl(
		records.Record{ColPriceUSD: 2.5, ColQuantity: 4.0},
		records.Record{ColPriceUSD: nil, ColQuantity: 4.0},
		records.Record{ColPriceUSD: 2.5, ColQuantity: nil},
	)
	var st Stats
	var rec diag.Recorder
	DeriveTotals{}.Apply(in, &st, &rec)

	want := []float64{10, 0, 0}
	for i, r := range in.Rows {
		if got := r[ColTotalUSD].(float64); got != want[i] {
			t.Fatalf("row %d total = %v, want %v", i, got, want[i])
		}
	}
	if !in.HasColumn(ColTotalUSD) {
		t.Fatalf("total column not appended: %v", in.Columns)
	}
}

/*
BenchmarkCleaner_Clean measures a full run over 10k rows with a realistic mix
of duplicates, missing prices, and foreign currencies.
*/
func BenchmarkCleaner_Clean(b *testing.B) {
	rt, err := rates.New("USD", map[string]float64{"EUR": 0.9, "GBP": 0.8, "JPY": 150})
	if err != nil {
		b.Fatalf("rates.New: %v", err)
	}
	currencies := []string{"USD", "EUR", "GBP", "JPY", "usd"}

	const n = 10000
	in := records.NewTable(RequiredColumns())
	in.Rows = make([]records.Record, 0, n)
	for i := 0; i < n; i++ {
		if i%13 == 12 {
			// exact duplicate of the previous row
			in.Rows = append(in.Rows, in.Rows[len(in.Rows)-1].Clone())
			continue
		}
		price := strconv.Itoa(5 + i%40)
		if i%17 == 0 {
			price = "" // imputed later
		}
		in.Rows = append(in.Rows, records.Record{
			ColOrderID:    strconv.Itoa(1000 + i),
			ColDate:       "2024-01-05",
			ColProduct:    "Product " + strconv.Itoa(i%25),
			ColPrice:      price,
			ColCurrency:   currencies[i%len(currencies)],
			ColQuantity:   strconv.Itoa(1 + i%5),
			ColCustomerID: "C-" + strconv.Itoa(i%300),
		})
	}

	c := Cleaner{Rates: rt}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Clean(in.Clone())
	}
}
