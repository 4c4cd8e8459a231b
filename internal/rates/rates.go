// Package rates holds the exchange-rate table the cleaning pipeline converts
// prices with. The table is fetched once per run, validated up front, and
// never mutated afterwards, so stages can share it freely.
package rates

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Table is an immutable set of exchange rates relative to one base currency.
// A rate is expressed as currency units per one unit of the base: a USD
// table with EUR at 0.9 means one dollar buys 0.9 euro, so a euro price
// divides by the rate to become dollars.
type Table struct {
	base  string
	rates map[string]float64
}

// New builds a validated table. Codes are trimmed and uppercased. An empty
// map, a blank code, or a rate that is not strictly positive and finite is
// rejected: a bad table must stop the run before any row is converted.
func New(base string, raw map[string]float64) (Table, error) {
	if len(raw) == 0 {
		return Table{}, fmt.Errorf("rates: empty rate table")
	}
	out := make(map[string]float64, len(raw))
	for code, rate := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return Table{}, fmt.Errorf("rates: blank currency code")
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return Table{}, fmt.Errorf("rates: invalid rate %v for %s", rate, code)
		}
		out[code] = rate
	}
	return Table{base: strings.ToUpper(strings.TrimSpace(base)), rates: out}, nil
}

// Base returns the currency the rates are relative to.
func (t Table) Base() string { return t.base }

// Len returns the number of currencies in the table.
func (t Table) Len() int { return len(t.rates) }

// Lookup returns the rate for code, matching after trimming and uppercasing.
// The second result reports whether the code is known.
func (t Table) Lookup(code string) (float64, bool) {
	r, ok := t.rates[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Codes returns the known currency codes in sorted order.
func (t Table) Codes() []string {
	out := make([]string, 0, len(t.rates))
	for c := range t.rates {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
