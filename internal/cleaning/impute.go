package cleaning

import (
	"fmt"
	"strings"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const stageImpute = "impute"

// Impute fills the gaps coercion left behind.
//
// Missing prices fall through three tiers: the mean of the known prices for
// the same product, then the mean of all known prices, then 0. When not a
// single price is known there is nothing to average, so the whole column
// goes to 0 with a warning. Missing or blank customer ids become the fixed
// default id.
type Impute struct{}

func (Impute) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	type acc struct {
		sum float64
		n   int
	}
	byProduct := make(map[string]*acc)
	var total acc
	for _, r := range t.Rows {
		p, ok := r[ColPrice].(float64)
		if !ok {
			continue
		}
		if key, keyed := productKey(r); keyed {
			a := byProduct[key]
			if a == nil {
				a = &acc{}
				byProduct[key] = a
			}
			a.sum += p
			a.n++
		}
		total.sum += p
		total.n++
	}

	if total.n == 0 {
		zeroed := 0
		for _, r := range t.Rows {
			if _, ok := r[ColPrice].(float64); !ok {
				r[ColPrice] = 0.0
				zeroed++
			}
		}
		if zeroed > 0 {
			st.PricesImputedZero += zeroed
			rec.Warnf(stageImpute, "price column has no values; %d price(s) set to 0", zeroed)
		}
	} else {
		globalMean := total.sum / float64(total.n)
		for _, r := range t.Rows {
			if _, ok := r[ColPrice].(float64); ok {
				continue
			}
			key, keyed := productKey(r)
			if a := byProduct[key]; keyed && a != nil {
				r[ColPrice] = a.sum / float64(a.n)
				st.PricesImputedGroup++
				continue
			}
			r[ColPrice] = globalMean
			st.PricesImputedGlobal++
		}
	}

	defaulted := 0
	for _, r := range t.Rows {
		v := r[ColCustomerID]
		s, isStr := v.(string)
		if v == nil || (isStr && strings.TrimSpace(s) == "") {
			r[ColCustomerID] = customerUnknown
			defaulted++
		}
	}
	if defaulted > 0 {
		st.CustomersDefaulted += defaulted
		rec.Warnf(stageImpute, "%d missing customer id(s) set to %q", defaulted, customerUnknown)
	}
}

// productKey groups rows for the per-product mean. A missing product is not
// a group: rows without one draw from the global mean instead of pooling
// with each other.
func productKey(r records.Record) (string, bool) {
	switch v := r[ColProduct].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}
