package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/internal/rates"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

const stageConvertCurrency = "convert_currency"

// ConvertCurrency derives price_usd on every row, each row independently.
//
// The currency cell is trimmed and uppercased for the lookup only; the
// stored cell stays exactly as parsed. A missing or blank currency is
// assumed to be USD. A known code divides the price by its rate; an unknown
// code zeroes the dollar price and warns, keeping the row. Anything that
// would produce a non-finite number degrades to 0 instead of aborting the
// batch.
type ConvertCurrency struct {
	Rates rates.Table
}

func (c ConvertCurrency) Apply(t *records.Table, st *Stats, rec *diag.Recorder) {
	t.AddColumn(ColPriceUSD)
	unknown := make(map[string]int)
	for _, r := range t.Rows {
		price, _ := r[ColPrice].(float64) // a missing price converts as 0

		code := currencyCode(r[ColCurrency])
		if code == "" || code == "USD" {
			r[ColPriceUSD] = price
			continue
		}
		rate, ok := c.Rates.Lookup(code)
		if !ok || rate <= 0 {
			unknown[code]++
			r[ColPriceUSD] = 0.0
			continue
		}
		usd := price / rate
		if math.IsNaN(usd) || math.IsInf(usd, 0) {
			usd = 0
		}
		r[ColPriceUSD] = usd
	}

	codes := make([]string, 0, len(unknown))
	for code := range unknown {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		n := unknown[code]
		st.UnknownCurrencies += n
		rec.Warnf(stageConvertCurrency, "unknown currency %q on %d row(s); price_usd set to 0", code, n)
	}
}

// currencyCode normalizes a currency cell for table lookup only.
func currencyCode(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToUpper(strings.TrimSpace(t))
	default:
		return strings.ToUpper(strings.TrimSpace(fmt.Sprint(t)))
	}
}
