// Package report turns a cleaned sales table into summary figures and a
// standalone HTML report.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/internal/cleaning"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"
)

// Summary holds the figures the report renders. All totals are USD.
type Summary struct {
	TotalSales        float64
	TotalOrders       int
	AverageOrderValue float64

	// TopOrders lists up to five rows by descending total, ties kept in
	// input order.
	TopOrders []Order

	// SalesByProduct is sorted by descending total, then product name.
	SalesByProduct []ProductSales

	// DailyTrend is sorted by ascending date. Rows without a parsed date do
	// not contribute.
	DailyTrend []DailySales
}

// Order is one row of the top-orders table, cells in display form.
type Order struct {
	OrderID  string
	Date     string
	Product  string
	Quantity float64
	TotalUSD float64
}

// ProductSales is the summed total for one product.
type ProductSales struct {
	Product  string
	TotalUSD float64
}

// DailySales is the summed total for one calendar day (ISO date).
type DailySales struct {
	Date     string
	TotalUSD float64
}

// Summarize computes the report figures from a cleaned table. Distinct order
// counting and the product and daily groupings ignore missing cells.
func Summarize(t *records.Table) Summary {
	var s Summary

	orders := make(map[any]struct{})
	byProduct := make(map[string]float64)
	byDay := make(map[string]float64)

	for _, r := range t.Rows {
		total, _ := r[cleaning.ColTotalUSD].(float64)
		s.TotalSales += total

		if id := r[cleaning.ColOrderID]; id != nil {
			orders[id] = struct{}{}
		}
		if p, ok := groupKey(r[cleaning.ColProduct]); ok {
			byProduct[p] += total
		}
		if d, ok := r[cleaning.ColDate].(time.Time); ok {
			byDay[d.Format("2006-01-02")] += total
		}
	}

	s.TotalOrders = len(orders)
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalSales / float64(s.TotalOrders)
	}

	s.TopOrders = topOrders(t, 5)

	for p, v := range byProduct {
		s.SalesByProduct = append(s.SalesByProduct, ProductSales{Product: p, TotalUSD: v})
	}
	sort.Slice(s.SalesByProduct, func(i, j int) bool {
		a, b := s.SalesByProduct[i], s.SalesByProduct[j]
		if a.TotalUSD != b.TotalUSD {
			return a.TotalUSD > b.TotalUSD
		}
		return a.Product < b.Product
	})

	for d, v := range byDay {
		s.DailyTrend = append(s.DailyTrend, DailySales{Date: d, TotalUSD: v})
	}
	sort.Slice(s.DailyTrend, func(i, j int) bool {
		return s.DailyTrend[i].Date < s.DailyTrend[j].Date
	})

	return s
}

// topOrders picks the n largest rows by total, first occurrence winning ties.
func topOrders(t *records.Table, n int) []Order {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, _ := t.Rows[idx[i]][cleaning.ColTotalUSD].(float64)
		b, _ := t.Rows[idx[j]][cleaning.ColTotalUSD].(float64)
		return a > b
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	out := make([]Order, 0, len(idx))
	for _, i := range idx {
		r := t.Rows[i]
		q, _ := r[cleaning.ColQuantity].(float64)
		total, _ := r[cleaning.ColTotalUSD].(float64)
		out = append(out, Order{
			OrderID:  CellText(r[cleaning.ColOrderID]),
			Date:     CellText(r[cleaning.ColDate]),
			Product:  CellText(r[cleaning.ColProduct]),
			Quantity: q,
			TotalUSD: total,
		})
	}
	return out
}

// groupKey returns the grouping key for a product cell. Missing cells do not
// form a group; "" is a legitimate product name.
func groupKey(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return CellText(v), true
	}
}

// CellText renders any cell in display form: missing cells are blank, dates
// are ISO, floats drop trailing zeros.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}
