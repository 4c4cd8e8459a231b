package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FileName returns the report name for a run date.
func FileName(now time.Time) string {
	return "sales_report_" + now.Format("2006-01-02") + ".html"
}

// WriteFile renders the report into dir, creating it if needed, and returns
// the file path. An empty dir means the working directory. The file name
// carries the run date.
func WriteFile(dir string, s Summary, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: %w", err)
	}
	path := filepath.Join(dir, FileName(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: %w", err)
	}
	if err := Render(f, s, now); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("report: render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %s: %w", path, err)
	}
	return path, nil
}

// Render writes the standalone HTML report for s to w.
func Render(w io.Writer, s Summary, now time.Time) error {
	data := pageData{
		Date:              now.Format("2006-01-02"),
		TotalSales:        money(s.TotalSales),
		TotalOrders:       s.TotalOrders,
		AverageOrderValue: money(s.AverageOrderValue),
		ProductChart:      buildBarChart(s.SalesByProduct),
		TrendChart:        buildLineChart(s.DailyTrend),
	}
	for _, o := range s.TopOrders {
		data.TopOrders = append(data.TopOrders, topRow{
			OrderID:  o.OrderID,
			Date:     o.Date,
			Product:  o.Product,
			Quantity: strconv.FormatFloat(o.Quantity, 'f', -1, 64),
			Total:    money(o.TotalUSD),
		})
	}
	return reportTmpl.Execute(w, data)
}

var usd = message.NewPrinter(language.English)

// money renders a USD amount with thousands grouping, e.g. "$1,234.56".
func money(v float64) string {
	return usd.Sprintf("$%.2f", v)
}

type pageData struct {
	Date              string
	TotalSales        string
	TotalOrders       int
	AverageOrderValue string
	TopOrders         []topRow
	ProductChart      *barChart
	TrendChart        *lineChart
}

type topRow struct {
	OrderID  string
	Date     string
	Product  string
	Quantity string
	Total    string
}

// Chart geometry is computed here so the template only places shapes.
const (
	chartW     = 640
	chartH     = 300
	plotLeft   = 70
	plotRight  = chartW - 16
	plotTop    = 16
	barBottom  = chartH - 86
	lineBottom = chartH - 56
)

type barChart struct {
	Width, Height                            int
	PlotLeft, PlotRight, PlotTop, PlotBottom int
	MaxLabel                                 string
	Bars                                     []chartBar
}

type chartBar struct {
	X, Y, W, H     int
	LabelX, LabelY int
	Label          string
	Value          string
}

type lineChart struct {
	Width, Height                            int
	PlotLeft, PlotRight, PlotTop, PlotBottom int
	MaxLabel                                 string
	Points                                   string
	Dots                                     []chartDot
}

type chartDot struct {
	X, Y           int
	LabelX, LabelY int
	Label          string
	Value          string
}

// buildBarChart lays out the sales-by-product bars. Returns nil when there is
// nothing positive to draw, matching the skipped-chart behavior of the
// summary page.
func buildBarChart(data []ProductSales) *barChart {
	max := 0.0
	for _, d := range data {
		if d.TotalUSD > max {
			max = d.TotalUSD
		}
	}
	if len(data) == 0 || max <= 0 {
		return nil
	}

	c := &barChart{
		Width: chartW, Height: chartH,
		PlotLeft: plotLeft, PlotRight: plotRight,
		PlotTop: plotTop, PlotBottom: barBottom,
		MaxLabel: money(max),
	}

	plotW := float64(plotRight - plotLeft)
	plotH := float64(barBottom - plotTop)
	slot := plotW / float64(len(data))
	barW := slot * 0.7

	for i, d := range data {
		h := d.TotalUSD / max * plotH
		x := float64(plotLeft) + slot*float64(i) + (slot-barW)/2
		c.Bars = append(c.Bars, chartBar{
			X: round(x), Y: round(float64(barBottom) - h),
			W: round(barW), H: round(h),
			LabelX: round(x + barW/2), LabelY: barBottom + 14,
			Label: d.Product,
			Value: d.Product + ": " + money(d.TotalUSD),
		})
	}
	return c
}

// buildLineChart lays out the daily-trend polyline, one evenly spaced point
// per day present in the data.
func buildLineChart(data []DailySales) *lineChart {
	max := 0.0
	for _, d := range data {
		if d.TotalUSD > max {
			max = d.TotalUSD
		}
	}
	if len(data) == 0 || max <= 0 {
		return nil
	}

	c := &lineChart{
		Width: chartW, Height: chartH,
		PlotLeft: plotLeft, PlotRight: plotRight,
		PlotTop: plotTop, PlotBottom: lineBottom,
		MaxLabel: money(max),
	}

	plotW := float64(plotRight - plotLeft)
	plotH := float64(lineBottom - plotTop)

	for i, d := range data {
		x := float64(plotLeft) + plotW/2
		if len(data) > 1 {
			x = float64(plotLeft) + plotW*float64(i)/float64(len(data)-1)
		}
		y := float64(lineBottom) - d.TotalUSD/max*plotH
		dot := chartDot{
			X: round(x), Y: round(y),
			LabelX: round(x), LabelY: lineBottom + 14,
			Label: d.Date,
			Value: d.Date + ": " + money(d.TotalUSD),
		}
		c.Dots = append(c.Dots, dot)
		if i > 0 {
			c.Points += " "
		}
		c.Points += strconv.Itoa(dot.X) + "," + strconv.Itoa(dot.Y)
	}
	return c
}

func round(v float64) int { return int(math.Round(v)) }

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sales Report {{.Date}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 720px; color: #222; padding: 0 1rem; }
h1 { border-bottom: 2px solid #4472c4; padding-bottom: .3rem; }
.cards { display: flex; gap: 1rem; margin: 1.5rem 0; }
.card { flex: 1; background: #f4f7fb; border: 1px solid #d9e2ef; border-radius: 6px; padding: 1rem; text-align: center; }
.card .value { font-size: 1.5rem; font-weight: 700; color: #2a5797; }
.card .name { color: #667; margin-top: .3rem; font-size: .85rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #ccd; padding: .4rem .6rem; text-align: left; }
th { background: #eef2f8; }
td.num, th.num { text-align: right; }
svg { width: 100%; height: auto; }
.muted { color: #888; }
footer { margin-top: 2rem; font-size: .8rem; color: #999; }
</style>
</head>
<body>
<h1>Sales Report</h1>
<p class="muted">Generated {{.Date}}</p>

<div class="cards">
<div class="card"><div class="value">{{.TotalSales}}</div><div class="name">Total Sales (USD)</div></div>
<div class="card"><div class="value">{{.TotalOrders}}</div><div class="name">Total Orders</div></div>
<div class="card"><div class="value">{{.AverageOrderValue}}</div><div class="name">Average Order Value</div></div>
</div>

<h2>Top 5 Orders</h2>
{{if .TopOrders -}}
<table>
<tr><th>Order ID</th><th>Date</th><th>Product</th><th class="num">Quantity</th><th class="num">Total (USD)</th></tr>
{{range .TopOrders -}}
<tr><td>{{.OrderID}}</td><td>{{.Date}}</td><td>{{.Product}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Total}}</td></tr>
{{end -}}
</table>
{{- else}}
<p class="muted">No sales data available for top orders.</p>
{{- end}}

<h2>Total Sales by Product (USD)</h2>
{{if .ProductChart}}{{template "bars" .ProductChart}}{{else}}<p class="muted">No valid sales data for product chart.</p>{{end}}

<h2>Daily Sales Trend (USD)</h2>
{{if .TrendChart}}{{template "trend" .TrendChart}}{{else}}<p class="muted">No valid dates for daily trend chart.</p>{{end}}

<footer>Generated by salesproc on {{.Date}}.</footer>
</body>
</html>
{{define "bars" -}}
<svg viewBox="0 0 {{.Width}} {{.Height}}" xmlns="http://www.w3.org/2000/svg" role="img">
<line x1="{{.PlotLeft}}" y1="{{.PlotTop}}" x2="{{.PlotLeft}}" y2="{{.PlotBottom}}" stroke="#999"/>
<line x1="{{.PlotLeft}}" y1="{{.PlotBottom}}" x2="{{.PlotRight}}" y2="{{.PlotBottom}}" stroke="#999"/>
<text x="{{.PlotLeft}}" y="{{.PlotTop}}" dx="-6" dy="4" text-anchor="end" font-size="10" fill="#666">{{.MaxLabel}}</text>
{{range .Bars -}}
<rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="skyblue" stroke="#7ab8d9"><title>{{.Value}}</title></rect>
<text x="{{.LabelX}}" y="{{.LabelY}}" font-size="10" fill="#444" text-anchor="end" transform="rotate(-40 {{.LabelX}} {{.LabelY}})">{{.Label}}</text>
{{end -}}
</svg>
{{- end}}
{{define "trend" -}}
<svg viewBox="0 0 {{.Width}} {{.Height}}" xmlns="http://www.w3.org/2000/svg" role="img">
<line x1="{{.PlotLeft}}" y1="{{.PlotTop}}" x2="{{.PlotLeft}}" y2="{{.PlotBottom}}" stroke="#999"/>
<line x1="{{.PlotLeft}}" y1="{{.PlotBottom}}" x2="{{.PlotRight}}" y2="{{.PlotBottom}}" stroke="#999"/>
<text x="{{.PlotLeft}}" y="{{.PlotTop}}" dx="-6" dy="4" text-anchor="end" font-size="10" fill="#666">{{.MaxLabel}}</text>
<polyline points="{{.Points}}" fill="none" stroke="green" stroke-width="2"/>
{{range .Dots -}}
<circle cx="{{.X}}" cy="{{.Y}}" r="3" fill="green"><title>{{.Value}}</title></circle>
<text x="{{.LabelX}}" y="{{.LabelY}}" font-size="10" fill="#444" text-anchor="end" transform="rotate(-40 {{.LabelX}} {{.LabelY}})">{{.Label}}</text>
{{end -}}
</svg>
{{- end}}
`))
