// This file wires the cleaning pipeline end-to-end and keeps the CLI layer
// thin: it depends only on the storage-agnostic Repository interface and never
// imports database drivers or backend-specific packages directly.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajpat739407/Sales-Data-Processor/internal/cleaning"
	"github.com/rajpat739407/Sales-Data-Processor/internal/config"
	"github.com/rajpat739407/Sales-Data-Processor/internal/datasource"
	"github.com/rajpat739407/Sales-Data-Processor/internal/datasource/file"
	"github.com/rajpat739407/Sales-Data-Processor/internal/datasource/httpds"
	"github.com/rajpat739407/Sales-Data-Processor/internal/diag"
	"github.com/rajpat739407/Sales-Data-Processor/internal/export"
	"github.com/rajpat739407/Sales-Data-Processor/internal/metrics"
	"github.com/rajpat739407/Sales-Data-Processor/internal/parser"
	"github.com/rajpat739407/Sales-Data-Processor/internal/rates"
	"github.com/rajpat739407/Sales-Data-Processor/internal/report"
	"github.com/rajpat739407/Sales-Data-Processor/internal/storage"
	"github.com/rajpat739407/Sales-Data-Processor/pkg/records"

	csvparser "github.com/rajpat739407/Sales-Data-Processor/internal/parser/csv"
	jsonparser "github.com/rajpat739407/Sales-Data-Processor/internal/parser/json"
	xlsxparser "github.com/rajpat739407/Sales-Data-Processor/internal/parser/xlsx"
)

const (
	// defaultBatchSize is the storage load batch when the config names none.
	defaultBatchSize = 5000

	// maxShownDiagnostics caps the diagnostics echoed without -v.
	maxShownDiagnostics = 5

	// detectPeek is how many leading bytes format detection looks at.
	detectPeek = 512
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	fetchRatesFn = fetchRates

	openInputFn = openInput

	nowFn = time.Now
)

// run executes a full read → clean → export → report → load pipeline.
//
// The rate table and the raw input do not depend on each other, so both are
// fetched concurrently up front; either failure aborts the run before any
// cleaning starts. The cleaning pipeline itself is single-threaded: stages
// mutate one table in a fixed order, and the same input and rate table always
// produce the same output.
func run(ctx context.Context, p config.Pipeline, verbose bool) error {
	job := p.Job

	var (
		rt   rates.Table
		raw  []byte
		name string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t0 := nowFn()
		var err error
		rt, err = fetchRatesFn(gctx, p.Rates)
		metrics.RecordStage(job, "rates", err, nowFn().Sub(t0))
		if err != nil {
			return fmt.Errorf("fetch rates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		name, raw, err = openInputFn(gctx, p)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if verbose {
		log.Printf("rates: %d currencies against %s", rt.Len(), rt.Base())
		log.Printf("input: %s (%d bytes)", name, len(raw))
	}

	t0 := nowFn()
	table, skipped, err := parseTable(p.Input, name, raw)
	metrics.RecordStage(job, "parse", err, nowFn().Sub(t0))
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	metrics.RecordRows(job, "parsed", int64(table.Len()))
	if skipped > 0 {
		metrics.RecordRows(job, "parse_skipped", int64(skipped))
		log.Printf("parse: skipped %d malformed rows", skipped)
	}
	log.Printf("parse: %d rows, %d columns", table.Len(), len(table.Columns))

	t0 = nowFn()
	cleaner := cleaning.Cleaner{Rates: rt, DateLayouts: p.Cleaning.DateLayouts}
	cleaned, stats, diags := cleaner.Clean(table)
	metrics.RecordStage(job, "clean", nil, nowFn().Sub(t0))
	metrics.RecordRows(job, "duplicates_removed", int64(stats.DuplicatesRemoved))
	metrics.RecordRows(job, "rows_dropped_quantity", int64(stats.RowsDroppedQuantity))
	metrics.RecordRows(job, "cleaned", int64(stats.RowsOut))
	logDiagnostics(diags, verbose)

	now := nowFn()

	t0 = nowFn()
	csvPath, err := export.WriteFile(p.Output.Dir, cleaned, now)
	metrics.RecordStage(job, "export", err, nowFn().Sub(t0))
	if err != nil {
		return fmt.Errorf("write cleaned csv: %w", err)
	}
	log.Printf("export: wrote %s (%d rows)", csvPath, cleaned.Len())

	t0 = nowFn()
	sum := report.Summarize(cleaned)
	rptPath, err := report.WriteFile(p.Output.Dir, sum, now)
	metrics.RecordStage(job, "report", err, nowFn().Sub(t0))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Printf("report: wrote %s", rptPath)

	if p.Storage.Enabled() {
		t0 = nowFn()
		inserted, batches, err := loadStorage(ctx, p, cleaned)
		metrics.RecordStage(job, "load", err, nowFn().Sub(t0))
		if err != nil {
			return err
		}
		metrics.RecordRows(job, "inserted", inserted)
		metrics.RecordBatches(job, batches)
		log.Printf("load: %s: %d rows in %d batches", p.Storage.Kind, inserted, batches)
	}

	logSummary(stats, sum)

	return nil
}

// fetchRates builds a fetcher from the config and performs the single strict
// fetch. An empty URL selects the default endpoint.
func fetchRates(ctx context.Context, cfg config.Rates) (rates.Table, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return rates.NewFetcher(cfg.URL, timeout).Fetch(ctx)
}

// openInput opens the configured source and buffers it fully. The returned
// name (path or URL) feeds format detection.
func openInput(ctx context.Context, p config.Pipeline) (string, []byte, error) {
	var (
		src  datasource.Source
		name string
	)
	switch p.Input.Kind {
	case "file":
		name = p.Input.File.Path
		src = file.NewLocal(name)
	case "http":
		name = p.Input.HTTP.URL
		client := httpds.NewClient(httpds.Config{
			Timeout: time.Duration(p.Runtime.HTTPTimeoutSeconds) * time.Second,
		})
		src = httpds.NewURL(client, name)
	default:
		return "", nil, fmt.Errorf("unsupported input.kind=%s", p.Input.Kind)
	}
	raw, err := datasource.ReadAll(ctx, src)
	if err != nil {
		return name, nil, err
	}
	return name, raw, nil
}

// parseTable resolves the input format and parses the buffered bytes into a
// raw table. The format is taken from the config when forced, otherwise
// detected from the input name and a peek at the leading bytes.
func parseTable(in config.Input, name string, raw []byte) (*records.Table, int, error) {
	format, err := parser.ParseFormat(in.Format)
	if err != nil {
		return nil, 0, err
	}
	if format == "" {
		head := raw
		if len(head) > detectPeek {
			head = head[:detectPeek]
		}
		format = parser.Detect(name, head)
	}
	return buildParser(format, in.Options).Parse(bytes.NewReader(raw))
}

// buildParser maps a resolved format and its options bag onto a concrete
// parser implementation.
func buildParser(format parser.Format, opt config.Options) parser.Parser {
	switch format {
	case parser.FormatXLSX:
		return xlsxparser.NewParser(xlsxparser.Options{
			Sheet:     opt.String("sheet", ""),
			TrimSpace: opt.Bool("trim_space", true),
			HeaderMap: opt.StringMap("header_map"),
		})
	case parser.FormatJSON:
		order := opt.StringSlice("column_order")
		if order == nil {
			order = cleaning.RequiredColumns()
		}
		return jsonparser.NewParser(jsonparser.Options{
			ColumnOrder: order,
			HeaderMap:   opt.StringMap("header_map"),
		})
	default:
		return csvparser.NewParser(csvparser.Options{
			Comma:     opt.Rune("comma", 0),
			TrimSpace: opt.Bool("trim_space", true),
			HeaderMap: opt.StringMap("header_map"),
		})
	}
}

// loadStorage connects the configured backend, ensures the landing table, and
// loads the cleaned rows in batches. It returns the inserted row count and
// the batch count.
func loadStorage(ctx context.Context, p config.Pipeline, t *records.Table) (int64, int64, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:  p.Storage.Kind,
		DSN:   p.Storage.DSN,
		Table: p.Storage.Table,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("init storage: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureTable(ctx); err != nil {
		return 0, 0, fmt.Errorf("ensure table: %w", err)
	}

	batch := pickInt(p.Runtime.BatchSize, getenvInt("SALESPROC_BATCH_SIZE", defaultBatchSize))
	inserted, err := storage.LoadTable(ctx, t, storage.Columns(), batch, repo.CopyFrom)
	if err != nil {
		return inserted, 0, fmt.Errorf("load storage: %w", err)
	}
	var batches int64
	if n := t.Len(); n > 0 {
		batches = int64((n + batch - 1) / batch)
	}
	return inserted, batches, nil
}

// logDiagnostics prints what the cleaning stages degraded or removed. Without
// -v only the first few entries are echoed; the counts always are.
func logDiagnostics(diags []diag.Diagnostic, verbose bool) {
	if len(diags) == 0 {
		return
	}
	var warnings, removals int
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			removals++
		} else {
			warnings++
		}
	}
	log.Printf("clean: %d diagnostics (%d degraded, %d row-affecting)", len(diags), warnings, removals)

	shown := len(diags)
	if !verbose && shown > maxShownDiagnostics {
		shown = maxShownDiagnostics
	}
	for i := 0; i < shown; i++ {
		log.Printf("  #%03d: %s", i+1, diags[i].Error())
	}
	if shown < len(diags) {
		log.Printf("  ... %d more suppressed (run with -v to see all)", len(diags)-shown)
	}
}

// logSummary prints final aggregated statistics for the run.
func logSummary(st cleaning.Stats, sum report.Summary) {
	log.Printf(
		"summary: rows_in=%d rows_out=%d duplicates_removed=%d quantities_defaulted=%d rows_dropped_quantity=%d prices_imputed_group=%d prices_imputed_global=%d prices_imputed_zero=%d customers_defaulted=%d unknown_currencies=%d",
		st.RowsIn,
		st.RowsOut,
		st.DuplicatesRemoved,
		st.QuantitiesDefaulted,
		st.RowsDroppedQuantity,
		st.PricesImputedGroup,
		st.PricesImputedGlobal,
		st.PricesImputedZero,
		st.CustomersDefaulted,
		st.UnknownCurrencies,
	)
	log.Printf(
		"totals: sales_usd=%.2f orders=%d avg_order_usd=%.2f",
		sum.TotalSales,
		sum.TotalOrders,
		sum.AverageOrderValue,
	)
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
