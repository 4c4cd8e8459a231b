// Package config provides configuration models and helpers for sales
// processing pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"github.com/rajpat739407/Sales-Data-Processor/internal/parser"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "input.file.path"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	var p config.Pipeline
//	if err := json.NewDecoder(r).Decode(&p); err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateInput(p.Input)...)
	issues = append(issues, validateRates(p.Rates)...)
	issues = append(issues, validateCleaning(p.Cleaning)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// validateInput validates Input configuration.
func validateInput(in Input) []Issue {
	var issues []Issue

	// Kind is required.
	if strings.TrimSpace(in.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.kind",
			Message:  "input.kind must not be empty",
		})
		return issues
	}

	// Known input kinds. Unknown kinds are warnings (for forward compatibility).
	known := map[string]struct{}{
		"file": {},
		"http": {},
	}
	if _, ok := known[in.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input.kind",
			Message:  fmt.Sprintf("unknown input kind %q; ensure a matching implementation exists", in.Kind),
		})
	}

	// Kind-specific checks.
	switch in.Kind {
	case "file":
		if strings.TrimSpace(in.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "input.file.path",
				Message:  "file input requires a non-empty path",
			})
		}
	case "http":
		u := strings.TrimSpace(in.HTTP.URL)
		if u == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "input.http.url",
				Message:  "http input requires a non-empty url",
			})
		} else if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "input.http.url",
				Message:  fmt.Sprintf("url %q must be an absolute http(s) URL", u),
			})
		}
	}

	// The format must be one of the parser-known names; the run fails hard on
	// anything else, so reject it here already.
	if _, err := parser.ParseFormat(in.Format); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.format",
			Message:  err.Error(),
		})
	}

	// Parser-option sanity checks (kept intentionally light).
	if s := in.Options.String("comma", ""); len([]rune(s)) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input.options.comma",
			Message:  fmt.Sprintf("comma %q has more than one character; only the first is used", s),
		})
	}

	return issues
}

// validateRates validates the exchange-rate fetch configuration.
func validateRates(r Rates) []Issue {
	var issues []Issue

	// An empty URL selects the default endpoint and is always valid.
	if u := strings.TrimSpace(r.URL); u != "" {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "rates.url",
				Message:  fmt.Sprintf("url %q must be an absolute http(s) URL", u),
			})
		}
	}
	if r.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rates.timeout_seconds",
			Message:  "timeout_seconds must not be negative",
		})
	}

	return issues
}

// validateCleaning validates the cleaning stage knobs.
func validateCleaning(c Cleaning) []Issue {
	var issues []Issue

	for i, layout := range c.DateLayouts {
		if strings.TrimSpace(layout) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("cleaning.date_layouts[%d]", i),
				Message:  "blank date layout will never match; remove it",
			})
		}
	}

	return issues
}

// validateStorage validates storage configuration.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	// Empty or "none" disables loading; nothing else to check then.
	if !s.Enabled() {
		return issues
	}

	// The known set is kept static on purpose: linting a config must not
	// depend on which backends happen to be registered in this build.
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty when storage is enabled",
		})
	}

	return issues
}

// validateMetrics validates the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	if !m.Enabled() {
		return issues
	}

	switch m.Backend {
	case "prometheus", "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires a non-empty pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires a non-empty statsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
// Zero values are fine everywhere; they select built-in defaults.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if r.HTTPTimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.http_timeout_seconds",
			Message:  "http_timeout_seconds must not be negative",
		})
	}

	return issues
}
