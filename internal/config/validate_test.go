package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validPipeline returns a pipeline that lints clean. Tests mutate single
// fields to provoke specific issues.
func validPipeline() Pipeline {
	return Pipeline{
		Job: "daily-sales",
		Input: Input{
			Kind:   "file",
			File:   InputFile{Path: "sales_data.csv"},
			Format: "csv",
		},
		Storage: Storage{
			Kind: "sqlite",
			DSN:  "sales.db",
		},
	}
}

func TestValidatePipeline_ValidIsClean(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("ValidatePipeline(valid) = %#v, want no issues", issues)
	}
}

/*
TestValidatePipeline_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Job = "  "

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "job", "must not be empty") {
		t.Fatalf("issues = %#v, want error at job", issues)
	}
}

/*
TestValidateInput exercises the input section of the linter.

Assertions:
 1. An empty kind is an error and short-circuits the remaining input checks.
 2. An unknown kind is a warning, not an error.
 3. A file input without a path is an error at input.file.path.
 4. An http input without a url is an error at input.http.url.
 5. An http input with a non-http(s) url is an error.
 6. An unknown format is an error at input.format.
 7. A multi-character comma option is a warning.
*/
func TestValidateInput(t *testing.T) {
	t.Parallel()

	t.Run("empty kind", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{})
		if !hasIssue(t, issues, SeverityError, "input.kind", "must not be empty") {
			t.Fatalf("issues = %#v, want error at input.kind", issues)
		}
		if len(issues) != 1 {
			t.Fatalf("issues = %#v, want the kind error alone", issues)
		}
	})

	t.Run("unknown kind warns", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{Kind: "s3"})
		if !hasIssue(t, issues, SeverityWarning, "input.kind", `unknown input kind "s3"`) {
			t.Fatalf("issues = %#v, want warning at input.kind", issues)
		}
	})

	t.Run("file without path", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{Kind: "file"})
		if !hasIssue(t, issues, SeverityError, "input.file.path", "non-empty path") {
			t.Fatalf("issues = %#v, want error at input.file.path", issues)
		}
	})

	t.Run("http without url", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{Kind: "http"})
		if !hasIssue(t, issues, SeverityError, "input.http.url", "non-empty url") {
			t.Fatalf("issues = %#v, want error at input.http.url", issues)
		}
	})

	t.Run("http with bad scheme", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{Kind: "http", HTTP: InputHTTP{URL: "ftp://example.com/x.csv"}})
		if !hasIssue(t, issues, SeverityError, "input.http.url", "http(s)") {
			t.Fatalf("issues = %#v, want scheme error at input.http.url", issues)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		issues := validateInput(Input{Kind: "file", File: InputFile{Path: "x.dat"}, Format: "parquet"})
		if !hasIssue(t, issues, SeverityError, "input.format", "unknown format") {
			t.Fatalf("issues = %#v, want error at input.format", issues)
		}
	})

	t.Run("multi-rune comma warns", func(t *testing.T) {
		t.Parallel()
		in := Input{
			Kind:    "file",
			File:    InputFile{Path: "x.csv"},
			Options: Options{"comma": ";;"},
		}
		issues := validateInput(in)
		if !hasIssue(t, issues, SeverityWarning, "input.options.comma", "only the first") {
			t.Fatalf("issues = %#v, want warning at input.options.comma", issues)
		}
	})
}

func TestValidateRates(t *testing.T) {
	t.Parallel()

	// Empty URL selects the default endpoint and is valid.
	if issues := validateRates(Rates{}); len(issues) != 0 {
		t.Fatalf("validateRates(zero) = %#v, want no issues", issues)
	}

	issues := validateRates(Rates{URL: "not-a-url"})
	if !hasIssue(t, issues, SeverityError, "rates.url", "http(s)") {
		t.Fatalf("issues = %#v, want scheme error at rates.url", issues)
	}

	issues = validateRates(Rates{TimeoutSeconds: -1})
	if !hasIssue(t, issues, SeverityError, "rates.timeout_seconds", "negative") {
		t.Fatalf("issues = %#v, want error at rates.timeout_seconds", issues)
	}
}

func TestValidateCleaning_BlankLayout(t *testing.T) {
	t.Parallel()

	issues := validateCleaning(Cleaning{DateLayouts: []string{"2006-01-02", " ", "01/02/2006"}})
	if !hasIssue(t, issues, SeverityWarning, "cleaning.date_layouts[1]", "blank date layout") {
		t.Fatalf("issues = %#v, want warning at cleaning.date_layouts[1]", issues)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %#v, want exactly one warning", issues)
	}
}

/*
TestValidateStorage exercises the storage section of the linter.

Assertions:
 1. Kind "" and "none" disable storage and produce no issues even when the
    DSN is empty.
 2. An unknown kind is a warning (backends register at runtime, so the
    linter cannot be authoritative).
 3. An enabled backend without a DSN is an error at storage.dsn.
*/
func TestValidateStorage(t *testing.T) {
	t.Parallel()

	if issues := validateStorage(Storage{}); len(issues) != 0 {
		t.Fatalf("validateStorage(zero) = %#v, want no issues", issues)
	}
	if issues := validateStorage(Storage{Kind: "none"}); len(issues) != 0 {
		t.Fatalf("validateStorage(none) = %#v, want no issues", issues)
	}

	issues := validateStorage(Storage{Kind: "oracle", DSN: "x"})
	if !hasIssue(t, issues, SeverityWarning, "storage.kind", `unknown storage kind "oracle"`) {
		t.Fatalf("issues = %#v, want warning at storage.kind", issues)
	}

	issues = validateStorage(Storage{Kind: "postgres"})
	if !hasIssue(t, issues, SeverityError, "storage.dsn", "must not be empty") {
		t.Fatalf("issues = %#v, want error at storage.dsn", issues)
	}
}

func TestValidateMetrics(t *testing.T) {
	t.Parallel()

	if issues := validateMetrics(Metrics{}); len(issues) != 0 {
		t.Fatalf("validateMetrics(zero) = %#v, want no issues", issues)
	}

	issues := validateMetrics(Metrics{Backend: "prometheus"})
	if !hasIssue(t, issues, SeverityError, "metrics.pushgateway_url", "pushgateway_url") {
		t.Fatalf("issues = %#v, want error at metrics.pushgateway_url", issues)
	}

	// "pushgateway" is the accepted alias for the prometheus backend.
	issues = validateMetrics(Metrics{Backend: "pushgateway"})
	if !hasIssue(t, issues, SeverityError, "metrics.pushgateway_url", "pushgateway_url") {
		t.Fatalf("issues = %#v, want error at metrics.pushgateway_url for alias", issues)
	}
	if issues = validateMetrics(Metrics{Backend: "pushgateway", PushgatewayURL: "http://localhost:9091"}); len(issues) != 0 {
		t.Fatalf("issues = %#v, want alias with url to lint clean", issues)
	}

	issues = validateMetrics(Metrics{Backend: "datadog"})
	if !hasIssue(t, issues, SeverityError, "metrics.statsd_addr", "statsd_addr") {
		t.Fatalf("issues = %#v, want error at metrics.statsd_addr", issues)
	}

	issues = validateMetrics(Metrics{Backend: "graphite"})
	if !hasIssue(t, issues, SeverityWarning, "metrics.backend", `unknown metrics backend "graphite"`) {
		t.Fatalf("issues = %#v, want warning at metrics.backend", issues)
	}
}

func TestValidateRuntime(t *testing.T) {
	t.Parallel()

	// Zero values select defaults and are valid.
	if issues := validateRuntime(RuntimeConfig{}); len(issues) != 0 {
		t.Fatalf("validateRuntime(zero) = %#v, want no issues", issues)
	}

	issues := validateRuntime(RuntimeConfig{BatchSize: -1, HTTPTimeoutSeconds: -5})
	if !hasIssue(t, issues, SeverityError, "runtime.batch_size", "negative") {
		t.Fatalf("issues = %#v, want error at runtime.batch_size", issues)
	}
	if !hasIssue(t, issues, SeverityError, "runtime.http_timeout_seconds", "negative") {
		t.Fatalf("issues = %#v, want error at runtime.http_timeout_seconds", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.dsn", Message: "must not be empty"}
	want := "error at storage.dsn: must not be empty"
	if got := iss.Error(); got != want {
		t.Fatalf("Issue.Error() = %q, want %q", got, want)
	}
}
