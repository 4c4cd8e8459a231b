// Package config defines the canonical, JSON-serializable configuration model
// for the sales processing application. It is intentionally small, explicit,
// and dependency-free so that pipelines can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in pipeline
//     files passed to the salesproc binary via -config.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":     "daily-sales",
//	  "input":   { "kind": "file", "file": { "path": "sales_data.csv" }, "options": { "trim_space": true } },
//	  "rates":   { "url": "https://api.exchangerate-api.com/v4/latest/USD" },
//	  "output":  { "dir": "out" },
//	  "storage": { "kind": "sqlite", "dsn": "sales.db" }
//	}
package config

import "encoding/json"

// Pipeline describes a full cleaning run in JSON. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job names the run. It labels metrics and log lines, so it should be
	// stable across invocations of the same pipeline.
	Job string `json:"job"`

	// Input describes where raw sales data comes from and how to parse it.
	Input Input `json:"input"`

	// Rates configures the exchange-rate fetch used for USD conversion.
	Rates Rates `json:"rates"`

	// Cleaning tunes the cleaning stages (date layouts and similar knobs).
	Cleaning Cleaning `json:"cleaning"`

	// Output selects where the cleaned CSV and the summary report land.
	Output Output `json:"output"`

	// Storage optionally describes a database sink for the cleaned rows.
	Storage Storage `json:"storage"`

	// Metrics optionally selects a metrics backend for the run.
	Metrics Metrics `json:"metrics"`

	Runtime RuntimeConfig `json:"runtime"`
}

// Input identifies the data source and its format. Additional kinds can be
// added over time.
type Input struct {
	// Kind selects the source implementation. Current values: "file", "http".
	Kind string `json:"kind"`

	// File carries options for the "file" input kind.
	File InputFile `json:"file"`

	// HTTP carries options for the "http" input kind.
	HTTP InputHTTP `json:"http"`

	// Format forces the input format ("csv", "xlsx", "json"). Empty or "auto"
	// means detect from the name and a peek at the content.
	Format string `json:"format"`

	// Options is a free-form map interpreted by the parser implementation.
	// Typical keys by format:
	//   csv:  comma (string), trim_space (bool), header_map (object)
	//   xlsx: sheet (string), trim_space (bool), header_map (object)
	//   json: column_order (array of strings), header_map (object)
	Options Options `json:"options"`
}

// InputFile holds configuration for the "file" input kind.
type InputFile struct {
	// Path is the local filesystem path to the raw sales file.
	Path string `json:"path"`
}

// InputHTTP holds configuration for the "http" input kind.
type InputHTTP struct {
	// URL is the location the raw sales file is downloaded from.
	URL string `json:"url"`
}

// Rates configures the exchange-rate source. The zero value uses the built-in
// default endpoint with the default client timeout.
type Rates struct {
	// URL overrides the rate endpoint. Empty selects the default endpoint.
	URL string `json:"url"`

	// TimeoutSeconds bounds the rate fetch. Zero selects the client default.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Cleaning tunes the cleaning stages.
type Cleaning struct {
	// DateLayouts lists the Go time layouts tried, in order, when coercing the
	// date column. Empty selects the built-in layout set.
	DateLayouts []string `json:"date_layouts"`
}

// Output selects where run artifacts are written.
type Output struct {
	// Dir is the directory receiving the cleaned CSV and the summary report.
	// Empty means the current directory.
	Dir string `json:"dir"`
}

// Storage selects the sink used to persist cleaned records.
type Storage struct {
	// Kind selects the storage backend ("postgres", "sqlite", "mssql",
	// "mysql"). Empty or "none" disables database loading for the run.
	Kind string `json:"kind"`

	// DSN is the backend connection string (e.g. postgresql://... for
	// postgres, a file path for sqlite).
	DSN string `json:"dsn"`

	// Table is the destination table name. Empty selects the default landing
	// table.
	Table string `json:"table"`
}

// Enabled reports whether the run should load cleaned rows into a database.
func (s Storage) Enabled() bool {
	return s.Kind != "" && s.Kind != "none"
}

// Metrics selects the metrics backend for the run.
type Metrics struct {
	// Backend selects the implementation ("prometheus", also accepted as
	// "pushgateway", or "datadog"). Empty or "none" leaves metrics disabled.
	Backend string `json:"backend"`

	// PushgatewayURL is the Pushgateway base URL for the "prometheus" backend.
	PushgatewayURL string `json:"pushgateway_url"`

	// StatsdAddr is the dogstatsd address for the "datadog" backend, e.g.
	// "127.0.0.1:8125".
	StatsdAddr string `json:"statsd_addr"`

	// Namespace prefixes every metric name for the "datadog" backend.
	Namespace string `json:"namespace"`
}

// Enabled reports whether a metrics backend is configured.
func (m Metrics) Enabled() bool {
	return m.Backend != "" && m.Backend != "none"
}

// RuntimeConfig controls batching and HTTP behavior.
type RuntimeConfig struct {
	// BatchSize sets the row count per storage load batch. Zero selects the
	// built-in default.
	BatchSize int `json:"batch_size"`

	// HTTPTimeoutSeconds bounds the input download for the "http" input kind.
	// Zero selects the client default.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options is used for parser-specific configuration where the shape varies by
// input format.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive). This is useful for retrieving nested
// configuration blocks that will be unmarshaled into a typed struct by the
// caller.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
