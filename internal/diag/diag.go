// Package diag collects structured data-quality diagnostics emitted by the
// cleaning pipeline.
//
// Stages never print or abort on recoverable data problems; they record a
// Diagnostic (stage, severity, message) on a Recorder and apply the
// documented default instead. The caller receives the full list alongside
// the cleaned table and decides how to surface it (log lines, CLI output,
// report footer).
package diag

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityWarning marks a recoverable data-quality issue that was degraded
	// to a defined default.
	SeverityWarning Severity = "warning"
	// SeverityError marks a problem that removed data (for example a dropped
	// row) but did not abort the run.
	SeverityError Severity = "error"
)

// Diagnostic is a single finding from one pipeline stage.
type Diagnostic struct {
	Stage    string
	Severity Severity
	Message  string
}

// Error implements the error interface so a Diagnostic can be handed to
// error-shaped APIs.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s [%s]: %s", d.Stage, d.Severity, d.Message)
}

// Recorder accumulates diagnostics in emission order. The zero value is ready
// to use. It is not safe for concurrent use; the pipeline is single-threaded.
type Recorder struct {
	entries []Diagnostic
}

// Warnf records a warning-severity diagnostic for the given stage.
func (r *Recorder) Warnf(stage, format string, args ...any) {
	r.entries = append(r.entries, Diagnostic{
		Stage:    stage,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf records an error-severity diagnostic for the given stage.
func (r *Recorder) Errorf(stage, format string, args ...any) {
	r.entries = append(r.entries, Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns the recorded diagnostics in emission order. The returned slice
// is the recorder's own; callers must not mutate it.
func (r *Recorder) All() []Diagnostic { return r.entries }

// Count returns the number of recorded diagnostics.
func (r *Recorder) Count() int { return len(r.entries) }

// CountSeverity returns how many diagnostics carry the given severity.
func (r *Recorder) CountSeverity(s Severity) int {
	n := 0
	for _, d := range r.entries {
		if d.Severity == s {
			n++
		}
	}
	return n
}
