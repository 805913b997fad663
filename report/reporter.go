// Package report implements structured diagnostics: leveled, colorized
// reporting, and the panic/recover discipline passes use to accumulate
// errors without threading error returns through every recursive call.
package report

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
)

// Log levels, from least to most verbose.
const (
	LogLevelSilent = iota
	LogLevelError
	LogLevelWarn
	LogLevelVerbose
)

// Diagnostic is a structured error or warning record.
type Diagnostic struct {
	Stage       string
	Path        string
	Line        int
	Col         int
	EndCol      int
	ErrorOffset int
	Message     string
	Warning     bool
}

// LocalCompileError is panicked by Raise and recovered at pass boundaries,
// either by CatchErrors or by a pass's own per-statement recover.  It is
// never allowed to escape a pass: any other panic value propagates as a
// genuine internal error.
type LocalCompileError struct {
	Diag Diagnostic
}

func (e *LocalCompileError) Error() string {
	return fmt.Sprintf("%s error at %s:%d:%d: %s", e.Diag.Stage, e.Diag.Path, e.Diag.Line, e.Diag.Col, e.Diag.Message)
}

// Reporter accumulates diagnostics for one compilation run.
type Reporter struct {
	mu       sync.Mutex
	level    int
	errors   []Diagnostic
	warnings []Diagnostic
	source   string
	path     string

	spinner *pterm.SpinnerPrinter
}

var global *Reporter

// Init installs the process-wide reporter at the given log level.
func Init(level int) *Reporter {
	global = &Reporter{level: level}
	return global
}

// Default returns the process-wide reporter, initializing one at
// LogLevelVerbose if none exists yet.
func Default() *Reporter {
	if global == nil {
		return Init(LogLevelVerbose)
	}
	return global
}

// SetSource attaches the current source buffer and path so diagnostics can
// render source excerpts.
func (r *Reporter) SetSource(path, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	r.source = source
}

// Raise panics with a LocalCompileError built from the given fields.  It is
// meant to be called deep inside a pass and recovered at that pass's
// boundary (CatchErrors, or the pass's own per-statement recover).
func Raise(stage, message string, line, col int, opts ...func(*Diagnostic)) {
	d := Diagnostic{Stage: stage, Message: message, Line: line, Col: col}
	for _, opt := range opts {
		opt(&d)
	}
	panic(&LocalCompileError{Diag: d})
}

// WithEndCol and WithErrorOffset adjust an otherwise-default diagnostic
// built by Raise.
func WithEndCol(endCol int) func(*Diagnostic) {
	return func(d *Diagnostic) { d.EndCol = endCol }
}

func WithErrorOffset(off int) func(*Diagnostic) {
	return func(d *Diagnostic) { d.ErrorOffset = off }
}

// CatchErrors should be deferred at the top of every pass entry point.  It
// recovers a LocalCompileError, records it, and swallows the panic so the
// pass can report failure normally; any other panic value is re-raised,
// since it indicates an internal invariant violation rather than a
// user-facing compile error.
func (r *Reporter) CatchErrors() {
	if rec := recover(); rec != nil {
		if lce, ok := rec.(*LocalCompileError); ok {
			r.record(lce.Diag)
			return
		}
		panic(rec)
	}
}

func (r *Reporter) record(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Warning {
		r.warnings = append(r.warnings, d)
	} else {
		r.errors = append(r.errors, d)
	}
	r.print(d)
}

// Record appends a diagnostic without the panic/recover dance; used by
// passes (lexer, parser) that record multiple errors inline while
// continuing to scan/parse.
func (r *Reporter) Record(d Diagnostic) {
	r.record(d)
}

// ErrorCount and WarningCount report the number of accumulated diagnostics.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// ShouldProceed reports whether the pipeline should continue: no errors
// have been accumulated so far.
func (r *Reporter) ShouldProceed() bool {
	return r.ErrorCount() == 0
}

// Errors returns a copy of the accumulated error diagnostics.
func (r *Reporter) Errors() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.errors))
	copy(out, r.errors)
	return out
}

// Fatal reports an internal compiler error with no source location and
// aborts the process; it bypasses per-pass diagnostic accumulation because
// an ICE means the compiler's own invariants have been violated, not that
// the user's program is ill-formed.
func Fatal(format string, args ...interface{}) {
	pterm.Error.Println("internal compiler error: " + fmt.Sprintf(format, args...))
	panic(fmt.Sprintf(format, args...))
}
