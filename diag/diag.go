// Package diag implements the shared diagnostic list (spec.md §4.1,
// §7): every compilation phase appends to one list and continues past
// recoverable errors so the caller gets as many diagnostics as
// possible in one pass.
//
// The arena, string-builder, and hash-map utilities spec.md §4.1 also
// names are out of scope here (spec.md §1): they are external
// collaborators in the original C implementation, and their Go
// equivalent is simply relying on the garbage collector and the
// standard map/slice types (spec.md §9, "Arena ownership").
package diag

import (
	"fmt"
	"strings"

	"github.com/tinyshader/hlslc/token"
)

// Severity distinguishes hard errors from advisory notes. The public
// API (spec.md §6.1) only ever surfaces Errors, but Notes are useful
// in tests and future tooling.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityNote
)

// Diagnostic is a single located, human-readable message.
type Diagnostic struct {
	Loc      token.Location
	Severity Severity
	Message  string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Loc, d.Message)
}

// List is an append-only diagnostic list shared across compilation
// phases.
type List struct {
	items []Diagnostic
}

// Add appends an error diagnostic.
func (l *List) Add(loc token.Location, format string, args ...any) {
	l.items = append(l.items, Diagnostic{Loc: loc, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Note appends an advisory diagnostic that does not prevent emission.
func (l *List) Note(loc token.Location, format string, args ...any) {
	l.items = append(l.items, Diagnostic{Loc: loc, Severity: SeverityNote, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any SeverityError diagnostic was added.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the total number of diagnostics (errors and notes).
func (l *List) Len() int { return len(l.items) }

// All returns the accumulated diagnostics in insertion order.
func (l *List) All() []Diagnostic {
	return l.items
}

// String renders every diagnostic, one per line.
func (l *List) String() string {
	var b strings.Builder
	for i, d := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}
