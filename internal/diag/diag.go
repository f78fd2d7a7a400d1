// Package diag implements the compiler's diagnostic engine: span-accurate errors and
// warnings collected into a bag and reported to the host, rather than panicking.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a half-open byte range within a named source file.
type Span struct {
	File       string
	Start, End int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
}

// Severity classifies a diagnostic.
type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}

	return "warning"
}

// Kind tags the category of a compile-time diagnostic; see spec.md §7.
type Kind string

// Compile-time diagnostic kinds.
const (
	Lexical         Kind = "lexical"
	Syntactic       Kind = "syntactic"
	NameResolution  Kind = "name-resolution"
	Visibility      Kind = "visibility"
	TypeMismatch    Kind = "type-mismatch"
	DuplicateItem   Kind = "duplicate-item"
	HashCollision   Kind = "hash-collision"
	UnreachableCode Kind = "unreachable-code"
	UnusedBinding   Kind = "unused-binding"
)

// Label attaches a short message to a secondary span.
type Label struct {
	Span    Span
	Message string
}

// Diagnostic is one compiler-reported finding.
type Diagnostic struct {
	Severity  Severity
	Kind      Kind
	Primary   Span
	Message   string
	Secondary []Label
	Help      string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s: %s (%s)", d.Primary, d.Severity, d.Message, d.Kind)

	for _, l := range d.Secondary {
		fmt.Fprintf(&b, "\n    %s: %s", l.Span, l.Message)
	}

	if d.Help != "" {
		fmt.Fprintf(&b, "\n    help: %s", d.Help)
	}

	return b.String()
}

// Bag collects diagnostics emitted during one compilation.
type Bag struct {
	diags []*Diagnostic
}

// Errorf appends an error-severity diagnostic.
func (b *Bag) Errorf(span Span, kind Kind, format string, args ...any) {
	b.diags = append(b.diags, &Diagnostic{
		Severity: Error,
		Kind:     kind,
		Primary:  span,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning-severity diagnostic.
func (b *Bag) Warnf(span Span, kind Kind, format string, args ...any) {
	b.diags = append(b.diags, &Diagnostic{
		Severity: Warning,
		Kind:     kind,
		Primary:  span,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Add appends a fully-formed diagnostic, e.g. one carrying secondary labels or help text.
func (b *Bag) Add(d *Diagnostic) { b.diags = append(b.diags, d) }

// HasErrors reports whether any error-severity diagnostic was collected. Per spec.md §4.8,
// the compiler returns success iff this is false.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// All returns the collected diagnostics sorted by source position.
func (b *Bag) All() []*Diagnostic {
	out := make([]*Diagnostic, len(b.diags))
	copy(out, b.diags)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Primary.File != out[j].Primary.File {
			return out[i].Primary.File < out[j].Primary.File
		}

		return out[i].Primary.Start < out[j].Primary.Start
	})

	return out
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.diags) }
