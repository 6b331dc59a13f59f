// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package diag defines the shared, source-labelled diagnostic type used to
// describe the out-of-scope diagnostic renderer's input. The renderer
// itself (pretty, colorized, source-context output) lives outside the
// core; this package only defines the seam.
package diag

import (
	"fmt"
	"strings"

	"github.com/lak-lang/lakc/internal/token"
)

// Severity classifies a Diagnostic for display ordering and filtering.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reportable event: a span into a named source file,
// a message, and optional notes (help text, secondary spans rendered as
// plain text since this core does not own multi-span rendering).
type Diagnostic struct {
	Severity Severity
	File     string // filename; empty for the entry module (caller supplies context)
	Span     token.Span
	Message  string
	Notes    []string
}

// Renderer turns diagnostics plus their sources into user-facing text. The
// real implementation (colorized, source-context output) is an external
// collaborator; this package ships only PlainRenderer for CLI/test use.
type Renderer interface {
	Render(diags []Diagnostic, sourcesByFile map[string]string) string
}

// PlainRenderer formats diagnostics as "file:line:col: severity: message"
// lines followed by any notes, with no source-context excerpt.
type PlainRenderer struct{}

func (PlainRenderer) Render(diags []Diagnostic, _ map[string]string) string {
	var sb strings.Builder
	for _, d := range diags {
		file := d.File
		if file == "" {
			file = "<entry>"
		}
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", file, d.Span.Line, d.Span.Column, d.Severity, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  note: %s\n", n)
		}
	}
	return sb.String()
}
