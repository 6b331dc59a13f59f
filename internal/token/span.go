// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package token defines the lexical token and source-span types shared by
// every later phase of the compiler. Spans are value types: they are copied
// freely and never mutated after construction.
package token

import "fmt"

// Span is a half-open byte range into a single source file, plus the
// 1-indexed line and column of its first byte. End is exclusive.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Text returns the slice of src covered by the span.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Cover returns the smallest span that contains both s and other.
func (s Span) Cover(other Span) Span {
	cov := s
	if other.Start < cov.Start {
		cov.Start, cov.Line, cov.Column = other.Start, other.Line, other.Column
	}
	if other.End > cov.End {
		cov.End = other.End
	}
	return cov
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}
