// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package lexer_test

import (
	"testing"

	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/lexer"
	"github.com/lak-lang/lakc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_Punctuation(t *testing.T) {
	toks, err := lexer.Tokenize("fn main() -> i32 { return 0 }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.KwFn, token.IDENT, token.LParen, token.RParen, token.Arrow,
		token.IDENT, token.LBrace, token.KwReturn, token.INT, token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenize_TwoCharOperators(t *testing.T) {
	toks, err := lexer.Tokenize("== != <= >= && || -> !")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.EqEq, token.NotEq, token.LtEq, token.GtEq, token.AndAnd, token.OrOr,
		token.Arrow, token.Bang, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenize_IntegerLiteral(t *testing.T) {
	toks, err := lexer.Tokenize("18446744073709551615")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.INT {
		t.Fatalf("expected INT, got %s", toks[0].Kind)
	}
	if toks[0].Int.String() != "18446744073709551615" {
		t.Errorf("got %s, want u64::MAX", toks[0].Int.String())
	}
}

func TestTokenize_IntegerOverflow(t *testing.T) {
	_, err := lexer.Tokenize("18446744073709551616")
	if err == nil {
		t.Fatalf("expected an overflow error")
	}
	le, ok := err.(*lakerr.LexError)
	if !ok {
		t.Fatalf("expected *lakerr.LexError, got %T", err)
	}
	if le.Kind != lakerr.LexIntegerOverflow {
		t.Errorf("got kind %s, want LexIntegerOverflow", le.Kind)
	}
}

func TestTokenize_FloatLiteral(t *testing.T) {
	toks, err := lexer.Tokenize("3.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.FLOAT {
		t.Fatalf("expected FLOAT, got %s", toks[0].Kind)
	}
	if toks[0].Float != 3.25 {
		t.Errorf("got %v, want 3.25", toks[0].Float)
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	toks, err := lexer.Tokenize(`"line one\nline two\ttabbed\\\""`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "line one\nline two\ttabbed\\\""
	if toks[0].Str != want {
		t.Errorf("got %q, want %q", toks[0].Str, want)
	}
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := lexer.Tokenize(`"unterminated`)
	le, ok := err.(*lakerr.LexError)
	if !ok {
		t.Fatalf("expected *lakerr.LexError, got %T (%v)", err, err)
	}
	if le.Kind != lakerr.LexUnterminatedString {
		t.Errorf("got kind %s, want LexUnterminatedString", le.Kind)
	}
}

func TestTokenize_UnknownEscapeSequence(t *testing.T) {
	_, err := lexer.Tokenize(`"bad \q escape"`)
	le, ok := err.(*lakerr.LexError)
	if !ok {
		t.Fatalf("expected *lakerr.LexError, got %T", err)
	}
	if le.Kind != lakerr.LexUnknownEscapeSequence {
		t.Errorf("got kind %s, want LexUnknownEscapeSequence", le.Kind)
	}
}

func TestTokenize_CommentsAreSkipped(t *testing.T) {
	toks, err := lexer.Tokenize("// a comment\nfn // trailing\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.NEWLINE, token.KwFn, token.NEWLINE, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenize_KeywordsVsIdentifiers(t *testing.T) {
	toks, err := lexer.Tokenize("let mut pub import as if else while break continue return true false xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.KwLet, token.KwMut, token.KwPub, token.KwImport, token.KwAs, token.KwIf,
		token.KwElse, token.KwWhile, token.KwBreak, token.KwContinue, token.KwReturn,
		token.KwTrue, token.KwFalse, token.IDENT, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenize_InvalidCharacter(t *testing.T) {
	_, err := lexer.Tokenize("@")
	le, ok := err.(*lakerr.LexError)
	if !ok {
		t.Fatalf("expected *lakerr.LexError, got %T", err)
	}
	if le.Kind != lakerr.LexUnexpectedCharacter {
		t.Errorf("got kind %s, want LexUnexpectedCharacter", le.Kind)
	}
}
