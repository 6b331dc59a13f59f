// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package lexer turns Lak source text into a flat token stream. It never
// looks ahead into the parser and never mutates its input; the caller owns
// the source string for the lifetime of the returned tokens.
package lexer

import (
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/token"
)

// Lexer scans one source file into tokens.
type Lexer struct {
	src  string
	pos  int // byte offset of the next rune
	line int
	col  int
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, col: 1}
}

// Tokenize scans the whole input and returns every token up to and
// including EOF, or the first lexical error encountered.
func Tokenize(src string) ([]token.Token, error) {
	lx := New(src)
	var toks []token.Token
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks, nil
		}
	}
}

const eof rune = -1

func (l *Lexer) current() rune {
	if l.pos >= len(l.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	pos := l.pos
	for i := 0; i < offset && pos < len(l.src); i++ {
		_, w := utf8.DecodeRuneInString(l.src[pos:])
		pos += w
	}
	if pos >= len(l.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.src[pos:])
	return r
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() token.Span {
	return token.Span{Start: l.pos, End: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) span(start token.Span) token.Span {
	start.End = l.pos
	return start
}

// Next returns the next token, or a *lakerr.LexError on failure.
func (l *Lexer) Next() (token.Token, error) {
	for {
		ch := l.current()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}
		if ch == '/' && l.peekAt(1) == '/' {
			for l.current() != '\n' && l.current() != eof {
				l.advance()
			}
			continue
		}
		if ch != eof && ch != '\n' && unicode.IsSpace(ch) {
			return token.Token{}, &lakerr.LexError{
				Kind:    lakerr.LexInvalidWhitespace,
				Message: "only ASCII space, tab, CR and LF are valid whitespace",
				Span:    l.span(l.here()),
			}
		}
		break
	}

	start := l.here()
	ch := l.current()

	switch {
	case ch == eof:
		return token.Token{Kind: token.EOF, Span: l.span(start)}, nil
	case ch == '\n':
		l.advance()
		return token.Token{Kind: token.NEWLINE, Span: l.span(start)}, nil
	case isIdentStart(ch):
		return l.lexIdent(start)
	case isDigit(ch):
		return l.lexNumber(start)
	case ch == '"':
		return l.lexString(start)
	default:
		return l.lexPunct(start)
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) lexIdent(start token.Span) (token.Token, error) {
	var sb strings.Builder
	for {
		ch := l.current()
		if isIdentCont(ch) {
			sb.WriteRune(ch)
			l.advance()
			continue
		}
		if ch != eof && ch >= 128 && unicode.IsLetter(ch) {
			return token.Token{}, &lakerr.LexError{
				Kind:    lakerr.LexInvalidIdentifierCharacter,
				Message: "non-ASCII character in identifier",
				Span:    l.span(l.here()),
			}
		}
		break
	}
	text := sb.String()
	sp := l.span(start)
	kind := token.LookupIdent(text)
	return token.Token{Kind: kind, Span: sp, Text: text}, nil
}

func (l *Lexer) lexNumber(start token.Span) (token.Token, error) {
	var digits strings.Builder
	for isDigit(l.current()) {
		digits.WriteRune(l.current())
		l.advance()
	}
	if l.current() == '.' && isDigit(l.peekAt(1)) {
		digits.WriteRune('.')
		l.advance()
		for isDigit(l.current()) {
			digits.WriteRune(l.current())
			l.advance()
		}
		sp := l.span(start)
		f, ok := new(big.Float).SetString(digits.String())
		if !ok {
			return token.Token{}, &lakerr.LexError{Kind: lakerr.LexInvalidFloatLiteral, Message: "invalid float literal", Span: sp}
		}
		v, _ := f.Float64()
		return token.Token{Kind: token.FLOAT, Span: sp, Float: v, Text: digits.String()}, nil
	}
	sp := l.span(start)
	v, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return token.Token{}, &lakerr.LexError{Kind: lakerr.LexIntegerOverflow, Message: "invalid integer literal", Span: sp}
	}
	maxU64 := new(big.Int).SetUint64(^uint64(0))
	if v.Cmp(maxU64) > 0 {
		return token.Token{}, &lakerr.LexError{
			Kind:    lakerr.LexIntegerOverflow,
			Message: "integer literal does not fit in u64",
			Span:    sp,
		}
	}
	return token.Token{Kind: token.INT, Span: sp, Int: v, Text: digits.String()}, nil
}

func (l *Lexer) lexString(start token.Span) (token.Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		ch := l.current()
		if ch == eof {
			return token.Token{}, &lakerr.LexError{
				Kind:    lakerr.LexUnterminatedString,
				Message: "unterminated string literal: reached end of file",
				Span:    l.span(start),
			}
		}
		if ch == '\n' {
			return token.Token{}, &lakerr.LexError{
				Kind:    lakerr.LexUnterminatedString,
				Message: "unterminated string literal: physical newline inside string",
				Span:    l.span(start),
			}
		}
		if ch == '"' {
			l.advance()
			break
		}
		if ch == '\\' {
			escSpan := l.here()
			l.advance()
			esc := l.current()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case eof:
				return token.Token{}, &lakerr.LexError{
					Kind:    lakerr.LexUnexpectedEOF,
					Message: "unexpected end of file inside escape sequence",
					Span:    l.span(start),
				}
			default:
				return token.Token{}, &lakerr.LexError{
					Kind:    lakerr.LexUnknownEscapeSequence,
					Message: "unknown escape sequence",
					Span:    l.span(escSpan),
				}
			}
			l.advance()
			continue
		}
		sb.WriteRune(ch)
		l.advance()
	}
	return token.Token{Kind: token.STRING, Span: l.span(start), Str: sb.String()}, nil
}

func (l *Lexer) lexPunct(start token.Span) (token.Token, error) {
	ch := l.advance()
	two := func(next rune, withNext, without token.Kind) token.Token {
		if l.current() == next {
			l.advance()
			return token.Token{Kind: withNext, Span: l.span(start)}
		}
		return token.Token{Kind: without, Span: l.span(start)}
	}
	switch ch {
	case '(':
		return token.Token{Kind: token.LParen, Span: l.span(start)}, nil
	case ')':
		return token.Token{Kind: token.RParen, Span: l.span(start)}, nil
	case '{':
		return token.Token{Kind: token.LBrace, Span: l.span(start)}, nil
	case '}':
		return token.Token{Kind: token.RBrace, Span: l.span(start)}, nil
	case ',':
		return token.Token{Kind: token.Comma, Span: l.span(start)}, nil
	case ':':
		return token.Token{Kind: token.Colon, Span: l.span(start)}, nil
	case '.':
		return token.Token{Kind: token.Dot, Span: l.span(start)}, nil
	case '+':
		return token.Token{Kind: token.Plus, Span: l.span(start)}, nil
	case '*':
		return token.Token{Kind: token.Star, Span: l.span(start)}, nil
	case '/':
		return token.Token{Kind: token.Slash, Span: l.span(start)}, nil
	case '%':
		return token.Token{Kind: token.Percent, Span: l.span(start)}, nil
	case '-':
		return two('>', token.Arrow, token.Minus), nil
	case '=':
		return two('=', token.EqEq, token.Assign), nil
	case '!':
		return two('=', token.NotEq, token.Bang), nil
	case '<':
		return two('=', token.LtEq, token.Lt), nil
	case '>':
		return two('=', token.GtEq, token.Gt), nil
	case '&':
		if l.current() == '&' {
			l.advance()
			return token.Token{Kind: token.AndAnd, Span: l.span(start)}, nil
		}
	case '|':
		if l.current() == '|' {
			l.advance()
			return token.Token{Kind: token.OrOr, Span: l.span(start)}, nil
		}
	}
	return token.Token{}, &lakerr.LexError{
		Kind:    lakerr.LexUnexpectedCharacter,
		Message: "unexpected character at token start",
		Span:    l.span(start),
	}
}
