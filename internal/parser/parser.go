// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package parser

import (
	"fmt"
	"math/big"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/token"
)

// Parse turns a pre-lexed token slice (terminated by an EOF token) into a
// Program, or returns the first *lakerr.ParseError encountered.
func Parse(toks []token.Token) (*ast.Program, error) {
	p := &Parser{toks: toks}
	return p.parseProgram()
}

// Parser walks a fixed token slice left to right, with lookahead through
// peekKind. The one place it rewinds is parseExprBlock, which re-parses a
// branch's trailing `if` as an if-expression.
type Parser struct {
	toks []token.Token
	pos  int
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) curKind() token.Kind { return p.toks[p.pos].Kind }
func (p *Parser) at(k token.Kind) bool { return p.curKind() == k }

func (p *Parser) peekKind(n int) token.Kind {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.EOF
	}
	return p.toks[idx].Kind
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.unexpected(what)
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(want string) error {
	t := p.cur()
	return &lakerr.ParseError{
		Kind:    lakerr.ParseUnexpectedToken,
		Span:    t.Span,
		Message: fmt.Sprintf("expected %s, found %s", want, t.Kind),
	}
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// expectTerminator consumes a single NEWLINE, or does nothing at EOF/'}'
// (the natural end of a sequence of statements).
func (p *Parser) expectTerminator() error {
	if p.at(token.NEWLINE) {
		p.advance()
		return nil
	}
	if p.at(token.EOF) || p.at(token.RBrace) {
		return nil
	}
	return &lakerr.ParseError{
		Kind:    lakerr.ParseMissingStatementTerminator,
		Span:    p.cur().Span,
		Message: "expected a newline to end the statement",
	}
}

// ---- top level ----

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	start := p.cur().Span
	p.skipNewlines()
	for !p.at(token.EOF) {
		switch {
		case p.at(token.KwImport):
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			prog.Imports = append(prog.Imports, imp)
		case p.at(token.KwPub), p.at(token.KwFn):
			fn, err := p.parseFnDef()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		default:
			return nil, p.unexpected("'import' or a function definition")
		}
		p.skipNewlines()
	}
	prog.Span = start.Cover(p.cur().Span)
	return prog, nil
}

func (p *Parser) parseImport() (*ast.Import, error) {
	kw := p.advance() // 'import'
	pathTok, err := p.expect(token.STRING, "an import path string")
	if err != nil {
		return nil, err
	}
	if pathTok.Str == "" {
		return nil, &lakerr.ParseError{
			Kind:    lakerr.ParseEmptyImportPath,
			Span:    pathTok.Span,
			Message: "import path must not be empty",
		}
	}
	imp := &ast.Import{Path: pathTok.Str, Span: kw.Span.Cover(pathTok.Span)}
	if p.at(token.KwAs) {
		p.advance()
		aliasTok, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, &lakerr.ParseError{
				Kind:    lakerr.ParseExpectedIdentifier,
				Span:    p.cur().Span,
				Message: "expected an identifier after 'as'",
			}
		}
		imp.Alias = aliasTok.Text
		imp.Span = imp.Span.Cover(aliasTok.Span)
	}
	if err := p.expectTerminator(); err != nil {
		return nil, err
	}
	return imp, nil
}

func (p *Parser) parseFnDef() (*ast.FnDef, error) {
	start := p.cur().Span
	vis := ast.Private
	if p.at(token.KwPub) {
		vis = ast.Public
		p.advance()
	}
	if _, err := p.expect(token.KwFn, "'fn'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "a function name")
	if err != nil {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseExpectedIdentifier, Span: p.cur().Span, Message: "expected a function name"}
	}
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.at(token.RParen) {
		for {
			pname, err := p.expect(token.IDENT, "a parameter name")
			if err != nil {
				return nil, &lakerr.ParseError{Kind: lakerr.ParseExpectedIdentifier, Span: p.cur().Span, Message: "expected a parameter name"}
			}
			if _, err := p.expect(token.Colon, "':'"); err != nil {
				return nil, err
			}
			ty, tySpan, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pname.Text, Type: ty, Span: pname.Span.Cover(tySpan)})
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	retType, retSpan := ast.Void, nameTok.Span
	if p.at(token.Arrow) {
		p.advance()
		t, sp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		retType, retSpan = t, sp
	}
	body, bodySpan, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FnDef{
		Visibility:     vis,
		Name:           nameTok.Text,
		Params:         params,
		ReturnType:     retType,
		ReturnTypeSpan: retSpan,
		Body:           body,
		Span:           start.Cover(bodySpan),
	}, nil
}

func (p *Parser) parseType() (ast.Type, token.Span, error) {
	t := p.cur()
	if t.Kind != token.IDENT {
		return ast.Unresolved, t.Span, &lakerr.ParseError{Kind: lakerr.ParseExpectedType, Span: t.Span, Message: "expected a type name"}
	}
	var ty ast.Type
	switch t.Text {
	case "i8":
		ty = ast.I8
	case "i16":
		ty = ast.I16
	case "i32":
		ty = ast.I32
	case "i64":
		ty = ast.I64
	case "u8":
		ty = ast.U8
	case "u16":
		ty = ast.U16
	case "u32":
		ty = ast.U32
	case "u64":
		ty = ast.U64
	case "f32":
		ty = ast.F32
	case "f64":
		ty = ast.F64
	case "bool":
		ty = ast.Bool
	case "string":
		ty = ast.String
	case "void":
		ty = ast.Void
	default:
		return ast.Unresolved, t.Span, &lakerr.ParseError{Kind: lakerr.ParseExpectedType, Span: t.Span, Message: fmt.Sprintf("unknown type %q", t.Text)}
	}
	p.advance()
	return ty, t.Span, nil
}

// ---- blocks & statements ----

// parseBlock parses `"{" stmt* "}"`: each statement is followed by a
// newline, except when it is immediately followed by the closing brace.
func (p *Parser) parseBlock() ([]ast.Stmt, token.Span, error) {
	lbrace, err := p.expect(token.LBrace, "'{'")
	if err != nil {
		return nil, token.Span{}, err
	}
	p.skipNewlines()
	var stmts []ast.Stmt
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return nil, token.Span{}, &lakerr.ParseError{Kind: lakerr.ParseUnexpectedToken, Span: p.cur().Span, Message: "unexpected end of file inside block"}
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, token.Span{}, err
		}
		stmts = append(stmts, st)
		if p.at(token.RBrace) {
			break
		}
		if err := p.expectTerminator(); err != nil {
			return nil, token.Span{}, err
		}
		p.skipNewlines()
	}
	rbrace := p.advance()
	return stmts, lbrace.Span.Cover(rbrace.Span), nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.at(token.KwLet):
		return p.parseLetStmt()
	case p.at(token.KwReturn):
		return p.parseReturnStmt()
	case p.at(token.KwIf):
		return p.parseIfStmt()
	case p.at(token.KwWhile):
		return p.parseWhileStmt()
	case p.at(token.KwBreak):
		t := p.advance()
		return &ast.BreakStmt{Base: ast.Spanned(t.Span)}, nil
	case p.at(token.KwContinue):
		t := p.advance()
		return &ast.ContinueStmt{Base: ast.Spanned(t.Span)}, nil
	case p.at(token.IDENT) && p.peekKind(1) == token.Assign:
		return p.parseAssignStmt()
	default:
		start := p.cur().Span
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: e, Base: ast.Spanned(start.Cover(e.Span()))}, nil
	}
}

func (p *Parser) parseAssignStmt() (ast.Stmt, error) {
	nameTok := p.advance()
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
		Value:    val,
		Base:     ast.Spanned(nameTok.Span.Cover(val.Span())),
	}, nil
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	kw := p.advance() // 'let'
	isMut := false
	if p.at(token.KwMut) {
		isMut = true
		p.advance()
	}
	nameTok, err := p.expect(token.IDENT, "a binding name or '_'")
	if err != nil {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseExpectedIdentifier, Span: p.cur().Span, Message: "expected a binding name or '_'"}
	}
	isDiscard := nameTok.Text == "_"
	if isDiscard && isMut {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseUnexpectedToken, Span: kw.Span, Message: "mutable discard binding 'let mut _' is not allowed"}
	}

	ty, tySpan := ast.Unresolved, token.Span{}
	if p.at(token.Colon) {
		if isDiscard {
			return nil, &lakerr.ParseError{Kind: lakerr.ParseUnexpectedToken, Span: p.cur().Span, Message: "typed discard binding 'let _: T' is not allowed"}
		}
		p.advance()
		t, sp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ty, tySpan = t, sp
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	span := kw.Span.Cover(init.Span())
	if isDiscard {
		return &ast.DiscardStmt{X: init, Base: ast.Spanned(span)}, nil
	}
	return &ast.LetStmt{
		IsMutable: isMut,
		Name:      nameTok.Text,
		Type:      ty,
		TypeSpan:  tySpan,
		Init:      init,
		Base:      ast.Spanned(span),
	}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	kw := p.advance()
	if p.at(token.NEWLINE) || p.at(token.RBrace) || p.at(token.EOF) {
		return &ast.ReturnStmt{Base: ast.Spanned(kw.Span)}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: val, Base: ast.Spanned(kw.Span.Cover(val.Span()))}, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	kw := p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	thenStmts, thenSpan, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	span := kw.Span.Cover(thenSpan)
	var elseNode ast.Stmt
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			elseNode, err = p.parseIfStmt()
			if err != nil {
				return nil, err
			}
		} else {
			elseStmts, elseSpan, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			elseNode = &ast.ElseBlock{Body: elseStmts, Base: ast.Spanned(elseSpan)}
		}
		span = span.Cover(elseNode.Span())
	}
	return &ast.IfStmt{Cond: cond, Then: thenStmts, Else: elseNode, Base: ast.Spanned(span)}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	kw := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, bodySpan, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body, Base: ast.Spanned(kw.Span.Cover(bodySpan))}, nil
}

// parseExprBlock parses the `"{" stmt* expr "}"` shape used by if-expression
// branches. A leading keyword that unambiguously starts a statement (let,
// return, if, while, break, continue, or IDENT "=") is parsed as a
// statement; everything else is parsed as an expression and becomes the
// block's trailing value if only newlines separate it from '}', or is
// otherwise wrapped as an expression statement and the loop continues. An
// `if` in non-final position is therefore parsed via parseStmt's statement
// form (no mandatory else, no trailing value) rather than being forced
// through parseIfExpr; an `if` followed only by newlines before '}' is the
// block's trailing value, so the parser rewinds to it and parses it again
// through the expression form.
func (p *Parser) parseExprBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBrace, "'{'")
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	var stmts []ast.Stmt
	for {
		if p.at(token.RBrace) {
			return nil, &lakerr.ParseError{Kind: lakerr.ParseMissingIfExpressionBranchValue, Span: p.cur().Span, Message: "if-expression branch must end with a value expression"}
		}
		if p.isStmtKeyword() {
			start := p.pos
			st, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			end := p.pos
			for p.toks[end].Kind == token.NEWLINE {
				end++
			}
			if _, isIf := st.(*ast.IfStmt); !isIf || p.toks[end].Kind != token.RBrace {
				stmts = append(stmts, st)
				if err := p.expectTerminator(); err != nil {
					return nil, err
				}
				p.skipNewlines()
				continue
			}
			p.pos = start
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		p.skipNewlines()
		if p.at(token.RBrace) {
			rbrace := p.advance()
			return ast.NewBlock(stmts, val, lbrace.Span.Cover(rbrace.Span)), nil
		}
		stmts = append(stmts, &ast.ExprStmt{X: val, Base: ast.Spanned(val.Span())})
	}
}

func (p *Parser) isStmtKeyword() bool {
	switch p.curKind() {
	case token.KwLet, token.KwReturn, token.KwIf, token.KwWhile, token.KwBreak, token.KwContinue:
		return true
	case token.IDENT:
		return p.peekKind(1) == token.Assign
	}
	return false
}

// ---- expressions ----

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseLogicalOr() }

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OrOr) {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: ast.Or, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.AndAnd) {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: ast.And, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(token.EqEq) || p.at(token.NotEq) {
		op := ast.Eq
		if p.curKind() == token.NotEq {
			op = ast.NotEq
		}
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOpKind
		switch p.curKind() {
		case token.Lt:
			op = ast.Lt
		case token.Gt:
			op = ast.Gt
		case token.LtEq:
			op = ast.LtEq
		case token.GtEq:
			op = ast.GtEq
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.Add
		if p.curKind() == token.Minus {
			op = ast.Sub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOpKind
		switch p.curKind() {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		case token.Percent:
			op = ast.Mod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Base: ast.Spanned(left.Span().Cover(right.Span()))}
	}
}

// i64MinMagnitude is 2^63: the absolute value of i64::MIN.
var i64MinMagnitude = new(big.Int).Lsh(big.NewInt(1), 63)

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(token.Minus) {
		minusTok := p.advance()
		if p.at(token.INT) {
			intTok := p.advance()
			if intTok.Int.Cmp(i64MinMagnitude) > 0 {
				return nil, &lakerr.ParseError{
					Kind:    lakerr.ParseIntegerLiteralOutOfRange,
					Span:    minusTok.Span.Cover(intTok.Span),
					Message: "integer literal out of range for a signed 64-bit integer",
				}
			}
			val := new(big.Int).Neg(intTok.Int)
			return &ast.IntLiteral{Value: val, Base: ast.Spanned(minusTok.Span.Cover(intTok.Span))}, nil
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UnaryNeg, X: x, Base: ast.Spanned(minusTok.Span.Cover(x.Span()))}, nil
	}
	if p.at(token.Bang) {
		bangTok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.UnaryNot, X: x, Base: ast.Spanned(bangTok.Span.Cover(x.Span()))}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	primary, bareName, isBare, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Dot) {
		return primary, nil
	}
	dotTok := p.advance()
	memberTok, err := p.expect(token.IDENT, "a member name")
	if err != nil {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseExpectedIdentifier, Span: p.cur().Span, Message: "expected a member name after '.'"}
	}
	var result ast.Expr
	if p.at(token.LParen) {
		if !isBare {
			return nil, &lakerr.ParseError{Kind: lakerr.ParseUnexpectedToken, Span: dotTok.Span, Message: "call syntax is only valid after a module name"}
		}
		args, rparenSpan, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		result = &ast.ModuleCall{
			Module: bareName, ModuleSpan: primary.Span(),
			Function: memberTok.Text, FuncSpan: memberTok.Span,
			Args: args, Base: ast.Spanned(primary.Span().Cover(rparenSpan)),
		}
	} else {
		result = &ast.MemberAccess{X: primary, Member: memberTok.Text, Base: ast.Spanned(primary.Span().Cover(memberTok.Span))}
	}
	if p.at(token.Dot) {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseNestedMemberAccessNotSupported, Span: p.cur().Span, Message: "nested member access is not supported"}
	}
	return result, nil
}

func (p *Parser) parsePrimary() (expr ast.Expr, bareName string, isBare bool, err error) {
	t := p.cur()
	switch t.Kind {
	case token.INT:
		p.advance()
		return &ast.IntLiteral{Value: new(big.Int).Set(t.Int), Base: ast.Spanned(t.Span)}, "", false, nil
	case token.FLOAT:
		p.advance()
		return &ast.FloatLiteral{Value: t.Float, Base: ast.Spanned(t.Span)}, "", false, nil
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Value: t.Str, Base: ast.Spanned(t.Span)}, "", false, nil
	case token.KwTrue:
		p.advance()
		return &ast.BoolLiteral{Value: true, Base: ast.Spanned(t.Span)}, "", false, nil
	case token.KwFalse:
		p.advance()
		return &ast.BoolLiteral{Value: false, Base: ast.Spanned(t.Span)}, "", false, nil
	case token.IDENT:
		p.advance()
		if p.at(token.LParen) {
			args, rparenSpan, err := p.parseArgs()
			if err != nil {
				return nil, "", false, err
			}
			return &ast.Call{Callee: t.Text, CalleeSpan: t.Span, Args: args, Base: ast.Spanned(t.Span.Cover(rparenSpan))}, "", false, nil
		}
		return &ast.Ident{Name: t.Text, Base: ast.Spanned(t.Span)}, t.Text, true, nil
	case token.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, "", false, err
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, "", false, err
		}
		return e, "", false, nil
	case token.KwIf:
		e, err := p.parseIfExpr()
		if err != nil {
			return nil, "", false, err
		}
		return e, "", false, nil
	default:
		return nil, "", false, &lakerr.ParseError{Kind: lakerr.ParseUnexpectedToken, Span: t.Span, Message: fmt.Sprintf("unexpected token %s in expression", t.Kind)}
	}
}

func (p *Parser) parseIfExpr() (ast.Expr, error) {
	kw := p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseExprBlock()
	if err != nil {
		return nil, err
	}
	if !p.at(token.KwElse) {
		return nil, &lakerr.ParseError{Kind: lakerr.ParseMissingElseInIfExpression, Span: p.cur().Span, Message: "if-expression requires an else branch"}
	}
	p.advance()
	elseBlock, err := p.parseExprBlock()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Cond: cond, Then: thenBlock, Else: elseBlock, Base: ast.Spanned(kw.Span.Cover(elseBlock.Span()))}, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, token.Span, error) {
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, token.Span{}, err
	}
	var args []ast.Expr
	if !p.at(token.RParen) {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, token.Span{}, err
			}
			args = append(args, e)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	rparen, err := p.expect(token.RParen, "')'")
	if err != nil {
		return nil, token.Span{}, err
	}
	return args, rparen.Span, nil
}
