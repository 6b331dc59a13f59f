// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package parser_test

import (
	"testing"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/lexer"
	"github.com/lak-lang/lakc/internal/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParse_FnDefWithParamsAndReturn(t *testing.T) {
	prog := parse(t, "pub fn add(a: i32, b: i32) -> i32 {\n  return a + b\n}\n")
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 func, got %d", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Visibility != ast.Public {
		t.Errorf("expected public visibility")
	}
	if fn.Name != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Type != ast.I32 {
		t.Errorf("unexpected params: %+v", fn.Params)
	}
	if fn.ReturnType != ast.I32 {
		t.Errorf("expected return type i32, got %s", fn.ReturnType)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != ast.Add {
		t.Errorf("expected a+b binary op, got %+v", ret.Value)
	}
}

func TestParse_VoidFnDefaultReturnType(t *testing.T) {
	prog := parse(t, "fn main() {\n  println(\"hi\")\n}\n")
	if prog.Funcs[0].ReturnType != ast.Void {
		t.Errorf("expected void return type by default, got %s", prog.Funcs[0].ReturnType)
	}
}

func TestParse_LetAndAssign(t *testing.T) {
	prog := parse(t, "fn main() {\n  let mut x: i32 = 1\n  x = 2\n}\n")
	let, ok := prog.Funcs[0].Body[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected *ast.LetStmt, got %T", prog.Funcs[0].Body[0])
	}
	if !let.IsMutable || let.Name != "x" || let.Type != ast.I32 {
		t.Errorf("unexpected let shape: %+v", let)
	}
	assign, ok := prog.Funcs[0].Body[1].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected *ast.AssignStmt, got %T", prog.Funcs[0].Body[1])
	}
	if assign.Name != "x" {
		t.Errorf("expected assignment to x, got %q", assign.Name)
	}
}

func TestParse_DiscardBinding(t *testing.T) {
	prog := parse(t, "fn main() {\n  let _ = noop()\n}\n")
	if _, ok := prog.Funcs[0].Body[0].(*ast.DiscardStmt); !ok {
		t.Fatalf("expected *ast.DiscardStmt, got %T", prog.Funcs[0].Body[0])
	}
}

func TestParse_IfElseIfElseStatement(t *testing.T) {
	prog := parse(t, "fn main() {\n  if a {\n    b()\n  } else if c {\n    d()\n  } else {\n    e()\n  }\n}\n")
	ifs, ok := prog.Funcs[0].Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", prog.Funcs[0].Body[0])
	}
	elseIf, ok := ifs.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected else-if to be *ast.IfStmt, got %T", ifs.Else)
	}
	if _, ok := elseIf.Else.(*ast.ElseBlock); !ok {
		t.Fatalf("expected final else to be *ast.ElseBlock, got %T", elseIf.Else)
	}
}

func TestParse_IfExpressionRequiresElse(t *testing.T) {
	toks, err := lexer.Tokenize("fn main() {\n  let x = if a { 1 } \n}\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(toks)
	pe, ok := err.(*lakerr.ParseError)
	if !ok {
		t.Fatalf("expected *lakerr.ParseError, got %T (%v)", err, err)
	}
	if pe.Kind != lakerr.ParseMissingElseInIfExpression {
		t.Errorf("got kind %s, want ParseMissingElseInIfExpression", pe.Kind)
	}
}

func TestParse_IfExpression(t *testing.T) {
	prog := parse(t, "fn main() {\n  let x = if a { 1 } else { 2 }\n}\n")
	let := prog.Funcs[0].Body[0].(*ast.LetStmt)
	ie, ok := let.Init.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", let.Init)
	}
	if ie.Then.Value == nil || ie.Else.Value == nil {
		t.Errorf("expected both branches to carry a trailing value")
	}
}

func TestParse_NestedIfStatementInIfExpressionBranch(t *testing.T) {
	prog := parse(t, "fn main() {\n  let x = if a {\n    if b {\n      foo()\n    }\n    1\n  } else {\n    2\n  }\n}\n")
	let := prog.Funcs[0].Body[0].(*ast.LetStmt)
	ie, ok := let.Init.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", let.Init)
	}
	if len(ie.Then.Stmts) != 1 {
		t.Fatalf("expected 1 leading statement in the then-branch, got %d", len(ie.Then.Stmts))
	}
	nested, ok := ie.Then.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected the nested if to parse as a statement, got %T", ie.Then.Stmts[0])
	}
	if nested.Else != nil {
		t.Errorf("expected the nested if-statement to have no else, got %+v", nested.Else)
	}
	if ie.Then.Value == nil {
		t.Fatalf("expected the then-branch to still carry a trailing value")
	}
	if _, ok := ie.Then.Value.(*ast.IntLiteral); !ok {
		t.Errorf("expected the then-branch's trailing value to be the literal 1, got %T", ie.Then.Value)
	}
}

func TestParse_WhileLoopWithBreakContinue(t *testing.T) {
	prog := parse(t, "fn main() {\n  while x {\n    break\n    continue\n  }\n}\n")
	ws, ok := prog.Funcs[0].Body[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected *ast.WhileStmt, got %T", prog.Funcs[0].Body[0])
	}
	if len(ws.Body) != 2 {
		t.Fatalf("expected 2 statements in while body, got %d", len(ws.Body))
	}
	if _, ok := ws.Body[0].(*ast.BreakStmt); !ok {
		t.Errorf("expected BreakStmt, got %T", ws.Body[0])
	}
	if _, ok := ws.Body[1].(*ast.ContinueStmt); !ok {
		t.Errorf("expected ContinueStmt, got %T", ws.Body[1])
	}
}

func TestParse_ImportWithAlias(t *testing.T) {
	prog := parse(t, "import \"./utils\" as u\nfn main() {\n  u.helper()\n}\n")
	if len(prog.Imports) != 1 || prog.Imports[0].Path != "./utils" || prog.Imports[0].Alias != "u" {
		t.Fatalf("unexpected import: %+v", prog.Imports)
	}
	call, ok := prog.Funcs[0].Body[0].(*ast.ExprStmt).X.(*ast.ModuleCall)
	if !ok {
		t.Fatalf("expected *ast.ModuleCall, got %T", prog.Funcs[0].Body[0])
	}
	if call.Module != "u" || call.Function != "helper" {
		t.Errorf("unexpected module call: %+v", call)
	}
}

func TestParse_EmptyImportPathRejected(t *testing.T) {
	toks, err := lexer.Tokenize("import \"\"\nfn main() {}\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(toks)
	pe, ok := err.(*lakerr.ParseError)
	if !ok {
		t.Fatalf("expected *lakerr.ParseError, got %T", err)
	}
	if pe.Kind != lakerr.ParseEmptyImportPath {
		t.Errorf("got kind %s, want ParseEmptyImportPath", pe.Kind)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	prog := parse(t, "fn main() {\n  let x = 1 + 2 * 3\n}\n")
	let := prog.Funcs[0].Body[0].(*ast.LetStmt)
	top, ok := let.Init.(*ast.BinaryOp)
	if !ok || top.Op != ast.Add {
		t.Fatalf("expected top-level '+', got %+v", let.Init)
	}
	if _, ok := top.Left.(*ast.IntLiteral); !ok {
		t.Errorf("expected left operand to be the literal 1, got %T", top.Left)
	}
	rhs, ok := top.Right.(*ast.BinaryOp)
	if !ok || rhs.Op != ast.Mul {
		t.Fatalf("expected right operand to be 2*3, got %+v", top.Right)
	}
}

func TestParse_NegativeIntLiteralFoldedAtParseTime(t *testing.T) {
	prog := parse(t, "fn main() {\n  let x = -5\n}\n")
	let := prog.Funcs[0].Body[0].(*ast.LetStmt)
	lit, ok := let.Init.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("expected a folded *ast.IntLiteral, got %T", let.Init)
	}
	if lit.Value.String() != "-5" {
		t.Errorf("got %s, want -5", lit.Value.String())
	}
}

func TestParse_UnaryNegOnNonLiteral(t *testing.T) {
	prog := parse(t, "fn main() {\n  let x = -y\n}\n")
	let := prog.Funcs[0].Body[0].(*ast.LetStmt)
	u, ok := let.Init.(*ast.UnaryOp)
	if !ok || u.Op != ast.UnaryNeg {
		t.Fatalf("expected unary negation of an identifier, got %+v", let.Init)
	}
}

func TestParse_NestedMemberAccessRejected(t *testing.T) {
	toks, err := lexer.Tokenize("fn main() {\n  a.b.c\n}\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = parser.Parse(toks)
	pe, ok := err.(*lakerr.ParseError)
	if !ok {
		t.Fatalf("expected *lakerr.ParseError, got %T", err)
	}
	if pe.Kind != lakerr.ParseNestedMemberAccessNotSupported {
		t.Errorf("got kind %s, want ParseNestedMemberAccessNotSupported", pe.Kind)
	}
}
