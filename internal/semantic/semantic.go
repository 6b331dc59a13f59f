// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package semantic walks a parsed Program, resolving names, inferring and
// checking types, and enforcing every other precondition codegen is allowed
// to assume holds. An Analyzer is a single-use value holder; call Reset (or
// just discard it) between unrelated programs.
package semantic

import (
	"fmt"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/resolver"
	"github.com/lak-lang/lakc/internal/token"
)

// FunctionInfo is one entry in the flat, collision-intolerant function
// namespace (spec.md §3.4).
type FunctionInfo struct {
	Name           string
	Params         []ast.Param
	ReturnType     ast.Type
	ReturnTypeSpan token.Span
	DefinitionSpan token.Span
}

// VariableInfo is one entry in a scope's name -> variable mapping.
type VariableInfo struct {
	Name           string
	IsMutable      bool
	Type           ast.Type
	DefinitionSpan token.Span
}

type scope map[string]*VariableInfo

// Result carries every fact the analyzer computed that codegen needs:
// the concrete type of each let binding (keyed by the statement's span,
// per spec.md §4.4.3) and of every expression node reached during analysis.
type Result struct {
	LetTypes  map[token.Span]ast.Type
	ExprTypes map[ast.Expr]ast.Type
}

// Analyzer checks one Program at a time. Reuse across programs requires
// Reset, which clears every field (function table, scope stack, loop
// counter, and caches) back to zero value.
type Analyzer struct {
	funcs       map[string]*FunctionInfo
	scopes      []scope
	loopDepth   int
	moduleTable map[string]*resolver.ModuleExports
	currentFn   *FunctionInfo
	letTypes    map[token.Span]ast.Type
	exprTypes   map[ast.Expr]ast.Type
}

// New returns a ready-to-use Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Reset clears all analyzer state so the value can analyze an unrelated
// Program with no residue from a previous run.
func (a *Analyzer) Reset() {
	a.funcs = nil
	a.scopes = nil
	a.loopDepth = 0
	a.moduleTable = nil
	a.currentFn = nil
	a.letTypes = nil
	a.exprTypes = nil
}

// Analyze type-checks prog against the given module table (the exports
// visible to prog's own import list; pass nil or an empty map for a program
// with no imports) and returns every inferred type codegen needs.
func (a *Analyzer) Analyze(prog *ast.Program, moduleTable map[string]*resolver.ModuleExports) (*Result, error) {
	a.Reset()
	a.moduleTable = moduleTable
	a.funcs = make(map[string]*FunctionInfo)
	a.letTypes = make(map[token.Span]ast.Type)
	a.exprTypes = make(map[ast.Expr]ast.Type)

	for _, fn := range prog.Funcs {
		if existing, ok := a.funcs[fn.Name]; ok {
			return nil, &lakerr.SemanticError{
				Kind: lakerr.SemDuplicateFunction, Span: fn.Span,
				Message: fmt.Sprintf("function %q is already defined at %s", fn.Name, existing.DefinitionSpan),
			}
		}
		a.funcs[fn.Name] = &FunctionInfo{
			Name: fn.Name, Params: fn.Params,
			ReturnType: fn.ReturnType, ReturnTypeSpan: fn.ReturnTypeSpan,
			DefinitionSpan: fn.Span,
		}
	}
	for _, fn := range prog.Funcs {
		if err := a.analyzeFn(fn); err != nil {
			return nil, err
		}
	}
	return &Result{LetTypes: a.letTypes, ExprTypes: a.exprTypes}, nil
}

func (a *Analyzer) analyzeFn(fn *ast.FnDef) error {
	a.currentFn = a.funcs[fn.Name]
	a.pushScope()
	defer a.popScope()
	for _, p := range fn.Params {
		if err := a.define(&VariableInfo{Name: p.Name, IsMutable: false, Type: p.Type, DefinitionSpan: p.Span}); err != nil {
			return err
		}
	}
	returns, err := a.analyzeStmts(fn.Body)
	if err != nil {
		return err
	}
	if fn.ReturnType != ast.Void && !returns {
		return &lakerr.SemanticError{
			Kind: lakerr.SemMissingReturnInNonVoidFunction, Span: fn.Span,
			Message: "function " + fn.Name + " does not always return a value",
		}
	}
	return nil
}

// ---- scopes ----

func (a *Analyzer) pushScope() { a.scopes = append(a.scopes, make(scope)) }
func (a *Analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *Analyzer) lookupVar(name string) *VariableInfo {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if v, ok := a.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func (a *Analyzer) define(v *VariableInfo) error {
	top := a.scopes[len(a.scopes)-1]
	if _, exists := top[v.Name]; exists {
		return &lakerr.SemanticError{Kind: lakerr.SemDuplicateVariable, Span: v.DefinitionSpan, Message: "duplicate variable " + v.Name}
	}
	top[v.Name] = v
	return nil
}

// ---- statements ----

// analyzeStmts analyzes a flat statement sequence in the current scope and
// reports whether it is a guaranteed return point.
func (a *Analyzer) analyzeStmts(stmts []ast.Stmt) (bool, error) {
	returns := false
	for _, st := range stmts {
		r, err := a.analyzeStmt(st)
		if err != nil {
			return false, err
		}
		if r {
			returns = true
		}
	}
	return returns, nil
}

func (a *Analyzer) analyzeStmt(st ast.Stmt) (bool, error) {
	switch s := st.(type) {
	case *ast.ExprStmt:
		return a.analyzeExprStmt(s)
	case *ast.DiscardStmt:
		return false, a.analyzeDiscard(s)
	case *ast.LetStmt:
		return false, a.analyzeLet(s)
	case *ast.AssignStmt:
		return false, a.analyzeAssign(s)
	case *ast.ReturnStmt:
		return true, a.analyzeReturn(s)
	case *ast.IfStmt:
		return a.analyzeIfStmt(s)
	case *ast.WhileStmt:
		return a.analyzeWhileStmt(s)
	case *ast.BreakStmt:
		if a.loopDepth == 0 {
			return false, &lakerr.SemanticError{Kind: lakerr.SemBreakOutsideLoop, Span: s.Span(), Message: "break outside of a loop"}
		}
		return false, nil
	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			return false, &lakerr.SemanticError{Kind: lakerr.SemContinueOutsideLoop, Span: s.Span(), Message: "continue outside of a loop"}
		}
		return false, nil
	default:
		return false, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: st.Span(), Message: "unhandled statement kind in semantic analysis"}
	}
}

func (a *Analyzer) analyzeExprStmt(s *ast.ExprStmt) (bool, error) {
	switch s.X.(type) {
	case *ast.Call, *ast.ModuleCall:
		return a.analyzeCallStatement(s.X)
	default:
		return false, &lakerr.SemanticError{Kind: lakerr.SemInvalidExpression, Span: s.Span(), Message: "an expression statement must be a function call"}
	}
}

func (a *Analyzer) analyzeDiscard(s *ast.DiscardStmt) error {
	switch s.X.(type) {
	case *ast.Call, *ast.ModuleCall:
	default:
		return &lakerr.SemanticError{Kind: lakerr.SemInvalidExpression, Span: s.Span(), Message: "a discard binding requires a call expression", Help: "let _ = ... is only valid with a function call"}
	}
	_, err := a.analyzeCallStatement(s.X)
	return err
}

func (a *Analyzer) analyzeLet(s *ast.LetStmt) error {
	expected := s.Type
	ty, err := a.analyzeExpr(s.Init, expected)
	if err != nil {
		return err
	}
	if ty == ast.Unresolved {
		return &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: s.Span(), Message: "let binding inferred an unresolved type"}
	}
	a.letTypes[s.Span()] = ty
	return a.define(&VariableInfo{Name: s.Name, IsMutable: s.IsMutable, Type: ty, DefinitionSpan: s.Span()})
}

func (a *Analyzer) analyzeAssign(s *ast.AssignStmt) error {
	v := a.lookupVar(s.Name)
	if v == nil {
		return &lakerr.SemanticError{Kind: lakerr.SemUndefinedVariable, Span: s.NameSpan, Message: "undefined variable " + s.Name}
	}
	if !v.IsMutable {
		return &lakerr.SemanticError{Kind: lakerr.SemImmutableVariableReassignment, Span: s.NameSpan, Message: s.Name + " is not declared 'mut' and cannot be reassigned"}
	}
	_, err := a.analyzeExpr(s.Value, v.Type)
	return err
}

func (a *Analyzer) analyzeReturn(s *ast.ReturnStmt) error {
	retTy := a.currentFn.ReturnType
	if retTy == ast.Void {
		if s.Value != nil {
			return &lakerr.SemanticError{Kind: lakerr.SemReturnValueInVoidFunction, Span: s.Span(), Message: "function " + a.currentFn.Name + " is void and cannot return a value"}
		}
		return nil
	}
	if s.Value == nil {
		return &lakerr.SemanticError{Kind: lakerr.SemMissingReturnValue, Span: s.Span(), Message: "function " + a.currentFn.Name + " must return a value of type " + retTy.String()}
	}
	_, err := a.analyzeExpr(s.Value, retTy)
	return err
}

func (a *Analyzer) analyzeIfStmt(s *ast.IfStmt) (bool, error) {
	if _, err := a.analyzeExpr(s.Cond, ast.Bool); err != nil {
		return false, err
	}
	a.pushScope()
	thenReturns, err := a.analyzeStmts(s.Then)
	a.popScope()
	if err != nil {
		return false, err
	}
	if s.Else == nil {
		return false, nil
	}
	switch e := s.Else.(type) {
	case *ast.IfStmt:
		elseReturns, err := a.analyzeIfStmt(e)
		if err != nil {
			return false, err
		}
		return thenReturns && elseReturns, nil
	case *ast.ElseBlock:
		a.pushScope()
		elseReturns, err := a.analyzeStmts(e.Body)
		a.popScope()
		if err != nil {
			return false, err
		}
		return thenReturns && elseReturns, nil
	default:
		return false, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: s.Span(), Message: "unknown else-node kind"}
	}
}

func (a *Analyzer) analyzeWhileStmt(s *ast.WhileStmt) (bool, error) {
	if _, err := a.analyzeExpr(s.Cond, ast.Bool); err != nil {
		return false, err
	}
	a.loopDepth++
	a.pushScope()
	bodyReturns, err := a.analyzeStmts(s.Body)
	a.popScope()
	a.loopDepth--
	if err != nil {
		return false, err
	}
	alwaysTrue := false
	if b, ok := s.Cond.(*ast.BoolLiteral); ok && b.Value {
		alwaysTrue = true
	}
	return alwaysTrue && bodyReturns, nil
}

// ---- expressions ----

// analyzeExpr checks e against expected (ast.Unresolved means "infer with
// no external context") and records the resolved type for codegen.
func (a *Analyzer) analyzeExpr(e ast.Expr, expected ast.Type) (ast.Type, error) {
	ty, err := a.analyzeExprInner(e, expected)
	if err != nil {
		return ast.Unresolved, err
	}
	a.exprTypes[e] = ty
	return ty, nil
}

func (a *Analyzer) analyzeExprInner(e ast.Expr, expected ast.Type) (ast.Type, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return a.checkIntLiteral(n, expected)
	case *ast.FloatLiteral:
		if expected != ast.Unresolved {
			if !expected.IsFloat() {
				return ast.Unresolved, a.mismatch(n.Span(), expected, "a float literal")
			}
			return expected, nil
		}
		return ast.F64, nil
	case *ast.StringLiteral:
		return a.reconcile(n.Span(), ast.String, expected)
	case *ast.BoolLiteral:
		return a.reconcile(n.Span(), ast.Bool, expected)
	case *ast.Ident:
		v := a.lookupVar(n.Name)
		if v == nil {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemUndefinedVariable, Span: n.Span(), Message: "undefined variable " + n.Name}
		}
		return a.reconcile(n.Span(), v.Type, expected)
	case *ast.UnaryOp:
		return a.analyzeUnary(n, expected)
	case *ast.BinaryOp:
		return a.analyzeBinary(n, expected)
	case *ast.Call:
		retTy, _, err := a.checkCall(n.Callee, n.CalleeSpan, n.Args, n.Span())
		if err != nil {
			return ast.Unresolved, err
		}
		if retTy == ast.Void {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemVoidFunctionCallAsValue, Span: n.Span(), Message: "function " + n.Callee + " returns void and cannot be used as a value"}
		}
		return a.reconcile(n.Span(), retTy, expected)
	case *ast.ModuleCall:
		retTy, err := a.checkModuleCall(n)
		if err != nil {
			return ast.Unresolved, err
		}
		if retTy == ast.Void {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemVoidFunctionCallAsValue, Span: n.Span(), Message: "function " + n.Module + "." + n.Function + " returns void and cannot be used as a value"}
		}
		return a.reconcile(n.Span(), retTy, expected)
	case *ast.MemberAccess:
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidExpression, Span: n.Span(), Message: "member access is not supported"}
	case *ast.IfExpr:
		return a.analyzeIfExpr(n, expected)
	default:
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: e.Span(), Message: "unhandled expression kind in semantic analysis"}
	}
}

func (a *Analyzer) checkIntLiteral(n *ast.IntLiteral, expected ast.Type) (ast.Type, error) {
	ty := expected
	if ty == ast.Unresolved {
		ty = ast.I64
	}
	if !ty.IsInteger() {
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemTypeMismatch, Span: n.Span(), Message: fmt.Sprintf("expected %s, found an integer literal", ty)}
	}
	min, max := ty.IntRange()
	if n.Value.Cmp(min) < 0 || n.Value.Cmp(max) > 0 {
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemIntegerOverflow, Span: n.Span(), Message: fmt.Sprintf("integer literal %s is out of range for %s", n.Value.String(), ty)}
	}
	return ty, nil
}

// reconcile checks actual against an (optional) expected type, allowing the
// one implicit conversion the language has: f32 -> f64 (spec.md §4.4.5).
func (a *Analyzer) reconcile(span token.Span, actual, expected ast.Type) (ast.Type, error) {
	if expected == ast.Unresolved || actual == expected {
		return actual, nil
	}
	if actual == ast.F32 && expected == ast.F64 {
		return ast.F64, nil
	}
	return ast.Unresolved, a.mismatch(span, expected, actual.String())
}

func (a *Analyzer) mismatch(span token.Span, expected ast.Type, foundDesc string) error {
	return &lakerr.SemanticError{Kind: lakerr.SemTypeMismatch, Span: span, Message: fmt.Sprintf("expected %s, found %s", expected, foundDesc)}
}

func (a *Analyzer) analyzeUnary(n *ast.UnaryOp, expected ast.Type) (ast.Type, error) {
	switch n.Op {
	case ast.UnaryNeg:
		ty, err := a.analyzeExpr(n.X, expected)
		if err != nil {
			return ast.Unresolved, err
		}
		if !ty.IsNumeric() {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidUnaryOp, Span: n.Span(), Message: "unary - requires a numeric operand, found " + ty.String()}
		}
		return ty, nil
	case ast.UnaryNot:
		if _, err := a.analyzeExpr(n.X, ast.Bool); err != nil {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidUnaryOp, Span: n.Span(), Message: "unary ! requires a bool operand"}
		}
		return ast.Bool, nil
	default:
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: n.Span(), Message: "unknown unary operator"}
	}
}

func (a *Analyzer) analyzeBinary(n *ast.BinaryOp, expected ast.Type) (ast.Type, error) {
	switch {
	case n.Op.IsLogical():
		if _, err := a.analyzeExpr(n.Left, ast.Bool); err != nil {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidLogicalOp, Span: n.Left.Span(), Message: "&& and || require bool operands"}
		}
		if _, err := a.analyzeExpr(n.Right, ast.Bool); err != nil {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidLogicalOp, Span: n.Right.Span(), Message: "&& and || require bool operands"}
		}
		return ast.Bool, nil
	case n.Op.IsEquality():
		if _, err := a.unifyOperands(n.Left, n.Right, ast.Unresolved); err != nil {
			return ast.Unresolved, err
		}
		return ast.Bool, nil
	case n.Op.IsOrdering():
		common, err := a.unifyOperands(n.Left, n.Right, ast.Unresolved)
		if err != nil {
			return ast.Unresolved, err
		}
		if !(common.IsNumeric() || common == ast.String) {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidOrderingOp, Span: n.Span(), Message: "ordering operators require numeric or string operands, found " + common.String()}
		}
		return ast.Bool, nil
	case n.Op.IsArithmetic():
		hint := expected
		if hint != ast.Unresolved && !hint.IsNumeric() {
			hint = ast.Unresolved
		}
		common, err := a.unifyOperands(n.Left, n.Right, hint)
		if err != nil {
			return ast.Unresolved, err
		}
		if !common.IsNumeric() {
			return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidBinaryOp, Span: n.Span(), Message: "arithmetic operators require numeric operands, found " + common.String()}
		}
		return common, nil
	default:
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: n.Span(), Message: "unknown binary operator"}
	}
}

// unifyOperands implements spec.md §4.4.4's integer-literal adaptation and
// §4.4.5's f32->f64 widening: matching types win outright; an integer
// literal on one side adapts to a concrete integer type on the other;
// otherwise both sides must already agree (up to float widening).
func (a *Analyzer) unifyOperands(left, right ast.Expr, hint ast.Type) (ast.Type, error) {
	litL, lok := left.(*ast.IntLiteral)
	litR, rok := right.(*ast.IntLiteral)
	_ = litL
	_ = litR
	switch {
	case lok && rok:
		ty := hint
		if ty == ast.Unresolved || !ty.IsInteger() {
			ty = ast.I64
		}
		if _, err := a.analyzeExpr(left, ty); err != nil {
			return ast.Unresolved, err
		}
		if _, err := a.analyzeExpr(right, ty); err != nil {
			return ast.Unresolved, err
		}
		return ty, nil
	case lok && !rok:
		rty, err := a.analyzeExpr(right, hint)
		if err != nil {
			return ast.Unresolved, err
		}
		if !rty.IsInteger() {
			return ast.Unresolved, a.mismatch(left.Span(), rty, "an integer literal cannot pair with a non-integer operand")
		}
		if _, err := a.analyzeExpr(left, rty); err != nil {
			return ast.Unresolved, err
		}
		return rty, nil
	case rok && !lok:
		lty, err := a.analyzeExpr(left, hint)
		if err != nil {
			return ast.Unresolved, err
		}
		if !lty.IsInteger() {
			return ast.Unresolved, a.mismatch(right.Span(), lty, "an integer literal cannot pair with a non-integer operand")
		}
		if _, err := a.analyzeExpr(right, lty); err != nil {
			return ast.Unresolved, err
		}
		return lty, nil
	default:
		lty, err := a.analyzeExpr(left, hint)
		if err != nil {
			return ast.Unresolved, err
		}
		rty, err := a.analyzeExpr(right, hint)
		if err != nil {
			return ast.Unresolved, err
		}
		if lty == rty {
			return lty, nil
		}
		if (lty == ast.F32 && rty == ast.F64) || (lty == ast.F64 && rty == ast.F32) {
			return ast.F64, nil
		}
		return ast.Unresolved, &lakerr.SemanticError{
			Kind: lakerr.SemTypeMismatch, Span: right.Span(),
			Message: fmt.Sprintf("operand type mismatch: left is %s, right is %s", lty, rty),
		}
	}
}

// analyzeCallStatement type-checks a call used for its side effect (an
// ExprStmt or DiscardStmt initializer), where a void return is fine.
func (a *Analyzer) analyzeCallStatement(e ast.Expr) (bool, error) {
	switch c := e.(type) {
	case *ast.Call:
		_, diverges, err := a.checkCall(c.Callee, c.CalleeSpan, c.Args, c.Span())
		return diverges, err
	case *ast.ModuleCall:
		_, err := a.checkModuleCall(c)
		return false, err
	default:
		return false, &lakerr.SemanticError{Kind: lakerr.SemInternalError, Span: e.Span(), Message: "analyzeCallStatement called on a non-call expression"}
	}
}

// checkCall type-checks println/panic and user-defined calls. diverges is
// true only for panic, which never returns control to its caller.
func (a *Analyzer) checkCall(callee string, calleeSpan token.Span, args []ast.Expr, span token.Span) (ast.Type, bool, error) {
	switch callee {
	case "println":
		if len(args) != 1 {
			return ast.Unresolved, false, &lakerr.SemanticError{Kind: lakerr.SemInvalidArgument, Span: span, Message: "println takes exactly one argument"}
		}
		if _, err := a.analyzeExpr(args[0], ast.Unresolved); err != nil {
			return ast.Unresolved, false, err
		}
		return ast.Void, false, nil
	case "panic":
		if len(args) != 1 {
			return ast.Unresolved, false, &lakerr.SemanticError{Kind: lakerr.SemInvalidArgument, Span: span, Message: "panic takes exactly one argument"}
		}
		if _, err := a.analyzeExpr(args[0], ast.String); err != nil {
			return ast.Unresolved, false, err
		}
		return ast.Void, true, nil
	case "main":
		return ast.Unresolved, false, &lakerr.SemanticError{Kind: lakerr.SemInvalidArgument, Span: calleeSpan, Message: "main may not be called from user code"}
	}
	fn, ok := a.funcs[callee]
	if !ok {
		return ast.Unresolved, false, &lakerr.SemanticError{Kind: lakerr.SemUndefinedFunction, Span: calleeSpan, Message: "undefined function " + callee}
	}
	if len(args) != len(fn.Params) {
		return ast.Unresolved, false, &lakerr.SemanticError{Kind: lakerr.SemInvalidArgument, Span: span, Message: fmt.Sprintf("%s expects %d argument(s), found %d", callee, len(fn.Params), len(args))}
	}
	for i, arg := range args {
		if _, err := a.analyzeExpr(arg, fn.Params[i].Type); err != nil {
			return ast.Unresolved, false, err
		}
	}
	return fn.ReturnType, false, nil
}

// checkModuleCall type-checks module.function(args...) against the module
// table built from the current program's own import list.
func (a *Analyzer) checkModuleCall(n *ast.ModuleCall) (ast.Type, error) {
	exports, ok := a.moduleTable[n.Module]
	if !ok {
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemModuleNotImported, Span: n.ModuleSpan, Message: n.Module + " is not an imported module"}
	}
	fn, ok := exports.Functions[n.Function]
	if !ok {
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemUndefinedModuleFunction, Span: n.FuncSpan, Message: "undefined or non-public function " + n.Function + " in module " + exports.ModuleName}
	}
	if len(n.Args) != len(fn.Params) {
		return ast.Unresolved, &lakerr.SemanticError{Kind: lakerr.SemInvalidArgument, Span: n.Span(), Message: fmt.Sprintf("%s.%s expects %d argument(s), found %d", n.Module, n.Function, len(fn.Params), len(n.Args))}
	}
	for i, arg := range n.Args {
		if _, err := a.analyzeExpr(arg, fn.Params[i].Type); err != nil {
			return ast.Unresolved, err
		}
	}
	return fn.ReturnType, nil
}

// analyzeIfExpr implements spec.md §4.4.7: both branches are analyzed under
// the externally expected type when there is one; if contextual checking
// fails for either branch but both branches agree on a type without
// context, the contextual error wins, otherwise the mismatch names both
// branch types at the if-expression itself.
func (a *Analyzer) analyzeIfExpr(e *ast.IfExpr, expected ast.Type) (ast.Type, error) {
	if _, err := a.analyzeExpr(e.Cond, ast.Bool); err != nil {
		return ast.Unresolved, err
	}
	if expected != ast.Unresolved {
		thenTy, thenErr := a.tryBlock(e.Then, expected)
		elseTy, elseErr := a.tryBlock(e.Else, expected)
		if thenErr == nil && elseErr == nil {
			if (thenTy == ast.F32 && elseTy == ast.F64) || (thenTy == ast.F64 && elseTy == ast.F32) {
				return ast.F64, nil
			}
			return expected, nil
		}
		natThen, errN1 := a.tryBlock(e.Then, ast.Unresolved)
		natElse, errN2 := a.tryBlock(e.Else, ast.Unresolved)
		if errN1 == nil && errN2 == nil && natThen == natElse {
			if thenErr != nil {
				return ast.Unresolved, thenErr
			}
			return ast.Unresolved, elseErr
		}
		return ast.Unresolved, &lakerr.SemanticError{
			Kind: lakerr.SemIfExpressionBranchTypeMismatch, Span: e.Span(),
			Message: fmt.Sprintf("if-expression branches have different types: %s and %s", natThen, natElse),
		}
	}
	thenTy, err := a.tryBlock(e.Then, ast.Unresolved)
	if err != nil {
		return ast.Unresolved, err
	}
	elseTy, err := a.tryBlock(e.Else, ast.Unresolved)
	if err != nil {
		return ast.Unresolved, err
	}
	if thenTy == elseTy {
		return thenTy, nil
	}
	if (thenTy == ast.F32 && elseTy == ast.F64) || (thenTy == ast.F64 && elseTy == ast.F32) {
		return ast.F64, nil
	}
	return ast.Unresolved, &lakerr.SemanticError{
		Kind: lakerr.SemIfExpressionBranchTypeMismatch, Span: e.Span(),
		Message: fmt.Sprintf("if-expression branches have different types: %s and %s", thenTy, elseTy),
	}
}

func (a *Analyzer) tryBlock(b *ast.Block, expected ast.Type) (ast.Type, error) {
	a.pushScope()
	defer a.popScope()
	if _, err := a.analyzeStmts(b.Stmts); err != nil {
		return ast.Unresolved, err
	}
	return a.analyzeExpr(b.Value, expected)
}
