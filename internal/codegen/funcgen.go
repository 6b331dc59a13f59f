// Copyright (c) 2024 Michael D Henderson. All rights reserved.

package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/lak-lang/lakc/internal/ast"
	"github.com/lak-lang/lakc/internal/lakerr"
	"github.com/lak-lang/lakc/internal/resolver"
	"github.com/lak-lang/lakc/internal/semantic"
)

// varSlot is a local binding's stack slot, mirroring internal/semantic's
// VariableInfo but carrying the alloca instead of a declaration span.
type varSlot struct {
	ptr value.Value
	ty  ast.Type
}

type loopCtx struct {
	cont *ir.Block // continue branches here
	brk  *ir.Block // break branches here
}

// fnCtx holds the mutable state for lowering one function body.
type fnCtx struct {
	g              *Generator
	f              *ir.Func
	fnDef          *ast.FnDef
	result         *semantic.Result
	moduleTable    map[string]*resolver.ModuleExports
	importPrefixes map[string]string // import key -> target module's mangle prefix
	selfPrefix     string
	isEntry        bool
	isSynthMain    bool

	entry     *ir.Block
	cur       *ir.Block
	scopes    []map[string]*varSlot
	loopStack []loopCtx
	tmp       int
}

func (fc *fnCtx) ty(e ast.Expr) ast.Type { return fc.result.ExprTypes[e] }

func (fc *fnCtx) terminated() bool { return fc.cur.Term != nil }

func (fc *fnCtx) name(prefix string) string {
	fc.tmp++
	return fmt.Sprintf("%s.%d", prefix, fc.tmp)
}

func (fc *fnCtx) pushScope() { fc.scopes = append(fc.scopes, make(map[string]*varSlot)) }
func (fc *fnCtx) popScope()  { fc.scopes = fc.scopes[:len(fc.scopes)-1] }

func (fc *fnCtx) define(name string, ptr value.Value, ty ast.Type) {
	fc.scopes[len(fc.scopes)-1][name] = &varSlot{ptr: ptr, ty: ty}
}

func (fc *fnCtx) lookup(name string) *varSlot {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if v, ok := fc.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func (fc *fnCtx) internalErr(span ast.Expr, msg string) error {
	return &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Span: span.Span(), Message: msg}
}

// emitBody lowers fnDef's parameters and statement list into fc.f.
func (fc *fnCtx) emitBody() error {
	fc.entry = fc.f.NewBlock("entry")
	fc.cur = fc.entry
	fc.pushScope()
	defer fc.popScope()

	for i, p := range fc.fnDef.Params {
		ptr := fc.entry.NewAlloca(llType(p.Type))
		ptr.SetName(p.Name + ".addr")
		fc.entry.NewStore(fc.f.Params[i], ptr)
		fc.define(p.Name, ptr, p.Type)
	}

	if _, err := fc.emitStmts(fc.fnDef.Body); err != nil {
		return err
	}

	if !fc.terminated() {
		switch {
		case fc.isSynthMain:
			fc.cur.NewRet(constant.NewInt(types.I32, 0))
		case fc.fnDef.ReturnType == ast.Void:
			fc.cur.NewRet(nil)
		default:
			return &lakerr.CodegenError{
				Kind: lakerr.CodegenInternalError, Span: fc.fnDef.Span,
				Message: "function " + fc.fnDef.Name + " fell through without a guaranteed return",
			}
		}
	}
	return nil
}

// ---- statements ----

func (fc *fnCtx) emitStmts(stmts []ast.Stmt) (bool, error) {
	for _, st := range stmts {
		if fc.terminated() {
			break
		}
		if err := fc.emitStmt(st); err != nil {
			return false, err
		}
	}
	return fc.terminated(), nil
}

func (fc *fnCtx) emitStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.ExprStmt:
		return fc.emitCallStatement(s.X)
	case *ast.DiscardStmt:
		return fc.emitCallStatement(s.X)
	case *ast.LetStmt:
		return fc.emitLet(s)
	case *ast.AssignStmt:
		return fc.emitAssign(s)
	case *ast.ReturnStmt:
		return fc.emitReturn(s)
	case *ast.IfStmt:
		return fc.emitIfStmt(s)
	case *ast.WhileStmt:
		return fc.emitWhileStmt(s)
	case *ast.BreakStmt:
		lc := fc.loopStack[len(fc.loopStack)-1]
		fc.cur.NewBr(lc.brk)
		return nil
	case *ast.ContinueStmt:
		lc := fc.loopStack[len(fc.loopStack)-1]
		fc.cur.NewBr(lc.cont)
		return nil
	default:
		return &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Span: st.Span(), Message: "unhandled statement kind in codegen"}
	}
}

func (fc *fnCtx) emitLet(s *ast.LetStmt) error {
	ty := fc.result.LetTypes[s.Span()]
	v, err := fc.emitExpr(s.Init)
	if err != nil {
		return err
	}
	v = fc.coerce(v, fc.ty(s.Init), ty)
	ptr := fc.entry.NewAlloca(llType(ty))
	ptr.SetName(fc.name(s.Name))
	fc.cur.NewStore(v, ptr)
	fc.define(s.Name, ptr, ty)
	return nil
}

func (fc *fnCtx) emitAssign(s *ast.AssignStmt) error {
	slot := fc.lookup(s.Name)
	v, err := fc.emitExpr(s.Value)
	if err != nil {
		return err
	}
	v = fc.coerce(v, fc.ty(s.Value), slot.ty)
	fc.cur.NewStore(v, slot.ptr)
	return nil
}

func (fc *fnCtx) emitReturn(s *ast.ReturnStmt) error {
	if fc.isSynthMain {
		if s.Value == nil {
			fc.cur.NewRet(constant.NewInt(types.I32, 0))
			return nil
		}
		v, err := fc.emitExpr(s.Value)
		if err != nil {
			return err
		}
		if it, ok := llType(fc.ty(s.Value)).(*types.IntType); ok {
			switch {
			case it.BitSize < 32:
				v = fc.cur.NewSExt(v, types.I32)
			case it.BitSize > 32:
				v = fc.cur.NewTrunc(v, types.I32)
			}
		} else {
			v = constant.NewInt(types.I32, 0)
		}
		fc.cur.NewRet(v)
		return nil
	}
	if s.Value == nil {
		fc.cur.NewRet(nil)
		return nil
	}
	v, err := fc.emitExpr(s.Value)
	if err != nil {
		return err
	}
	v = fc.coerce(v, fc.ty(s.Value), fc.fnDef.ReturnType)
	fc.cur.NewRet(v)
	return nil
}

// emitIfStmt implements spec.md §4.5.6's if/else statement lowering.
func (fc *fnCtx) emitIfStmt(s *ast.IfStmt) error {
	cond, err := fc.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	thenBlock := fc.f.NewBlock(fc.name("if.then"))
	mergeBlock := fc.f.NewBlock(fc.name("if.end"))
	elseBlock := mergeBlock
	if s.Else != nil {
		elseBlock = fc.f.NewBlock(fc.name("if.else"))
	}
	fc.cur.NewCondBr(cond, thenBlock, elseBlock)

	fc.cur = thenBlock
	fc.pushScope()
	_, err = fc.emitStmts(s.Then)
	fc.popScope()
	if err != nil {
		return err
	}
	thenDiverged := fc.terminated()
	if !thenDiverged {
		fc.cur.NewBr(mergeBlock)
	}

	elseDiverged := false
	if s.Else != nil {
		fc.cur = elseBlock
		switch e := s.Else.(type) {
		case *ast.IfStmt:
			if err := fc.emitIfStmt(e); err != nil {
				return err
			}
		case *ast.ElseBlock:
			fc.pushScope()
			_, err = fc.emitStmts(e.Body)
			fc.popScope()
			if err != nil {
				return err
			}
		default:
			return &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Span: s.Span(), Message: "unknown else-node kind"}
		}
		elseDiverged = fc.terminated()
		if !elseDiverged {
			fc.cur.NewBr(mergeBlock)
		}
	}

	fc.cur = mergeBlock
	if s.Else != nil && thenDiverged && elseDiverged {
		fc.cur.NewUnreachable()
	}
	return nil
}

// emitWhileStmt implements spec.md §4.5.6's while lowering.
func (fc *fnCtx) emitWhileStmt(s *ast.WhileStmt) error {
	condBlock := fc.f.NewBlock(fc.name("while.cond"))
	bodyBlock := fc.f.NewBlock(fc.name("while.body"))
	endBlock := fc.f.NewBlock(fc.name("while.end"))

	if !fc.terminated() {
		fc.cur.NewBr(condBlock)
	}
	fc.cur = condBlock
	cond, err := fc.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	fc.cur.NewCondBr(cond, bodyBlock, endBlock)

	fc.cur = bodyBlock
	fc.loopStack = append(fc.loopStack, loopCtx{cont: condBlock, brk: endBlock})
	fc.pushScope()
	_, err = fc.emitStmts(s.Body)
	fc.popScope()
	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	if err != nil {
		return err
	}
	if !fc.terminated() {
		fc.cur.NewBr(condBlock)
	}

	fc.cur = endBlock
	return nil
}

// ---- calls ----

func (fc *fnCtx) emitCallStatement(e ast.Expr) error {
	switch c := e.(type) {
	case *ast.Call:
		switch c.Callee {
		case "println":
			_, err := fc.emitPrintln(c.Args[0])
			return err
		case "panic":
			v, err := fc.emitExpr(c.Args[0])
			if err != nil {
				return err
			}
			fc.emitPanicValue(v)
			return nil
		default:
			_, err := fc.emitUserCall(c.Callee, c.Args)
			return err
		}
	case *ast.ModuleCall:
		_, err := fc.emitModuleCall(c)
		return err
	default:
		return fc.internalErr(e, "emitCallStatement on a non-call expression")
	}
}

func (fc *fnCtx) emitPrintln(arg ast.Expr) (value.Value, error) {
	argTy := fc.ty(arg)
	v, err := fc.emitExpr(arg)
	if err != nil {
		return nil, err
	}
	name, paramTy := printlnRuntimeName(argTy)
	fn := fc.g.runtimeFn(name, types.Void, paramTy)
	return fc.cur.NewCall(fn, v), nil
}

func (fc *fnCtx) emitPanicValue(msg value.Value) {
	fn := fc.g.runtimeFn("lak_panic", types.Void, charPtrType())
	fc.cur.NewCall(fn, msg)
	fc.cur.NewUnreachable()
}

func (fc *fnCtx) emitUserCall(callee string, args []ast.Expr) (value.Value, error) {
	llName := callee
	if !fc.isEntry {
		llName = mangleFunc(fc.selfPrefix, callee)
	}
	fe, ok := fc.g.funcsByName[llName]
	if !ok {
		return nil, &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Message: "undeclared function " + llName}
	}
	return fc.emitCall(fe, args)
}

func (fc *fnCtx) emitModuleCall(n *ast.ModuleCall) (value.Value, error) {
	prefix, ok := fc.importPrefixes[n.Module]
	if !ok {
		return nil, fc.internalErr(n, "module "+n.Module+" has no assigned mangle prefix")
	}
	llName := mangleFunc(prefix, n.Function)
	fe, ok := fc.g.funcsByName[llName]
	if !ok {
		return nil, &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Message: "undeclared function " + llName}
	}
	return fc.emitCall(fe, n.Args)
}

func (fc *fnCtx) emitCall(fe *funcEntry, args []ast.Expr) (value.Value, error) {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		v, err := fc.emitExpr(a)
		if err != nil {
			return nil, err
		}
		if i < len(fe.ParamTypes) {
			v = fc.coerce(v, fc.ty(a), fe.ParamTypes[i])
		}
		vals[i] = v
	}
	return fc.cur.NewCall(fe.IR, vals...), nil
}

// ---- expressions ----

func (fc *fnCtx) emitExpr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return fc.emitIntLiteral(n)
	case *ast.FloatLiteral:
		ty := fc.ty(n)
		if ty == ast.F32 {
			return constant.NewFloat(types.Float, n.Value), nil
		}
		return constant.NewFloat(types.Double, n.Value), nil
	case *ast.StringLiteral:
		return fc.g.internString(n.Value), nil
	case *ast.BoolLiteral:
		return constant.NewBool(n.Value), nil
	case *ast.Ident:
		slot := fc.lookup(n.Name)
		if slot == nil {
			return nil, fc.internalErr(n, "undeclared variable "+n.Name)
		}
		return fc.cur.NewLoad(llType(slot.ty), slot.ptr), nil
	case *ast.UnaryOp:
		return fc.emitUnary(n)
	case *ast.BinaryOp:
		return fc.emitBinary(n)
	case *ast.Call:
		return fc.emitUserCall(n.Callee, n.Args)
	case *ast.ModuleCall:
		return fc.emitModuleCall(n)
	case *ast.IfExpr:
		return fc.emitIfExpr(n)
	default:
		return nil, fc.internalErr(e, "unhandled expression kind in codegen")
	}
}

func (fc *fnCtx) emitIntLiteral(n *ast.IntLiteral) (value.Value, error) {
	ty := fc.ty(n)
	it, ok := llType(ty).(*types.IntType)
	if !ok {
		return nil, fc.internalErr(n, "integer literal resolved to a non-integer type")
	}
	iv, err := constant.NewIntFromString(it, n.Value.String())
	if err != nil {
		return nil, fc.internalErr(n, "invalid integer literal: "+err.Error())
	}
	return iv, nil
}

// coerce performs the one implicit conversion Lak allows: f32 -> f64.
func (fc *fnCtx) coerce(v value.Value, from, to ast.Type) value.Value {
	if from == to {
		return v
	}
	if from == ast.F32 && to == ast.F64 {
		return fc.cur.NewFPExt(v, types.Double)
	}
	return v
}

func (fc *fnCtx) emitUnary(n *ast.UnaryOp) (value.Value, error) {
	switch n.Op {
	case ast.UnaryNot:
		x, err := fc.emitExpr(n.X)
		if err != nil {
			return nil, err
		}
		return fc.cur.NewXor(x, constant.NewBool(true)), nil
	case ast.UnaryNeg:
		ty := fc.ty(n)
		x, err := fc.emitExpr(n.X)
		if err != nil {
			return nil, err
		}
		if ty.IsFloat() {
			return fc.cur.NewFNeg(x), nil
		}
		it := llType(ty).(*types.IntType)
		zero := constant.NewInt(it, 0)
		if ty.IsSignedInteger() {
			return fc.emitCheckedArith(ast.Sub, zero, x, ty)
		}
		return fc.cur.NewSub(zero, x), nil
	default:
		return nil, fc.internalErr(n, "unknown unary operator")
	}
}

// operandCommonType recovers the unified operand type semantic.analyzeBinary
// computed: equal natural types, or the one legal divergence (f32 vs f64).
func (fc *fnCtx) operandCommonType(n *ast.BinaryOp) ast.Type {
	lt, rt := fc.ty(n.Left), fc.ty(n.Right)
	if lt == rt {
		return lt
	}
	return ast.F64
}

func (fc *fnCtx) emitBinary(n *ast.BinaryOp) (value.Value, error) {
	if n.Op.IsLogical() {
		return fc.emitLogical(n)
	}
	lty, rty := fc.ty(n.Left), fc.ty(n.Right)
	lv, err := fc.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	rv, err := fc.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	common := fc.operandCommonType(n)
	lv = fc.coerce(lv, lty, common)
	rv = fc.coerce(rv, rty, common)

	switch {
	case n.Op.IsArithmetic():
		return fc.emitArith(n.Op, lv, rv, common)
	case n.Op.IsEquality():
		return fc.emitEquality(n.Op, lv, rv, common)
	case n.Op.IsOrdering():
		return fc.emitOrdering(n.Op, lv, rv, common)
	default:
		return nil, fc.internalErr(n, "unknown binary operator")
	}
}

func (fc *fnCtx) emitArith(op ast.BinaryOpKind, l, r value.Value, ty ast.Type) (value.Value, error) {
	if ty.IsFloat() {
		switch op {
		case ast.Add:
			return fc.cur.NewFAdd(l, r), nil
		case ast.Sub:
			return fc.cur.NewFSub(l, r), nil
		case ast.Mul:
			return fc.cur.NewFMul(l, r), nil
		case ast.Div:
			return fc.cur.NewFDiv(l, r), nil
		case ast.Mod:
			return fc.cur.NewFRem(l, r), nil
		}
	}
	switch op {
	case ast.Add, ast.Sub, ast.Mul:
		if ty.IsSignedInteger() {
			return fc.emitCheckedArith(op, l, r, ty)
		}
		switch op {
		case ast.Add:
			return fc.cur.NewAdd(l, r), nil
		case ast.Sub:
			return fc.cur.NewSub(l, r), nil
		default:
			return fc.cur.NewMul(l, r), nil
		}
	case ast.Div, ast.Mod:
		return fc.emitCheckedDiv(op, l, r, ty)
	}
	return nil, &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Message: "unknown arithmetic operator"}
}

// emitCheckedArith implements spec.md §4.5.5's checked signed add/sub/mul
// via the LLVM with-overflow intrinsics.
func (fc *fnCtx) emitCheckedArith(op ast.BinaryOpKind, l, r value.Value, ty ast.Type) (value.Value, error) {
	it := llType(ty).(*types.IntType)
	suffix := map[ast.BinaryOpKind]string{ast.Add: "add", ast.Sub: "sub", ast.Mul: "mul"}[op]
	intrinsicName := fmt.Sprintf("llvm.s%s.with.overflow.i%d", suffix, it.BitSize)
	structTy := types.NewStruct(it, types.I1)
	fn := fc.g.runtimeFn(intrinsicName, structTy, it, it)
	res := fc.cur.NewCall(fn, l, r)
	val := fc.cur.NewExtractValue(res, 0)
	overflow := fc.cur.NewExtractValue(res, 1)

	okBlock := fc.f.NewBlock(fc.name("arith.ok"))
	panicBlock := fc.f.NewBlock(fc.name("arith.overflow"))
	fc.cur.NewCondBr(overflow, panicBlock, okBlock)

	fc.cur = panicBlock
	fc.emitPanicValue(fc.g.internString("integer overflow"))

	fc.cur = okBlock
	return val, nil
}

// emitCheckedDiv implements spec.md §4.5.5's divisor-zero and
// TYPE_MIN/-1 overflow checks ahead of sdiv/srem/udiv/urem.
func (fc *fnCtx) emitCheckedDiv(op ast.BinaryOpKind, l, r value.Value, ty ast.Type) (value.Value, error) {
	it := llType(ty).(*types.IntType)
	zero := constant.NewInt(it, 0)

	zeroBlock := fc.f.NewBlock(fc.name("div.zero"))
	contBlock := fc.f.NewBlock(fc.name("div.cont"))
	isZero := fc.cur.NewICmp(enum.IPredEQ, r, zero)
	fc.cur.NewCondBr(isZero, zeroBlock, contBlock)

	fc.cur = zeroBlock
	msg := "division by zero"
	if op == ast.Mod {
		msg = "modulo by zero"
	}
	fc.emitPanicValue(fc.g.internString(msg))

	fc.cur = contBlock
	if ty.IsSignedInteger() {
		min, _ := ty.IntRange()
		minConst, err := constant.NewIntFromString(it, min.String())
		if err != nil {
			return nil, fc.internalErr2("invalid type minimum: " + err.Error())
		}
		negOne := constant.NewInt(it, -1)
		isMin := fc.cur.NewICmp(enum.IPredEQ, l, minConst)
		isNegOne := fc.cur.NewICmp(enum.IPredEQ, r, negOne)
		isOverflow := fc.cur.NewAnd(isMin, isNegOne)

		overflowBlock := fc.f.NewBlock(fc.name("div.overflow"))
		safeBlock := fc.f.NewBlock(fc.name("div.safe"))
		fc.cur.NewCondBr(isOverflow, overflowBlock, safeBlock)

		fc.cur = overflowBlock
		fc.emitPanicValue(fc.g.internString("integer overflow"))

		fc.cur = safeBlock
	}

	if op == ast.Div {
		if ty.IsSignedInteger() {
			return fc.cur.NewSDiv(l, r), nil
		}
		return fc.cur.NewUDiv(l, r), nil
	}
	if ty.IsSignedInteger() {
		return fc.cur.NewSRem(l, r), nil
	}
	return fc.cur.NewURem(l, r), nil
}

func (fc *fnCtx) internalErr2(msg string) error {
	return &lakerr.CodegenError{Kind: lakerr.CodegenInternalError, Message: msg}
}

func (fc *fnCtx) emitEquality(op ast.BinaryOpKind, l, r value.Value, ty ast.Type) (value.Value, error) {
	if ty == ast.String {
		fn := fc.g.runtimeFn("lak_streq", types.I1, charPtrType(), charPtrType())
		eq := fc.cur.NewCall(fn, l, r)
		if op == ast.Eq {
			return eq, nil
		}
		return fc.cur.NewXor(eq, constant.NewBool(true)), nil
	}
	if ty.IsFloat() {
		pred := enum.FPredOEQ
		if op == ast.NotEq {
			pred = enum.FPredONE
		}
		return fc.cur.NewFCmp(pred, l, r), nil
	}
	pred := enum.IPredEQ
	if op == ast.NotEq {
		pred = enum.IPredNE
	}
	return fc.cur.NewICmp(pred, l, r), nil
}

func (fc *fnCtx) emitOrdering(op ast.BinaryOpKind, l, r value.Value, ty ast.Type) (value.Value, error) {
	if ty == ast.String {
		fn := fc.g.runtimeFn("lak_strcmp", types.I32, charPtrType(), charPtrType())
		cmp := fc.cur.NewCall(fn, l, r)
		zero := constant.NewInt(types.I32, 0)
		pred := map[ast.BinaryOpKind]enum.IPred{
			ast.Lt: enum.IPredSLT, ast.Gt: enum.IPredSGT, ast.LtEq: enum.IPredSLE, ast.GtEq: enum.IPredSGE,
		}[op]
		return fc.cur.NewICmp(pred, cmp, zero), nil
	}
	if ty.IsFloat() {
		pred := map[ast.BinaryOpKind]enum.FPred{
			ast.Lt: enum.FPredOLT, ast.Gt: enum.FPredOGT, ast.LtEq: enum.FPredOLE, ast.GtEq: enum.FPredOGE,
		}[op]
		return fc.cur.NewFCmp(pred, l, r), nil
	}
	var preds map[ast.BinaryOpKind]enum.IPred
	if ty.IsSignedInteger() {
		preds = map[ast.BinaryOpKind]enum.IPred{
			ast.Lt: enum.IPredSLT, ast.Gt: enum.IPredSGT, ast.LtEq: enum.IPredSLE, ast.GtEq: enum.IPredSGE,
		}
	} else {
		preds = map[ast.BinaryOpKind]enum.IPred{
			ast.Lt: enum.IPredULT, ast.Gt: enum.IPredUGT, ast.LtEq: enum.IPredULE, ast.GtEq: enum.IPredUGE,
		}
	}
	return fc.cur.NewICmp(preds[op], l, r), nil
}

// emitLogical implements spec.md §4.5.6's short-circuit && / || lowering.
func (fc *fnCtx) emitLogical(n *ast.BinaryOp) (value.Value, error) {
	left, err := fc.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	rhsBlock := fc.f.NewBlock(fc.name("logic.rhs"))
	shortBlock := fc.f.NewBlock(fc.name("logic.short"))
	mergeBlock := fc.f.NewBlock(fc.name("logic.merge"))

	if n.Op == ast.And {
		fc.cur.NewCondBr(left, rhsBlock, shortBlock)
	} else {
		fc.cur.NewCondBr(left, shortBlock, rhsBlock)
	}

	fc.cur = rhsBlock
	right, err := fc.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	rhsExit := fc.cur
	if !fc.terminated() {
		fc.cur.NewBr(mergeBlock)
	}

	fc.cur = shortBlock
	shortVal := constant.NewBool(n.Op == ast.Or)
	fc.cur.NewBr(mergeBlock)

	fc.cur = mergeBlock
	return fc.cur.NewPhi(ir.NewIncoming(right, rhsExit), ir.NewIncoming(shortVal, shortBlock)), nil
}

// emitIfExpr implements spec.md §4.5.6's if-expression lowering: each
// branch produces a value and a phi in the merge block selects between
// them, using whichever basic block the branch actually ended in (which
// may not be the block it started in, if the branch itself contains
// control flow).
func (fc *fnCtx) emitIfExpr(n *ast.IfExpr) (value.Value, error) {
	common := fc.ty(n)
	cond, err := fc.emitExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	thenBlock := fc.f.NewBlock(fc.name("ifexpr.then"))
	elseBlock := fc.f.NewBlock(fc.name("ifexpr.else"))
	mergeBlock := fc.f.NewBlock(fc.name("ifexpr.merge"))
	fc.cur.NewCondBr(cond, thenBlock, elseBlock)

	fc.cur = thenBlock
	thenVal, thenExit, thenReached, err := fc.emitBlockValue(n.Then, common)
	if err != nil {
		return nil, err
	}
	if thenReached && thenExit.Term == nil {
		thenExit.NewBr(mergeBlock)
	}

	fc.cur = elseBlock
	elseVal, elseExit, elseReached, err := fc.emitBlockValue(n.Else, common)
	if err != nil {
		return nil, err
	}
	if elseReached && elseExit.Term == nil {
		elseExit.NewBr(mergeBlock)
	}

	fc.cur = mergeBlock
	var incs []*ir.Incoming
	if thenReached {
		incs = append(incs, ir.NewIncoming(thenVal, thenExit))
	}
	if elseReached {
		incs = append(incs, ir.NewIncoming(elseVal, elseExit))
	}
	switch len(incs) {
	case 0:
		fc.cur.NewUnreachable()
		return constant.NewUndef(llType(common)), nil
	case 1:
		return incs[0].X, nil
	default:
		return fc.cur.NewPhi(incs...), nil
	}
}

// emitBlockValue lowers one if-expression branch. reached is false when the
// branch's statements already diverged (e.g. via a guaranteed return)
// before reaching the trailing value expression.
func (fc *fnCtx) emitBlockValue(b *ast.Block, want ast.Type) (value.Value, *ir.Block, bool, error) {
	fc.pushScope()
	defer fc.popScope()
	if _, err := fc.emitStmts(b.Stmts); err != nil {
		return nil, nil, false, err
	}
	if fc.terminated() {
		return nil, fc.cur, false, nil
	}
	val, err := fc.emitExpr(b.Value)
	if err != nil {
		return nil, nil, false, err
	}
	val = fc.coerce(val, fc.ty(b.Value), want)
	return val, fc.cur, true, nil
}

// internString interns a string literal as a global constant and returns a
// pointer to its first byte.
func (g *Generator) internString(s string) value.Value {
	if v, ok := g.strs[s]; ok {
		return v.(value.Value)
	}
	data := constant.NewCharArrayFromString(s + "\x00")
	gv := g.module.NewGlobalDef(fmt.Sprintf(".str.%d", len(g.strs)), data)
	gv.Immutable = true
	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(data.Typ, gv, zero, zero)
	g.strs[s] = ptr
	return ptr
}
