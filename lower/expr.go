package lower

import (
	"github.com/pkg/errors"

	"decafc/ast"
	"decafc/scope"
	"decafc/tac"
)

// emitExpr lowers e, returning the Location holding its value and the
// GetMemBytes byte count the subtree contributes to the enclosing
// frame (spec §4.5, §4.7). Byte counts follow the formulas spec §4.7
// gives directly (own-result +VarSize, synthesized diamonds +3*VarSize,
// NewExpr +5*VarSize, array access +4*VarSize plus an 8*VarSize
// bounds-check cost) rather than literally counting every temporary
// CodeGenerator mints along the way: CodeGenerator's temporaries are
// symbolic names with no frame address of their own in this model (a
// downstream assembler, out of scope, is what would assign them one),
// so there is nothing to double-check the formula against — the
// formula is the source of truth for frame sizing.
func emitExpr(ctx *Context, cur *frameCursor, e ast.Expr) (tac.Location, int) {
	switch expr := e.(type) {
	case *ast.IntConstant:
		return ctx.Gen.GenLoadConstantInt(expr.Value), tac.VarSize
	case *ast.BoolConstant:
		return ctx.Gen.GenLoadConstantInt(boolToInt(expr.Value)), tac.VarSize
	case *ast.StringConstant:
		return ctx.Gen.GenLoadConstantString(expr.Value), tac.VarSize
	case *ast.NullConstant:
		return ctx.Gen.GenLoadConstantInt(0), tac.VarSize
	case *ast.DoubleConstant:
		panic(errors.New("lower: double constants are not supported"))

	case *ast.ArithmeticExpr:
		return emitArithmetic(ctx, cur, expr)
	case *ast.RelationalExpr:
		return emitRelational(ctx, cur, expr)
	case *ast.EqualityExpr:
		return emitEquality(ctx, cur, expr)
	case *ast.LogicalExpr:
		lLoc, lBytes := emitExpr(ctx, cur, expr.Left)
		rLoc, rBytes := emitExpr(ctx, cur, expr.Right)
		loc := ctx.Gen.GenBinaryOp(expr.Op, lLoc, rLoc)
		return loc, lBytes + rBytes + tac.VarSize
	case *ast.NotExpr:
		return emitDiamond(ctx, cur, expr.Operand)

	case *ast.AssignExpr:
		return emitAssign(ctx, cur, expr)
	case *ast.This:
		return thisLocation(), 0
	case *ast.FieldAccess:
		return emitFieldAccess(ctx, cur, expr)
	case *ast.ArrayAccess:
		addr, bytes := emitArrayAddr(ctx, cur, expr)
		return ctx.Gen.GenLoad(addr, 0), bytes + tac.VarSize
	case *ast.Call:
		return emitCall(ctx, cur, expr)
	case *ast.NewExpr:
		return emitNewExpr(ctx, expr)
	case *ast.NewArrayExpr:
		return emitNewArrayExpr(ctx, cur, expr)
	case *ast.ReadIntegerExpr:
		return ctx.Gen.GenBuiltInCall(tac.ReadInteger, true), tac.VarSize
	case *ast.ReadLineExpr:
		return ctx.Gen.GenBuiltInCall(tac.ReadLine, true), tac.VarSize
	}
	panic(errors.Errorf("lower: unreachable Expr kind %T", e))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func emitArithmetic(ctx *Context, cur *frameCursor, e *ast.ArithmeticExpr) (tac.Location, int) {
	if e.Left == nil {
		rLoc, rBytes := emitExpr(ctx, cur, e.Right)
		zero := ctx.Gen.GenLoadConstantInt(0)
		loc := ctx.Gen.GenBinaryOp("-", zero, rLoc)
		return loc, rBytes + 2*tac.VarSize
	}
	lLoc, lBytes := emitExpr(ctx, cur, e.Left)
	rLoc, rBytes := emitExpr(ctx, cur, e.Right)
	loc := ctx.Gen.GenBinaryOp(e.Op, lLoc, rLoc)
	return loc, lBytes + rBytes + tac.VarSize
}

// emitRelational synthesizes every relational operator but `<` from
// `<`, `==`, and `||` (spec §4.5): `a>b` ≡ `b<a`; `a<=b` ≡
// `(a<b)||(a==b)`; `a>=b` ≡ `(b<a)||(a==b)`.
func emitRelational(ctx *Context, cur *frameCursor, e *ast.RelationalExpr) (tac.Location, int) {
	lLoc, lBytes := emitExpr(ctx, cur, e.Left)
	rLoc, rBytes := emitExpr(ctx, cur, e.Right)
	childBytes := lBytes + rBytes

	switch e.Op {
	case "<":
		return ctx.Gen.GenBinaryOp("<", lLoc, rLoc), childBytes + tac.VarSize
	case ">":
		return ctx.Gen.GenBinaryOp("<", rLoc, lLoc), childBytes + tac.VarSize
	case "<=":
		lt := ctx.Gen.GenBinaryOp("<", lLoc, rLoc)
		eq := ctx.Gen.GenBinaryOp("==", lLoc, rLoc)
		loc := ctx.Gen.GenBinaryOp("||", lt, eq)
		return loc, childBytes + 3*tac.VarSize
	case ">=":
		lt := ctx.Gen.GenBinaryOp("<", rLoc, lLoc)
		eq := ctx.Gen.GenBinaryOp("==", lLoc, rLoc)
		loc := ctx.Gen.GenBinaryOp("||", lt, eq)
		return loc, childBytes + 3*tac.VarSize
	}
	panic(errors.Errorf("lower: unrecognized relational operator %q", e.Op))
}

// emitEquality handles `==` directly (string operands dispatch to the
// StringEqual built-in) and synthesizes `!=` as a diamond (spec §4.5).
func emitEquality(ctx *Context, cur *frameCursor, e *ast.EqualityExpr) (tac.Location, int) {
	switch e.Op {
	case "==":
		lLoc, lBytes := emitExpr(ctx, cur, e.Left)
		rLoc, rBytes := emitExpr(ctx, cur, e.Right)
		loc := emitEqualityOp(ctx, e.Left, lLoc, rLoc)
		return loc, lBytes + rBytes + tac.VarSize
	case "!=":
		return emitDiamondEquality(ctx, cur, e.Left, e.Right)
	}
	panic(errors.Errorf("lower: unrecognized equality operator %q", e.Op))
}

func emitEqualityOp(ctx *Context, left ast.Expr, lLoc, rLoc tac.Location) tac.Location {
	if left.GetType().Equal(ast.StringType) {
		return ctx.Gen.GenBuiltInCall(tac.StringEqual, true, lLoc, rLoc)
	}
	return ctx.Gen.GenBinaryOp("==", lLoc, rLoc)
}

// emitDiamondEquality and emitDiamond both build the "compute, branch
// on zero, set 0/1, converge" shape spec §4.5 describes for `!=` and
// `!`; diamond cost is a flat 3*VarSize on top of the operand(s).
func emitDiamondEquality(ctx *Context, cur *frameCursor, left, right ast.Expr) (tac.Location, int) {
	lLoc, lBytes := emitExpr(ctx, cur, left)
	rLoc, rBytes := emitExpr(ctx, cur, right)
	eqLoc := emitEqualityOp(ctx, left, lLoc, rLoc)
	loc := emitInvertDiamond(ctx, eqLoc)
	return loc, lBytes + rBytes + 3*tac.VarSize
}

func emitDiamond(ctx *Context, cur *frameCursor, operand ast.Expr) (tac.Location, int) {
	operandLoc, bytes := emitExpr(ctx, cur, operand)
	loc := emitInvertDiamond(ctx, operandLoc)
	return loc, bytes + 3*tac.VarSize
}

// emitInvertDiamond emits `result := (cond == 0)` via branching: the
// result starts false (0), the fall-through path for a non-zero cond
// jumps straight to the end, and the branch taken when cond is zero
// overwrites it to true (1). It is used by both `!=` (cond is equality)
// and `!` (cond is the operand itself).
func emitInvertDiamond(ctx *Context, cond tac.Location) tac.Location {
	trueLabel := ctx.Gen.NewLabel()
	doneLabel := ctx.Gen.NewLabel()

	result := ctx.Gen.GenLoadConstantInt(0)
	ctx.Gen.GenIfZ(cond, trueLabel)
	ctx.Gen.GenGoto(doneLabel)
	ctx.Gen.GenLabel(trueLabel)
	one := ctx.Gen.GenLoadConstantInt(1)
	ctx.Gen.GenAssign(result, one)
	ctx.Gen.GenLabel(doneLabel)
	return result
}

func emitAssign(ctx *Context, cur *frameCursor, e *ast.AssignExpr) (tac.Location, int) {
	if lv, ok := e.Left.(ast.LValue); ok {
		rLoc, rBytes := emitExpr(ctx, cur, e.Right)
		loc, storeBytes := emitStore(ctx, cur, lv, rLoc)
		return loc, rBytes + storeBytes
	}
	lLoc, lBytes := emitExpr(ctx, cur, e.Left)
	rLoc, rBytes := emitExpr(ctx, cur, e.Right)
	ctx.Gen.GenAssign(lLoc, rLoc)
	return lLoc, lBytes + rBytes
}

func emitFieldAccess(ctx *Context, cur *frameCursor, e *ast.FieldAccess) (tac.Location, int) {
	if e.Base == nil {
		decl, ok := scope.Resolve(ctx.Scopes, e.Field.Value, nil, e)
		if !ok {
			panic(errors.Errorf("lower: unresolved identifier %q", e.Field.Value))
		}
		vd := decl.(*ast.VarDecl)
		if vd.Location != nil {
			return *vd.Location, 0
		}
		return ctx.Gen.GenLoad(thisLocation(), vd.FieldOffset), tac.VarSize
	}

	baseLoc, baseBytes := emitExpr(ctx, cur, e.Base)
	decl, ok := scope.Resolve(ctx.Scopes, e.Field.Value, e.Base, e)
	if !ok {
		panic(errors.Errorf("lower: unresolved field %q", e.Field.Value))
	}
	vd := decl.(*ast.VarDecl)
	return ctx.Gen.GenLoad(baseLoc, vd.FieldOffset), baseBytes + tac.VarSize
}

// emitStore implements the LValue store path for FieldAccess and
// ArrayAccess (spec §4.5's "EmitStore").
func emitStore(ctx *Context, cur *frameCursor, lv ast.LValue, val tac.Location) (tac.Location, int) {
	switch e := lv.(type) {
	case *ast.FieldAccess:
		if e.Base == nil {
			decl, ok := scope.Resolve(ctx.Scopes, e.Field.Value, nil, e)
			if !ok {
				panic(errors.Errorf("lower: unresolved identifier %q", e.Field.Value))
			}
			vd := decl.(*ast.VarDecl)
			if vd.Location != nil {
				ctx.Gen.GenAssign(*vd.Location, val)
				return *vd.Location, 0
			}
			ctx.Gen.GenStore(thisLocation(), val, vd.FieldOffset)
			return val, 0
		}
		baseLoc, baseBytes := emitExpr(ctx, cur, e.Base)
		decl, ok := scope.Resolve(ctx.Scopes, e.Field.Value, e.Base, e)
		if !ok {
			panic(errors.Errorf("lower: unresolved field %q", e.Field.Value))
		}
		vd := decl.(*ast.VarDecl)
		ctx.Gen.GenStore(baseLoc, val, vd.FieldOffset)
		return val, baseBytes

	case *ast.ArrayAccess:
		addr, bytes := emitArrayAddr(ctx, cur, e)
		ctx.Gen.GenStore(addr, val, 0)
		loc := ctx.Gen.GenLoad(addr, 0)
		return loc, bytes + tac.VarSize
	}
	panic(errors.Errorf("lower: unreachable LValue kind %T", lv))
}

// emitArrayAddr computes an in-bounds element address, emitting the
// runtime subscript check spec §4.5/§6 requires: out-of-range
// subscripts print ErrArraySubscriptOOB and Halt.
func emitArrayAddr(ctx *Context, cur *frameCursor, e *ast.ArrayAccess) (tac.Location, int) {
	baseLoc, baseBytes := emitExpr(ctx, cur, e.Base)
	subLoc, subBytes := emitExpr(ctx, cur, e.Subscript)

	lenLoc := ctx.Gen.GenLoad(baseLoc, 0)
	zero := ctx.Gen.GenLoadConstantInt(0)

	checkUpper := ctx.Gen.NewLabel()
	errLabel := ctx.Gen.NewLabel()
	okLabel := ctx.Gen.NewLabel()

	isNegative := ctx.Gen.GenBinaryOp("<", subLoc, zero)
	ctx.Gen.GenIfZ(isNegative, checkUpper)
	ctx.Gen.GenGoto(errLabel)

	ctx.Gen.GenLabel(checkUpper)
	inRange := ctx.Gen.GenBinaryOp("<", subLoc, lenLoc)
	ctx.Gen.GenIfZ(inRange, errLabel)
	ctx.Gen.GenGoto(okLabel)

	ctx.Gen.GenLabel(errLabel)
	msg := ctx.Gen.GenLoadConstantString(tac.ErrArraySubscriptOOB)
	ctx.Gen.GenBuiltInCall(tac.PrintString, false, msg)
	ctx.Gen.GenBuiltInCall(tac.Halt, false)

	ctx.Gen.GenLabel(okLabel)
	one := ctx.Gen.GenLoadConstantInt(1)
	idxPlusOne := ctx.Gen.GenBinaryOp("+", subLoc, one)
	varSizeConst := ctx.Gen.GenLoadConstantInt(tac.VarSize)
	byteOffset := ctx.Gen.GenBinaryOp("*", idxPlusOne, varSizeConst)
	addr := ctx.Gen.GenBinaryOp("+", baseLoc, byteOffset)

	return addr, baseBytes + subBytes + 4*tac.VarSize + 8*tac.VarSize
}

func emitNewExpr(ctx *Context, e *ast.NewExpr) (tac.Location, int) {
	cls, ok := ctx.Scopes.ClassDecl(e.ClassName)
	if !ok {
		panic(errors.Errorf("lower: unknown class %q", e.ClassName))
	}
	objectBytes := ctx.Gen.GenLoadConstantInt(cls.ObjectBytes)
	varSizeConst := ctx.Gen.GenLoadConstantInt(tac.VarSize)
	totalSize := ctx.Gen.GenBinaryOp("+", varSizeConst, objectBytes)
	obj := ctx.Gen.GenBuiltInCall(tac.Alloc, true, totalSize)
	vtableLabel := ctx.Gen.GenLoadLabel(e.ClassName)
	ctx.Gen.GenStore(obj, vtableLabel, 0)
	return obj, 5 * tac.VarSize
}

func emitNewArrayExpr(ctx *Context, cur *frameCursor, e *ast.NewArrayExpr) (tac.Location, int) {
	sizeLoc, sizeBytes := emitExpr(ctx, cur, e.Size)

	zero := ctx.Gen.GenLoadConstantInt(0)
	isPositive := ctx.Gen.GenBinaryOp("<", zero, sizeLoc)
	errLabel := ctx.Gen.NewLabel()
	okLabel := ctx.Gen.NewLabel()
	ctx.Gen.GenIfZ(isPositive, errLabel)
	ctx.Gen.GenGoto(okLabel)

	ctx.Gen.GenLabel(errLabel)
	msg := ctx.Gen.GenLoadConstantString(tac.ErrArraySizeNonPositive)
	ctx.Gen.GenBuiltInCall(tac.PrintString, false, msg)
	ctx.Gen.GenBuiltInCall(tac.Halt, false)

	ctx.Gen.GenLabel(okLabel)
	varSizeConst := ctx.Gen.GenLoadConstantInt(tac.VarSize)
	elemBytes := ctx.Gen.GenBinaryOp("*", sizeLoc, varSizeConst)
	totalSize := ctx.Gen.GenBinaryOp("+", varSizeConst, elemBytes)
	arr := ctx.Gen.GenBuiltInCall(tac.Alloc, true, totalSize)
	ctx.Gen.GenStore(arr, sizeLoc, 0)

	return arr, sizeBytes + 5*tac.VarSize
}

func printBuiltinFor(t ast.Type) tac.BuiltIn {
	switch {
	case t.Equal(ast.IntType):
		return tac.PrintInt
	case t.Equal(ast.BoolType):
		return tac.PrintBool
	case t.Equal(ast.StringType):
		return tac.PrintString
	}
	panic(errors.Errorf("lower: Print does not support type %s", t))
}
