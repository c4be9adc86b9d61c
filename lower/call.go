package lower

import (
	"decafc/ast"
	"decafc/scope"
	"decafc/tac"
)

// emitCall lowers the three call shapes spec §4.5 distinguishes:
// arr.length(), a free/static call, and a dispatched method call.
func emitCall(ctx *Context, cur *frameCursor, c *ast.Call) (tac.Location, int) {
	if c.Base != nil {
		if _, isArray := c.Base.GetType().(*ast.ArrayType); isArray && c.Method.Value == "length" {
			baseLoc, baseBytes := emitExpr(ctx, cur, c.Base)
			return ctx.Gen.GenLoad(baseLoc, 0), baseBytes + tac.VarSize
		}
	}

	methodDecl := resolveMethod(ctx, c)
	if methodDecl == nil {
		return emitFreeCall(ctx, cur, c)
	}
	return emitMethodCall(ctx, cur, c, methodDecl)
}

// resolveMethod reports the FnDecl c dispatches to when it is a method
// call: an explicit base always means a method call; no base means a
// method call only if the name resolves to a method of the enclosing
// class (spec §4.5 shape 3) rather than a free function (shape 2).
func resolveMethod(ctx *Context, c *ast.Call) *ast.FnDecl {
	if c.Base != nil {
		d, ok := scope.Resolve(ctx.Scopes, c.Method.Value, c.Base, c)
		if !ok {
			return nil
		}
		fn, _ := d.(*ast.FnDecl)
		return fn
	}
	d, ok := scope.Resolve(ctx.Scopes, c.Method.Value, nil, c)
	if !ok {
		return nil
	}
	fn, ok := d.(*ast.FnDecl)
	if !ok || !fn.IsMethod {
		return nil
	}
	return fn
}

func emitArgs(ctx *Context, cur *frameCursor, args []ast.Expr) ([]tac.Location, int) {
	locs := make([]tac.Location, len(args))
	bytes := 0
	for i, a := range args {
		loc, b := emitExpr(ctx, cur, a)
		locs[i] = loc
		bytes += b
	}
	return locs, bytes
}

func pushRightToLeft(ctx *Context, locs []tac.Location) {
	for i := len(locs) - 1; i >= 0; i-- {
		ctx.Gen.GenPushParam(locs[i])
	}
}

func emitFreeCall(ctx *Context, cur *frameCursor, c *ast.Call) (tac.Location, int) {
	argLocs, bytes := emitArgs(ctx, cur, c.Args)
	pushRightToLeft(ctx, argLocs)

	hasReturn := c.Typ != ast.VoidType
	loc := ctx.Gen.GenLCall(c.Method.Value, hasReturn)
	ctx.Gen.GenPopParams(len(argLocs) * tac.VarSize)

	if hasReturn {
		bytes += tac.VarSize
	}
	return loc, bytes
}

func emitMethodCall(ctx *Context, cur *frameCursor, c *ast.Call, method *ast.FnDecl) (tac.Location, int) {
	var receiver tac.Location
	recvBytes := 0
	if c.Base != nil {
		receiver, recvBytes = emitExpr(ctx, cur, c.Base)
	} else {
		receiver = thisLocation()
	}

	argLocs, argBytes := emitArgs(ctx, cur, c.Args)
	pushRightToLeft(ctx, argLocs)
	ctx.Gen.GenPushParam(receiver)

	vtable := ctx.Gen.GenLoad(receiver, 0)
	faddr := ctx.Gen.GenLoad(vtable, method.VTableOffset)
	hasReturn := method.HasReturnVal()
	loc := ctx.Gen.GenACall(faddr, hasReturn)
	ctx.Gen.GenPopParams((len(argLocs) + 1) * tac.VarSize)

	bytes := recvBytes + argBytes + 2*tac.VarSize
	if hasReturn {
		bytes += tac.VarSize
	}
	return loc, bytes
}
