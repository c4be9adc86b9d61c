package lower

import (
	"decafc/ast"
	"decafc/tac"
)

// EmitProgram implements spec §4.3's Program lowering: assign every
// top-level variable a global Location, emit every declaration in
// order, then flush the buffer.
func EmitProgram(ctx *Context, prog *ast.Program) []tac.Instruction {
	nextGlobal := tac.OffsetToFirstGlobal
	for _, d := range prog.Decls {
		if v, ok := d.(*ast.VarDecl); ok {
			v.Location = &tac.Location{Segment: tac.Global, Offset: nextGlobal, Name: v.Name()}
			nextGlobal += tac.VarSize
		}
	}

	for _, d := range prog.Decls {
		emitDecl(ctx, d)
	}

	return ctx.Gen.DoFinalCodeGen()
}

func emitDecl(ctx *Context, d ast.Decl) {
	switch decl := d.(type) {
	case *ast.VarDecl:
		// A global's storage was already assigned in EmitProgram; a
		// field needs none. Either way there is nothing to emit.
	case *ast.FnDecl:
		emitFnDecl(ctx, decl)
	case *ast.ClassDecl:
		emitClassDecl(ctx, decl)
	case *ast.InterfaceDecl:
		// Carries no layout and no codegen obligations (spec §1/§9).
	}
}

// emitFnDecl assigns formal parameter offsets, emits the label and
// BeginFunc/EndFunc pair, and patches the frame size from the body's
// computed byte count (spec §4.3).
func emitFnDecl(ctx *Context, fn *ast.FnDecl) {
	offset := tac.OffsetToFirstParam
	if fn.IsMethod {
		offset += tac.VarSize // hidden `this` occupies parameter slot 0
	}
	for _, formal := range fn.Formals {
		formal.Location = &tac.Location{Segment: tac.FrameRelative, Offset: offset, Name: formal.Name()}
		offset += tac.VarSize
	}

	ctx.Gen.GenLabel(fn.Label)
	begin := ctx.Gen.GenBeginFunc()

	memBytes := 0
	if fn.Body != nil {
		memBytes = emitStmtBlock(ctx, newFrameCursor(), fn.Body)
		if !endsInReturn(fn.Body) {
			ctx.Gen.GenReturn(nil)
		}
	}
	begin.SetFrameSize(memBytes)

	ctx.Gen.GenEndFunc()
}

// endsInReturn reports whether b's last statement is itself a Return,
// so emitFnDecl knows whether it still needs to close the body with
// one (spec §8 S1 shows a trailing Return even for a body that never
// wrote one).
func endsInReturn(b *ast.StmtBlock) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.ReturnStmt)
	return ok
}

// emitClassDecl emits every member (fields are no-ops, methods emit
// their bodies) then records the class's vtable (spec §4.3).
func emitClassDecl(ctx *Context, c *ast.ClassDecl) {
	for _, m := range c.Members {
		emitDecl(ctx, m)
	}
	ctx.Gen.GenVTable(c.Name(), ctx.Layout.Methods(c.Name()))
}
