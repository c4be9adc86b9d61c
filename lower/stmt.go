package lower

import (
	"github.com/pkg/errors"

	"decafc/ast"
	"decafc/tac"
)

// emitStmt lowers one statement, returning the GetMemBytes byte count
// its subtree contributes to the enclosing function's frame (spec
// §4.4, §4.7).
func emitStmt(ctx *Context, cur *frameCursor, s ast.Stmt) int {
	switch stmt := s.(type) {
	case *ast.StmtBlock:
		return emitStmtBlock(ctx, cur, stmt)
	case *ast.IfStmt:
		return emitIfStmt(ctx, cur, stmt)
	case *ast.WhileStmt:
		return emitWhileStmt(ctx, cur, stmt)
	case *ast.ForStmt:
		return emitForStmt(ctx, cur, stmt)
	case *ast.BreakStmt:
		ctx.Gen.GenGoto(ctx.topBreakLabel())
		return 0
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			ctx.Gen.GenReturn(nil)
			return 0
		}
		loc, bytes := emitExpr(ctx, cur, stmt.Value)
		ctx.Gen.GenReturn(&loc)
		return bytes
	case *ast.PrintStmt:
		return emitPrintStmt(ctx, cur, stmt)
	case *ast.ExprStmt:
		_, bytes := emitExpr(ctx, cur, stmt.X)
		return bytes
	}
	panic(errors.New("lower: unreachable Stmt kind"))
}

// emitStmtBlock assigns each local an fp-relative slot off the
// function's running frame cursor, then emits every statement in
// order.
func emitStmtBlock(ctx *Context, cur *frameCursor, b *ast.StmtBlock) int {
	bytes := 0
	for _, decl := range b.Decls {
		offset := cur.alloc(tac.VarSize)
		decl.Location = &tac.Location{Segment: tac.FrameRelative, Offset: offset, Name: decl.Name()}
		bytes += tac.VarSize
	}
	for _, stmt := range b.Stmts {
		bytes += emitStmt(ctx, cur, stmt)
	}
	return bytes
}

func emitIfStmt(ctx *Context, cur *frameCursor, s *ast.IfStmt) int {
	els := ctx.Gen.NewLabel()
	bot := ctx.Gen.NewLabel()

	testLoc, bytes := emitExpr(ctx, cur, s.Test)
	ctx.Gen.GenIfZ(testLoc, els)
	bytes += emitStmt(ctx, cur, s.Then)
	ctx.Gen.GenGoto(bot)
	ctx.Gen.GenLabel(els)
	if s.Else != nil {
		bytes += emitStmt(ctx, cur, s.Else)
	}
	ctx.Gen.GenLabel(bot)
	return bytes
}

func emitWhileStmt(ctx *Context, cur *frameCursor, s *ast.WhileStmt) int {
	top := ctx.Gen.NewLabel()
	bot := ctx.Gen.NewLabel()
	ctx.pushBreakLabel(bot)
	defer ctx.popBreakLabel()

	ctx.Gen.GenLabel(top)
	testLoc, bytes := emitExpr(ctx, cur, s.Test)
	ctx.Gen.GenIfZ(testLoc, bot)
	bytes += emitStmt(ctx, cur, s.Body)
	ctx.Gen.GenGoto(top)
	ctx.Gen.GenLabel(bot)
	return bytes
}

func emitForStmt(ctx *Context, cur *frameCursor, s *ast.ForStmt) int {
	bytes := 0
	if s.Init != nil {
		_, b := emitExpr(ctx, cur, s.Init)
		bytes += b
	}

	top := ctx.Gen.NewLabel()
	bot := ctx.Gen.NewLabel()
	ctx.pushBreakLabel(bot)
	defer ctx.popBreakLabel()

	ctx.Gen.GenLabel(top)
	testLoc, testBytes := emitExpr(ctx, cur, s.Test)
	bytes += testBytes
	ctx.Gen.GenIfZ(testLoc, bot)
	bytes += emitStmt(ctx, cur, s.Body)
	if s.Step != nil {
		_, b := emitExpr(ctx, cur, s.Step)
		bytes += b
	}
	ctx.Gen.GenGoto(top)
	ctx.Gen.GenLabel(bot)
	return bytes
}

func emitPrintStmt(ctx *Context, cur *frameCursor, s *ast.PrintStmt) int {
	bytes := 0
	for _, arg := range s.Args {
		loc, b := emitExpr(ctx, cur, arg)
		bytes += b
		ctx.Gen.GenBuiltInCall(printBuiltinFor(arg.GetType()), false, loc)
	}
	return bytes
}
