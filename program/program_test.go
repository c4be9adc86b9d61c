package program_test

import (
	"strings"
	"testing"

	"decafc/ast"
	"decafc/program"
	"decafc/tac"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Value: name} }

func render(instrs []tac.Instruction) string {
	var b strings.Builder
	for _, i := range instrs {
		b.WriteString(i.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Emit runs Check implicitly; a program that only ever calls Emit still
// gets a populated scope table (spec §6: Program::Check, Program::Emit).
func TestEmitRunsCheckImplicitly(t *testing.T) {
	main := ast.NewFnDecl(ident("main"), ast.VoidType, nil)
	main.SetBody(ast.NewStmtBlock(nil, nil))
	p := program.New(ast.NewProgram([]ast.Decl{main}))

	if _, err := p.Emit(); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if p.Scopes() == nil {
		t.Errorf("expected Emit to have populated the scope table")
	}
	if p.Layout() == nil {
		t.Errorf("expected Emit to have populated the layout table")
	}
}

func TestEmitProducesBalancedFunctionBody(t *testing.T) {
	main := ast.NewFnDecl(ident("main"), ast.VoidType, nil)
	main.SetBody(ast.NewStmtBlock(nil, []ast.Stmt{
		&ast.PrintStmt{Args: []ast.Expr{&ast.IntConstant{Value: 42}}},
	}))
	p := program.New(ast.NewProgram([]ast.Decl{main}))

	instrs, err := p.Emit()
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	got := render(instrs)
	if !strings.HasPrefix(got, "main:\nBeginFunc") {
		t.Errorf("expected output to open with the function label and BeginFunc, got:\n%s", got)
	}
	if !strings.Contains(got, "EndFunc") {
		t.Errorf("expected output to close with EndFunc, got:\n%s", got)
	}
}

// A double literal is an assertion failure (spec §7), not a recoverable
// user error: Emit must turn the internal panic into a normal error
// rather than letting it escape as a raw Go panic.
func TestEmitWrapsAssertionFailureAsError(t *testing.T) {
	main := ast.NewFnDecl(ident("main"), ast.VoidType, nil)
	main.SetBody(ast.NewStmtBlock(nil, []ast.Stmt{
		&ast.PrintStmt{Args: []ast.Expr{&ast.DoubleConstant{Value: 3.14}}},
	}))
	p := program.New(ast.NewProgram([]ast.Decl{main}))

	_, err := p.Emit()
	if err == nil {
		t.Fatalf("expected Emit to return an error for an unsupported double literal")
	}
	if !strings.Contains(err.Error(), "compilation aborted") {
		t.Errorf("expected a wrapped compilation-aborted error, got: %v", err)
	}
}

func TestDebugFlagForwardedToCodeGenerator(t *testing.T) {
	main := ast.NewFnDecl(ident("main"), ast.VoidType, nil)
	main.SetBody(ast.NewStmtBlock(nil, nil))
	p := program.New(ast.NewProgram([]ast.Decl{main}))
	p.Debug = true

	var trace strings.Builder
	p.TraceOut = &trace

	if _, err := p.Emit(); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if trace.Len() == 0 {
		t.Errorf("expected Debug=true to produce a non-empty trace")
	}
}
