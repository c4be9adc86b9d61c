// Package program orchestrates the full compilation pipeline this core
// exposes to its external driver (spec §6): Check builds the scope
// chain, Emit runs layout then lowering and flushes the final TAC
// instruction stream.
package program

import (
	"io"

	"github.com/pkg/errors"

	"decafc/ast"
	"decafc/codegen"
	"decafc/layout"
	"decafc/lower"
	"decafc/scope"
	"decafc/tac"
)

// Program wraps one compilation's AST root together with the side
// tables Check and Emit populate as they run.
type Program struct {
	AST *ast.Program

	// Debug, when set, is forwarded to the CodeGenerator so every
	// emitted instruction is also traced (codegen.CodeGenerator.Debug).
	Debug    bool
	TraceOut io.Writer

	scopes *scope.Table
	layout *layout.Table
}

// New wraps root for compilation. root must already be a complete,
// semantically-valid tree (spec §1): this core does no name-resolution
// or type-checking error reporting of its own.
func New(root *ast.Program) *Program {
	return &Program{AST: root}
}

// Check builds the scope chain (spec §3 "Scope", §6 "Program::Check").
// Emit calls it automatically if it has not already run; exposed
// separately because some callers (tests, a future incremental driver)
// want the scope table without paying for a full Emit.
func (p *Program) Check() *scope.Table {
	if p.scopes == nil {
		p.scopes = scope.BuildScopes(p.AST)
	}
	return p.scopes
}

// Scopes returns the table Check built, or nil if Check/Emit has not
// run yet.
func (p *Program) Scopes() *scope.Table { return p.scopes }

// Layout returns the table Emit's PreEmit pass built, or nil if Emit
// has not run yet.
func (p *Program) Layout() *layout.Table { return p.layout }

// Emit runs PreEmit layout, then lowering, and returns the final TAC
// instruction stream (spec §4.3 "Program", §6 "Program::Emit").
//
// The core assumes semantically valid input (spec §7): a violation of
// that assumption — a nil child where one is required, a double
// literal, an unrecognized operator token — is an assertion failure,
// not a recoverable error, and it aborts emission entirely rather than
// producing a partial instruction stream. Emit is the single point
// that turns such a panic into a normal Go error, wrapped with
// github.com/pkg/errors so the caller gets a stack trace alongside the
// message instead of an unannotated runtime panic.
func (p *Program) Emit() (instrs []tac.Instruction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPanic(r)
		}
	}()

	st := p.Check()
	lay := layout.PreEmit(p.AST, st)
	p.layout = lay

	gen := codegen.NewCodeGenerator()
	gen.Debug = p.Debug
	gen.TraceOut = p.TraceOut

	ctx := lower.NewContext(gen, st, lay)
	instrs = lower.EmitProgram(ctx, p.AST)
	return instrs, nil
}

func wrapPanic(r interface{}) error {
	if e, ok := r.(error); ok {
		return errors.Wrap(e, "program: compilation aborted")
	}
	return errors.Errorf("program: compilation aborted: %v", r)
}
