// Package lower implements Emit: the traversal that walks a laid-out,
// scope-resolved AST and produces TAC for every declaration,
// statement, and expression (spec §4.3-§4.7).
package lower

import (
	"github.com/pkg/errors"

	"decafc/codegen"
	"decafc/layout"
	"decafc/scope"
	"decafc/tac"
)

// Context threads the pieces lowering needs through every Emit call:
// the code generator, the scope table built earlier for name
// resolution, the layout table for vtable label lists, and the
// break-label stack. The break-label stack is the one genuinely
// dynamically-scoped piece of state spec §5/§9 calls out; it lives
// here, as a field threaded through calls, rather than as a package
// variable.
type Context struct {
	Gen    *codegen.CodeGenerator
	Scopes *scope.Table
	Layout *layout.Table

	breakLabels []string
}

func NewContext(gen *codegen.CodeGenerator, scopes *scope.Table, lay *layout.Table) *Context {
	return &Context{Gen: gen, Scopes: scopes, Layout: lay}
}

func (c *Context) pushBreakLabel(label string) {
	c.breakLabels = append(c.breakLabels, label)
}

func (c *Context) popBreakLabel() {
	c.breakLabels = c.breakLabels[:len(c.breakLabels)-1]
}

// topBreakLabel returns the nearest enclosing loop's exit label. Its
// caller (a Break statement) is only ever reachable inside a loop in
// semantically valid input (spec §4.4); an empty stack here is a
// compiler-internal assertion failure, not a user error.
func (c *Context) topBreakLabel() string {
	if len(c.breakLabels) == 0 {
		panic(errors.New("lower: break outside any loop"))
	}
	return c.breakLabels[len(c.breakLabels)-1]
}

// thisLocation is the fixed fp-relative Location every method body
// addresses its receiver through (spec §4.5).
func thisLocation() tac.Location {
	return tac.Location{Segment: tac.FrameRelative, Offset: tac.OffsetToFirstParam, Name: "this"}
}

// frameCursor hands out frame-relative offsets for a single function's
// locals, decreasing monotonically from OffsetToFirstLocal (spec §3
// invariant 5). It never resets mid-function: nested blocks continue
// the same cursor their enclosing block left off at, since all of a
// function's locals share one physical frame regardless of lexical
// nesting.
type frameCursor struct {
	nextOffset int
}

func newFrameCursor() *frameCursor {
	return &frameCursor{nextOffset: tac.OffsetToFirstLocal}
}

func (f *frameCursor) alloc(bytes int) int {
	offset := f.nextOffset
	f.nextOffset -= bytes
	return offset
}
