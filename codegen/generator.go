// Package codegen implements the CodeGenerator: the append-only TAC
// instruction sink every Gen* emitter writes to, plus the fresh-name
// counters and built-in call plumbing spec §4.1 describes.
package codegen

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"decafc/tac"
)

// CodeGenerator is the single piece of process-wide mutable state
// within one compilation: its instruction buffer and its two
// monotonic counters (spec §5). Nothing here is safe for concurrent
// use; a compilation is single-threaded end to end.
type CodeGenerator struct {
	instrs []tac.Instruction

	nextLabel int
	nextTemp  int

	// Debug, when set, makes every Gen* call also write a structured
	// trace of the instruction it just appended (see debug.go).
	Debug    bool
	TraceOut io.Writer
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

func (g *CodeGenerator) emit(i tac.Instruction) {
	g.instrs = append(g.instrs, i)
	if g.Debug {
		g.trace(i)
	}
}

// newTemp mints a fresh frame-relative temporary Location named _tmpN.
// Its Offset is left at zero and nothing in this core assigns
// temporaries a frame slot; a function's frame size counts them only
// through the lowering pass's GetMemBytes formulas (see lower/expr.go).
func (g *CodeGenerator) newTemp() tac.Location {
	name := fmt.Sprintf("_tmp%d", g.nextTemp)
	g.nextTemp++
	return tac.Location{Segment: tac.FrameRelative, Name: name}
}

// NewLabel mints a fresh label name without placing it.
func (g *CodeGenerator) NewLabel() string {
	name := fmt.Sprintf("_L%d", g.nextLabel)
	g.nextLabel++
	return name
}

func (g *CodeGenerator) GenLoadConstantInt(v int) tac.Location {
	dst := g.newTemp()
	g.emit(tac.LoadConstantInt{Dst: dst, Value: v})
	return dst
}

func (g *CodeGenerator) GenLoadConstantString(v string) tac.Location {
	dst := g.newTemp()
	g.emit(tac.LoadConstantString{Dst: dst, Value: v})
	return dst
}

func (g *CodeGenerator) GenLoadLabel(label string) tac.Location {
	dst := g.newTemp()
	g.emit(tac.LoadLabel{Dst: dst, Label: label})
	return dst
}

func (g *CodeGenerator) GenLoad(addr tac.Location, offset int) tac.Location {
	dst := g.newTemp()
	g.emit(tac.Load{Dst: dst, Addr: addr, Offset: offset})
	return dst
}

func (g *CodeGenerator) GenStore(addr, value tac.Location, offset int) {
	g.emit(tac.Store{Addr: addr, Value: value, Offset: offset})
}

func (g *CodeGenerator) GenAssign(dst, src tac.Location) tac.Location {
	g.emit(tac.Assign{Dst: dst, Src: src})
	return dst
}

// primitiveOps is the closed set GenBinaryOp accepts (spec §4.1); every
// other token must be synthesized upstream by lowering.
var primitiveOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, "==": true, "&&": true, "||": true,
}

func (g *CodeGenerator) GenBinaryOp(op string, l, r tac.Location) tac.Location {
	if !primitiveOps[op] {
		panic(errors.Errorf("codegen: %q is not a primitive binary operator", op))
	}
	dst := g.newTemp()
	g.emit(tac.BinaryOp{Dst: dst, Op: op, L: l, R: r})
	return dst
}

func (g *CodeGenerator) GenLabel(name string) {
	g.emit(tac.Label{Name: name})
}

func (g *CodeGenerator) GenIfZ(cond tac.Location, label string) {
	g.emit(tac.IfZ{Cond: cond, Label: label})
}

func (g *CodeGenerator) GenGoto(label string) {
	g.emit(tac.Goto{Label: label})
}

// GenBeginFunc appends a BeginFunc instruction and returns a pointer
// into the buffer so the caller can patch its frame size once the
// body's byte count is known (spec §4.1, §4.7).
func (g *CodeGenerator) GenBeginFunc() *tac.BeginFunc {
	b := &tac.BeginFunc{}
	g.emit(b)
	return b
}

func (g *CodeGenerator) GenEndFunc() {
	g.emit(tac.EndFunc{})
}

func (g *CodeGenerator) GenReturn(value *tac.Location) {
	if value == nil {
		g.emit(tac.Return{})
		return
	}
	g.emit(tac.Return{HasValue: true, Value: *value})
}

func (g *CodeGenerator) GenPushParam(value tac.Location) {
	g.emit(tac.PushParam{Value: value})
}

func (g *CodeGenerator) GenPopParams(bytes int) {
	g.emit(tac.PopParams{Bytes: bytes})
}

// GenLCall mints a destination temporary only when the call actually
// produces one: a void call's temp would never appear in its own
// rendered instruction, but it would still advance the counter and
// throw off every temp name minted after it.
func (g *CodeGenerator) GenLCall(label string, hasReturnVal bool) tac.Location {
	if !hasReturnVal {
		g.emit(tac.LCall{Label: label})
		return tac.Location{}
	}
	dst := g.newTemp()
	g.emit(tac.LCall{Dst: dst, HasReturn: true, Label: label})
	return dst
}

func (g *CodeGenerator) GenACall(addr tac.Location, hasReturnVal bool) tac.Location {
	if !hasReturnVal {
		g.emit(tac.ACall{Addr: addr})
		return tac.Location{}
	}
	dst := g.newTemp()
	g.emit(tac.ACall{Dst: dst, HasReturn: true, Addr: addr})
	return dst
}

// GenBuiltInCall calls a runtime-library built-in through the same
// push-params/call/pop-params protocol as any other call (spec §8 S1):
// a BuiltIn is just an LCall to a fixed label with its args pushed
// first.
func (g *CodeGenerator) GenBuiltInCall(which tac.BuiltIn, hasReturnVal bool, args ...tac.Location) tac.Location {
	for _, a := range args {
		g.emit(tac.PushParam{Value: a})
	}
	dst := g.GenLCall(which.String(), hasReturnVal)
	if len(args) > 0 {
		g.emit(tac.PopParams{Bytes: len(args) * tac.VarSize})
	}
	return dst
}

func (g *CodeGenerator) GenVTable(className string, methods []string) {
	g.emit(tac.VTable{ClassName: className, Methods: methods})
}

// DoFinalCodeGen returns the completed instruction stream in source-
// appearance order. Serializing it further (to MIPS or anything else)
// is out of scope here (spec §1, §6).
func (g *CodeGenerator) DoFinalCodeGen() []tac.Instruction {
	return g.instrs
}
