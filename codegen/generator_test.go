package codegen

import (
	"strings"
	"testing"

	"decafc/tac"
)

func TestGenLoadConstantIntFreshTemps(t *testing.T) {
	g := NewCodeGenerator()

	a := g.GenLoadConstantInt(42)
	b := g.GenLoadConstantInt(7)

	if a.Name == b.Name {
		t.Fatalf("expected distinct temporaries, got %s twice", a.Name)
	}
	if a.Name != "_tmp0" || b.Name != "_tmp1" {
		t.Errorf("expected _tmp0, _tmp1, got %s, %s", a.Name, b.Name)
	}
}

func TestGenBinaryOpRejectsNonPrimitive(t *testing.T) {
	tests := []struct {
		op    string
		valid bool
	}{
		{"+", true}, {"-", true}, {"*", true}, {"/", true}, {"%", true},
		{"<", true}, {"==", true}, {"&&", true}, {"||", true},
		{"<=", false}, {">", false}, {">=", false}, {"!=", false}, {"!", false},
	}

	for _, test := range tests {
		g := NewCodeGenerator()
		l := g.GenLoadConstantInt(1)
		r := g.GenLoadConstantInt(2)

		func() {
			defer func() {
				r := recover()
				if test.valid && r != nil {
					t.Errorf("GenBinaryOp(%q) panicked unexpectedly: %v", test.op, r)
				}
				if !test.valid && r == nil {
					t.Errorf("GenBinaryOp(%q) expected to panic on a synthesized operator", test.op)
				}
			}()
			g.GenBinaryOp(test.op, l, r)
		}()
	}
}

func TestGenLCallWithoutReturnValueYieldsNoLocation(t *testing.T) {
	g := NewCodeGenerator()
	loc := g.GenLCall("_PrintInt", false)
	if loc != (tac.Location{}) {
		t.Errorf("expected the zero Location for a void call, got %+v", loc)
	}
}

func TestGenBeginFuncHandlePatchesFrameSize(t *testing.T) {
	g := NewCodeGenerator()
	handle := g.GenBeginFunc()
	handle.SetFrameSize(24)

	instrs := g.DoFinalCodeGen()
	b, ok := instrs[0].(*tac.BeginFunc)
	if !ok {
		t.Fatalf("expected the first instruction to be *tac.BeginFunc, got %T", instrs[0])
	}
	if b.FrameBytes != 24 {
		t.Errorf("expected patched frame size 24, got %d", b.FrameBytes)
	}
}

func TestDoFinalCodeGenPreservesOrder(t *testing.T) {
	g := NewCodeGenerator()
	g.GenLabel("top")
	a := g.GenLoadConstantInt(1)
	b := g.GenLoadConstantInt(2)
	g.GenBinaryOp("+", a, b)
	g.GenGoto("top")

	instrs := g.DoFinalCodeGen()
	if len(instrs) != 5 {
		t.Fatalf("expected 5 instructions, got %d", len(instrs))
	}
	if _, ok := instrs[0].(tac.Label); !ok {
		t.Errorf("expected instrs[0] to be a Label, got %T", instrs[0])
	}
	if _, ok := instrs[4].(tac.Goto); !ok {
		t.Errorf("expected instrs[4] to be a Goto, got %T", instrs[4])
	}
}

func TestTraceWritesWhenDebugEnabled(t *testing.T) {
	g := NewCodeGenerator()
	g.Debug = true
	var out strings.Builder
	g.TraceOut = &out

	g.GenLoadConstantInt(5)

	if out.Len() == 0 {
		t.Errorf("expected a debug trace to be written when Debug is enabled")
	}
	if !strings.Contains(out.String(), "_tmp0") {
		t.Errorf("expected the trace to mention the emitted temporary, got %q", out.String())
	}
}

func TestNewLabelMonotonic(t *testing.T) {
	g := NewCodeGenerator()
	l0 := g.NewLabel()
	l1 := g.NewLabel()
	if l0 == l1 {
		t.Errorf("expected distinct labels, got %s twice", l0)
	}
	if l0 != "_L0" || l1 != "_L1" {
		t.Errorf("expected _L0, _L1, got %s, %s", l0, l1)
	}
}
