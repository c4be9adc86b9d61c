package codegen

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/kr/text"

	"decafc/tac"
)

// trace writes a structured dump of i when Debug is set. The teacher
// reached for a bare fmt.Printf("DEBUG: ...") at points of interest;
// here the dump is the instruction's rendered line plus an indented
// Go-syntax struct dump, so a developer stepping through a lowering
// bug can see both the emitted TAC and the exact field values behind
// it without reaching for a debugger.
func (g *CodeGenerator) trace(i tac.Instruction) {
	out := g.TraceOut
	if out == nil {
		out = os.Stderr
	}
	dump := text.Indent(fmt.Sprintf("%# v", pretty.Formatter(i)), "    ")
	fmt.Fprintf(out, "emit: %s\n%s\n", i, dump)
}
