// Package tac defines the three-address-code operand and instruction
// model: the Location value type, the instruction vocabulary, and the
// fixed frame-layout constants every other package computes offsets
// against (spec §3 "TAC Location", §4.1).
package tac

// Segment is where a Location's storage lives.
type Segment int

const (
	// Global is a global-pointer-relative slot: Program-level variables.
	Global Segment = iota
	// FrameRelative is a frame-pointer-relative slot: parameters,
	// locals, and temporaries, all addressed off the current frame
	// pointer at Offset bytes (positive above it, negative below).
	FrameRelative
)

func (s Segment) String() string {
	if s == Global {
		return "gp-rel"
	}
	return "fp-rel"
}

// Location is an operand descriptor: (segment, offset, symbolic name).
// It is a value type — copied, never mutated in place, never aliased.
type Location struct {
	Segment Segment
	Offset  int
	Name    string
}

// Frame-layout constants (spec §4.1). All offsets are in bytes; every
// slot (global, parameter, local, temporary) is exactly one VarSize
// word regardless of the Decaf type it holds — Decaf has no sub-word
// or multi-word scalar types once doubles are excluded (spec Non-goals).
const (
	VarSize            = 4
	OffsetToFirstParam = 4
	OffsetToFirstLocal = -8
	OffsetToFirstField = 4
	OffsetToFirstMethod = 0
	OffsetToFirstGlobal = 0
)
