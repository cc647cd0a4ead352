// Package cfg incrementally builds a control flow graph from a stream of
// executed instructions, splitting the stream into basic blocks at jump
// boundaries and counting how often each edge was actually traversed.
package cfg

import (
	"fmt"
	"strings"
)

// JumpKind categorizes a control-transfer instruction as observed in a trace.
type JumpKind int

const (
	// JumpUnconditional always transfers control to the success address.
	JumpUnconditional JumpKind = iota
	// JumpConditionalTaken is a conditional jump whose branch was taken in
	// the traced run; control continued at the success address.
	JumpConditionalTaken
	// JumpConditionalNotTaken is a conditional jump whose branch was not
	// taken; control fell through to the failure address.
	JumpConditionalNotTaken
)

func (k JumpKind) String() string {
	switch k {
	case JumpUnconditional:
		return "unconditional"
	case JumpConditionalTaken:
		return "conditional-taken"
	case JumpConditionalNotTaken:
		return "conditional-not-taken"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Instruction is a decoded instruction record fed into the graph. It is a
// closed sum type: the only implementations are *Plain and *Jump.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Plain is a non-branching instruction.
type Plain struct {
	Mnemonic string
	Operand  string // empty when the instruction takes no operand
}

// NewPlain returns a non-branching instruction record.
func NewPlain(mnemonic, operand string) *Plain {
	return &Plain{Mnemonic: mnemonic, Operand: operand}
}

func (p *Plain) isInstruction() {}

func (p *Plain) String() string {
	return strings.TrimSpace(p.Mnemonic + " " + p.Operand)
}

// Jump is a control-transfer instruction. Failure is the fallthrough address
// and is mandatory for both conditional kinds; it is nil and ignored for
// JumpUnconditional.
type Jump struct {
	Mnemonic string
	Success  uint64
	Kind     JumpKind
	Failure  *uint64
}

// NewJump returns an unconditional jump record targeting success.
func NewJump(mnemonic string, success uint64) *Jump {
	return &Jump{Mnemonic: mnemonic, Success: success, Kind: JumpUnconditional}
}

// NewConditionalJump returns a conditional jump record. The kind states which
// branch the traced run actually followed.
func NewConditionalJump(mnemonic string, success uint64, kind JumpKind, failure uint64) *Jump {
	return &Jump{Mnemonic: mnemonic, Success: success, Kind: kind, Failure: &failure}
}

func (j *Jump) isInstruction() {}

func (j *Jump) String() string {
	return fmt.Sprintf("%s 0x%x", j.Mnemonic, j.Success)
}
