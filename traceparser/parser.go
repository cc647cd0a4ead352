package traceparser

import "github.com/Calastrophe/ctrl-flow/cfg"

// Parser holds the interface for parsing an execution trace into a control
// flow graph.
type Parser interface {
	Parse(path string) (*cfg.ControlFlowGraph, error)
}

// RecordType represents the type of a parsed trace record.
type RecordType int

const (
	RecordTypePlain  RecordType = iota // a non-branching instruction
	RecordTypeJump                     // an unconditional jump
	RecordTypeBranch                   // a conditional jump with a recorded outcome
)
