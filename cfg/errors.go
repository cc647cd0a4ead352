package cfg

import "errors"

var (
	// ErrMissingBlock reports an edge or lookup operation that referenced a
	// basic block index outside the graph. It indicates an internal
	// invariant violation and is never swallowed.
	ErrMissingBlock = errors.New("referenced basic block does not exist in the graph")

	// ErrMissingCurrentBlock reports a cursor pointing outside the block
	// collection.
	ErrMissingCurrentBlock = errors.New("current block does not exist in the graph")

	// ErrExpectedFailureAddress reports a conditional jump submitted without
	// a failure address.
	ErrExpectedFailureAddress = errors.New("conditional jump requires a failure address")

	// ErrRewoundProgramCounter reports a program counter lower than the
	// current block's start address, which means the feeder rewound
	// mid-block and violated its sequencing contract.
	ErrRewoundProgramCounter = errors.New("program counter precedes the current block's start address")
)
