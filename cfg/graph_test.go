package cfg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGraph(t *testing.T) {
	graph := New(0x1000)

	assert.Equal(t, 1, graph.NumBlocks())
	assert.Equal(t, 0, graph.Current())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x1000), entry.Start())
	assert.Equal(t, uint64(0x1000), entry.End())
}

func TestUnconditionalJump(t *testing.T) {
	graph := New(2)

	assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(4, NewPlain("LDAC", "Op")))
	assert.NoError(t, graph.Execute(5, NewJump("JMP", 9)))
	assert.NoError(t, graph.Execute(10, NewPlain("INC", "")))

	assert.Equal(t, 2, graph.NumBlocks())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), entry.Start())
	assert.Equal(t, uint64(5), entry.End())

	edges := entry.Edges()
	assert.Len(t, edges, 1)
	assert.Equal(t, 1, edges[0].Target)
	assert.Equal(t, uint64(1), edges[0].Count)

	target, err := graph.Block(1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), target.Start())
	assert.Equal(t, uint64(10), target.End())
	assert.Equal(t, 1, graph.Current())
}

func TestConditionalTaken(t *testing.T) {
	graph := New(2)

	assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(4, NewPlain("LDAC", "Op")))
	assert.NoError(t, graph.Execute(5, NewConditionalJump("JMP", 9, JumpConditionalTaken, 6)))

	// Entry, failure target, success target
	assert.Equal(t, 3, graph.NumBlocks())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	edges := entry.Edges()
	assert.Len(t, edges, 2)

	// The failure block is resolved first, so it takes index 1
	failure, err := graph.Block(1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), failure.Start())
	assert.Equal(t, 1, edges[0].Target)
	assert.Equal(t, uint64(0), edges[0].Count)

	success, err := graph.Block(2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), success.Start())
	assert.Equal(t, 2, edges[1].Target)
	assert.Equal(t, uint64(1), edges[1].Count)

	assert.Equal(t, 2, graph.Current())
}

func TestConditionalNotTaken(t *testing.T) {
	graph := New(2)

	assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(4, NewPlain("LDAC", "Op")))
	assert.NoError(t, graph.Execute(5, NewConditionalJump("JMP", 9, JumpConditionalNotTaken, 6)))

	assert.Equal(t, 3, graph.NumBlocks())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	edges := entry.Edges()
	assert.Len(t, edges, 2)

	failure, err := graph.Block(1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), failure.Start())
	assert.Equal(t, 1, edges[0].Target)
	assert.Equal(t, uint64(1), edges[0].Count)

	success, err := graph.Block(2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), success.Start())
	assert.Equal(t, 2, edges[1].Target)
	assert.Equal(t, uint64(0), edges[1].Count)

	// Control fell through, so the cursor ends at the failure block
	assert.Equal(t, 1, graph.Current())
}

func TestMissingFailureAddress(t *testing.T) {
	for _, kind := range []JumpKind{JumpConditionalTaken, JumpConditionalNotTaken} {
		graph := New(2)
		assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))

		jump := &Jump{Mnemonic: "JMP", Success: 9, Kind: kind}
		err := graph.Execute(5, jump)
		assert.ErrorIs(t, err, ErrExpectedFailureAddress)

		// The jump was appended before resolution failed; nothing else moved
		assert.Equal(t, 1, graph.NumBlocks())
		assert.Equal(t, 0, graph.Current())

		entry, berr := graph.Block(0)
		assert.NoError(t, berr)
		assert.True(t, entry.Contains(5))
		assert.Empty(t, entry.Edges())
	}
}

func TestPlainReplayIsNoOp(t *testing.T) {
	graph := New(2)
	assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(4, NewPlain("LDAC", "Op")))

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	before := entry.InstructionCount()
	end := entry.End()

	assert.NoError(t, graph.Execute(3, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(4, NewPlain("LDAC", "Op")))

	assert.Equal(t, 1, graph.NumBlocks())
	assert.Equal(t, before, entry.InstructionCount())
	assert.Equal(t, end, entry.End())
	assert.Empty(t, entry.Edges())
}

// A loop back-edge is fed once per iteration; every traversal increments the
// edge count while the instruction table stays fixed.
func TestLoopAccumulatesTraversals(t *testing.T) {
	graph := New(0)
	assert.NoError(t, graph.Execute(0, NewPlain("INC", "")))

	for i := 0; i < 3; i++ {
		assert.NoError(t, graph.Execute(1, NewConditionalJump("JNZ", 0, JumpConditionalTaken, 2)))
		assert.NoError(t, graph.Execute(0, NewPlain("INC", "")))
	}
	assert.NoError(t, graph.Execute(1, NewConditionalJump("JNZ", 0, JumpConditionalNotTaken, 2)))

	// Entry block (start 0) plus the fallthrough block (start 2); the back
	// edge targets the entry block itself
	assert.Equal(t, 2, graph.NumBlocks())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	assert.Equal(t, 2, entry.InstructionCount())

	edges := entry.Edges()
	assert.Len(t, edges, 2)
	assert.Equal(t, 1, edges[0].Target)
	assert.Equal(t, uint64(1), edges[0].Count) // exited the loop once
	assert.Equal(t, 0, edges[1].Target)
	assert.Equal(t, uint64(3), edges[1].Count) // looped three times

	assert.Equal(t, 1, graph.Current())
}

func TestSameSuccessAndFailureAddress(t *testing.T) {
	graph := New(0)
	assert.NoError(t, graph.Execute(0, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(1, NewConditionalJump("JZ", 4, JumpConditionalTaken, 4)))

	assert.Equal(t, 2, graph.NumBlocks())

	entry, err := graph.Block(0)
	assert.NoError(t, err)
	edges := entry.Edges()

	// Both installs hit the same target: one entry, count reflecting the
	// single taken traversal
	assert.Len(t, edges, 1)
	assert.Equal(t, 1, edges[0].Target)
	assert.Equal(t, uint64(1), edges[0].Count)
	assert.Equal(t, 1, graph.Current())
}

func TestJumpToExistingBlock(t *testing.T) {
	graph := New(0)
	assert.NoError(t, graph.Execute(0, NewPlain("INC", "")))
	assert.NoError(t, graph.Execute(1, NewJump("JMP", 8)))
	assert.NoError(t, graph.Execute(8, NewPlain("DEC", "")))
	assert.NoError(t, graph.Execute(9, NewJump("JMP", 8)))

	// The second jump resolves to the existing block, not a new one
	assert.Equal(t, 2, graph.NumBlocks())

	target, err := graph.Block(1)
	assert.NoError(t, err)
	edges := target.Edges()
	assert.Len(t, edges, 1)
	assert.Equal(t, 1, edges[0].Target) // self loop
	assert.Equal(t, uint64(1), edges[0].Count)
	assert.Equal(t, 1, graph.Current())
}

// After every successful Execute the cursor's block starts at or before the
// next program counter the feeder will supply.
func TestCursorFollowsControlFlow(t *testing.T) {
	graph := New(2)

	steps := []struct {
		pc     uint64
		instr  Instruction
		nextPC uint64
	}{
		{3, NewPlain("INC", ""), 4},
		{4, NewPlain("LDAC", "Op"), 5},
		{5, NewConditionalJump("JMP", 9, JumpConditionalTaken, 6), 9},
		{9, NewJump("JMP", 6), 6},
		{6, NewPlain("DEC", ""), 7},
	}

	for _, step := range steps {
		assert.NoError(t, graph.Execute(step.pc, step.instr))
		curr, err := graph.CurrentBlock()
		assert.NoError(t, err)
		assert.LessOrEqual(t, curr.Start(), step.nextPC)
	}
}

func TestRewoundProgramCounter(t *testing.T) {
	graph := New(0x10)
	assert.NoError(t, graph.Execute(0x10, NewPlain("nop", "")))

	err := graph.Execute(0x8, NewPlain("nop", ""))
	assert.ErrorIs(t, err, ErrRewoundProgramCounter)

	entry, berr := graph.Block(0)
	assert.NoError(t, berr)
	assert.Equal(t, 1, entry.InstructionCount())
	assert.Equal(t, uint64(0x10), entry.End())
}

func TestMissingBlockErrors(t *testing.T) {
	graph := New(0)

	_, err := graph.Block(5)
	assert.ErrorIs(t, err, ErrMissingBlock)

	_, err = graph.Block(-1)
	assert.ErrorIs(t, err, ErrMissingBlock)

	assert.True(t, errors.Is(graph.addEdge(0, 3, true), ErrMissingBlock))
	assert.True(t, errors.Is(graph.addEdge(3, 0, true), ErrMissingBlock))
}
