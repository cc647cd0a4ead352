package cfg

import (
	"maps"
	"sort"
)

// Edge is a directed control-transfer edge from one basic block to another.
// Target is the destination block's index within the graph; indices are
// stable for the lifetime of the graph, so consumers may cache them.
type Edge struct {
	Target int    `json:"target"`
	Count  uint64 `json:"count"` // times the edge was observed taken; 0 means known but never taken
}

// BasicBlock is a contiguous run of instructions with a single entry point
// and a single exit, plus its outgoing edges.
type BasicBlock struct {
	start        uint64
	end          uint64
	instructions map[uint64]Instruction
	edges        []Edge
}

// NewBasicBlock returns an empty block anchored at start. The start address
// is immutable afterwards.
func NewBasicBlock(start uint64) *BasicBlock {
	return &BasicBlock{
		start:        start,
		end:          start,
		instructions: make(map[uint64]Instruction),
	}
}

// Start returns the address of the first instruction of the block.
func (b *BasicBlock) Start() uint64 {
	return b.start
}

// End returns the address of the most recently added instruction.
func (b *BasicBlock) End() uint64 {
	return b.end
}

// Contains reports whether an instruction has been recorded at addr.
func (b *BasicBlock) Contains(addr uint64) bool {
	_, ok := b.instructions[addr]
	return ok
}

// InstructionCount returns the number of distinct instruction addresses
// recorded in the block.
func (b *BasicBlock) InstructionCount() int {
	return len(b.instructions)
}

// AddInstruction records instr at addr. Re-adding an already-present address
// is a complete no-op: the table is not overwritten and End is not updated.
func (b *BasicBlock) AddInstruction(addr uint64, instr Instruction) {
	if _, ok := b.instructions[addr]; ok {
		return
	}
	b.instructions[addr] = instr
	b.end = addr
}

// AddEdge records a directed edge to the block at target. Edges are unique
// per target: a repeated addition increments the existing entry's count when
// traversed is true and leaves it unchanged otherwise.
func (b *BasicBlock) AddEdge(target int, traversed bool) {
	for i := range b.edges {
		if b.edges[i].Target == target {
			if traversed {
				b.edges[i].Count++
			}
			return
		}
	}
	var count uint64
	if traversed {
		count = 1
	}
	b.edges = append(b.edges, Edge{Target: target, Count: count})
}

// Instructions returns a copy of the address to instruction mapping.
func (b *BasicBlock) Instructions() map[uint64]Instruction {
	return maps.Clone(b.instructions)
}

// Addresses returns the recorded instruction addresses in ascending order.
func (b *BasicBlock) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(b.instructions))
	for addr := range b.instructions {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Edges returns a copy of the outgoing edges in installation order.
func (b *BasicBlock) Edges() []Edge {
	edges := make([]Edge, len(b.edges))
	copy(edges, b.edges)
	return edges
}
