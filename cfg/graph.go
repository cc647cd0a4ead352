package cfg

import "fmt"

// ControlFlowGraph folds a stream of executed instructions into basic blocks
// connected by traversal-counted edges. It is driven by one feeder calling
// Execute once per instruction in program order; it is not safe for
// concurrent mutation.
type ControlFlowGraph struct {
	current int
	blocks  []*BasicBlock
	index   map[uint64]int // block start address -> position in blocks
}

// New returns a graph seeded with a single basic block at the entry point.
func New(entryPoint uint64) *ControlFlowGraph {
	g := &ControlFlowGraph{
		blocks: []*BasicBlock{NewBasicBlock(entryPoint)},
		index:  map[uint64]int{entryPoint: 0},
	}
	return g
}

// Execute applies one decoded instruction at the given program counter.
//
// Plain instructions are appended to the current block. Jump instructions are
// appended and then resolved: the target block(s) are looked up or created,
// edges from the current block are installed with the traced outcome, and the
// cursor advances to the block containing the next program counter. Re-adding
// an instruction at an already-recorded address never duplicates the table
// entry; a jump's edge resolution still runs on every call, so traversal
// counts accumulate across repeated feedings of the same jump (loops).
//
// A failed Execute leaves the graph in a defined but incomplete state for
// that instruction: the instruction append is not rolled back.
func (g *ControlFlowGraph) Execute(pc uint64, instruction Instruction) error {
	if g.current < 0 || g.current >= len(g.blocks) {
		return fmt.Errorf("%w: index %d of %d blocks", ErrMissingCurrentBlock, g.current, len(g.blocks))
	}
	curr := g.blocks[g.current]
	if pc < curr.Start() {
		return fmt.Errorf("%w: pc 0x%x, block start 0x%x", ErrRewoundProgramCounter, pc, curr.Start())
	}
	curr.AddInstruction(pc, instruction)

	jump, ok := instruction.(*Jump)
	if !ok {
		return nil
	}

	switch jump.Kind {
	case JumpUnconditional:
		success := g.queryBlockOrCreate(jump.Success)
		if err := g.addEdge(g.current, success, true); err != nil {
			return err
		}
		g.current = success
	case JumpConditionalTaken:
		if jump.Failure == nil {
			return fmt.Errorf("%w: %s at 0x%x", ErrExpectedFailureAddress, jump.Mnemonic, pc)
		}
		failure := g.queryBlockOrCreate(*jump.Failure)
		if err := g.addEdge(g.current, failure, false); err != nil {
			return err
		}
		success := g.queryBlockOrCreate(jump.Success)
		if err := g.addEdge(g.current, success, true); err != nil {
			return err
		}
		g.current = success
	case JumpConditionalNotTaken:
		if jump.Failure == nil {
			return fmt.Errorf("%w: %s at 0x%x", ErrExpectedFailureAddress, jump.Mnemonic, pc)
		}
		failure := g.queryBlockOrCreate(*jump.Failure)
		if err := g.addEdge(g.current, failure, true); err != nil {
			return err
		}
		success := g.queryBlockOrCreate(jump.Success)
		if err := g.addEdge(g.current, success, false); err != nil {
			return err
		}
		g.current = failure
	default:
		return fmt.Errorf("unsupported jump kind %q at 0x%x", jump.Kind, pc)
	}
	return nil
}

// queryBlockOrCreate resolves an address to its block index, creating and
// appending a new empty block on first reference. Block start addresses are
// unique across the graph and indices are assigned in creation order.
func (g *ControlFlowGraph) queryBlockOrCreate(address uint64) int {
	if idx, ok := g.index[address]; ok {
		return idx
	}
	return g.addBlock(NewBasicBlock(address))
}

// addBlock appends a block and returns its index.
func (g *ControlFlowGraph) addBlock(block *BasicBlock) int {
	g.blocks = append(g.blocks, block)
	idx := len(g.blocks) - 1
	g.index[block.Start()] = idx
	return idx
}

// addEdge installs a directed edge between two blocks by index.
func (g *ControlFlowGraph) addEdge(src, dst int, traversed bool) error {
	if src < 0 || src >= len(g.blocks) {
		return fmt.Errorf("%w: source index %d", ErrMissingBlock, src)
	}
	if dst < 0 || dst >= len(g.blocks) {
		return fmt.Errorf("%w: destination index %d", ErrMissingBlock, dst)
	}
	g.blocks[src].AddEdge(dst, traversed)
	return nil
}

// NumBlocks returns the number of basic blocks discovered so far.
func (g *ControlFlowGraph) NumBlocks() int {
	return len(g.blocks)
}

// Blocks returns the basic blocks in creation order. The slice is a copy but
// the blocks themselves are shared; callers must not mutate them while a
// feeder is still executing instructions.
func (g *ControlFlowGraph) Blocks() []*BasicBlock {
	blocks := make([]*BasicBlock, len(g.blocks))
	copy(blocks, g.blocks)
	return blocks
}

// Block returns the basic block at the given index.
func (g *ControlFlowGraph) Block(index int) (*BasicBlock, error) {
	if index < 0 || index >= len(g.blocks) {
		return nil, fmt.Errorf("%w: index %d of %d blocks", ErrMissingBlock, index, len(g.blocks))
	}
	return g.blocks[index], nil
}

// Current returns the index of the block the cursor points at. After any
// successful Execute it is the block containing the next program counter.
func (g *ControlFlowGraph) Current() int {
	return g.current
}

// CurrentBlock returns the block the cursor points at.
func (g *ControlFlowGraph) CurrentBlock() (*BasicBlock, error) {
	if g.current < 0 || g.current >= len(g.blocks) {
		return nil, fmt.Errorf("%w: index %d of %d blocks", ErrMissingCurrentBlock, g.current, len(g.blocks))
	}
	return g.blocks[g.current], nil
}
