package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Calastrophe/ctrl-flow/cfg"
)

// DOTRenderer formats a control flow graph as a Graphviz digraph. Blocks
// become box nodes listing their instructions in address order; edges are
// labelled with their traversal count, dashed when the edge was never
// observed taken.
type DOTRenderer struct{}

// NewDOTRenderer creates a new instance of DOTRenderer.
func NewDOTRenderer() Renderer {
	return &DOTRenderer{}
}

// Render writes the graph in DOT format. Output is deterministic: blocks in
// creation order, instructions sorted by address, edges in installation
// order.
func (r *DOTRenderer) Render(graph *cfg.ControlFlowGraph, output io.Writer) error {
	var dot strings.Builder

	dot.WriteString("digraph cfg {\n")
	dot.WriteString("\tnode [shape=box, fontname=\"monospace\"];\n\n")

	blocks := graph.Blocks()
	for i, block := range blocks {
		dot.WriteString(fmt.Sprintf("\tb%d [label=\"%s\"];\n", i, blockLabel(i, block)))
	}
	dot.WriteString("\n")
	for i, block := range blocks {
		for _, edge := range block.Edges() {
			attrs := fmt.Sprintf("label=\"%d\"", edge.Count)
			if edge.Count == 0 {
				attrs += ", style=dashed"
			}
			dot.WriteString(fmt.Sprintf("\tb%d -> b%d [%s];\n", i, edge.Target, attrs))
		}
	}
	dot.WriteString("}\n")

	_, err := output.Write([]byte(dot.String()))
	return err
}

// blockLabel builds the node label: a header with the block index and
// address range, then one line per instruction. Lines use the Graphviz \l
// escape for left alignment.
func blockLabel(index int, block *cfg.BasicBlock) string {
	var label strings.Builder
	label.WriteString(fmt.Sprintf("block %d [0x%x - 0x%x]\\l", index, block.Start(), block.End()))

	instrs := block.Instructions()
	for _, addr := range block.Addresses() {
		label.WriteString(fmt.Sprintf("0x%x: %s\\l", addr, escapeDOT(instrs[addr].String())))
	}
	return label.String()
}

func escapeDOT(str string) string {
	str = strings.ReplaceAll(str, "\\", "\\\\")
	return strings.ReplaceAll(str, "\"", "\\\"")
}

// Format returns the format type.
func (r *DOTRenderer) Format() string {
	return "dot"
}
