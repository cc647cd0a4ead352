package renderer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Calastrophe/ctrl-flow/cfg"
)

// JSONRenderer renders a control flow graph in JSON format.
type JSONRenderer struct{}

func NewJSONRenderer() Renderer {
	return &JSONRenderer{}
}

// GraphView is the JSON shape of a rendered graph. Block indices double as
// block identities; edges reference blocks by index.
type GraphView struct {
	Current int         `json:"current"`
	Blocks  []BlockView `json:"blocks"`
}

type BlockView struct {
	Index        int               `json:"index"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Instructions []InstructionView `json:"instructions"`
	Edges        []cfg.Edge        `json:"edges"`
}

type InstructionView struct {
	Address string `json:"address"`
	Text    string `json:"text"`
}

func (r *JSONRenderer) Render(graph *cfg.ControlFlowGraph, output io.Writer) error {
	view := GraphView{
		Current: graph.Current(),
		Blocks:  make([]BlockView, 0, graph.NumBlocks()),
	}
	for i, block := range graph.Blocks() {
		instrs := block.Instructions()
		blockView := BlockView{
			Index:        i,
			Start:        fmt.Sprintf("0x%x", block.Start()),
			End:          fmt.Sprintf("0x%x", block.End()),
			Instructions: make([]InstructionView, 0, len(instrs)),
			Edges:        block.Edges(),
		}
		for _, addr := range block.Addresses() {
			blockView.Instructions = append(blockView.Instructions, InstructionView{
				Address: fmt.Sprintf("0x%x", addr),
				Text:    instrs[addr].String(),
			})
		}
		view.Blocks = append(view.Blocks, blockView)
	}
	return json.NewEncoder(output).Encode(view)
}

func (r *JSONRenderer) Format() string {
	return "json"
}
