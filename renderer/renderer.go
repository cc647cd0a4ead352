// Package renderer provides a way to render a control flow graph in
// different formats.
package renderer

import (
	"io"

	"github.com/Calastrophe/ctrl-flow/cfg"
)

// Renderer defines the interface for rendering a control flow graph in
// different formats.
type Renderer interface {
	// Render writes the graph in the desired format to the provided writer.
	Render(graph *cfg.ControlFlowGraph, output io.Writer) error

	// Format returns the name of the output format (e.g., "dot", "json").
	Format() string
}
