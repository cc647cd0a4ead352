// Package cmd defines all the commands for the cli
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Calastrophe/ctrl-flow/cfg"
	"github.com/Calastrophe/ctrl-flow/profile"
	"github.com/Calastrophe/ctrl-flow/renderer"
	"github.com/Calastrophe/ctrl-flow/traceparser/text"
	"github.com/urfave/cli/v2"
)

var (
	TraceProfileFlag = &cli.PathFlag{
		Name:     "trace-profile",
		Usage:    "Path to the trace profile config file",
		Required: true,
	}
	FormatFlag = &cli.StringFlag{
		Name:        "format",
		Usage:       "format of the output. Options: dot, json",
		Required:    false,
		DefaultText: "dot",
	}
	OutputPathFlag = &cli.PathFlag{
		Name:     "output-path",
		Usage:    "output file path for the rendered graph. Default: stdout",
		Required: false,
	}
)

func CreateBuildCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "build",
		Usage:       "Builds a control flow graph from an execution trace",
		Description: "Builds a control flow graph from an execution trace",
		Action:      action,
		Flags: []cli.Flag{
			TraceProfileFlag,
			FormatFlag,
			OutputPathFlag,
		},
	}
}

var BuildCommand = CreateBuildCommand(BuildGraph)

func BuildGraph(ctx *cli.Context) error {
	prof, err := profile.LoadProfile(ctx.Path(TraceProfileFlag.Name))
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}

	tracePath := ctx.Args().First()
	if tracePath == "" {
		return fmt.Errorf("no trace file provided")
	}

	graph, err := text.NewParser(prof).Parse(tracePath)
	if err != nil {
		return fmt.Errorf("error building graph: %w", err)
	}

	format := ctx.String(FormatFlag.Name)
	outputPath := ctx.Path(OutputPathFlag.Name)
	return writeGraph(graph, format, outputPath)
}

// writeGraph outputs the graph in the specified format.
func writeGraph(graph *cfg.ControlFlowGraph, format, outputPath string) error {
	var output *os.File
	if outputPath == "" {
		output = os.Stdout
	} else {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return fmt.Errorf("unable to determine absolute path: %w", err)
		}
		output, err = os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("unable to open output file: %w", err)
		}
		defer func() {
			_ = output.Close()
		}()
	}

	var rendererInstance renderer.Renderer
	switch format {
	case "json":
		rendererInstance = renderer.NewJSONRenderer()
	case "dot", "":
		rendererInstance = renderer.NewDOTRenderer()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	return rendererInstance.Render(graph, output)
}
