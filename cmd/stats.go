package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Calastrophe/ctrl-flow/cfg"
	"github.com/Calastrophe/ctrl-flow/profile"
	"github.com/Calastrophe/ctrl-flow/traceparser/text"
	"github.com/urfave/cli/v2"
)

func CreateStatsCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "stats",
		Usage:       "Summarizes the control flow graph built from an execution trace",
		Description: "Summarizes the control flow graph built from an execution trace",
		Action:      action,
		Flags: []cli.Flag{
			TraceProfileFlag,
		},
	}
}

var StatsCommand = CreateStatsCommand(GraphStats)

func GraphStats(ctx *cli.Context) error {
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

	_, err = os.Stdout.WriteString(buildStatsReport(prof, graph))
	return err
}

// hotEdge pairs an edge with its source block for the traversal ranking.
type hotEdge struct {
	source int
	edge   cfg.Edge
}

// buildStatsReport formats a block and edge summary of the graph.
func buildStatsReport(prof *profile.TraceProfile, graph *cfg.ControlFlowGraph) string {
	blocks := graph.Blocks()

	instructions := 0
	edges := make([]hotEdge, 0)
	untraversed := 0
	for i, block := range blocks {
		instructions += block.InstructionCount()
		for _, edge := range block.Edges() {
			edges = append(edges, hotEdge{source: i, edge: edge})
			if edge.Count == 0 {
				untraversed++
			}
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].edge.Count > edges[j].edge.Count
	})

	var report strings.Builder
	report.WriteString("==============================\n")
	report.WriteString("Control Flow Graph Summary\n")
	report.WriteString("==============================\n\n")
	report.WriteString(fmt.Sprintf("Profile: %s\n", prof.Name))
	report.WriteString(fmt.Sprintf("Basic blocks: %d\n", len(blocks)))
	report.WriteString(fmt.Sprintf("Instructions: %d\n", instructions))
	report.WriteString(fmt.Sprintf("Edges: %d (never taken: %d)\n\n", len(edges), untraversed))

	report.WriteString("------------------------------\n")
	report.WriteString("Blocks\n")
	report.WriteString("------------------------------\n")
	for i, block := range blocks {
		report.WriteString(fmt.Sprintf("block %d: [0x%x - 0x%x], %d instruction(s), %d edge(s)\n",
			i, block.Start(), block.End(), block.InstructionCount(), len(block.Edges())))
	}

	if len(edges) > 0 {
		report.WriteString("\n------------------------------\n")
		report.WriteString("Edges by traversal count\n")
		report.WriteString("------------------------------\n")
		for _, he := range edges {
			report.WriteString(fmt.Sprintf("block %d -> block %d: %d\n", he.source, he.edge.Target, he.edge.Count))
		}
	}
	return report.String()
}
