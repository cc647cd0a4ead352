package main

import (
	"context"
	"log"
	"os"

	"github.com/Calastrophe/ctrl-flow/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = os.Args[0]
	app.Usage = "Control Flow Graph Builder"
	app.Description = "Builds a control flow graph from an execution trace and renders it"
	app.Commands = []*cli.Command{
		cmd.BuildCommand,
		cmd.StatsCommand,
	}
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
