package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes burden's analyzers
as tools that LLMs can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "burden": {
        "command": "burden",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_debt        Unified 0-10 debt scores per function
  - analyze_complexity  Entropy-dampened cyclomatic and cognitive complexity
  - analyze_purity      Mutation and I/O classification
  - analyze_graph       Call graph with fan-in/fan-out and PageRank`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json) and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
