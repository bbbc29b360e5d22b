package main

import (
	"log"
	"log/slog"
	"os"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP Server over stdio.
This allows AI agents to validate and compile missions and run preflight
checks as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Ensure logs don't corrupt JSON-RPC on Stdout.
		log.SetOutput(os.Stderr)
		logger := logging.New(slog.LevelDebug)
		slog.SetDefault(logger)

		b := newBrain(cmd, brain.WithLogger(logger))
		srv := mcp.NewServer(b.Compiler(), b.Ledger(), b.Evidence())

		slog.Info("Starting Brain MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
