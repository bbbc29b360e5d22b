package main

import (
	"fmt"
	"os"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <mission-file>",
	Short: "Export the plan dependency graph",
	Long:  `Compiles the mission and outputs a Mermaid diagram (graph TD) of the task dependency DAG.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := newBrain(cmd)

		res, err := b.CompileFile(args[0])
		if err != nil {
			fmt.Printf("Compile failed: %v\n", err)
			os.Exit(1)
		}
		if !res.Success {
			for _, e := range res.Errors {
				fmt.Println(e)
			}
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(res.Plan))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
