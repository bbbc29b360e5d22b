package main

import (
	"fmt"
	"os"
	"strings"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/process"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <mission-file>",
	Short: "Compile a mission and hand it to the dispatch loop",
	Long: `Compiles the mission, runs every policy gate, opens the evidence bundle and
records the planned tasks, then hands the plan to the dispatch loop.

No dispatch loop ships with this binary. Point --dispatch at an external
command to receive the dispatch request on stdin, or attach one through the
library's Dispatcher port; without it the run stops at the hand-off point.`,
	Args: cobra.ExactArgs(1),
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
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		runner := &brain.Runner{Output: os.Stdout}
		if dispatch, _ := cmd.Flags().GetString("dispatch"); dispatch != "" {
			fields := strings.Fields(dispatch)
			runner.Dispatcher = process.NewDispatcher(fields[0], fields[1:])
		}
		bundle, err := runner.Run(cmd.Context(), b, res)
		if err != nil {
			fmt.Printf("Run failed: %v\n", err)
			os.Exit(1)
		}
		if res.Request.BundleRequired {
			fmt.Printf("Evidence bundle: %s\n", bundle.ID())
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("dispatch", "", "External dispatch-loop command; receives the dispatch request on stdin")
}
