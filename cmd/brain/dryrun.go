package main

import (
	"fmt"
	"os"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <mission-file>",
	Short: "Preview what a mission would execute",
	Long: `Compiles the mission and renders a human-readable preview of the execution
order, the mandate envelope and any compile warnings. Nothing is dispatched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := newBrain(cmd)
		plain, _ := cmd.Flags().GetBool("plain")

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

		md := tui.PlanMarkdown(res.Plan, res.Warnings)
		if plain {
			fmt.Println(md)
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, rerr := render(md)
		if rerr != nil {
			// Fall back to raw markdown when the terminal renderer fails.
			out = md
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(dryRunCmd)
	dryRunCmd.Flags().Bool("plain", false, "Print raw markdown without terminal styling")
}
