package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <mission-file>",
	Short: "Compile a mission into an execution plan",
	Long: `Validates the mission document and emits the deterministic execution plan
(with its derived mandate) as JSON.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := newBrain(cmd)
		output, _ := cmd.Flags().GetString("output")

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

		data, err := json.MarshalIndent(res.Plan, "", "  ")
		if err != nil {
			fmt.Printf("Failed to encode plan: %v\n", err)
			os.Exit(1)
		}
		data = append(data, '\n')

		if output == "" {
			os.Stdout.Write(data)
			return
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			fmt.Printf("Failed to write %s: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("Plan %s written to %s\n", res.Plan.PlanID, output)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "Write the compile result to a file instead of stdout")
}
