package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <mission-file>",
	Short: "Check a mission document for consistency",
	Long:  `Parses the mission document and reports every structural rule violation found.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := newBrain(cmd)

		findings, err := b.ValidateFile(args[0])
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		if len(findings) > 0 {
			for _, f := range findings {
				fmt.Println(f)
			}
			os.Exit(1)
		}
		fmt.Println("Mission is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
