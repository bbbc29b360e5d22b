package main

import (
	"fmt"
	"os"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brain",
	Short: "Brain is a mission compiler and mandate enforcement engine",
	Long: `Brain compiles declarative mission documents into deterministic execution
plans and enforces the budget, approval and tool mandates governing them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("evidence-dir", ".", "Base directory for evidence bundle manifests")
	rootCmd.PersistentFlags().String("seed", "", "Seed namespacing all compiled task and plan identifiers")
}

// newBrain assembles the engine from the persistent flags.
func newBrain(cmd *cobra.Command, extra ...brain.Option) *brain.Brain {
	evidenceDir, _ := cmd.Flags().GetString("evidence-dir")
	seed, _ := cmd.Flags().GetString("seed")

	opts := []brain.Option{brain.WithEvidenceDir(evidenceDir)}
	if seed != "" {
		opts = append(opts, brain.WithSeed(seed))
	}
	opts = append(opts, extra...)
	return brain.New(opts...)
}
