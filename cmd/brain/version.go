package main

import (
	"fmt"
	"strings"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of brain",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brain version %s\n", strings.TrimSpace(brain.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
