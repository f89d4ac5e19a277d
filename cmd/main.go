package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFiles     []string
	logLevelFlag string
	rootCmd      = &cobra.Command{
		Use:           "teum",
		Short:         "Quotes and journal entries from a Notion database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override LOG_LEVEL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
