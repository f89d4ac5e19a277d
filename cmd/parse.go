package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/parser"
)

func init() {
	var pageID string
	parseCmd := &cobra.Command{
		Use:   "parse RECORD_MAP_FILE",
		Short: "Extract rows or page text from a record map saved to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}

			p := parser.New()
			if err := p.ParseFile(args[0]); err != nil {
				logger.Error("Failed to parse input file", err, logger.Fields{"filepath": args[0]})
				return err
			}

			out := cmd.OutOrStdout()
			if pageID != "" {
				fmt.Fprintln(out, p.PageText(pageID))
				return nil
			}

			rows, err := p.Rows()
			if err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("Found %d rows", len(rows)))

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
	parseCmd.Flags().StringVar(&pageID, "page", "", "print the text of this page instead of the rows")
	rootCmd.AddCommand(parseCmd)
}
