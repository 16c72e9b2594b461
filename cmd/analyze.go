package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaFormat     string
	anaSave       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze one business file and print its KPIs, trends and action items",
	Example: `  reportagent analyze sales.csv
  reportagent analyze q3.xlsx --format markdown -o q3.md
  reportagent analyze report.pdf --save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := checkFormat(anaFormat); err != nil {
			return err
		}
		ctx := commandContext(cmd, uuid.NewString())
		rep, err := analyzeFile(ctx, newAnalyzer(nil), path)
		if err != nil {
			return err
		}
		body, err := render(rep.Outcome, anaFormat)
		if err != nil {
			return err
		}

		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		if anaSave {
			rec, err := saveReport(rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(stderr, "✓ Saved report %s\n", rec.ID)
		}
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, body, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(stderr, "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(stdout, string(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "json", "output format: json|markdown|text")
	analyzeCmd.Flags().BoolVar(&anaSave, "save", false, "store the report for later 'reports' and 'ask --report'")
}
