package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/store"
)

var (
	askReport   bool
	askProvider string
	askModel    string
	askNoAI     bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file|report-id> <question>",
	Short: "Ask a question about a file or a saved report",
	Example: `  reportagent ask sales.csv "What are the main findings?"
  reportagent ask --report 3f2a "Which actions are most urgent?"
  reportagent ask sales.csv "trends?" --no-ai`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, question := args[0], args[1]
		ctx := commandContext(cmd, uuid.NewString())

		var narrator analysis.Narrator
		provider, model := "", ""
		if !askNoAI {
			n, p, err := buildNarrator(cfg, runtimeOptions{ProviderFlag: askProvider, ModelFlag: askModel})
			if err != nil {
				return err
			}
			narrator, provider, model = n, p, askModel
			if model == "" {
				model = cfg.Model
			}
		}
		an := newAnalyzer(narrator)

		var out *analysis.Outcome
		if askReport {
			rec, err := store.New(cfg.ReportsDir).Load(target)
			if err != nil {
				return err
			}
			if rec.Outcome == nil {
				return fmt.Errorf("report %s has no analysis", rec.ID)
			}
			out = rec.Outcome
		} else {
			rep, err := analyzeFile(ctx, an, target)
			if err != nil {
				return err
			}
			out = rep.Outcome
		}

		ans, err := an.Ask(ctx, out, question)
		if err != nil {
			return err
		}
		if ans.NarratorErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: AI answer unavailable, answering from the analysis: %v\n", explainAIError(ans.NarratorErr, provider, model))
		}
		if askJSON {
			return printJSON(cmd, ans)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askReport, "report", false, "treat the first argument as a saved report id (or unique prefix)")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "AI provider: openai|openrouter|ollama (overrides config)")
	askCmd.Flags().StringVar(&askModel, "model", "", "model name (overrides config)")
	askCmd.Flags().BoolVar(&askNoAI, "no-ai", false, "answer from the analysis only")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer and its source as JSON")
}
