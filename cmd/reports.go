package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/store"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/utils"
)

var reportsShowFormat string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List, show or delete saved reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := store.New(cfg.ReportsDir).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "(no reports)")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILE\tTYPE\tSIZE\tUPLOADED\tKPIS\tACTIONS")
		for _, r := range recs {
			kpis, actions := "-", "-"
			if res := r.Result(); res != nil {
				kpis, actions = fmt.Sprint(len(res.KPIs)), fmt.Sprint(len(res.ActionItems))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", r.ID, r.FileName, r.FileType, r.FileSize,
				r.UploadedAt.Local().Format("2006-01-02 15:04"), kpis, actions)
		}
		return tw.Flush()
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(reportsShowFormat); err != nil {
			return err
		}
		rec, err := store.New(cfg.ReportsDir).Load(args[0])
		if err != nil {
			return err
		}
		if rec.Outcome == nil {
			return printJSON(cmd, rec)
		}
		body, err := render(rec.Outcome, reportsShowFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved report",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := store.New(cfg.ReportsDir).Delete(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted report %s\n", id)
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsDeleteCmd)
	reportsShowCmd.Flags().StringVarP(&reportsShowFormat, "format", "f", "json", "output format: json|markdown|text")
}
