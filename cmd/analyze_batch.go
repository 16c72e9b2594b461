package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/logging"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/parser"
)

var (
	abOutDir      string
	abFormat      string
	abConcurrency int
	abSave        bool
	abFailFast    bool
	abQuiet       bool
)

type batchItem struct {
	path  string
	out   string
	rep   *fileReport
	wrote string
	saved string
	err   error
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files or globs...>",
	Short: "Analyze many files concurrently",
	Example: `  reportagent analyze-batch 'data/*.csv' 'data/*.xlsx' --out-dir reports
  reportagent analyze-batch q1.csv q2.csv --save --concurrency 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if err := checkFormat(abFormat); err != nil {
			return err
		}
		if abOutDir != "" {
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
		}

		items := make([]batchItem, len(files))
		if abOutDir != "" {
			for i, name := range outputNames(files, formatExt(abFormat)) {
				items[i].out = filepath.Join(abOutDir, name)
			}
		}
		an := newAnalyzer(nil)
		g, gctx := errgroup.WithContext(commandContext(cmd, ""))
		limit := abConcurrency
		if limit <= 0 {
			limit = 4
		}
		g.SetLimit(limit)
		for i, path := range files {
			i, path := i, path
			items[i].path = path
			g.Go(func() error {
				it := &items[i]
				it.err = processBatchFile(logging.WithRunID(gctx, uuid.NewString()), an, it)
				if it.err != nil && abFailFast {
					return fmt.Errorf("%s: %w", filepath.Base(path), it.err)
				}
				return nil
			})
		}
		waitErr := g.Wait()

		stdout := cmd.OutOrStdout()
		failed := 0
		for i, it := range items {
			switch {
			case it.err != nil:
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ [%d/%d] %s: %v\n", i+1, len(items), it.path, it.err)
			case !abQuiet:
				r := it.rep.Outcome.Result
				fmt.Fprintf(stdout, "✓ [%d/%d] %s: %d KPIs, %d trends, %d action items", i+1, len(items), it.path, len(r.KPIs), len(r.Trends), len(r.ActionItems))
				if it.wrote != "" {
					fmt.Fprintf(stdout, " -> %s", it.wrote)
				}
				if it.saved != "" {
					fmt.Fprintf(stdout, " (report %s)", it.saved)
				}
				fmt.Fprintln(stdout)
			}
		}
		if waitErr != nil {
			return waitErr
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(items))
		}
		return nil
	},
}

func processBatchFile(ctx context.Context, an *analysis.Analyzer, it *batchItem) error {
	rep, err := analyzeFile(ctx, an, it.path)
	if err != nil {
		return err
	}
	if it.out != "" {
		body, err := render(rep.Outcome, abFormat)
		if err != nil {
			return err
		}
		if err := os.WriteFile(it.out, body, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		it.wrote = it.out
	}
	if abSave {
		rec, err := saveReport(rep)
		if err != nil {
			return err
		}
		it.saved = rec.ID
	}
	it.rep = rep
	return nil
}

// outputNames derives one file name per input from its base name. Repeated
// bases get a __2, __3 suffix in input order.
func outputNames(files []string, ext string) []string {
	out := make([]string, len(files))
	used := map[string]bool{}
	for i, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		name := base + ext
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s__%d%s", base, n, ext)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// expandInputs resolves globs and literal paths, dropping duplicates and
// unsupported extensions, in sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok || !parser.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one analysis file per input")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "json", "output format for --out-dir: json|markdown|text")
	analyzeBatchCmd.Flags().IntVarP(&abConcurrency, "concurrency", "c", 4, "files analyzed at once")
	analyzeBatchCmd.Flags().BoolVar(&abSave, "save", false, "store every report")
	analyzeBatchCmd.Flags().BoolVar(&abFailFast, "fail-fast", false, "stop at the first failing file")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress per-file progress lines")
}
