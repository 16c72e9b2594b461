package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/parser"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/store"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/utils"
)

// fileReport is one analyzed input file.
type fileReport struct {
	Path    string
	Size    int64
	Outcome *analysis.Outcome
}

func newAnalyzer(n analysis.Narrator) *analysis.Analyzer {
	opts := []analysis.Option{analysis.WithThresholds(cfg.Analysis), analysis.WithLogger(logger)}
	if n != nil {
		opts = append(opts, analysis.WithNarrator(n))
	}
	return analysis.New(opts...)
}

func analyzeFile(ctx context.Context, an *analysis.Analyzer, path string) (*fileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	in, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	out, err := an.Analyze(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filepath.Base(path), err)
	}
	return &fileReport{Path: path, Size: info.Size(), Outcome: out}, nil
}

func saveReport(rep *fileReport) (*store.Record, error) {
	rec := &store.Record{
		FileName: filepath.Base(rep.Path),
		FileType: rep.Outcome.FileType,
		FileSize: rep.Size,
		Outcome:  rep.Outcome,
	}
	if err := store.New(cfg.ReportsDir).Save(rec); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return rec, nil
}

// render formats an outcome as json (the result bundle), markdown or text
// (the summary alone).
func render(out *analysis.Outcome, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return utils.PrettyJSON(out.Result)
	case "markdown", "md":
		return []byte(out.Markdown()), nil
	case "text", "txt":
		return []byte(out.Result.Summary), nil
	}
	return nil, checkFormat(format)
}

func checkFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json", "markdown", "md", "text", "txt":
		return nil
	}
	return fmt.Errorf("unsupported --format: %s (use json|markdown|text)", format)
}

func formatExt(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md":
		return ".md"
	case "text", "txt":
		return ".txt"
	}
	return ".json"
}
