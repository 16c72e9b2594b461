package analysis

import (
	"context"
	"io"
	"log/slog"
)

// AnalysisResult is the output bundle handed to the reporting surface. Field
// names and enum values are a stable contract.
type AnalysisResult struct {
	Summary     string       `json:"summary"`
	KPIs        []KPI        `json:"kpis"`
	Trends      []Trend      `json:"trends"`
	ActionItems []ActionItem `json:"action_items"`
}

// Outcome is one finished run: the result bundle plus the intermediate
// artifacts the summary, the question fallback and the renderers draw on.
// It round-trips through JSON without the raw datasets, which only the
// pipeline stages read.
type Outcome struct {
	Kind     SourceKind        `json:"kind"`
	FileType string            `json:"file_type"`
	Result   AnalysisResult    `json:"result"`
	Profiles []ProfiledDataset `json:"profiles"`
	Text     *TextAnalysis     `json:"text,omitempty"`
}

// NarrationRequest is what the narrative backend gets to answer a question.
type NarrationRequest struct {
	Question string
	// Digest is a compact plain-text rendering of the outcome.
	Digest string
}

// Narrator is an optional free-text backend. Callers check Available before
// use; the pipeline never depends on it.
type Narrator interface {
	Available() bool
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}

// Analyzer runs the pipeline. It holds no mutable state and is safe for
// concurrent use.
type Analyzer struct {
	th       Thresholds
	log      *slog.Logger
	narrator Narrator
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThresholds replaces the default tuning.
func WithThresholds(th Thresholds) Option { return func(a *Analyzer) { a.th = th } }

// WithLogger sets the diagnostics sink passed to every stage.
func WithLogger(l *slog.Logger) Option { return func(a *Analyzer) { a.log = l } }

// WithNarrator attaches a narrative backend for Ask.
func WithNarrator(n Narrator) Option { return func(a *Analyzer) { a.narrator = n } }

// New builds an Analyzer with default thresholds and a discarding logger.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{th: DefaultThresholds()}
	for _, o := range opts {
		o(a)
	}
	a.log = loggerOr(a.log)
	return a
}

// Thresholds returns the tuning in use.
func (a *Analyzer) Thresholds() Thresholds { return a.th }

// Analyze runs normalization, profiling, trend classification, KPI extraction
// and action synthesis over one input. Only ErrMalformedInput and context
// errors are returned; every other failure degrades inside its stage.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	norm, err := Normalize(in, a.log)
	if err != nil {
		return nil, err
	}
	sets := make([]ProfiledDataset, 0, len(norm.Datasets))
	for _, ds := range norm.Datasets {
		sets = append(sets, ProfiledDataset{Dataset: ds, Profile: Profile(ds, a.log)})
	}
	trends := ClassifyTrends(sets, a.th, a.log)
	kpis := ExtractKPIs(sets, a.th, a.log)
	out := &Outcome{
		Kind:     norm.Kind,
		FileType: in.FileType,
		Profiles: sets,
		Text:     norm.Text,
		Result: AnalysisResult{
			KPIs:        kpis,
			Trends:      trends,
			ActionItems: SynthesizeActions(kpis, trends, a.th, a.log),
		},
	}
	out.Result.Summary = Summarize(out)
	a.log.InfoContext(ctx, "analysis complete",
		"kind", out.Kind, "datasets", len(sets),
		"kpis", len(kpis), "trends", len(trends), "actions", len(out.Result.ActionItems))
	return out, nil
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
