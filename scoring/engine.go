package scoring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/build-flow-labs/apiscore/lint"
	"github.com/build-flow-labs/apiscore/openapi"
	"github.com/build-flow-labs/apiscore/ruleset"
)

const instrumentationName = "github.com/build-flow-labs/apiscore/scoring"

// Category display names and keys of the rule sets scored as a whole.
const (
	ConformanceName          = "Conformance"
	ConformanceKey           = "x-api-conformance"
	DeveloperExperienceName  = "Developer Experience"
	DeveloperExperienceKey   = "x-api-dx"
	MockingReadinessName     = "Mocking Readiness"
	MockingReadinessKey      = "x-api-mocking-readiness"
	DesignPatternRestfulName = "Design Pattern - Restful"
	DesignPatternRestfulKey  = "x-api-design-pattern-restful"
	URLVersioningName        = "URL Versioning"
	URLVersioningKey         = "x-url-versioning"
)

// ruleSets is the order in which rule sets are run and reported.
var ruleSets = []string{
	ruleset.Conformance,
	ruleset.DeveloperExperience,
	ruleset.MockingReadiness,
	ruleset.DesignPatternRestful,
	ruleset.OWASP,
	ruleset.URLVersioning,
}

// Options configures an Engine. The zero value scores with the embedded
// rule sets and emits no logs, traces or metrics.
type Options struct {
	Loader         ruleset.Loader
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Functions      map[string]lint.Function // extra rule functions available to every rule set
}

// Engine computes score reports. It keeps no state between calls and is
// safe for concurrent use.
type Engine struct {
	loader    ruleset.Loader
	logger    *slog.Logger
	tracer    trace.Tracer
	scores    metric.Int64Histogram
	functions map[string]lint.Function
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	e := &Engine{
		loader:    opts.Loader,
		logger:    opts.Logger,
		functions: opts.Functions,
	}
	if e.loader == nil {
		e.loader = ruleset.Builtin()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	e.tracer = tp.Tracer(instrumentationName)

	mp := opts.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	var err error
	e.scores, err = mp.Meter(instrumentationName).Int64Histogram(
		"apiscore.category.score",
		metric.WithDescription("Category score from 0 (worst) to 100 (best)"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}
	return e, nil
}

// Compute parses text and scores it. Parse failures are returned as
// *openapi.ParseError, rule set failures as *ruleset.LoadError or
// *lint.EvaluationError. No partial report is returned on error.
func (e *Engine) Compute(ctx context.Context, text string) (*Report, error) {
	ctx, span := e.tracer.Start(ctx, "scoring.Compute")
	defer span.End()

	start := time.Now()
	doc, err := openapi.Load(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}

	report, err := e.Run(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("api.title", report.Title),
		attribute.Int("apiscore.score", report.Score),
		attribute.Int("apiscore.issues", report.Issues()),
	)
	e.logger.Info("scored specification",
		"title", report.Title,
		"version", report.Version,
		"score", report.Score,
		"issues", report.Issues(),
		"duration", time.Since(start),
	)
	return report, nil
}

// Run scores an already loaded document. The rule sets run concurrently,
// each on its own engine; the first failure cancels the others.
func (e *Engine) Run(ctx context.Context, doc *openapi.Document) (*Report, error) {
	counts := openapi.Count(doc)
	results := make([][]lint.Diagnostic, len(ruleSets))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range ruleSets {
		i, name := i, name
		g.Go(func() error {
			diags, err := e.diagnose(gctx, doc, name)
			if err != nil {
				return err
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("rule set failed", "title", doc.Title, "error", err)
		return nil, err
	}

	categories := make([]Category, 0, 15)
	categories = append(categories,
		ScoreCategory(ConformanceName, ConformanceKey, results[0], ConformanceBaseline(counts)),
		ScoreCategory(DeveloperExperienceName, DeveloperExperienceKey, results[1], DeveloperExperienceBaseline(counts)),
		ScoreCategory(MockingReadinessName, MockingReadinessKey, results[2], MockingReadinessBaseline(counts)),
		ScoreCategory(DesignPatternRestfulName, DesignPatternRestfulKey, results[3], DesignPatternRestfulBaseline(counts)),
	)
	categories = append(categories, PartitionOWASP(results[4], OWASPBaseline(counts))...)
	categories = append(categories,
		ScoreCategory(URLVersioningName, URLVersioningKey, results[5], URLVersioningBaseline(counts)),
	)

	for _, c := range categories {
		e.scores.Record(ctx, int64(c.Score), metric.WithAttributes(attribute.String("category", c.Key)))
		e.logger.Debug("scored category",
			"category", c.Name,
			"key", c.Key,
			"score", c.Score,
			"issues", len(c.Issues),
		)
	}

	return &Report{
		Title:      doc.Title,
		Version:    doc.Version,
		Score:      Aggregate(categories),
		Categories: categories,
	}, nil
}

func (e *Engine) diagnose(ctx context.Context, doc *openapi.Document, name string) ([]lint.Diagnostic, error) {
	ctx, span := e.tracer.Start(ctx, "scoring.RuleSet",
		trace.WithAttributes(attribute.String("ruleset", name)))
	defer span.End()

	engine, err := ruleset.Compile(e.loader, name, lint.WithFunctions(e.functions))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rules", engine.Len()))
	e.logger.Debug("running rule set", "ruleset", engine.Name(), "rules", engine.Len())

	diags, err := engine.Run(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("diagnostics", len(diags)))
	return diags, nil
}
