package layout

import (
	"context"
	"time"

	"ideamap-canvas/domain/core/aggregates"
	pkgerrors "ideamap-canvas/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "ideamap-canvas/layout"

// Recorder receives layout timings
type Recorder interface {
	RecordLayout(kind string, nodes int, duration time.Duration)
}

// Runner runs layouts with tracing, metrics and logging around them
type Runner struct {
	settings Settings
	logger   *zap.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// NewRunner creates a runner. Nil dependencies fall back to no-ops and the
// global otel tracer provider.
func NewRunner(settings Settings, logger *zap.Logger, tracer trace.Tracer, recorder Recorder) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Runner{
		settings: settings,
		logger:   logger,
		tracer:   tracer,
		recorder: recorder,
	}
}

// Settings returns the active layout tunables
func (r *Runner) Settings() Settings {
	return r.settings
}

// SetSettings replaces the layout tunables
func (r *Runner) SetSettings(settings Settings) {
	r.settings = settings
}

// Run computes a geometric layout. width overrides the level layout's
// horizontal extent when positive, so callers can pass the live container
// width.
func (r *Runner) Run(ctx context.Context, kind Kind, g *aggregates.Graph, width float64) (Result, error) {
	_, span := r.tracer.Start(ctx, "layout."+string(kind),
		trace.WithAttributes(attribute.Int("layout.nodes", g.Len())))
	defer span.End()
	start := time.Now()

	var (
		result Result
		err    error
	)
	switch kind {
	case KindRadial:
		result, err = Radial(g, r.settings.Radial)
	case KindLevel:
		s := r.settings.Level
		if width > 0 {
			s.Width = width
		}
		result, err = Level(g, s)
	case KindCluster:
		err = pkgerrors.NewValidationError("cluster layout groups nodes and does not place them")
	default:
		err = pkgerrors.NewValidationError("unknown layout: " + string(kind))
	}

	r.finish(span, kind, g.Len(), start, err)
	return result, err
}

// Clusters computes the category clustering
func (r *Runner) Clusters(ctx context.Context, g *aggregates.Graph) (Clustering, error) {
	_, span := r.tracer.Start(ctx, "layout."+string(KindCluster),
		trace.WithAttributes(attribute.Int("layout.nodes", g.Len())))
	defer span.End()
	start := time.Now()

	out, err := Cluster(g, r.settings.Cluster)
	if err == nil {
		span.SetAttributes(attribute.Int("layout.buckets", len(out.Buckets)))
	}

	r.finish(span, KindCluster, g.Len(), start, err)
	return out, err
}

func (r *Runner) finish(span trace.Span, kind Kind, nodes int, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Debug("Layout skipped",
			zap.String("kind", string(kind)),
			zap.Int("nodes", nodes),
			zap.Error(err))
		return
	}

	if r.recorder != nil {
		r.recorder.RecordLayout(string(kind), nodes, elapsed)
	}
	r.logger.Debug("Layout computed",
		zap.String("kind", string(kind)),
		zap.Int("nodes", nodes),
		zap.Duration("duration", elapsed))
}
