// Package pipeline orchestrates a full evaluation: resolve the location,
// fetch and aggregate the forecast, evaluate suitability and alert rules,
// generate the advisory and persist the result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SaadGoaya/Farmer-aid/internal/advisory"
	"github.com/SaadGoaya/Farmer-aid/internal/agro"
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/forecast"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
	"github.com/SaadGoaya/Farmer-aid/internal/rules"
)

const engineVersion = "farmeraid-1.0"

var tracer = otel.Tracer("farmeraid-pipeline")

// ForecastSource fetches a decoded forecast payload for coordinates.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64) (*domain.ForecastPayload, error)
}

// Pipeline runs evaluations end to end.
type Pipeline struct {
	resolver  *geo.Resolver
	registry  *agro.Registry
	engine    *rules.Engine
	advisor   *advisory.Generator
	forecasts ForecastSource
	repo      domain.Repository
	bus       domain.EventBus
}

// New creates a pipeline. forecasts, repo and bus may be nil; the
// corresponding steps are then skipped (payload must be supplied inline,
// nothing is persisted or published).
func New(
	resolver *geo.Resolver,
	registry *agro.Registry,
	engine *rules.Engine,
	advisor *advisory.Generator,
	forecasts ForecastSource,
	repo domain.Repository,
	eventBus domain.EventBus,
) *Pipeline {
	return &Pipeline{
		resolver:  resolver,
		registry:  registry,
		engine:    engine,
		advisor:   advisor,
		forecasts: forecasts,
		repo:      repo,
		bus:       eventBus,
	}
}

// Request describes one evaluation. Either Payload or coordinates must be
// set; Place is optional and refines zone resolution.
type Request struct {
	Crop      string
	Place     string
	Latitude  *float64
	Longitude *float64

	// Payload, when set, is used instead of fetching from the weather API.
	Payload *domain.ForecastPayload

	TraceID string
}

// Run executes the pipeline and returns the completed evaluation.
func (p *Pipeline) Run(ctx context.Context, req *Request) (*domain.Evaluation, error) {
	start := time.Now()

	crop := strings.ToLower(strings.TrimSpace(req.Crop))
	if crop == "" {
		return nil, fmt.Errorf("%w: crop is required", domain.ErrInvalidInput)
	}
	if req.Payload == nil && (req.Latitude == nil || req.Longitude == nil) {
		return nil, fmt.Errorf("%w: coordinates or a forecast payload are required", domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("crop", crop),
		attribute.String("place", req.Place),
	)

	place := p.resolver.Resolve(req.Place, req.Latitude, req.Longitude)

	// Fetch forecast unless supplied inline
	payload := req.Payload
	var fetchMs int64
	if payload == nil {
		if p.forecasts == nil {
			return nil, fmt.Errorf("no forecast source configured")
		}
		fetchStart := time.Now()
		var err error
		payload, err = p.forecasts.Forecast(ctx, *req.Latitude, *req.Longitude)
		if err != nil {
			return nil, fmt.Errorf("forecast fetch failed: %w", err)
		}
		fetchMs = time.Since(fetchStart).Milliseconds()
	}

	evalStart := time.Now()

	agg, err := forecast.ComputeAggregate(payload)
	if err != nil {
		return nil, err
	}

	ts, source := p.registry.Resolve(ctx, place.Zone, place.District, crop)
	suitability := agro.Evaluate(agg, crop, ts, source, place.Zone, place.District)

	var ruleResults []domain.RuleResult
	if p.engine != nil {
		ruleResults, err = p.engine.EvaluateAll(ctx, &rules.EvaluateInput{
			Crop:      crop,
			Zone:      place.Zone,
			Aggregate: agg,
		})
		if err != nil {
			slog.Warn("rule evaluation failed", "crop", crop, "error", err)
		}
	}

	report := p.advisor.Generate(&advisory.Input{
		Crop:        crop,
		Location:    req.Place,
		Aggregate:   agg,
		Suitability: suitability,
	})

	evalMs := time.Since(evalStart).Milliseconds()

	eval := &domain.Evaluation{
		ID:          uuid.New().String(),
		Crop:        crop,
		Location:    req.Place,
		Zone:        place.Zone,
		District:    place.District,
		Timestamp:   time.Now().UTC(),
		Suitability: suitability,
		Advisory:    *report,
		RuleResults: ruleResults,
		Metadata: domain.EvaluationMetadata{
			TraceID:        req.TraceID,
			FetchMs:        fetchMs,
			EvalMs:         evalMs,
			TotalMs:        time.Since(start).Milliseconds(),
			RulesEvaluated: len(ruleResults),
			EngineVersion:  engineVersion,
		},
	}

	span.SetAttributes(
		attribute.String("evaluation.id", eval.ID),
		attribute.String("evaluation.status", string(suitability.Status)),
	)

	p.persist(ctx, eval)
	p.publish(ctx, eval)

	return eval, nil
}

// persist stores the evaluation. Failures are logged, not fatal; the
// caller still gets the result.
func (p *Pipeline) persist(ctx context.Context, eval *domain.Evaluation) {
	if p.repo == nil {
		return
	}
	if err := p.repo.SaveEvaluation(ctx, eval); err != nil {
		slog.Warn("failed to persist evaluation",
			"evaluation_id", eval.ID,
			"error", err,
		)
	}
}

// publish emits the completed event, plus an alert event when warranted.
func (p *Pipeline) publish(ctx context.Context, eval *domain.Evaluation) {
	if p.bus == nil {
		return
	}

	payload, err := json.Marshal(eval)
	if err != nil {
		slog.Warn("failed to encode evaluation event", "evaluation_id", eval.ID, "error", err)
		return
	}

	if err := p.bus.Publish(ctx, domain.TopicEvaluationCompleted, payload); err != nil {
		slog.Warn("failed to publish completion event", "evaluation_id", eval.ID, "error", err)
	}

	if eval.Alerted() {
		if err := p.bus.Publish(ctx, domain.TopicAdvisoryAlert, payload); err != nil {
			slog.Warn("failed to publish alert event", "evaluation_id", eval.ID, "error", err)
		}
	}
}
