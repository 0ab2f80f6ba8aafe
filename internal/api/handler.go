package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/agro"
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
	"github.com/SaadGoaya/Farmer-aid/internal/pipeline"
	"github.com/SaadGoaya/Farmer-aid/internal/rules"
	"github.com/SaadGoaya/Farmer-aid/internal/upstream"
	"github.com/go-chi/chi/v5"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	upstream *upstream.Client
	pipeline *pipeline.Pipeline
	store    *agro.ThresholdStore
	resolver *geo.Resolver
	engine   *rules.Engine
	repo     domain.Repository
	cache    domain.Cache
	bus      domain.EventBus
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(client *upstream.Client, p *pipeline.Pipeline, store *agro.ThresholdStore, resolver *geo.Resolver, engine *rules.Engine, repo domain.Repository, cache domain.Cache, bus domain.EventBus, version string) *Handler {
	return &Handler{
		upstream: client,
		pipeline: p,
		store:    store,
		resolver: resolver,
		engine:   engine,
		repo:     repo,
		cache:    cache,
		bus:      bus,
		version:  version,
	}
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// Geocode proxies GET /geocode to the upstream geocoding service and
// returns its JSON verbatim.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name is required",
		})
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, _ = strconv.Atoi(raw)
	}

	body, err := h.upstream.Geocode(r.Context(), upstream.GeocodeQuery{
		Name:         name,
		Count:        count,
		Language:     r.URL.Query().Get("language"),
		CountryCodes: r.URL.Query().Get("countrycodes"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeRaw(w, http.StatusOK, body)
}

// Weather proxies GET /weather to the upstream forecast service with the
// fixed parameter set and returns its JSON verbatim.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if latErr != nil || lonErr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "latitude and longitude are required",
		})
		return
	}

	body, err := h.upstream.ForecastJSON(r.Context(), lat, lon)
	if err != nil {
		writeError(w, err)
		return
	}

	writeRaw(w, http.StatusOK, body)
}

// Gemini proxies POST /gemini to the configured generative-text endpoint.
// Accepts either {"prompt": "..."} shorthand or a full upstream-shaped
// body. The upstream status code is propagated.
func (h *Handler) Gemini(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "prompt or a full request body is required",
		})
		return
	}

	respBody, status, err := h.upstream.Generate(r.Context(), body)
	if err != nil {
		var upstreamErr *upstream.Error
		if errors.As(err, &upstreamErr) {
			writeJSON(w, upstreamErr.StatusCode, map[string]string{
				"error": upstreamErr.Detail,
			})
			return
		}
		slog.Error("generative proxy failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeRaw(w, status, respBody)
}

// Resolve handles GET /resolve, exposing the zone/district resolver.
// Fields are empty when no match is found; resolution never fails.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")

	var lat, lon *float64
	if v, err := strconv.ParseFloat(q.Get("latitude"), 64); err == nil {
		lat = &v
	}
	if v, err := strconv.ParseFloat(q.Get("longitude"), 64); err == nil {
		lon = &v
	}

	if name == "" && (lat == nil || lon == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name or latitude and longitude are required",
		})
		return
	}

	place := h.resolver.Resolve(name, lat, lon)
	writeJSON(w, http.StatusOK, place)
}

// EvaluateRequest is the request body for POST /evaluate. Either a place
// name, a coordinate pair or an inline forecast payload must be supplied.
type EvaluateRequest struct {
	Crop      string                  `json:"crop"`
	Place     string                  `json:"place,omitempty"`
	Latitude  *float64                `json:"latitude,omitempty"`
	Longitude *float64                `json:"longitude,omitempty"`
	Forecast  *domain.ForecastPayload `json:"forecast,omitempty"`
}

// Evaluate handles POST /evaluate requests.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	eval, err := h.pipeline.Run(ctx, &pipeline.Request{
		Crop:      req.Crop,
		Place:     req.Place,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Payload:   req.Forecast,
		TraceID:   GetTraceID(ctx),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

// GetEvaluation retrieves an evaluation by ID.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	evalID := chi.URLParam(r, "id")

	if evalID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "evaluation id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	eval, err := h.repo.GetEvaluation(ctx, evalID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("failed to get evaluation", "id", evalID, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "evaluation not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

// ListEvaluations lists stored evaluations, optionally filtered by crop
// and a since timestamp (RFC 3339).
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	crop := r.URL.Query().Get("crop")
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "since must be an RFC 3339 timestamp",
			})
			return
		}
		since = parsed
	}

	evals, err := h.repo.ListEvaluations(ctx, crop, since)
	if err != nil {
		slog.Error("failed to list evaluations", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list evaluations",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluations": evals,
		"count":       len(evals),
	})
}

// ListThresholds returns every persisted threshold override.
func (h *Handler) ListThresholds(w http.ResponseWriter, r *http.Request) {
	overrides := h.store.List(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"thresholds": overrides,
		"count":      len(overrides),
	})
}

// GetThreshold retrieves the override for a (zone, crop) pair.
func (h *Handler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")
	crop := chi.URLParam(r, "crop")

	ts, _ := h.store.GetCustomThreshold(r.Context(), agro.OverrideKey(zone, crop))
	if ts == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no custom thresholds for this zone and crop",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":        agro.OverrideKey(zone, crop),
		"thresholds": ts,
	})
}

// PutThreshold creates or replaces the override for a (zone, crop) pair.
func (h *Handler) PutThreshold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zone := chi.URLParam(r, "zone")
	crop := chi.URLParam(r, "crop")

	var ts domain.ThresholdSet
	if err := json.NewDecoder(r.Body).Decode(&ts); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if err := h.store.Save(ctx, zone, crop, &ts); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	key := agro.OverrideKey(zone, crop)
	h.publishThresholdUpdate(ctx, "saved", key)

	slog.Info("custom threshold saved", "key", key)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":        key,
		"thresholds": ts,
	})
}

// DeleteThreshold removes the override for a (zone, crop) pair. The prior
// value stays available for a one-shot undo.
func (h *Handler) DeleteThreshold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zone := chi.URLParam(r, "zone")
	crop := chi.URLParam(r, "crop")

	if err := h.store.Delete(ctx, zone, crop); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "no custom thresholds for this zone and crop",
			})
			return
		}
		slog.Error("failed to delete custom threshold", "zone", zone, "crop", crop, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to delete custom threshold",
		})
		return
	}

	key := agro.OverrideKey(zone, crop)
	h.publishThresholdUpdate(ctx, "deleted", key)

	slog.Info("custom threshold deleted", "key", key)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "threshold override deleted",
		"key":     key,
	})
}

// UndoThreshold restores the most recently deleted override.
func (h *Handler) UndoThreshold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := h.store.Undo(ctx)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": err.Error(),
		})
		return
	}

	h.publishThresholdUpdate(ctx, "restored", key)

	slog.Info("custom threshold restored", "key", key)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "threshold override restored",
		"key":     key,
	})
}

// publishThresholdUpdate announces a threshold change on the event bus.
// Publish failures are logged, never surfaced to the caller.
func (h *Handler) publishThresholdUpdate(ctx context.Context, action, key string) {
	if h.bus == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"action": action,
		"key":    key,
	})
	if err := h.bus.Publish(ctx, domain.TopicThresholdUpdated, payload); err != nil {
		slog.Warn("failed to publish threshold update", "key", key, "error", err)
	}
}

// ListRules returns all loaded rules from the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	loadedRules := h.engine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": loadedRules,
		"count": len(loadedRules),
	})
}

// GetRule retrieves a rule by ID from the loaded engine rules.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	for _, rule := range h.engine.GetLoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Crop        string            `json:"crop,omitempty"`
	Expression  string            `json:"expression"`
	Bands       []domain.RuleBand `json:"bands"`
	Enabled     bool              `json:"enabled"`
}

// CreateRule validates a new alert rule, saves it to the database and
// then loads it into the engine.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	rule := &domain.AlertRule{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Crop:        req.Crop,
		Expression:  req.Expression,
		Bands:       req.Bands,
		Enabled:     req.Enabled,
	}

	if err := h.engine.ValidateRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	// Persist before loading so the engine never serves a rule the
	// repository rejected.
	if h.repo != nil {
		if err := h.repo.SaveAlertRule(ctx, rule); err != nil {
			slog.Error("failed to save alert rule", "id", rule.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	if err := h.engine.LoadRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	slog.Info("alert rule created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule": rule,
	})
}

// DeleteRule disables a rule in the database and reloads the engine.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if err := h.repo.DeleteAlertRule(ctx, ruleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "rule not found",
			})
			return
		}
		slog.Error("failed to delete alert rule", "id", ruleID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to delete rule",
		})
		return
	}

	// Auto-reload the engine after delete
	if err := h.reloadEngine(ctx); err != nil {
		slog.Error("failed to reload rules after delete", "error", err)
	}

	slog.Info("alert rule deleted", "id", ruleID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "rule deleted and engine reloaded",
	})
}

// ReloadRules reloads built-in and database rules into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if err := h.reloadEngine(ctx); err != nil {
		slog.Error("failed to reload rules", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	count := h.engine.RulesCount()
	slog.Info("rules reloaded", "count", count)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rules reloaded successfully",
		"count":   count,
	})
}

// reloadEngine replaces the engine's rule set with the built-in rules plus
// everything enabled in the database.
func (h *Handler) reloadEngine(ctx context.Context) error {
	dbRules, err := h.repo.ListAlertRules(ctx)
	if err != nil {
		return err
	}
	return h.engine.ReloadRules(append(rules.BuiltinRules(), dbRules...))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeRaw forwards an upstream response body verbatim.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps domain sentinel errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var upstreamErr *upstream.Error
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientData):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.As(err, &upstreamErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
