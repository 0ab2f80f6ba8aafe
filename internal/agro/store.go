package agro

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// ThresholdStore manages user threshold overrides on top of the repository.
// Read and write failures degrade to "no custom data" so the evaluator
// always has a valid built-in fallback tier.
//
// Delete keeps the removed value in memory for a one-shot undo. The undo is
// deliberately not persisted; it is lost on restart.
type ThresholdStore struct {
	repo domain.Repository

	mu        sync.Mutex
	lastKey   string
	lastValue *domain.ThresholdSet
}

// NewThresholdStore creates a store. repo may be nil; every operation then
// behaves as if no custom data exists.
func NewThresholdStore(repo domain.Repository) *ThresholdStore {
	return &ThresholdStore{repo: repo}
}

// Save validates and persists an override for (zone, crop).
func (s *ThresholdStore) Save(ctx context.Context, zone, crop string, ts *domain.ThresholdSet) error {
	if ts == nil {
		return fmt.Errorf("threshold set is required")
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("invalid threshold set: %w", err)
	}
	if s.repo == nil {
		return fmt.Errorf("no repository configured")
	}
	return s.repo.SaveCustomThreshold(ctx, OverrideKey(zone, crop), ts)
}

// GetCustomThreshold implements OverrideSource. Storage errors are logged
// and reported as "no custom data".
func (s *ThresholdStore) GetCustomThreshold(ctx context.Context, key string) (*domain.ThresholdSet, error) {
	if s.repo == nil {
		return nil, nil
	}
	ts, err := s.repo.GetCustomThreshold(ctx, key)
	if err != nil {
		slog.Warn("custom threshold read failed", "key", key, "error", err)
		return nil, nil
	}
	return ts, nil
}

// List returns every persisted override. Storage errors degrade to an empty
// map.
func (s *ThresholdStore) List(ctx context.Context) map[string]*domain.ThresholdSet {
	if s.repo == nil {
		return map[string]*domain.ThresholdSet{}
	}
	overrides, err := s.repo.ListCustomThresholds(ctx)
	if err != nil {
		slog.Warn("custom threshold list failed", "error", err)
		return map[string]*domain.ThresholdSet{}
	}
	return overrides
}

// Delete removes the override for (zone, crop) and caches the prior value
// for a one-shot undo.
func (s *ThresholdStore) Delete(ctx context.Context, zone, crop string) error {
	if s.repo == nil {
		return fmt.Errorf("no repository configured")
	}

	key := OverrideKey(zone, crop)
	prior, err := s.repo.GetCustomThreshold(ctx, key)
	if err != nil {
		slog.Warn("could not read prior value before delete", "key", key, "error", err)
	}

	if err := s.repo.DeleteCustomThreshold(ctx, key); err != nil {
		return err
	}

	if prior != nil {
		s.mu.Lock()
		s.lastKey = key
		s.lastValue = prior
		s.mu.Unlock()
	}
	return nil
}

// Undo restores the most recently deleted override. Returns the restored
// key, or an error when there is nothing to undo. The cached value is
// cleared whether or not the restore succeeds.
func (s *ThresholdStore) Undo(ctx context.Context) (string, error) {
	s.mu.Lock()
	key, value := s.lastKey, s.lastValue
	s.lastKey, s.lastValue = "", nil
	s.mu.Unlock()

	if value == nil {
		return "", fmt.Errorf("nothing to undo")
	}
	if s.repo == nil {
		return "", fmt.Errorf("no repository configured")
	}
	if err := s.repo.SaveCustomThreshold(ctx, key, value); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", key, err)
	}
	return key, nil
}
