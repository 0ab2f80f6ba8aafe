package agro

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
)

// DefaultZoneKey is used in override keys when no zone is known.
const DefaultZoneKey = "default"

// OverrideSource supplies user threshold overrides. Lookup errors must not
// break evaluation; the registry logs and falls through to built-in tiers.
type OverrideSource interface {
	GetCustomThreshold(ctx context.Context, key string) (*domain.ThresholdSet, error)
}

// Registry resolves effective thresholds through the four tiers:
// custom override, district table, zone table, generic table.
type Registry struct {
	overrides OverrideSource // may be nil
}

// NewRegistry creates a registry. overrides may be nil, in which case only
// the built-in tiers are consulted.
func NewRegistry(overrides OverrideSource) *Registry {
	return &Registry{overrides: overrides}
}

// OverrideKey builds the override map key "<zone-or-default>::<crop>".
func OverrideKey(zone, crop string) string {
	if zone == "" {
		zone = DefaultZoneKey
	}
	return zone + "::" + strings.ToLower(crop)
}

// Resolve returns the effective threshold set for a crop at a location and
// the tier it came from. A nil set with SourceNone means no thresholds are
// known for the crop; the caller falls back to crop-agnostic checks.
func (r *Registry) Resolve(ctx context.Context, zone, district, crop string) (*domain.ThresholdSet, domain.ThresholdSource) {
	crop = strings.ToLower(strings.TrimSpace(crop))
	if crop == "" {
		return nil, domain.SourceNone
	}

	if r.overrides != nil {
		ts, err := r.overrides.GetCustomThreshold(ctx, OverrideKey(zone, crop))
		if err != nil {
			slog.Warn("custom threshold lookup failed", "zone", zone, "crop", crop, "error", err)
		} else if ts != nil {
			return ts, domain.SourceCustom
		}
	}

	if district != "" && geo.ZoneOf(district) == zone {
		if table, ok := districtThresholds[district]; ok {
			if ts, ok := table[crop]; ok {
				return &ts, domain.SourceDistrict
			}
		}
	}

	if table, ok := zoneThresholds[zone]; ok {
		if ts, ok := table[crop]; ok {
			return &ts, domain.SourceZone
		}
	}

	if ts, ok := genericThresholds[crop]; ok {
		return &ts, domain.SourceGeneric
	}

	return nil, domain.SourceNone
}
