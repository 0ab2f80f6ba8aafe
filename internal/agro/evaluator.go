package agro

import (
	"fmt"
	"strings"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// Crop-agnostic bounds used when no thresholds exist for a crop.
const (
	extremeHeatMax = 42.0
	extremeColdMin = 2.0
	hotDryMaxTemp  = 35.0
	hotDryRainMM   = 5.0
)

// Evaluate compares a forecast aggregate against a resolved threshold set
// and classifies the result. Each violated bound contributes exactly one
// reason; the status derives from the reason count alone. Pure computation,
// no side effects.
func Evaluate(agg domain.ForecastAggregate, crop string, ts *domain.ThresholdSet, source domain.ThresholdSource, zone, district string) domain.SuitabilityResult {
	crop = strings.ToLower(strings.TrimSpace(crop))

	result := domain.SuitabilityResult{
		Reasons:  []string{},
		Metrics:  agg,
		Zone:     zone,
		District: district,
		Source:   source,
		IsCustom: source == domain.SourceCustom,
	}

	if ts == nil {
		result.Reasons = genericChecks(agg)
		result.Source = domain.SourceNone
		result.Status = domain.StatusForReasons(len(result.Reasons))
		return result
	}

	if agg.AvgMaxTemp < ts.IdealMax[0] {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"average maximum temperature %.1f°C is below the ideal %.0f–%.0f°C range for %s",
			agg.AvgMaxTemp, ts.IdealMax[0], ts.IdealMax[1], crop))
	} else if agg.AvgMaxTemp > ts.IdealMax[1] {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"average maximum temperature %.1f°C exceeds the ideal %.0f–%.0f°C range for %s",
			agg.AvgMaxTemp, ts.IdealMax[0], ts.IdealMax[1], crop))
	}

	if agg.AvgMinTemp < ts.IdealMin[0] {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"average minimum temperature %.1f°C is below the ideal %.0f–%.0f°C range for %s",
			agg.AvgMinTemp, ts.IdealMin[0], ts.IdealMin[1], crop))
	} else if agg.AvgMinTemp > ts.IdealMin[1] {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"average minimum temperature %.1f°C exceeds the ideal %.0f–%.0f°C range for %s",
			agg.AvgMinTemp, ts.IdealMin[0], ts.IdealMin[1], crop))
	}

	if agg.TotalRain < ts.MinRain5d {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"total rainfall %.1fmm over %d days is below the %.0fmm minimum for %s",
			agg.TotalRain, agg.Days, ts.MinRain5d, crop))
	}

	// Soil checks only apply when the hourly data covered the full window.
	if agg.AvgSoilTemp != nil && *agg.AvgSoilTemp < ts.MinSoilTemp {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"average soil temperature %.1f°C is below the %.0f°C minimum for %s",
			*agg.AvgSoilTemp, ts.MinSoilTemp, crop))
	}

	result.Status = domain.StatusForReasons(len(result.Reasons))
	return result
}

// genericChecks applies crop-agnostic heuristics when no threshold set is
// known for the crop.
func genericChecks(agg domain.ForecastAggregate) []string {
	reasons := []string{}

	if agg.AvgMaxTemp > extremeHeatMax {
		reasons = append(reasons, fmt.Sprintf(
			"extreme heat: average maximum temperature %.1f°C exceeds %.0f°C", agg.AvgMaxTemp, extremeHeatMax))
	}
	if agg.AvgMinTemp < extremeColdMin {
		reasons = append(reasons, fmt.Sprintf(
			"extreme cold: average minimum temperature %.1f°C is below %.0f°C", agg.AvgMinTemp, extremeColdMin))
	}
	if agg.AvgMaxTemp > hotDryMaxTemp && agg.TotalRain < hotDryRainMM {
		reasons = append(reasons, fmt.Sprintf(
			"hot and dry: %.1f°C average maximum with only %.1fmm rainfall over %d days",
			agg.AvgMaxTemp, agg.TotalRain, agg.Days))
	}

	return reasons
}
