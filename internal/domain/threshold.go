package domain

import "fmt"

// ThresholdSet bundles the agronomic bounds used to judge crop suitability
// over a forecast window. Immutable once defined; one instance per crop, per
// (zone, crop) or per (district, crop) combination.
type ThresholdSet struct {
	// IdealMax is the [low, high] band for the average daily maximum
	// temperature, degrees Celsius.
	IdealMax [2]float64 `json:"idealMax"`

	// IdealMin is the [low, high] band for the average daily minimum
	// temperature, degrees Celsius.
	IdealMin [2]float64 `json:"idealMin"`

	// MinSoilTemp is the minimum acceptable average soil temperature.
	// Checked only when soil data covers the full window.
	MinSoilTemp float64 `json:"minSoilTemp"`

	// MinRain5d is the minimum acceptable precipitation total over the
	// window, millimetres.
	MinRain5d float64 `json:"minTotalRain5d"`
}

// Validate checks the band ordering invariants.
func (t *ThresholdSet) Validate() error {
	if t.IdealMax[0] > t.IdealMax[1] {
		return fmt.Errorf("idealMax low %.1f exceeds high %.1f", t.IdealMax[0], t.IdealMax[1])
	}
	if t.IdealMin[0] > t.IdealMin[1] {
		return fmt.Errorf("idealMin low %.1f exceeds high %.1f", t.IdealMin[0], t.IdealMin[1])
	}
	return nil
}

// ThresholdSource identifies which registry tier supplied a threshold set.
type ThresholdSource string

const (
	SourceCustom   ThresholdSource = "custom"
	SourceDistrict ThresholdSource = "district"
	SourceZone     ThresholdSource = "zone"
	SourceGeneric  ThresholdSource = "generic"

	// SourceNone means no thresholds are known for the crop; the evaluator
	// falls back to crop-agnostic checks.
	SourceNone ThresholdSource = "none"
)
