// Package agro holds the built-in agronomic threshold tables and the crop
// suitability evaluator.
package agro

import (
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
)

// genericThresholds is the required crop-wide table. Temperature bands are
// long-run growing-season comfort ranges in degrees Celsius; rain minimums
// are per 5-day window in millimetres.
var genericThresholds = map[string]domain.ThresholdSet{
	"wheat": {
		IdealMax:    [2]float64{15, 25},
		IdealMin:    [2]float64{5, 15},
		MinSoilTemp: 8,
		MinRain5d:   0,
	},
	"rice": {
		IdealMax:    [2]float64{25, 38},
		IdealMin:    [2]float64{18, 28},
		MinSoilTemp: 16,
		MinRain5d:   20,
	},
	"cotton": {
		IdealMax:    [2]float64{28, 40},
		IdealMin:    [2]float64{18, 28},
		MinSoilTemp: 18,
		MinRain5d:   5,
	},
	"sugarcane": {
		IdealMax:    [2]float64{25, 38},
		IdealMin:    [2]float64{18, 28},
		MinSoilTemp: 16,
		MinRain5d:   10,
	},
	"maize": {
		IdealMax:    [2]float64{22, 33},
		IdealMin:    [2]float64{12, 22},
		MinSoilTemp: 12,
		MinRain5d:   8,
	},
}

// zoneThresholds tunes crops per zone. Only Punjab is populated so far.
var zoneThresholds = map[string]map[string]domain.ThresholdSet{
	geo.ZonePunjab: {
		"wheat": {
			IdealMax:    [2]float64{14, 26},
			IdealMin:    [2]float64{4, 16},
			MinSoilTemp: 7,
			MinRain5d:   0,
		},
		"rice": {
			IdealMax:    [2]float64{26, 38},
			IdealMin:    [2]float64{19, 28},
			MinSoilTemp: 16,
			MinRain5d:   18,
		},
		"cotton": {
			IdealMax:    [2]float64{29, 41},
			IdealMin:    [2]float64{19, 29},
			MinSoilTemp: 18,
			MinRain5d:   4,
		},
	},
}

// districtThresholds tunes crops per district, keyed by canonical district
// name. The district tier only applies when the request's zone matches the
// district's parent zone.
var districtThresholds = map[string]map[string]domain.ThresholdSet{
	"Kot Addu": {
		"wheat": {
			IdealMax:    [2]float64{16, 27},
			IdealMin:    [2]float64{6, 16},
			MinSoilTemp: 8,
			MinRain5d:   0,
		},
		"cotton": {
			IdealMax:    [2]float64{30, 42},
			IdealMin:    [2]float64{20, 30},
			MinSoilTemp: 19,
			MinRain5d:   3,
		},
	},
	"Dera Ghazi Khan": {
		"cotton": {
			IdealMax:    [2]float64{30, 42},
			IdealMin:    [2]float64{20, 30},
			MinSoilTemp: 19,
			MinRain5d:   3,
		},
	},
	"Larkana": {
		"rice": {
			IdealMax:    [2]float64{27, 39},
			IdealMin:    [2]float64{20, 29},
			MinSoilTemp: 17,
			MinRain5d:   22,
		},
	},
}

// Crops returns the crop names covered by the generic table.
func Crops() []string {
	crops := make([]string, 0, len(genericThresholds))
	for crop := range genericThresholds {
		crops = append(crops, crop)
	}
	return crops
}
