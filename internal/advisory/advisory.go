// Package advisory turns a suitability result and forecast aggregate into
// farmer-facing guidance: a risk level, active threats and text sections
// for fertilizer, watering and pest control.
package advisory

import (
	"fmt"
	"strings"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// Thresholds for weather threats, independent of crop.
const (
	heatStressMax   = 38.0
	frostRiskMin    = 3.0
	droughtRainMM   = 5.0
	waterlogRainMM  = 60.0
	highHumidityPct = 80.0
)

// Generator produces advisory reports.
type Generator struct{}

// NewGenerator creates a new advisory generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Input carries everything a report is built from.
type Input struct {
	Crop        string
	Location    string
	Aggregate   domain.ForecastAggregate
	Suitability domain.SuitabilityResult
}

// Generate builds the advisory report. Every text section is always
// populated, even for unknown crops.
func (g *Generator) Generate(in *Input) *domain.AdvisoryReport {
	crop := strings.ToLower(strings.TrimSpace(in.Crop))
	threats := detectThreats(in.Aggregate)
	risk := riskLevel(in.Suitability.Status, threats)

	return &domain.AdvisoryReport{
		Crop:        crop,
		Location:    in.Location,
		Risk:        risk,
		Threats:     threats,
		Fertilizer:  fertilizerAdvice(crop, risk, in.Aggregate),
		Watering:    wateringAdvice(crop, risk, in.Aggregate),
		PestControl: pestAdvice(crop, risk, in.Aggregate),
	}
}

// riskLevel maps the suitability status to a risk band, escalating to High
// whenever a weather threat is active.
func riskLevel(status domain.SuitabilityStatus, threats []string) domain.RiskLevel {
	switch {
	case status == domain.StatusUnsuitable:
		return domain.RiskHigh
	case len(threats) > 0:
		return domain.RiskHigh
	case status == domain.StatusMarginal:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}

func detectThreats(agg domain.ForecastAggregate) []string {
	var threats []string
	if agg.AvgMaxTemp >= heatStressMax {
		threats = append(threats, fmt.Sprintf("heat stress: average maximum %.1f°C over the next %d days", agg.AvgMaxTemp, agg.Days))
	}
	if agg.AvgMinTemp <= frostRiskMin {
		threats = append(threats, fmt.Sprintf("frost risk: average minimum %.1f°C over the next %d days", agg.AvgMinTemp, agg.Days))
	}
	if agg.TotalRain < droughtRainMM && agg.AvgMaxTemp > 30 {
		threats = append(threats, fmt.Sprintf("drought conditions: only %.1f mm of rain expected", agg.TotalRain))
	}
	if agg.TotalRain > waterlogRainMM {
		threats = append(threats, fmt.Sprintf("waterlogging risk: %.1f mm of rain expected", agg.TotalRain))
	}
	return threats
}

func fertilizerAdvice(crop string, risk domain.RiskLevel, agg domain.ForecastAggregate) string {
	var b strings.Builder

	switch crop {
	case "wheat":
		b.WriteString("Apply nitrogen in split doses, the first at sowing and the second at first irrigation. ")
		if agg.AvgMinTemp < 5 {
			b.WriteString("Delay top dressing until minimum temperatures recover above 5°C. ")
		}
	case "rice":
		b.WriteString("Use a basal NPK dose at transplanting and top-dress urea at tillering. ")
		if agg.TotalRain > waterlogRainMM {
			b.WriteString("Heavy rain is expected; split the urea dose to limit leaching losses. ")
		}
	case "cotton":
		b.WriteString("Apply phosphorus and potash at sowing and nitrogen in three splits through flowering. ")
	case "sugarcane":
		b.WriteString("Apply the full phosphorus dose at planting and nitrogen in two splits before monsoon. ")
	case "maize":
		b.WriteString("Apply nitrogen in two splits, at sowing and at knee-high stage. ")
	default:
		b.WriteString("Use a balanced NPK application based on a recent soil test. ")
	}

	if agg.TotalRain > waterlogRainMM {
		b.WriteString("Avoid surface broadcasting before the forecast rain; incorporate fertilizer into the soil.")
	} else if risk == domain.RiskHigh {
		b.WriteString("Hold off on additional fertilizer until conditions stabilise; stressed plants take up little nitrogen.")
	} else {
		b.WriteString("Conditions are acceptable for scheduled fertilizer application.")
	}

	return b.String()
}

func wateringAdvice(crop string, risk domain.RiskLevel, agg domain.ForecastAggregate) string {
	var b strings.Builder

	switch {
	case agg.TotalRain > waterlogRainMM:
		b.WriteString(fmt.Sprintf("Around %.0f mm of rain is expected; pause irrigation and clear field drains. ", agg.TotalRain))
	case agg.TotalRain < droughtRainMM && agg.AvgMaxTemp > 30:
		b.WriteString("Little rain is expected with high temperatures; irrigate every 3 to 4 days, preferably at dusk. ")
	case agg.TotalRain < droughtRainMM:
		b.WriteString("Little rain is expected; maintain the normal irrigation schedule. ")
	default:
		b.WriteString(fmt.Sprintf("Around %.0f mm of rain is expected; reduce supplemental irrigation accordingly. ", agg.TotalRain))
	}

	switch crop {
	case "rice":
		b.WriteString("Keep paddy standing water at 2 to 5 cm through tillering.")
	case "wheat":
		b.WriteString("Wheat is most sensitive to moisture stress at crown root initiation; do not skip that irrigation.")
	case "cotton":
		b.WriteString("Avoid water stress during flowering and boll formation.")
	case "sugarcane":
		b.WriteString("Sugarcane tolerates short dry spells; prioritise irrigation during grand growth.")
	case "maize":
		b.WriteString("Maize is most sensitive around tasseling; keep the root zone moist in that window.")
	default:
		b.WriteString("Check soil moisture at root depth before each irrigation.")
	}

	return b.String()
}

func pestAdvice(crop string, risk domain.RiskLevel, agg domain.ForecastAggregate) string {
	var b strings.Builder

	humid := agg.AvgHumidity >= highHumidityPct
	warm := agg.AvgMaxTemp >= 30

	switch crop {
	case "wheat":
		if humid {
			b.WriteString("Humid conditions favour rust; scout for yellow and brown rust pustules twice a week. ")
		} else {
			b.WriteString("Scout for aphids on flag leaves and spikes. ")
		}
	case "rice":
		if humid && warm {
			b.WriteString("Warm, humid weather favours blast and bacterial leaf blight; inspect the canopy regularly. ")
		} else {
			b.WriteString("Monitor for stem borer dead hearts and leaf folder damage. ")
		}
	case "cotton":
		if warm {
			b.WriteString("Hot weather drives whitefly and pink bollworm pressure; check pheromone traps daily. ")
		} else {
			b.WriteString("Monitor for jassids and thrips on young leaves. ")
		}
	case "sugarcane":
		b.WriteString("Inspect for top borer and pyrilla; remove and destroy affected shoots. ")
	case "maize":
		b.WriteString("Scout for fall armyworm in whorls, especially on young plants. ")
	default:
		if humid {
			b.WriteString("High humidity raises fungal disease pressure; inspect foliage closely. ")
		} else {
			b.WriteString("Follow routine pest scouting for the crop and region. ")
		}
	}

	if risk == domain.RiskHigh {
		b.WriteString("Stressed crops are more vulnerable; act on the first signs of infestation rather than waiting for thresholds.")
	} else {
		b.WriteString("Apply control measures only when economic thresholds are crossed.")
	}

	return b.String()
}
