package rules

import "github.com/SaadGoaya/Farmer-aid/internal/domain"

func f64(v float64) *float64 { return &v }

// BuiltinRules returns the default alert rules seeded on first start.
// Users may disable or replace them via the rules API.
func BuiltinRules() []*domain.AlertRule {
	return []*domain.AlertRule{
		{
			ID:          "builtin-heat-wave",
			Name:        "Heat wave",
			Description: "Sustained extreme maximum temperatures over the forecast window",
			Version:     "1.0",
			Expression:  "avg_max_temp >= 40.0",
			Bands: []domain.RuleBand{
				{LowerLimit: f64(1.0), Outcome: domain.RuleOutcomeAlert, Reason: "average maximum temperature at or above 40°C"},
				{UpperLimit: f64(1.0), Outcome: domain.RuleOutcomeOK, Reason: "no sustained extreme heat"},
			},
			Enabled: true,
		},
		{
			ID:          "builtin-frost",
			Name:        "Frost",
			Description: "Average minimum temperature near or below freezing",
			Version:     "1.0",
			Expression:  "avg_min_temp <= 2.0",
			Bands: []domain.RuleBand{
				{LowerLimit: f64(1.0), Outcome: domain.RuleOutcomeAlert, Reason: "frost conditions expected"},
				{UpperLimit: f64(1.0), Outcome: domain.RuleOutcomeOK, Reason: "no frost expected"},
			},
			Enabled: true,
		},
		{
			ID:          "builtin-dry-spell",
			Name:        "Dry spell",
			Description: "Hot window with almost no rainfall",
			Version:     "1.0",
			Expression:  "total_rain_5d < 5.0 && avg_max_temp > 35.0",
			Bands: []domain.RuleBand{
				{LowerLimit: f64(1.0), Outcome: domain.RuleOutcomeWatch, Reason: "hot and dry window, irrigation demand will spike"},
				{UpperLimit: f64(1.0), Outcome: domain.RuleOutcomeOK, Reason: "rainfall adequate"},
			},
			Enabled: true,
		},
		{
			ID:          "builtin-cold-soil",
			Name:        "Cold soil",
			Description: "Soil temperature too low for germination",
			Version:     "1.0",
			Expression:  "soil_known && avg_soil_temp < 8.0",
			Bands: []domain.RuleBand{
				{LowerLimit: f64(1.0), Outcome: domain.RuleOutcomeWatch, Reason: "soil too cold for reliable germination"},
				{UpperLimit: f64(1.0), Outcome: domain.RuleOutcomeOK, Reason: "soil temperature acceptable"},
			},
			Enabled: true,
		},
	}
}
