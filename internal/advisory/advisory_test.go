package advisory

import (
	"strings"
	"testing"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

func mildAggregate() domain.ForecastAggregate {
	return domain.ForecastAggregate{
		Days:        5,
		AvgMaxTemp:  24,
		AvgMinTemp:  12,
		TotalRain:   15,
		AvgHumidity: 55,
	}
}

func TestGenerateSectionsAlwaysPopulated(t *testing.T) {
	gen := NewGenerator()

	crops := []string{"wheat", "rice", "cotton", "sugarcane", "maize", "quinoa", ""}
	for _, crop := range crops {
		t.Run("crop="+crop, func(t *testing.T) {
			report := gen.Generate(&Input{
				Crop:        crop,
				Location:    "Multan",
				Aggregate:   mildAggregate(),
				Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
			})

			if report.Fertilizer == "" || report.Watering == "" || report.PestControl == "" {
				t.Errorf("all advisory sections must be populated, got %+v", report)
			}
			if report.Location != "Multan" {
				t.Errorf("location not carried through: %q", report.Location)
			}
		})
	}
}

func TestRiskLevels(t *testing.T) {
	gen := NewGenerator()

	t.Run("SuitableLow", func(t *testing.T) {
		report := gen.Generate(&Input{
			Crop:        "wheat",
			Aggregate:   mildAggregate(),
			Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
		})
		if report.Risk != domain.RiskLow {
			t.Errorf("expected low risk, got %s", report.Risk)
		}
		if len(report.Threats) != 0 {
			t.Errorf("expected no threats, got %v", report.Threats)
		}
	})

	t.Run("MarginalModerate", func(t *testing.T) {
		report := gen.Generate(&Input{
			Crop:        "wheat",
			Aggregate:   mildAggregate(),
			Suitability: domain.SuitabilityResult{Status: domain.StatusMarginal},
		})
		if report.Risk != domain.RiskModerate {
			t.Errorf("expected moderate risk, got %s", report.Risk)
		}
	})

	t.Run("UnsuitableHigh", func(t *testing.T) {
		report := gen.Generate(&Input{
			Crop:        "wheat",
			Aggregate:   mildAggregate(),
			Suitability: domain.SuitabilityResult{Status: domain.StatusUnsuitable},
		})
		if report.Risk != domain.RiskHigh {
			t.Errorf("expected high risk, got %s", report.Risk)
		}
	})

	t.Run("ThreatEscalates", func(t *testing.T) {
		agg := mildAggregate()
		agg.AvgMaxTemp = 41 // heat stress
		report := gen.Generate(&Input{
			Crop:        "wheat",
			Aggregate:   agg,
			Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
		})
		if report.Risk != domain.RiskHigh {
			t.Errorf("active threat should escalate to high risk, got %s", report.Risk)
		}
		if len(report.Threats) == 0 {
			t.Error("expected a heat stress threat")
		}
	})
}

func TestDetectThreats(t *testing.T) {
	t.Run("Frost", func(t *testing.T) {
		agg := mildAggregate()
		agg.AvgMinTemp = 1
		threats := detectThreats(agg)
		if len(threats) != 1 || !strings.Contains(threats[0], "frost") {
			t.Errorf("expected frost threat, got %v", threats)
		}
	})

	t.Run("Drought", func(t *testing.T) {
		agg := mildAggregate()
		agg.AvgMaxTemp = 36
		agg.TotalRain = 0
		threats := detectThreats(agg)
		if len(threats) != 1 || !strings.Contains(threats[0], "drought") {
			t.Errorf("expected drought threat, got %v", threats)
		}
	})

	t.Run("Waterlogging", func(t *testing.T) {
		agg := mildAggregate()
		agg.TotalRain = 90
		threats := detectThreats(agg)
		if len(threats) != 1 || !strings.Contains(threats[0], "waterlogging") {
			t.Errorf("expected waterlogging threat, got %v", threats)
		}
	})
}

func TestWateringReflectsRain(t *testing.T) {
	gen := NewGenerator()

	agg := mildAggregate()
	agg.TotalRain = 90
	report := gen.Generate(&Input{
		Crop:        "rice",
		Aggregate:   agg,
		Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
	})
	if !strings.Contains(report.Watering, "pause irrigation") {
		t.Errorf("heavy rain should pause irrigation: %q", report.Watering)
	}

	agg.TotalRain = 0
	agg.AvgMaxTemp = 36
	report = gen.Generate(&Input{
		Crop:        "wheat",
		Aggregate:   agg,
		Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
	})
	if !strings.Contains(report.Watering, "irrigate every 3 to 4 days") {
		t.Errorf("hot dry spell should tighten irrigation: %q", report.Watering)
	}
}

func TestPestAdviceHumidity(t *testing.T) {
	gen := NewGenerator()

	agg := mildAggregate()
	agg.AvgHumidity = 85
	report := gen.Generate(&Input{
		Crop:        "wheat",
		Aggregate:   agg,
		Suitability: domain.SuitabilityResult{Status: domain.StatusSuitable},
	})
	if !strings.Contains(report.PestControl, "rust") {
		t.Errorf("humid wheat advice should mention rust: %q", report.PestControl)
	}
}
