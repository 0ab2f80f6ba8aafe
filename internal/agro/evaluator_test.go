package agro

import (
	"context"
	"testing"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/forecast"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
)

func wheatGeneric(t *testing.T) (*domain.ThresholdSet, domain.ThresholdSource) {
	t.Helper()
	reg := NewRegistry(nil)
	ts, src := reg.Resolve(context.Background(), "", "", "wheat")
	if ts == nil {
		t.Fatal("expected generic wheat thresholds")
	}
	return ts, src
}

func aggregateFor(t *testing.T, max, min, rain []float64) domain.ForecastAggregate {
	t.Helper()
	agg, err := forecast.ComputeAggregate(&domain.ForecastPayload{
		Daily: domain.DailyBlock{
			TemperatureMax:   max,
			TemperatureMin:   min,
			PrecipitationSum: rain,
		},
	})
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}
	return agg
}

func TestEvaluateUnsuitableWheat(t *testing.T) {
	// Both temperature bands violated on the high end: 2 reasons.
	ts, src := wheatGeneric(t)
	agg := aggregateFor(t,
		[]float64{30, 29, 31, 30, 32},
		[]float64{20, 19, 21, 20, 22},
		[]float64{0, 0, 0, 0, 0},
	)

	result := Evaluate(agg, "wheat", ts, src, "", "")

	if result.Status != domain.StatusUnsuitable {
		t.Errorf("expected Unsuitable, got %s (reasons: %v)", result.Status, result.Reasons)
	}
	if len(result.Reasons) != 2 {
		t.Errorf("expected 2 reasons, got %d: %v", len(result.Reasons), result.Reasons)
	}
}

func TestEvaluateSuitableWheat(t *testing.T) {
	ts, src := wheatGeneric(t)
	agg := aggregateFor(t,
		[]float64{18, 20, 19, 21, 18},
		[]float64{8, 9, 7, 10, 8},
		[]float64{0, 0, 0, 0, 0},
	)

	result := Evaluate(agg, "wheat", ts, src, "", "")

	if result.Status != domain.StatusSuitable {
		t.Errorf("expected Suitable, got %s (reasons: %v)", result.Status, result.Reasons)
	}
	if len(result.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", result.Reasons)
	}
}

func TestEvaluateMarginalSingleViolation(t *testing.T) {
	ts, src := wheatGeneric(t)
	// Max temp slightly above band, min temp inside it.
	agg := aggregateFor(t,
		[]float64{27, 27, 27, 27, 27},
		[]float64{10, 10, 10, 10, 10},
		[]float64{0, 0, 0, 0, 0},
	)

	result := Evaluate(agg, "wheat", ts, src, "", "")

	if result.Status != domain.StatusMarginal {
		t.Errorf("expected Marginal, got %s (reasons: %v)", result.Status, result.Reasons)
	}
	if len(result.Reasons) != 1 {
		t.Errorf("expected exactly 1 reason, got %v", result.Reasons)
	}
}

func TestEvaluateSoilCheckSkippedWithoutData(t *testing.T) {
	ts, src := wheatGeneric(t)
	agg := aggregateFor(t,
		[]float64{18, 20, 19, 21, 18},
		[]float64{8, 9, 7, 10, 8},
		[]float64{0, 0, 0, 0, 0},
	)
	if agg.AvgSoilTemp != nil {
		t.Fatal("test setup: expected nil soil aggregate")
	}

	result := Evaluate(agg, "wheat", ts, src, "", "")
	if result.Status != domain.StatusSuitable {
		t.Errorf("soil check should be skipped without data, got %s: %v", result.Status, result.Reasons)
	}
}

func TestEvaluateSoilViolation(t *testing.T) {
	ts, src := wheatGeneric(t)
	agg := aggregateFor(t,
		[]float64{18, 20, 19, 21, 18},
		[]float64{8, 9, 7, 10, 8},
		[]float64{0, 0, 0, 0, 0},
	)
	cold := 3.0
	agg.AvgSoilTemp = &cold

	result := Evaluate(agg, "wheat", ts, src, "", "")
	if result.Status != domain.StatusMarginal {
		t.Errorf("expected Marginal from soil violation, got %s: %v", result.Status, result.Reasons)
	}
}

func TestEvaluateGenericFallback(t *testing.T) {
	t.Run("HotAndDry", func(t *testing.T) {
		agg := aggregateFor(t,
			[]float64{44, 45, 43, 44, 46},
			[]float64{28, 29, 28, 28, 30},
			[]float64{0, 0, 0, 0, 0},
		)

		result := Evaluate(agg, "quinoa", nil, domain.SourceNone, "", "")

		if result.Source != domain.SourceNone {
			t.Errorf("expected SourceNone, got %s", result.Source)
		}
		// Extreme heat plus hot-and-dry: two violations.
		if result.Status != domain.StatusUnsuitable {
			t.Errorf("expected Unsuitable from generic checks, got %s: %v", result.Status, result.Reasons)
		}
	})

	t.Run("Mild", func(t *testing.T) {
		agg := aggregateFor(t,
			[]float64{25, 25, 25, 25, 25},
			[]float64{15, 15, 15, 15, 15},
			[]float64{10, 0, 0, 0, 0},
		)

		result := Evaluate(agg, "quinoa", nil, domain.SourceNone, "", "")
		if result.Status != domain.StatusSuitable {
			t.Errorf("expected Suitable from generic checks, got %s: %v", result.Status, result.Reasons)
		}
	})
}

// fakeOverrides is an OverrideSource backed by a map.
type fakeOverrides struct {
	data map[string]*domain.ThresholdSet
	err  error
}

func (f *fakeOverrides) GetCustomThreshold(_ context.Context, key string) (*domain.ThresholdSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[key], nil
}

func TestRegistryResolutionOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("OverrideBeatsDistrict", func(t *testing.T) {
		custom := &domain.ThresholdSet{
			IdealMax:    [2]float64{10, 20},
			IdealMin:    [2]float64{0, 10},
			MinSoilTemp: 5,
			MinRain5d:   1,
		}
		reg := NewRegistry(&fakeOverrides{data: map[string]*domain.ThresholdSet{
			OverrideKey(geo.ZonePunjab, "wheat"): custom,
		}})

		// Kot Addu has its own built-in wheat entry, but the Punjab
		// override must win.
		ts, src := reg.Resolve(ctx, geo.ZonePunjab, "Kot Addu", "wheat")
		if src != domain.SourceCustom {
			t.Fatalf("expected custom source, got %s", src)
		}
		if ts.IdealMax != custom.IdealMax {
			t.Errorf("expected override thresholds, got %+v", ts)
		}
	})

	t.Run("DistrictBeatsZone", func(t *testing.T) {
		reg := NewRegistry(nil)
		ts, src := reg.Resolve(ctx, geo.ZonePunjab, "Kot Addu", "wheat")
		if src != domain.SourceDistrict {
			t.Fatalf("expected district source, got %s", src)
		}
		if ts.IdealMax != [2]float64{16, 27} {
			t.Errorf("expected Kot Addu wheat band, got %+v", ts.IdealMax)
		}
	})

	t.Run("DistrictIgnoredOutsideParentZone", func(t *testing.T) {
		reg := NewRegistry(nil)
		// Kot Addu belongs to Punjab; pairing it with Sindh skips the
		// district tier.
		_, src := reg.Resolve(ctx, geo.ZoneSindh, "Kot Addu", "wheat")
		if src == domain.SourceDistrict {
			t.Error("district tier must not apply outside its parent zone")
		}
	})

	t.Run("ZoneBeatsGeneric", func(t *testing.T) {
		reg := NewRegistry(nil)
		ts, src := reg.Resolve(ctx, geo.ZonePunjab, "", "wheat")
		if src != domain.SourceZone {
			t.Fatalf("expected zone source, got %s", src)
		}
		if ts.IdealMax != [2]float64{14, 26} {
			t.Errorf("expected Punjab wheat band, got %+v", ts.IdealMax)
		}
	})

	t.Run("GenericFallback", func(t *testing.T) {
		reg := NewRegistry(nil)
		ts, src := reg.Resolve(ctx, geo.ZoneBalochistan, "", "wheat")
		if src != domain.SourceGeneric {
			t.Fatalf("expected generic source, got %s", src)
		}
		if ts.IdealMax != [2]float64{15, 25} {
			t.Errorf("expected generic wheat band, got %+v", ts.IdealMax)
		}
	})

	t.Run("UnknownCrop", func(t *testing.T) {
		reg := NewRegistry(nil)
		ts, src := reg.Resolve(ctx, geo.ZonePunjab, "", "dragonfruit")
		if ts != nil || src != domain.SourceNone {
			t.Errorf("expected no thresholds, got %+v (%s)", ts, src)
		}
	})

	t.Run("OverrideLookupErrorDegrades", func(t *testing.T) {
		reg := NewRegistry(&fakeOverrides{err: context.DeadlineExceeded})
		ts, src := reg.Resolve(ctx, geo.ZonePunjab, "", "wheat")
		if ts == nil || src != domain.SourceZone {
			t.Errorf("storage failure must degrade to built-in tiers, got %s", src)
		}
	})
}

func TestOverrideKey(t *testing.T) {
	if k := OverrideKey("Punjab", "Wheat"); k != "Punjab::wheat" {
		t.Errorf("OverrideKey = %q", k)
	}
	if k := OverrideKey("", "RICE"); k != "default::rice" {
		t.Errorf("OverrideKey with empty zone = %q", k)
	}
}

func TestBuiltinTablesValid(t *testing.T) {
	for crop, ts := range genericThresholds {
		if err := ts.Validate(); err != nil {
			t.Errorf("generic %s: %v", crop, err)
		}
	}
	for zone, table := range zoneThresholds {
		for crop, ts := range table {
			if err := ts.Validate(); err != nil {
				t.Errorf("zone %s %s: %v", zone, crop, err)
			}
		}
	}
	for district, table := range districtThresholds {
		if geo.ZoneOf(district) == "" {
			t.Errorf("district %s has no parent zone", district)
		}
		for crop, ts := range table {
			if err := ts.Validate(); err != nil {
				t.Errorf("district %s %s: %v", district, crop, err)
			}
		}
	}
}
