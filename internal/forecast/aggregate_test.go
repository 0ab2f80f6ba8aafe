package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func payloadWithDays(max, min, rain []float64) *domain.ForecastPayload {
	return &domain.ForecastPayload{
		Daily: domain.DailyBlock{
			TemperatureMax:   max,
			TemperatureMin:   min,
			PrecipitationSum: rain,
		},
	}
}

func TestComputeAggregateAverages(t *testing.T) {
	p := payloadWithDays(
		[]float64{30, 29, 31, 30, 32},
		[]float64{20, 19, 21, 20, 22},
		[]float64{1, 2, 0, 3, 4},
	)

	agg, err := ComputeAggregate(p)
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}

	if agg.Days != 5 {
		t.Errorf("expected 5 days, got %d", agg.Days)
	}
	if math.Abs(agg.AvgMaxTemp-30.4) > 1e-9 {
		t.Errorf("expected avg max 30.4, got %.4f", agg.AvgMaxTemp)
	}
	if math.Abs(agg.AvgMinTemp-20.4) > 1e-9 {
		t.Errorf("expected avg min 20.4, got %.4f", agg.AvgMinTemp)
	}
	if agg.TotalRain != 10 {
		t.Errorf("expected total rain 10, got %.2f", agg.TotalRain)
	}
	if agg.AvgSoilTemp != nil {
		t.Error("expected nil soil average without hourly data")
	}
}

func TestComputeAggregateShortPayload(t *testing.T) {
	p := payloadWithDays([]float64{25, 26}, []float64{10, 11}, []float64{5, 5})

	agg, err := ComputeAggregate(p)
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}
	if agg.Days != 2 {
		t.Errorf("expected window of 2 days, got %d", agg.Days)
	}
	if agg.AvgMaxTemp != 25.5 {
		t.Errorf("expected avg max 25.5, got %.2f", agg.AvgMaxTemp)
	}
}

func TestComputeAggregateLongPayloadCapped(t *testing.T) {
	p := payloadWithDays(
		[]float64{30, 30, 30, 30, 30, 99, 99},
		[]float64{20, 20, 20, 20, 20, 99, 99},
		[]float64{1, 1, 1, 1, 1, 99, 99},
	)

	agg, err := ComputeAggregate(p)
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}
	if agg.Days != 5 {
		t.Errorf("expected window capped at 5 days, got %d", agg.Days)
	}
	if agg.AvgMaxTemp != 30 || agg.TotalRain != 5 {
		t.Errorf("days beyond the window leaked into the aggregate: %+v", agg)
	}
}

func TestComputeAggregateEmpty(t *testing.T) {
	_, err := ComputeAggregate(&domain.ForecastPayload{})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}

	_, err = ComputeAggregate(nil)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for nil payload, got %v", err)
	}
}

func TestComputeAggregateRainFallback(t *testing.T) {
	p := &domain.ForecastPayload{
		Daily: domain.DailyBlock{
			TemperatureMax: []float64{30, 30},
			TemperatureMin: []float64{20, 20},
			RainSum:        []float64{4, 6},
		},
	}

	agg, err := ComputeAggregate(p)
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}
	if agg.TotalRain != 10 {
		t.Errorf("expected rain_sum fallback total 10, got %.2f", agg.TotalRain)
	}
}

func TestSoilAverageCoverage(t *testing.T) {
	t.Run("FullCoverage", func(t *testing.T) {
		p := payloadWithDays([]float64{30}, []float64{20}, []float64{0})
		soil := make([]*float64, 24)
		for i := range soil {
			soil[i] = floatPtr(15)
		}
		soil[3] = nil // missing samples are skipped, not zeroed
		p.Hourly.SoilTemperature = soil

		agg, err := ComputeAggregate(p)
		if err != nil {
			t.Fatalf("ComputeAggregate failed: %v", err)
		}
		if agg.AvgSoilTemp == nil {
			t.Fatal("expected soil average with full hourly coverage")
		}
		if *agg.AvgSoilTemp != 15 {
			t.Errorf("expected soil average 15, got %.2f", *agg.AvgSoilTemp)
		}
	})

	t.Run("PartialCoverage", func(t *testing.T) {
		p := payloadWithDays([]float64{30, 29}, []float64{20, 19}, []float64{0, 0})
		soil := make([]*float64, 30) // needs 48 for a 2-day window
		for i := range soil {
			soil[i] = floatPtr(15)
		}
		p.Hourly.SoilTemperature = soil

		agg, err := ComputeAggregate(p)
		if err != nil {
			t.Fatalf("ComputeAggregate failed: %v", err)
		}
		if agg.AvgSoilTemp != nil {
			t.Error("expected nil soil average with partial coverage")
		}
	})

	t.Run("AllNull", func(t *testing.T) {
		p := payloadWithDays([]float64{30}, []float64{20}, []float64{0})
		p.Hourly.SoilTemperature = make([]*float64, 24)

		agg, err := ComputeAggregate(p)
		if err != nil {
			t.Fatalf("ComputeAggregate failed: %v", err)
		}
		if agg.AvgSoilTemp != nil {
			t.Error("expected nil soil average when every sample is null")
		}
	})
}

func TestHumidityAverage(t *testing.T) {
	p := payloadWithDays([]float64{30}, []float64{20}, []float64{0})
	humidity := make([]float64, 24)
	for i := range humidity {
		humidity[i] = 60
	}
	p.Hourly.RelativeHumidity = humidity

	agg, err := ComputeAggregate(p)
	if err != nil {
		t.Fatalf("ComputeAggregate failed: %v", err)
	}
	if agg.AvgHumidity != 60 {
		t.Errorf("expected humidity 60, got %.2f", agg.AvgHumidity)
	}
}
