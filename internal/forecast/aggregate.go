// Package forecast derives window aggregates from forecast payloads. Both
// the suitability evaluator and the advisory generator consume the same
// aggregate, so the two can never disagree on the underlying metrics.
package forecast

import (
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// WindowDays caps the aggregation window.
const WindowDays = 5

// ComputeAggregate derives the window aggregate from a payload. The window
// is min(WindowDays, available days); an empty daily block is an error, not
// a zero-filled aggregate.
func ComputeAggregate(p *domain.ForecastPayload) (domain.ForecastAggregate, error) {
	if p == nil {
		return domain.ForecastAggregate{}, domain.ErrInsufficientData
	}

	days := len(p.Daily.TemperatureMax)
	if n := len(p.Daily.TemperatureMin); n < days {
		days = n
	}
	if days == 0 {
		return domain.ForecastAggregate{}, domain.ErrInsufficientData
	}
	if days > WindowDays {
		days = WindowDays
	}

	agg := domain.ForecastAggregate{Days: days}

	for i := 0; i < days; i++ {
		agg.AvgMaxTemp += p.Daily.TemperatureMax[i]
		agg.AvgMinTemp += p.Daily.TemperatureMin[i]
	}
	agg.AvgMaxTemp /= float64(days)
	agg.AvgMinTemp /= float64(days)

	agg.TotalRain = sumRain(p.Daily, days)
	agg.AvgET0 = mean(p.Daily.ET0, days)
	agg.AvgHumidity = mean(p.Hourly.RelativeHumidity, days*24)
	agg.AvgSoilTemp = soilAverage(p.Hourly.SoilTemperature, days)

	return agg, nil
}

// sumRain totals precipitation over the window, preferring precipitation_sum
// and falling back to rain_sum when the former is absent.
func sumRain(d domain.DailyBlock, days int) float64 {
	series := d.PrecipitationSum
	if len(series) == 0 {
		series = d.RainSum
	}
	var total float64
	for i := 0; i < days && i < len(series); i++ {
		total += series[i]
	}
	return total
}

// soilAverage averages hourly soil temperature, skipping null samples. The
// average is only meaningful when the series covers the full window, so a
// shorter series yields nil and soil checks are skipped downstream.
func soilAverage(series []*float64, days int) *float64 {
	needed := days * 24
	if len(series) < needed {
		return nil
	}

	var sum float64
	var count int
	for i := 0; i < needed; i++ {
		if series[i] == nil {
			continue
		}
		sum += *series[i]
		count++
	}
	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	return &avg
}

// mean averages up to n leading entries of a series; zero when empty.
func mean(series []float64, n int) float64 {
	if n > len(series) {
		n = len(series)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += series[i]
	}
	return sum / float64(n)
}
