// Package domain defines the core interfaces and types for Farmer-Aid.
package domain

import "errors"

// ErrInsufficientData is returned when a forecast payload carries no daily
// entries. Distinct from upstream failures so the UI can show a specific
// "insufficient forecast data" message.
var ErrInsufficientData = errors.New("insufficient forecast data")

// ForecastPayload mirrors the upstream forecast API response (Open-Meteo
// shape). Daily arrays are indexed per day; hourly arrays per hour.
type ForecastPayload struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Timezone       string          `json:"timezone,omitempty"`
	CurrentWeather *CurrentWeather `json:"current_weather,omitempty"`
	Daily          DailyBlock      `json:"daily"`
	Hourly         HourlyBlock     `json:"hourly"`
}

// CurrentWeather is the instantaneous conditions block.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

// DailyBlock holds per-day forecast arrays.
type DailyBlock struct {
	Time             []string  `json:"time"`
	TemperatureMax   []float64 `json:"temperature_2m_max"`
	TemperatureMin   []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum,omitempty"`
	RainSum          []float64 `json:"rain_sum,omitempty"`
	ET0              []float64 `json:"et0_fao_evapotranspiration,omitempty"`
}

// HourlyBlock holds per-hour forecast arrays. Soil temperature entries may
// be null in upstream payloads, hence the pointer elements.
type HourlyBlock struct {
	Time             []string   `json:"time"`
	SoilTemperature  []*float64 `json:"soil_temperature_0cm,omitempty"`
	RelativeHumidity []float64  `json:"relative_humidity_2m,omitempty"`
}

// ForecastAggregate is derived from a payload over a window of up to five
// days. AvgSoilTemp is nil when hourly soil data does not cover the full
// window; soil-based checks are skipped in that case.
type ForecastAggregate struct {
	Days        int      `json:"days"`
	AvgMaxTemp  float64  `json:"avgMaxTemp"`
	AvgMinTemp  float64  `json:"avgMinTemp"`
	TotalRain   float64  `json:"totalRain5d"`
	AvgHumidity float64  `json:"avgHumidity"`
	AvgET0      float64  `json:"avgET0"`
	AvgSoilTemp *float64 `json:"avgSoilTemp,omitempty"`
}
