package domain

// RiskLevel is the qualitative crop-care risk derived from the per-crop
// advisory rule branches.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// AdvisoryReport is the categorized guidance produced for one evaluation.
// Every section is always non-empty for a valid forecast.
type AdvisoryReport struct {
	Crop     string    `json:"crop"`
	Location string    `json:"location,omitempty"`
	Risk     RiskLevel `json:"risk"`

	// Threats are the specific risks matched by the per-crop rules, empty
	// when no rule fired.
	Threats []string `json:"threats,omitempty"`

	Fertilizer string `json:"fertilizer"`
	Watering   string `json:"watering"`
	PestControl string `json:"pestControl"`
}
