package domain

// AlertRule is a user-defined alert rule evaluated against the forecast
// aggregate of every evaluation.
type AlertRule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// Crop restricts the rule to one crop (lowercased); empty applies to all.
	Crop string `json:"crop,omitempty"`

	// CEL expression over the aggregate variables
	Expression string `json:"expression"`

	// Outcome bands for score-to-outcome mapping
	Bands []RuleBand `json:"bands"`

	// Whether rule is active
	Enabled bool `json:"enabled"`
}

// RuleBand maps a score range to an outcome.
type RuleBand struct {
	LowerLimit *float64 `json:"lowerLimit,omitempty"`
	UpperLimit *float64 `json:"upperLimit,omitempty"`
	Outcome    string   `json:"outcome"` // e.g. ".ok", ".watch", ".alert"
	Reason     string   `json:"reason"`
}

// RuleResult is the output of an alert rule evaluation.
type RuleResult struct {
	RuleID    string  `json:"ruleId"`
	Outcome   string  `json:"outcome"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
	ProcessMs int64   `json:"processMs"`
}

// Predefined rule outcomes
const (
	RuleOutcomeOK    = ".ok"
	RuleOutcomeWatch = ".watch"
	RuleOutcomeAlert = ".alert"
	RuleOutcomeError = ".err"
)
