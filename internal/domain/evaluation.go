package domain

import "time"

// SuitabilityStatus classifies a crop/forecast combination by the number of
// violated thresholds: 0 Suitable, 1 Marginal, 2+ Unsuitable.
type SuitabilityStatus string

const (
	StatusSuitable   SuitabilityStatus = "Suitable"
	StatusMarginal   SuitabilityStatus = "Marginal"
	StatusUnsuitable SuitabilityStatus = "Unsuitable"
)

// StatusForReasons derives the status from the violation count. Each
// violated condition counts equally regardless of severity.
func StatusForReasons(n int) SuitabilityStatus {
	switch {
	case n == 0:
		return StatusSuitable
	case n == 1:
		return StatusMarginal
	default:
		return StatusUnsuitable
	}
}

// SuitabilityResult is the outcome of evaluating a forecast aggregate
// against a resolved threshold set.
type SuitabilityResult struct {
	Status   SuitabilityStatus `json:"status"`
	Reasons  []string          `json:"reasons"`
	Metrics  ForecastAggregate `json:"metrics"`
	Zone     string            `json:"zone,omitempty"`
	District string            `json:"district,omitempty"`
	Source   ThresholdSource   `json:"thresholdSource"`
	IsCustom bool              `json:"isCustom"`
}

// Evaluation is the complete persisted record for one advisory request.
type Evaluation struct {
	ID        string    `json:"id"`
	Crop      string    `json:"crop"`
	Location  string    `json:"location,omitempty"`
	Zone      string    `json:"zone,omitempty"`
	District  string    `json:"district,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Suitability SuitabilityResult `json:"suitability"`
	Advisory    AdvisoryReport    `json:"advisory"`
	RuleResults []RuleResult      `json:"ruleResults,omitempty"`

	Metadata EvaluationMetadata `json:"metadata"`
}

// EvaluationMetadata contains processing information.
type EvaluationMetadata struct {
	TraceID        string `json:"traceId"`
	FetchMs        int64  `json:"fetchMs"`
	EvalMs         int64  `json:"evalMs"`
	TotalMs        int64  `json:"totalMs"`
	RulesEvaluated int    `json:"rulesEvaluated"`
	EngineVersion  string `json:"engineVersion"`
}

// Alerted reports whether the evaluation should be published to the alert
// topic: the crop is unsuitable or any custom rule raised an alert.
func (e *Evaluation) Alerted() bool {
	if e.Suitability.Status == StatusUnsuitable {
		return true
	}
	for _, r := range e.RuleResults {
		if r.Outcome == RuleOutcomeAlert {
			return true
		}
	}
	return false
}
