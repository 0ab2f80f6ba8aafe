package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "farmeraid-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("CustomThresholds", func(t *testing.T) {
		ts := &domain.ThresholdSet{
			IdealMax:    [2]float64{15, 25},
			IdealMin:    [2]float64{5, 15},
			MinSoilTemp: 8,
			MinRain5d:   0,
		}

		if err := repo.SaveCustomThreshold(ctx, "Punjab::wheat", ts); err != nil {
			t.Fatalf("SaveCustomThreshold failed: %v", err)
		}

		got, err := repo.GetCustomThreshold(ctx, "Punjab::wheat")
		if err != nil {
			t.Fatalf("GetCustomThreshold failed: %v", err)
		}
		if got == nil || got.IdealMax != ts.IdealMax || got.MinSoilTemp != ts.MinSoilTemp {
			t.Errorf("round trip mismatch: %+v", got)
		}

		// Upsert replaces the stored value.
		ts.MinSoilTemp = 10
		if err := repo.SaveCustomThreshold(ctx, "Punjab::wheat", ts); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		got, _ = repo.GetCustomThreshold(ctx, "Punjab::wheat")
		if got.MinSoilTemp != 10 {
			t.Errorf("upsert did not replace value: %+v", got)
		}

		all, err := repo.ListCustomThresholds(ctx)
		if err != nil {
			t.Fatalf("ListCustomThresholds failed: %v", err)
		}
		if len(all) != 1 || all["Punjab::wheat"] == nil {
			t.Errorf("unexpected list: %v", all)
		}

		if err := repo.DeleteCustomThreshold(ctx, "Punjab::wheat"); err != nil {
			t.Fatalf("DeleteCustomThreshold failed: %v", err)
		}
		got, err = repo.GetCustomThreshold(ctx, "Punjab::wheat")
		if err != nil || got != nil {
			t.Errorf("expected nil after delete, got %+v, %v", got, err)
		}

		if err := repo.DeleteCustomThreshold(ctx, "Punjab::wheat"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("double delete should return ErrNotFound, got %v", err)
		}
	})

	t.Run("MissingThresholdIsNil", func(t *testing.T) {
		got, err := repo.GetCustomThreshold(ctx, "Sindh::rice")
		if err != nil || got != nil {
			t.Errorf("missing override should be nil, nil; got %+v, %v", got, err)
		}
	})

	t.Run("SaveAndGetEvaluation", func(t *testing.T) {
		eval := &domain.Evaluation{
			ID:        "eval-001",
			Crop:      "Wheat",
			Location:  "Kot Addu",
			Zone:      "Punjab",
			District:  "Kot Addu",
			Timestamp: time.Now().UTC().Truncate(time.Second),
			Suitability: domain.SuitabilityResult{
				Status:  domain.StatusMarginal,
				Reasons: []string{"rain below minimum"},
				Source:  domain.SourceDistrict,
			},
			Advisory: domain.AdvisoryReport{
				Crop:       "wheat",
				Risk:       domain.RiskModerate,
				Fertilizer: "split doses",
				Watering:   "irrigate",
			},
			RuleResults: []domain.RuleResult{
				{RuleID: "builtin-dry-spell", Outcome: domain.RuleOutcomeWatch, Score: 1},
			},
			Metadata: domain.EvaluationMetadata{
				TraceID:        "trace-001",
				RulesEvaluated: 1,
				EngineVersion:  "farmeraid-1.0",
			},
		}

		if err := repo.SaveEvaluation(ctx, eval); err != nil {
			t.Fatalf("SaveEvaluation failed: %v", err)
		}

		got, err := repo.GetEvaluation(ctx, "eval-001")
		if err != nil {
			t.Fatalf("GetEvaluation failed: %v", err)
		}
		if got.Crop != "wheat" {
			t.Errorf("crop should be stored lowercased, got %q", got.Crop)
		}
		if got.Suitability.Status != domain.StatusMarginal {
			t.Errorf("status = %s", got.Suitability.Status)
		}
		if len(got.RuleResults) != 1 || got.RuleResults[0].RuleID != "builtin-dry-spell" {
			t.Errorf("rule results mismatch: %+v", got.RuleResults)
		}
		if got.Metadata.TraceID != "trace-001" {
			t.Errorf("metadata mismatch: %+v", got.Metadata)
		}
	})

	t.Run("GetEvaluationNotFound", func(t *testing.T) {
		_, err := repo.GetEvaluation(ctx, "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListEvaluations", func(t *testing.T) {
		old := &domain.Evaluation{
			ID:        "eval-old",
			Crop:      "rice",
			Timestamp: time.Now().UTC().Add(-48 * time.Hour),
		}
		if err := repo.SaveEvaluation(ctx, old); err != nil {
			t.Fatal(err)
		}

		since := time.Now().UTC().Add(-24 * time.Hour)

		evals, err := repo.ListEvaluations(ctx, "", since)
		if err != nil {
			t.Fatalf("ListEvaluations failed: %v", err)
		}
		for _, e := range evals {
			if e.ID == "eval-old" {
				t.Error("since filter not applied")
			}
		}

		wheatOnly, err := repo.ListEvaluations(ctx, "WHEAT", since)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range wheatOnly {
			if e.Crop != "wheat" {
				t.Errorf("crop filter not applied: %q", e.Crop)
			}
		}
	})

	t.Run("AlertRules", func(t *testing.T) {
		low := 1.0
		rule := &domain.AlertRule{
			ID:          "rule-001",
			Name:        "Heat wave",
			Description: "sustained extreme heat",
			Version:     "1.0",
			Crop:        "Wheat",
			Expression:  "avg_max_temp >= 40.0",
			Bands: []domain.RuleBand{
				{LowerLimit: &low, Outcome: domain.RuleOutcomeAlert, Reason: "too hot"},
			},
			Enabled: true,
		}

		if err := repo.SaveAlertRule(ctx, rule); err != nil {
			t.Fatalf("SaveAlertRule failed: %v", err)
		}

		got, err := repo.GetAlertRule(ctx, "rule-001")
		if err != nil {
			t.Fatalf("GetAlertRule failed: %v", err)
		}
		if got.Expression != rule.Expression || got.Crop != "wheat" {
			t.Errorf("round trip mismatch: %+v", got)
		}
		if len(got.Bands) != 1 || got.Bands[0].Outcome != domain.RuleOutcomeAlert {
			t.Errorf("bands mismatch: %+v", got.Bands)
		}

		rules, err := repo.ListAlertRules(ctx)
		if err != nil {
			t.Fatalf("ListAlertRules failed: %v", err)
		}
		if len(rules) != 1 {
			t.Errorf("expected 1 rule, got %d", len(rules))
		}

		if err := repo.DeleteAlertRule(ctx, "rule-001"); err != nil {
			t.Fatalf("DeleteAlertRule failed: %v", err)
		}
		if _, err := repo.GetAlertRule(ctx, "rule-001"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("soft-deleted rule should be hidden, got %v", err)
		}
		if err := repo.DeleteAlertRule(ctx, "rule-001"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("deleting a disabled rule should return ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		if err := repo.SaveCustomThreshold(ctx, "", &domain.ThresholdSet{}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := repo.SaveEvaluation(ctx, &domain.Evaluation{}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := repo.GetAlertRule(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRebind(t *testing.T) {
	r := &SQLRepository{driver: "postgres"}
	got := r.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	want := "INSERT INTO t (a, b) VALUES ($1, $2)"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	r.driver = "sqlite"
	if r.rebind("SELECT ?") != "SELECT ?" {
		t.Error("sqlite queries must not be rewritten")
	}
}
