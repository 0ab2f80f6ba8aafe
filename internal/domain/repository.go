package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence: user threshold
// overrides, alert rules and completed evaluations.
type Repository interface {
	// Custom threshold overrides, keyed "<zone-or-default>::<crop>".
	SaveCustomThreshold(ctx context.Context, key string, ts *ThresholdSet) error
	GetCustomThreshold(ctx context.Context, key string) (*ThresholdSet, error)
	ListCustomThresholds(ctx context.Context) (map[string]*ThresholdSet, error)
	DeleteCustomThreshold(ctx context.Context, key string) error

	// Evaluation results
	SaveEvaluation(ctx context.Context, eval *Evaluation) error
	GetEvaluation(ctx context.Context, evalID string) (*Evaluation, error)
	ListEvaluations(ctx context.Context, crop string, since time.Time) ([]*Evaluation, error)

	// Alert rule operations
	SaveAlertRule(ctx context.Context, rule *AlertRule) error
	GetAlertRule(ctx context.Context, ruleID string) (*AlertRule, error)
	ListAlertRules(ctx context.Context) ([]*AlertRule, error)
	DeleteAlertRule(ctx context.Context, ruleID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
