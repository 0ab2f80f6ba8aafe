// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveCustomThreshold stores or replaces a threshold override.
func (r *SQLRepository) SaveCustomThreshold(ctx context.Context, key string, ts *domain.ThresholdSet) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}
	if ts == nil {
		return fmt.Errorf("%w: threshold set is required", domain.ErrInvalidInput)
	}

	payload, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO custom_thresholds (key, thresholds, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			thresholds = excluded.thresholds,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query), key, string(payload), now, now)
	return err
}

// GetCustomThreshold retrieves a threshold override by key.
// Returns nil, nil when no override exists.
func (r *SQLRepository) GetCustomThreshold(ctx context.Context, key string) (*domain.ThresholdSet, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	query := `SELECT thresholds FROM custom_thresholds WHERE key = ?`

	var payload string
	err := r.db.QueryRowContext(ctx, r.rebind(query), key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ts domain.ThresholdSet
	if err := json.Unmarshal([]byte(payload), &ts); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds for %s: %w", key, err)
	}

	return &ts, nil
}

// ListCustomThresholds retrieves every stored override keyed by
// "<zone>::<crop>".
func (r *SQLRepository) ListCustomThresholds(ctx context.Context) (map[string]*domain.ThresholdSet, error) {
	query := `SELECT key, thresholds FROM custom_thresholds ORDER BY key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[string]*domain.ThresholdSet)
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, err
		}

		var ts domain.ThresholdSet
		if err := json.Unmarshal([]byte(payload), &ts); err != nil {
			return nil, fmt.Errorf("failed to parse thresholds for %s: %w", key, err)
		}
		overrides[key] = &ts
	}

	return overrides, rows.Err()
}

// DeleteCustomThreshold removes a threshold override.
func (r *SQLRepository) DeleteCustomThreshold(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM custom_thresholds WHERE key = ?`), key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SaveEvaluation stores a completed evaluation.
func (r *SQLRepository) SaveEvaluation(ctx context.Context, eval *domain.Evaluation) error {
	if eval == nil || eval.ID == "" {
		return fmt.Errorf("%w: evaluation ID is required", domain.ErrInvalidInput)
	}

	suitability, _ := json.Marshal(eval.Suitability)
	advisory, _ := json.Marshal(eval.Advisory)
	ruleResults, _ := json.Marshal(eval.RuleResults)
	metadata, _ := json.Marshal(eval.Metadata)

	query := `
		INSERT INTO evaluations (
			id, crop, location, zone, district, status, timestamp,
			suitability, advisory, rule_results, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		eval.ID, strings.ToLower(eval.Crop), eval.Location, eval.Zone, eval.District,
		string(eval.Suitability.Status), eval.Timestamp,
		string(suitability), string(advisory), string(ruleResults), string(metadata),
	)
	return err
}

// GetEvaluation retrieves an evaluation by ID.
func (r *SQLRepository) GetEvaluation(ctx context.Context, evalID string) (*domain.Evaluation, error) {
	if evalID == "" {
		return nil, fmt.Errorf("%w: evaluation ID is required", domain.ErrInvalidInput)
	}

	query := `
		SELECT id, crop, location, zone, district, timestamp,
			   suitability, advisory, rule_results, metadata
		FROM evaluations
		WHERE id = ?
	`

	var eval domain.Evaluation
	var suitability, advisory, ruleResults, metadata string

	err := r.db.QueryRowContext(ctx, r.rebind(query), evalID).Scan(
		&eval.ID, &eval.Crop, &eval.Location, &eval.Zone, &eval.District, &eval.Timestamp,
		&suitability, &advisory, &ruleResults, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(suitability), &eval.Suitability)
	json.Unmarshal([]byte(advisory), &eval.Advisory)
	json.Unmarshal([]byte(ruleResults), &eval.RuleResults)
	json.Unmarshal([]byte(metadata), &eval.Metadata)

	return &eval, nil
}

// ListEvaluations retrieves evaluations, optionally filtered by crop,
// newest first.
func (r *SQLRepository) ListEvaluations(ctx context.Context, crop string, since time.Time) ([]*domain.Evaluation, error) {
	query := `
		SELECT id, crop, location, zone, district, timestamp,
			   suitability, advisory, rule_results, metadata
		FROM evaluations
		WHERE timestamp >= ?
	`
	args := []any{since}

	if crop != "" {
		query += ` AND crop = ?`
		args = append(args, strings.ToLower(crop))
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []*domain.Evaluation
	for rows.Next() {
		var eval domain.Evaluation
		var suitability, advisory, ruleResults, metadata string

		if err := rows.Scan(
			&eval.ID, &eval.Crop, &eval.Location, &eval.Zone, &eval.District, &eval.Timestamp,
			&suitability, &advisory, &ruleResults, &metadata,
		); err != nil {
			return nil, err
		}

		json.Unmarshal([]byte(suitability), &eval.Suitability)
		json.Unmarshal([]byte(advisory), &eval.Advisory)
		json.Unmarshal([]byte(ruleResults), &eval.RuleResults)
		json.Unmarshal([]byte(metadata), &eval.Metadata)

		evals = append(evals, &eval)
	}

	return evals, rows.Err()
}

// SaveAlertRule stores an alert rule, upserting on (id, version).
func (r *SQLRepository) SaveAlertRule(ctx context.Context, rule *domain.AlertRule) error {
	if rule == nil || rule.ID == "" {
		return fmt.Errorf("%w: rule ID is required", domain.ErrInvalidInput)
	}

	bands, _ := json.Marshal(rule.Bands)

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO alert_rules (
			id, name, description, version, crop, expression, bands, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			crop = excluded.crop,
			expression = excluded.expression,
			bands = excluded.bands,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Description, rule.Version,
		strings.ToLower(rule.Crop), rule.Expression, string(bands), enabled,
		now, now,
	)
	return err
}

// GetAlertRule retrieves the latest enabled version of a rule.
func (r *SQLRepository) GetAlertRule(ctx context.Context, ruleID string) (*domain.AlertRule, error) {
	if ruleID == "" {
		return nil, fmt.Errorf("%w: rule ID is required", domain.ErrInvalidInput)
	}

	query := `
		SELECT id, name, description, version, crop, expression, bands, enabled
		FROM alert_rules
		WHERE id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var rule domain.AlertRule
	var bands string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), ruleID).Scan(
		&rule.ID, &rule.Name, &rule.Description, &rule.Version,
		&rule.Crop, &rule.Expression, &bands, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rule.Enabled = enabled == 1
	json.Unmarshal([]byte(bands), &rule.Bands)

	return &rule, nil
}

// ListAlertRules retrieves all enabled alert rules.
func (r *SQLRepository) ListAlertRules(ctx context.Context) ([]*domain.AlertRule, error) {
	query := `
		SELECT id, name, description, version, crop, expression, bands, enabled
		FROM alert_rules
		WHERE enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.AlertRule
	for rows.Next() {
		var rule domain.AlertRule
		var bands string
		var enabled int

		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.Version,
			&rule.Crop, &rule.Expression, &bands, &enabled,
		); err != nil {
			return nil, err
		}

		rule.Enabled = enabled == 1
		json.Unmarshal([]byte(bands), &rule.Bands)
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteAlertRule soft-deletes a rule by setting enabled = 0.
func (r *SQLRepository) DeleteAlertRule(ctx context.Context, ruleID string) error {
	if ruleID == "" {
		return fmt.Errorf("%w: rule ID is required", domain.ErrInvalidInput)
	}

	query := `
		UPDATE alert_rules
		SET enabled = 0, updated_at = ?
		WHERE id = ? AND enabled = 1
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), ruleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
