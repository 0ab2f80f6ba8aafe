package repository

// Schema definitions for the Farmer-Aid database.
// Compatible with both SQLite and PostgreSQL.

const schemaCustomThresholds = `
CREATE TABLE IF NOT EXISTS custom_thresholds (
    key TEXT PRIMARY KEY,
    thresholds TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaEvaluations = `
CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    crop TEXT NOT NULL,
    location TEXT,
    zone TEXT,
    district TEXT,
    status TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    suitability TEXT NOT NULL,
    advisory TEXT NOT NULL,
    rule_results TEXT,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_crop ON evaluations(crop, timestamp);
CREATE INDEX IF NOT EXISTS idx_evaluations_status ON evaluations(status);
CREATE INDEX IF NOT EXISTS idx_evaluations_timestamp ON evaluations(timestamp);
`

const schemaAlertRules = `
CREATE TABLE IF NOT EXISTS alert_rules (
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    crop TEXT,
    expression TEXT NOT NULL,
    bands TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, version)
);

CREATE INDEX IF NOT EXISTS idx_alert_rules_enabled ON alert_rules(enabled);
CREATE INDEX IF NOT EXISTS idx_alert_rules_crop ON alert_rules(crop);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaCustomThresholds,
		schemaEvaluations,
		schemaAlertRules,
	}
}
