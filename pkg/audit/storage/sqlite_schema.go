package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit records table (append-only)
CREATE TABLE IF NOT EXISTS audit_records (
    verdict_id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    decision TEXT NOT NULL,
    reason_codes TEXT,
    policy_version TEXT NOT NULL,
    actor TEXT,
    route TEXT,
    timestamp TIMESTAMP NOT NULL,
    break_glass BOOLEAN NOT NULL DEFAULT 0,
    severity TEXT NOT NULL
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_records(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_tenant ON audit_records(tenant_id);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON audit_records(decision);
CREATE INDEX IF NOT EXISTS idx_audit_break_glass ON audit_records(break_glass);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`
