package killswitch

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const historySchema = `
CREATE TABLE IF NOT EXISTS killswitch_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    version TEXT NOT NULL,
    mode TEXT NOT NULL,
    scope TEXT NOT NULL,
    config_hash TEXT NOT NULL,
    tenant_overrides INTEGER NOT NULL,
    route_patterns INTEGER NOT NULL,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_applied_at ON killswitch_history(applied_at);
`

// HistoryEntry is one journaled configuration snapshot.
type HistoryEntry struct {
	Version         string
	Mode            Mode
	Scope           Scope
	ConfigHash      string
	TenantOverrides int
	RoutePatterns   int
	AppliedAt       time.Time
}

// History journals every applied kill-switch snapshot so operators can prove
// which configuration was live for any decision. Uses the pure-Go sqlite
// driver so the journal works in cgo-free builds.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if necessary) the history journal at path.
func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history journal %q: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL on history journal: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &History{db: db}, nil
}

// Record appends one snapshot to the journal.
func (h *History) Record(ctx context.Context, snap *Snapshot) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO killswitch_history
		(version, mode, scope, config_hash, tenant_overrides, route_patterns, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.Config.Version,
		string(snap.Config.Mode),
		string(snap.Config.Scope),
		snap.Hash,
		len(snap.Config.TenantOverrides),
		len(snap.Config.RoutePatterns),
		snap.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to journal snapshot: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT version, mode, scope, config_hash, tenant_overrides, route_patterns, applied_at
		FROM killswitch_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var mode, scope string
		if err := rows.Scan(&e.Version, &mode, &scope, &e.ConfigHash, &e.TenantOverrides, &e.RoutePatterns, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Mode = Mode(mode)
		e.Scope = Scope(scope)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the journal.
func (h *History) Close() error {
	return h.db.Close()
}
