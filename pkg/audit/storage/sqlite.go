package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BrianCLong/govgate/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the audit database, creating the file and
// schema as needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, audit.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("sqlite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	return nil
}

// Store appends one audit record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	codes, err := json.Marshal(record.ReasonCodes)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_reasons", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_records (
			verdict_id, request_id, tenant_id, decision, reason_codes,
			policy_version, actor, route, timestamp, break_glass, severity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.VerdictID,
		record.RequestID,
		record.TenantID,
		record.Decision,
		string(codes),
		record.PolicyVersion,
		record.Actor,
		record.Route,
		record.Timestamp.UTC(),
		record.BreakGlass,
		string(record.Severity),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhere(query)

	q := `SELECT verdict_id, request_id, tenant_id, decision, reason_codes,
		policy_version, actor, route, timestamp, break_glass, severity
		FROM audit_records` + where + ` ORDER BY timestamp DESC`

	if query != nil && query.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			q += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "iterate", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records older than cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_records WHERE timestamp < ?", cutoff.UTC())
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "rows_affected", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func buildWhere(query *audit.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.StartTime != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, query.StartTime.UTC())
	}
	if query.EndTime != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, query.EndTime.UTC())
	}
	if query.TenantID != "" {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, query.TenantID)
	}
	if query.Decision != "" {
		clauses = append(clauses, "decision = ?")
		args = append(args, query.Decision)
	}
	if query.BreakGlass != nil {
		clauses = append(clauses, "break_glass = ?")
		args = append(args, *query.BreakGlass)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var rec audit.Record
	var codes string
	var severity string

	err := rows.Scan(
		&rec.VerdictID,
		&rec.RequestID,
		&rec.TenantID,
		&rec.Decision,
		&codes,
		&rec.PolicyVersion,
		&rec.Actor,
		&rec.Route,
		&rec.Timestamp,
		&rec.BreakGlass,
		&severity,
	)
	if err != nil {
		return nil, err
	}

	if codes != "" {
		if err := json.Unmarshal([]byte(codes), &rec.ReasonCodes); err != nil {
			return nil, err
		}
	}
	rec.Severity = audit.Severity(severity)
	return &rec, nil
}
