// Package history persists ScanResults for later inspection. Recording is
// best-effort observation and is never consulted by the scorer: a history
// write failure never fails a scan.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/pkgguard/pkgguard/internal/contract"
	"github.com/pkgguard/pkgguard/schema"
)

// Backend names a supported scan-history database.
type Backend string

const (
	SQLiteBackend     Backend = "sqlite"
	MySQLBackend      Backend = "mysql"
	PostgreSQLBackend Backend = "postgresql"
)

const historyTable = "pkgguard_scan_history"

// Store implements contract.HistoryStore against one of the supported SQL
// backends. It owns a single *sql.DB for the lifetime of a process.
type Store struct {
	db      *sql.DB
	backend Backend
}

var _ contract.HistoryStore = (*Store)(nil)

// NewStore opens (and, for a bare file, creates) the history database and
// ensures the scan-history table exists.
func NewStore(backend Backend, connStr string) (*Store, error) {
	driverName, dsn, err := driverAndDSN(backend, connStr)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s history database: %w", backend, err)
	}
	if backend == SQLiteBackend {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s history database: %w", backend, err)
	}

	if _, err := db.Exec(createTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &Store{db: db, backend: backend}, nil
}

func driverAndDSN(backend Backend, connStr string) (driverName, dsn string, err error) {
	switch backend {
	case SQLiteBackend:
		if connStr == "" {
			return "", "", fmt.Errorf("sqlite history requires a database file path")
		}
		return "sqlite", connStr, nil
	case MySQLBackend:
		if connStr == "" {
			return "", "", fmt.Errorf("mysql history requires a connection string")
		}
		return "mysql", connStr, nil
	case PostgreSQLBackend:
		if connStr == "" {
			return "", "", fmt.Errorf("postgresql history requires a connection string")
		}
		return "pgx", connStr, nil
	default:
		return "", "", fmt.Errorf("unsupported history backend %q", backend)
	}
}

func quotedTable(backend Backend) string {
	switch backend {
	case MySQLBackend:
		return "`" + historyTable + "`"
	default:
		return `"` + historyTable + `"`
	}
}

func createTableQuery(backend Backend) string {
	table := quotedTable(backend)
	switch backend {
	case MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				package VARCHAR(255) NOT NULL,
				score INT NOT NULL,
				tier VARCHAR(32) NOT NULL,
				signal_count INT NOT NULL,
				signal_ids TEXT NOT NULL,
				duration_ms BIGINT NOT NULL,
				error TEXT,
				scanned_at DATETIME(6) NOT NULL
			);
		`, table)
	case PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				package TEXT NOT NULL,
				score INT NOT NULL,
				tier TEXT NOT NULL,
				signal_count INT NOT NULL,
				signal_ids TEXT NOT NULL,
				duration_ms BIGINT NOT NULL,
				error TEXT,
				scanned_at TIMESTAMPTZ NOT NULL
			);
		`, table)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				package TEXT NOT NULL,
				score INTEGER NOT NULL,
				tier TEXT NOT NULL,
				signal_count INTEGER NOT NULL,
				signal_ids TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				error TEXT,
				scanned_at TEXT NOT NULL
			);
		`, table)
	}
}

// Record inserts one ScanResult as a history row.
func (s *Store) Record(ctx context.Context, result schema.ScanResult) error {
	ids := make([]string, len(result.Signals))
	for i, sig := range result.Signals {
		ids[i] = sig.ID
	}

	table := quotedTable(s.backend)
	scannedAt := formatTime(time.Now(), s.backend)

	var query string
	switch s.backend {
	case PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (package, score, tier, signal_count, signal_ids, duration_ms, error, scanned_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, table)
	default:
		query = fmt.Sprintf(`INSERT INTO %s (package, score, tier, signal_count, signal_ids, duration_ms, error, scanned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table)
	}

	_, err := s.db.ExecContext(ctx, query,
		result.Package, result.Score, string(result.Tier), len(result.Signals),
		strings.Join(ids, ","), result.Duration.Milliseconds(), nullableError(result.Error), scannedAt)
	if err != nil {
		return fmt.Errorf("recording scan history for %s: %w", result.Package, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullableError(msg string) any {
	if msg == "" {
		return nil
	}
	return msg
}

func formatTime(t time.Time, backend Backend) any {
	if backend == SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

// RecentByPackage returns the most recent history rows for name, newest
// first, at most limit of them.
func (s *Store) RecentByPackage(ctx context.Context, name string, limit int) ([]schema.ScanResult, error) {
	table := quotedTable(s.backend)
	var query string
	switch s.backend {
	case PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT package, score, tier, duration_ms, error FROM %s WHERE package = $1 ORDER BY id DESC LIMIT $2`, table)
	default:
		query = fmt.Sprintf(`SELECT package, score, tier, duration_ms, error FROM %s WHERE package = ? ORDER BY id DESC LIMIT ?`, table)
	}

	rows, err := s.db.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan history for %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanResult
	for rows.Next() {
		var pkg, tier string
		var score int
		var durationMs int64
		var errMsg sql.NullString
		if err := rows.Scan(&pkg, &score, &tier, &durationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning scan history row: %w", err)
		}
		results = append(results, schema.ScanResult{
			Package:  pkg,
			Score:    score,
			Tier:     schema.Tier(tier),
			Duration: time.Duration(durationMs) * time.Millisecond,
			Error:    errMsg.String,
		})
	}
	return results, rows.Err()
}

// All returns every history row, newest first, up to limit. limit <= 0
// means unbounded.
func (s *Store) All(ctx context.Context, limit int) ([]schema.ScanResult, error) {
	table := quotedTable(s.backend)
	query := fmt.Sprintf(`SELECT package, score, tier, duration_ms, error, scanned_at FROM %s ORDER BY id DESC`, table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying scan history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanResult
	for rows.Next() {
		var pkg, tier string
		var score int
		var durationMs int64
		var errMsg sql.NullString
		var scannedAt string
		if err := rows.Scan(&pkg, &score, &tier, &durationMs, &errMsg, &scannedAt); err != nil {
			return nil, fmt.Errorf("scanning scan history row: %w", err)
		}
		results = append(results, schema.ScanResult{
			Package:  pkg,
			Score:    score,
			Tier:     schema.Tier(tier),
			Duration: time.Duration(durationMs) * time.Millisecond,
			Error:    errMsg.String,
		})
	}
	return results, rows.Err()
}

// ParseBackend validates a backend name from configuration.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case SQLiteBackend:
		return SQLiteBackend, nil
	case MySQLBackend:
		return MySQLBackend, nil
	case PostgreSQLBackend:
		return PostgreSQLBackend, nil
	default:
		return "", fmt.Errorf("unsupported history backend %q: must be sqlite, mysql, or postgresql", s)
	}
}

