package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts while watch mode saves snapshots.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ping reports whether the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// SaveSnapshot stores snapshot under projectKey. Saving the same project,
// path, timestamp and run again replaces the earlier row.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = normalizeProjectKey(projectKey)
	if strings.TrimSpace(snapshot.Path) == "" {
		return fmt.Errorf("snapshot path must not be empty")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO coverage_snapshots (
  project_key, path, schema_version, ts_utc, run_id, style, threshold,
  total, documented, percentage, passed, violation_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_key, path, ts_utc, run_id) DO UPDATE SET
  schema_version=excluded.schema_version,
  style=excluded.style,
  threshold=excluded.threshold,
  total=excluded.total,
  documented=excluded.documented,
  percentage=excluded.percentage,
  passed=excluded.passed,
  violation_count=excluded.violation_count
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			projectKey,
			snapshot.Path,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.RunID,
			snapshot.Style,
			snapshot.Threshold,
			snapshot.Total,
			snapshot.Documented,
			snapshot.Percentage,
			boolToInt(snapshot.Passed),
			snapshot.ViolationCount,
		)
		return err
	})
}

// LoadSnapshots returns the project's snapshots in time order. An empty path
// selects every file; a zero since selects the whole history.
func (s *Store) LoadSnapshots(projectKey, path string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := `
SELECT
  project_key, path, schema_version, ts_utc, run_id, style, threshold,
  total, documented, percentage, passed, violation_count
FROM coverage_snapshots
WHERE project_key = ?`
	args := []any{normalizeProjectKey(projectKey)}
	if path = strings.TrimSpace(path); path != "" {
		base += " AND path = ?"
		args = append(args, path)
	}
	if !since.IsZero() {
		base += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	base += " ORDER BY ts_utc ASC, run_id ASC, path ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(base, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			passed   int
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.Project,
			&snapshot.Path,
			&snapshot.SchemaVersion,
			&tsRaw,
			&snapshot.RunID,
			&snapshot.Style,
			&snapshot.Threshold,
			&snapshot.Total,
			&snapshot.Documented,
			&snapshot.Percentage,
			&passed,
			&snapshot.ViolationCount,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts
		snapshot.Passed = passed != 0
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

// Trend loads the window's snapshots and builds a trend report from them.
func (s *Store) Trend(projectKey, path string, since time.Time) (TrendReport, error) {
	snapshots, err := s.LoadSnapshots(projectKey, path, since)
	if err != nil {
		return TrendReport{}, err
	}
	report, err := BuildTrendReport(snapshots)
	if err != nil {
		return TrendReport{}, err
	}
	report.Project = normalizeProjectKey(projectKey)
	report.Path = strings.TrimSpace(path)
	return report, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
