// Package store keeps a history of evaluation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL DEFAULT '',
	tenant_id      TEXT NOT NULL,
	file_type_id   TEXT NOT NULL DEFAULT '',
	account_file   TEXT NOT NULL DEFAULT '',
	integration_id TEXT NOT NULL DEFAULT '',
	started_at     INTEGER NOT NULL,
	duration_ms    INTEGER NOT NULL,
	fields         INTEGER NOT NULL,
	judge_calls    INTEGER NOT NULL DEFAULT 0,
	metrics        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_tenant ON runs (tenant_id, started_at);
`

// Run is one stored reconciliation of a tenant's predictions.
type Run struct {
	ID            string            `json:"id"`
	BatchID       string            `json:"batch_id,omitempty"`
	TenantID      string            `json:"tenant_id"`
	FileTypeID    string            `json:"file_type_id,omitempty"`
	AccountFile   string            `json:"account_file,omitempty"`
	IntegrationID string            `json:"integration_id,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	Duration      time.Duration     `json:"duration"`
	Fields        int               `json:"fields"`
	JudgeCalls    int64             `json:"judge_calls"`
	Metrics       []metrics.Summary `json:"metrics"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	TenantID   string
	FileTypeID string
	Limit      int
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "run history", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("migrate", "run history", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a run, assigning an ID when it has none.
func (s *Store) Save(ctx context.Context, r *Run) error {
	if r.TenantID == "" {
		return errors.NewValidationError("tenant_id", r.TenantID, "tenant is required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	m, err := json.Marshal(r.Metrics)
	if err != nil {
		return errors.WrapResource("encode", "run", r.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO runs
		(id, batch_id, tenant_id, file_type_id, account_file, integration_id, started_at, duration_ms, fields, judge_calls, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BatchID, r.TenantID, r.FileTypeID, r.AccountFile, r.IntegrationID,
		r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Fields, r.JudgeCalls, string(m))
	return errors.WrapResource("save", "run", r.ID, err)
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("run", id)
	}
	if err != nil {
		return nil, errors.WrapResource("fetch", "run", id, err)
	}
	return r, nil
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*Run, error) {
	var (
		where []string
		args  []any
	)
	if f.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, f.TenantID)
	}
	if f.FileTypeID != "" {
		where = append(where, "file_type_id = ?")
		args = append(args, f.FileTypeID)
	}
	q := selectRuns
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC, id"
	limit := f.Limit
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapResource("list", "runs", "", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.WrapResource("list", "runs", "", err)
		}
		out = append(out, r)
	}
	return out, errors.WrapResource("list", "runs", "", rows.Err())
}

const selectRuns = `SELECT id, batch_id, tenant_id, file_type_id, account_file, integration_id,
	started_at, duration_ms, fields, judge_calls, metrics FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r         Run
		started   int64
		duration  int64
		metricsJS string
	)
	if err := sc.Scan(&r.ID, &r.BatchID, &r.TenantID, &r.FileTypeID, &r.AccountFile, &r.IntegrationID,
		&started, &duration, &r.Fields, &r.JudgeCalls, &metricsJS); err != nil {
		return nil, err
	}
	r.StartedAt = time.UnixMilli(started).UTC()
	r.Duration = time.Duration(duration) * time.Millisecond
	if err := json.Unmarshal([]byte(metricsJS), &r.Metrics); err != nil {
		return nil, errors.WrapParse("json", "run metrics", err)
	}
	return &r, nil
}
