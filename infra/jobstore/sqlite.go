package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/promanage/core/jobstore"
	"github.com/kilianp07/promanage/core/model"
)

// SQLiteStore persists jobs in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	ids core.IDGenerator
}

// NewSQLiteStore opens or creates the database and ensures schema. A nil
// generator defaults to sequential ids.
func NewSQLiteStore(path string, ids core.IDGenerator) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS jobs (
        job_id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        deadline INTEGER NOT NULL,
        revenue REAL NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	if ids == nil {
		ids = core.NewSequentialIDs(core.DefaultPrefix)
	}
	return &SQLiteStore{db: db, ids: ids}, nil
}

// AddJob inserts j. A second job with the same id yields core.ErrDuplicateID.
func (s *SQLiteStore) AddJob(ctx context.Context, j model.Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (job_id, title, deadline, revenue) VALUES (?, ?, ?, ?)`,
		j.ID, j.Title, j.Deadline, j.Revenue)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", core.ErrDuplicateID, j.ID)
	}
	return err
}

// ListJobs returns every stored job ordered by id.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id, title, deadline, revenue FROM jobs ORDER BY job_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Job
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Deadline, &j.Revenue); err != nil {
			return nil, err
		}
		res = append(res, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// NextJobID derives the next id from the ids already stored.
func (s *SQLiteStore) NextJobID(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id FROM jobs`)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()
	var existing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return s.ids.Next(existing), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
