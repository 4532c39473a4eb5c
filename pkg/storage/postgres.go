package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS mysteries (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		format     TEXT NOT NULL,
		source     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mysteries_updated_at ON mysteries(updated_at DESC);
`

// PostgresStore keeps records in the mysteries table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore opens a connection pool for dsn, checks it and creates
// the table if needed. dsn is either a postgres:// URL or a key=value
// connection string.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	db := sql.OpenDB(connector)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: create table: %w", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) Save(ctx context.Context, r *Record) error {
	if err := prepare(r, s.now()); err != nil {
		return err
	}
	query := `
		INSERT INTO mysteries (id, name, format, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    format = EXCLUDED.format,
		    source = EXCLUDED.source,
		    created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, r.ID, r.Name, string(r.Format), r.Source, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, notFound(id)
	}
	query := `
		SELECT id, name, format, source, created_at, updated_at
		FROM mysteries
		WHERE id = $1
	`
	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, name, format, source, created_at, updated_at
		FROM mysteries
		ORDER BY updated_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(id)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM mysteries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var format string
	if err := row.Scan(&r.ID, &r.Name, &format, &r.Source, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Format = mystery.Format(format)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

var _ Store = (*PostgresStore)(nil)
