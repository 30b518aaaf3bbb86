// Package sqlite provides a SQLite-backed document store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/barberbook/pkg/metrics"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const backend = "sqlite"

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store persists documents in a single SQLite table.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordStoreError(backend, op)
	}
}

// List implements repository.Store.
func (s *Store) List(ctx context.Context, collection string, filters ...repository.Filter) (out []repository.Record, err error) {
	defer func(start time.Time) { observe("list", start, err) }(time.Now())
	if err := repository.CheckCollection(collection); err != nil {
		return nil, err
	}

	query := `SELECT id, body FROM documents WHERE collection = ?`
	args := []any{collection}
	for _, f := range filters {
		if !fieldName.MatchString(f.Field) {
			return nil, fmt.Errorf("%w: filter field %q", repository.ErrInvalidDocument, f.Field)
		}
		query += ` AND json_extract(body, ?) = ?`
		args = append(args, "$."+f.Field, f.Value)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		data, err := repository.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		out = append(out, repository.Record{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (rec repository.Record, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())
	return getDoc(ctx, s.db, collection, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDoc(ctx context.Context, q queryer, collection, id string) (repository.Record, error) {
	var body []byte
	err := q.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Record{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	data, err := repository.Decode(body)
	if err != nil {
		return repository.Record{}, err
	}
	return repository.Record{ID: id, Data: data}, nil
}

// Insert implements repository.Store.
func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (id string, err error) {
	defer func(start time.Time) { observe("insert", start, err) }(time.Now())
	if err := repository.CheckCollection(collection); err != nil {
		return "", err
	}
	body, err := repository.Encode(data)
	if err != nil {
		return "", err
	}
	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(body), time.Now().UTC().UnixMilli(),
	); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Put implements repository.Store.
func (s *Store) Put(ctx context.Context, collection, id string, data map[string]any) (err error) {
	defer func(start time.Time) { observe("put", start, err) }(time.Now())
	if err := repository.CheckCollection(collection); err != nil {
		return err
	}
	body, err := repository.Encode(data)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, string(body), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update implements repository.Store.
func (s *Store) Update(ctx context.Context, collection, id string, patch map[string]any) (err error) {
	defer func(start time.Time) { observe("update", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := getDoc(ctx, tx, collection, id)
	if err != nil {
		return err
	}
	body, err := repository.Encode(repository.Merge(rec.Data, patch))
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(body), time.Now().UTC().UnixMilli(), collection, id,
	); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
