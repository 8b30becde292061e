// Package store holds every SQL query the API runs against PostgreSQL.
//
// Missing rows are reported as errors satisfying errors.Is(err,
// errors.NotFound) and business-rule rejections as errors.NotValid
// (github.com/juju/errors); anything else is an annotated driver error.
package store

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
)

// Store runs queries over a shared connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan. The result is never nil so that an
// empty result renders as [] in JSON.
func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return out, nil
}

// notFound converts pgx.ErrNoRows into a NotFound error about what.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.NotFoundf(format, args...)
	}
	return errors.Annotatef(err, "loading "+format, args...)
}
