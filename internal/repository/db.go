package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrRangeQueryUnsupported is returned when the store cannot serve a
// mentor/status/date range query, typically because the supporting index is
// missing. Callers fall back to a broader fetch and filter themselves.
var ErrRangeQueryUnsupported = errors.New("range query unsupported")

var ErrNotFound = errors.New("not found")

const (
	sqlStateFeatureNotSupported = "0A000"
	sqlStateQueryCanceled       = "57014"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func isRangeQueryUnsupported(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateFeatureNotSupported || pgErr.Code == sqlStateQueryCanceled
}
