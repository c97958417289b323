package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"taskflow/internal/apperr"
)

// Querier is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it too, so repo tests run without a database.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// wrapDBError maps driver errors onto apperr kinds. CHECK/UNIQUE/FK
// violations become Conflict: the schema enforces the same enums the
// entity validates, defense in depth against entity-layer bugs.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.NotFound, op+": not found", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514", "23503":
			return apperr.Wrap(apperr.Conflict, op+": constraint violation", err)
		}
	}
	return apperr.Wrap(apperr.Internal, op, err)
}
