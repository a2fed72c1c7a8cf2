package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rentshop-backend/internal/apperrors"
)

// Postgres error codes we care about
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
)

// mapError translates low-level pgx failures into the typed taxonomy the
// services and handlers work with. what names the entity for messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("%s not found", what)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(what+" query timed out", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgUniqueViolation, pgFKViolation:
			return apperrors.Constraint(what+" rejected by constraint "+pgErr.ConstraintName, err)
		}
	}
	return apperrors.Persistence(what+" query failed", err)
}
