package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"takoyaki/internal/core/apperror"
)

// PostgreSQL error codes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// MapConstraintError translates PostgreSQL constraint violations into
// AppErrors the domain layer understands. Foreign key violations
// become integrity errors so services can apply their delete
// fallbacks; unique violations become conflicts. Anything else is
// returned unchanged.
func MapConstraintError(err error, entityName string, entityID any) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgForeignKeyViolation:
		return apperror.NewIntegrity(entityName, entityID).WithCause(err)
	case pgUniqueViolation:
		return apperror.NewConflict("duplicate value violates unique constraint").
			WithDetail("entity", entityName).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
