package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// IsExclusionConflict reports whether err is a Postgres exclusion-constraint
// violation (overlapping appointment ranges when the schema carries one).
func IsExclusionConflict(err error) bool {
	pe := pgError(err)
	return pe != nil && pe.Code == "23P01"
}

// IsSerializationFailure reports whether err is a retryable transaction
// conflict: serialization failure (40001) or deadlock detected (40P01).
func IsSerializationFailure(err error) bool {
	pe := pgError(err)
	if pe == nil {
		return false
	}
	return pe.Code == "40001" || pe.Code == "40P01"
}
