package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"quotecompare/internal/repositories/interfaces"
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels and wraps
// everything else with msg.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return interfaces.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrapf(interfaces.ErrDuplicate, "%s: %s", msg, pgErr.ConstraintName)
	}

	return errors.Wrap(err, msg)
}
