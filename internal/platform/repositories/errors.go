package repositories

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned when an insert or update would violate a
// uniqueness constraint. Callers treat it as a retryable outcome, not a
// failure: the key issuer regenerates, account provisioning re-fetches.
var ErrDuplicate = errors.New("duplicate record")

func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrDuplicate
		}
	}
	return err
}
