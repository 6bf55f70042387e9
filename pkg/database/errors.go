package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure. Callers use this to map storage-level uniqueness (email, one
// review per user per book) onto domain errors instead of racing a
// check-then-insert.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
