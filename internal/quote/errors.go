package quote

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a quote or reference row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownReference is returned when a request names a catalog row that does not exist or is inactive.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrConflict is returned when a write would duplicate a unique key.
	ErrConflict = errors.New("conflict")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
