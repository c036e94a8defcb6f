package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/moneymirror/src/database"
)

var (
	ErrStorage            = errors.New("storage error")
	ErrStorageUnavailable = database.ErrUnavailable
	ErrDataIntegrity      = errors.New("data integrity error")

	ErrLocked            = fmt.Errorf("%w: encryption key not initialized", ErrStorage)
	ErrRecordNotFound    = fmt.Errorf("%w: record not found", ErrStorage)
	ErrUnknownCollection = fmt.Errorf("%w: unknown collection", ErrStorage)
)

// wrapDBErr classifies a database/sql error as unavailable or generic storage failure.
func wrapDBErr(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
