package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// OpenForTesting returns a migrated in-memory database private to the
// caller. It is pinned to one connection so every query sees the same data.
func OpenForTesting() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", uuid.NewString(), pragmas)
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
