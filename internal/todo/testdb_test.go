package todo

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory SQLite database with the todos schema.
// Production runs on MySQL, but every statement the repository issues is
// portable across both engines, so the tests exercise the real SQL.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory
	// database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE todos (
			id TEXT NOT NULL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			owner_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string {
	return &s
}
