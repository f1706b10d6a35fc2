package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// TestMigrateToV1RetiresOldShape simulates a database created by a
// pre-derived-status build of Roadmap (persisted `status` column,
// `test_cmd` name) and checks Open() migrates it in place.
func TestMigrateToV1RetiresOldShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE claims (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			statement TEXT NOT NULL,
			test_cmd TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'unproven',
			created_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO claims (slug, statement, test_cmd, status, created_at)
		VALUES ('legacy', 'Legacy claim', 'true', 'proven', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	st, err := Open(path, nil)
	require.NoError(t, err)
	defer st.Close()

	cols, err := claimColumns(st.db)
	require.NoError(t, err)
	require.True(t, cols["prove_cmd"])
	require.True(t, cols["scope_json"])
	require.False(t, cols["status"])
	require.False(t, cols["test_cmd"])

	claim, err := st.GetClaimBySlug(context.Background(), "legacy")
	require.NoError(t, err)
	require.Equal(t, "true", claim.ProveCmd)
}
