package store

import (
	"database/sql"
	"fmt"
)

// runMigrations applies incremental schema migrations based on
// PRAGMA user_version, following the teacher's migrateToV1 pattern.
// Idempotent: safe to call on every Open.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 retires the pre-derived-status shape: a persisted `status`
// column and a `test_cmd` column name on `claims` (spec.md §4.1). New
// databases never have either — schema.sql already creates the v1
// shape — so this only fires against a database created by an older
// build of Roadmap.
func migrateToV1(db *sql.DB) error {
	cols, err := claimColumns(db)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}

	if cols["test_cmd"] && !cols["prove_cmd"] {
		if _, err := db.Exec(`ALTER TABLE claims RENAME COLUMN test_cmd TO prove_cmd`); err != nil {
			return fmt.Errorf("migrate to v1: rename test_cmd: %w", err)
		}
	}
	if cols["status"] {
		if _, err := db.Exec(`ALTER TABLE claims DROP COLUMN status`); err != nil {
			return fmt.Errorf("migrate to v1: drop status: %w", err)
		}
	}
	if !cols["scope_json"] {
		if _, err := db.Exec(`ALTER TABLE claims ADD COLUMN scope_json TEXT NOT NULL DEFAULT '[]'`); err != nil {
			return fmt.Errorf("migrate to v1: add scope_json: %w", err)
		}
	}
	return nil
}

// claimColumns returns the set of column names currently on the claims
// table, or an empty set if the table does not exist yet.
func claimColumns(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`PRAGMA table_info(claims)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notnull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
