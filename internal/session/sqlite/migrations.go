package sqlite

import "database/sql"

// schema holds the single-row session table and the key/value metadata used
// by token sealing. These run on open to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    access_token BLOB,
    refresh_token BLOB,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_meta (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
