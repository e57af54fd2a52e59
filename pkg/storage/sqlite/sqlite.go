// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/gazetap/pkg/storage/sqldriver"
)

// Dialect is the SQLite flavor of the samples schema.
var Dialect = sqldriver.Dialect{
	Name: "sqlite3",
	Schema: `
	CREATE TABLE IF NOT EXISTS samples (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		device_name TEXT NOT NULL,
		sample_name TEXT NOT NULL,
		gaze_time REAL,
		ts INTEGER NOT NULL,
		left_x REAL NOT NULL,
		left_y REAL NOT NULL,
		left_valid REAL NOT NULL,
		left_pupil REAL NOT NULL,
		left_pupil_valid REAL NOT NULL,
		right_x REAL NOT NULL,
		right_y REAL NOT NULL,
		right_valid REAL NOT NULL,
		right_pupil REAL NOT NULL,
		right_pupil_valid REAL NOT NULL,
		line TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_session_id ON samples(session_id);
	`,
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldriver.Driver
}

// NewDriver creates a new SQLite-backed storer.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	d := &sqldriver.Driver{DB: db, Dialect: Dialect}
	if err := d.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Driver: d}, nil
}
