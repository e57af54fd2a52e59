// Package sqldriver implements storage.Driver over database/sql. It is
// database-agnostic and embedded by the sqlite and postgres drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/storage"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	Name string

	// Schema creates the samples table if it doesn't exist.
	Schema string

	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool
}

const columns = `id, session_id, device_name, sample_name, gaze_time, ts,
	left_x, left_y, left_valid, left_pupil, left_pupil_valid,
	right_x, right_y, right_valid, right_pupil, right_pupil_valid, line`

const numColumns = 17

// Driver provides storage operations on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// Migrate applies the dialect schema.
func (d *Driver) Migrate(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, d.Dialect.Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (d *Driver) placeholders(n, start int) string {
	ps := make([]string, n)
	for i := range ps {
		if d.Dialect.Numbered {
			ps[i] = "$" + strconv.Itoa(start+i)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// Put stores a record. Returns false if the ID already exists.
func (d *Driver) Put(ctx context.Context, rec *storage.Record) (bool, error) {
	if rec == nil {
		return false, storage.ErrNilRecord
	}

	query := `INSERT INTO samples (` + columns + `) VALUES (` + d.placeholders(numColumns, 1) + `)
		ON CONFLICT (id) DO NOTHING`

	res, err := d.DB.ExecContext(ctx, query,
		rec.ID.String(), rec.SessionID, rec.DeviceName, rec.SampleName, rec.GazeTime, rec.Timestamp,
		rec.Left.X, rec.Left.Y, rec.Left.Valid, rec.Left.Pupil, rec.Left.PupilValid,
		rec.Right.X, rec.Right.Y, rec.Right.Valid, rec.Right.Pupil, rec.Right.PupilValid,
		rec.Line,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert sample: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n > 0, nil
}

// Get retrieves a record by its ID.
func (d *Driver) Get(ctx context.Context, id uuid.UUID) (*storage.Record, error) {
	query := `SELECT ` + columns + ` FROM samples WHERE id = ` + d.placeholders(1, 1)

	rec, err := scanRecord(d.DB.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sample: %w", err)
	}

	return rec, nil
}

// List returns up to limit records, most recent first.
func (d *Driver) List(ctx context.Context, limit int) ([]*storage.Record, error) {
	query := `SELECT ` + columns + ` FROM samples ORDER BY seq DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ` + d.placeholders(1, 1)
		args = append(args, limit)
	}

	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer rows.Close()

	var records []*storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the number of stored records.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.Record, error) {
	var (
		rec storage.Record
		id  string
	)

	err := row.Scan(
		&id, &rec.SessionID, &rec.DeviceName, &rec.SampleName, &rec.GazeTime, &rec.Timestamp,
		&rec.Left.X, &rec.Left.Y, &rec.Left.Valid, &rec.Left.Pupil, &rec.Left.PupilValid,
		&rec.Right.X, &rec.Right.Y, &rec.Right.Valid, &rec.Right.Pupil, &rec.Right.PupilValid,
		&rec.Line,
	)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sample id %q: %w", id, err)
	}

	return &rec, nil
}
