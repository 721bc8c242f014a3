package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/models"
)

// DateLayout is how canonical period dates are stored in the index.
const DateLayout = "2006-01-02"

// Upsert inserts or replaces a periodic note row.
func (db *DB) Upsert(n models.PeriodicNote) error {
	_, err := db.conn.Exec(`
		INSERT INTO periodic_notes (path, granularity, date, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			granularity = excluded.granularity,
			date        = excluded.date,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, n.Path, string(n.Granularity), n.Date.Format(DateLayout), n.Checksum, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert: %w", err)
	}
	return nil
}

// Delete removes a periodic note row. Deleting an unindexed path is a
// no-op.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM periodic_notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete: %w", err)
	}
	return nil
}

// Get returns the indexed periodic note at path, or nil when absent.
func (db *DB) Get(path string) (*models.PeriodicNote, error) {
	row := db.conn.QueryRow(`
		SELECT path, granularity, date, checksum, updated_at
		FROM periodic_notes WHERE path = ?
	`, path)
	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get: %w", err)
	}
	return n, nil
}

// ListByGranularity returns periodic notes of granularity g ordered by
// date descending, with the total count for pagination. An empty g
// lists every granularity.
func (db *DB) ListByGranularity(g granularity.Granularity, limit, offset int) ([]models.PeriodicNote, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ``
	args := []any{}
	if g != "" {
		where = `WHERE granularity = ?`
		args = append(args, string(g))
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM periodic_notes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, granularity, date, checksum, updated_at
		FROM periodic_notes `+where+`
		ORDER BY date DESC, path
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list: %w", err)
	}
	defer rows.Close()

	var out []models.PeriodicNote
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// FindByDate returns the path of the note covering the given canonical
// date at granularity g, if one is indexed.
func (db *DB) FindByDate(g granularity.Granularity, date string) (string, bool, error) {
	var path string
	err := db.conn.QueryRow(`
		SELECT path FROM periodic_notes WHERE granularity = ? AND date = ?
	`, string(g), date).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: find by date: %w", err)
	}
	return path, true, nil
}

// AllChecksums returns every indexed path with its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM periodic_notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanNote(scan func(...any) error) (*models.PeriodicNote, error) {
	var (
		n       models.PeriodicNote
		g, date string
	)
	if err := scan(&n.Path, &g, &date, &n.Checksum, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Granularity = granularity.Granularity(g)
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("index: bad date %q: %w", date, err)
	}
	n.Date = d
	return &n, nil
}
