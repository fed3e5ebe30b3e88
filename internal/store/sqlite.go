// Package store provides the SQLite-backed forecast cache.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sunshinelabs/sunshined/internal/weather"
)

// SQLiteStore implements weather.Store on a single table keyed by the
// normalized date. Row ids are AUTOINCREMENT so an identity, once assigned,
// is never reused even after a full-table clear.
type SQLiteStore struct {
	db     *sql.DB
	DBPath string
}

// Open creates and initializes a new SQLite store. An empty path defaults to
// data/sunshine.db; ":memory:" is accepted for tests.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "sunshine.db")
	}

	log.Printf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS weather (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date INTEGER NOT NULL UNIQUE,
		weather_id INTEGER NOT NULL,
		min REAL NOT NULL,
		max REAL NOT NULL,
		humidity REAL NOT NULL,
		pressure REAL NOT NULL,
		wind REAL NOT NULL,
		degrees REAL NOT NULL
	);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteStore{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert writes forecast rows keyed by date. A row whose date is already
// present is replaced in place, keeping its id; new dates insert with a fresh
// id. Statements execute one by one, so a failure mid-batch leaves the rows
// already applied in place and returns their count alongside the error.
func (s *SQLiteStore) Upsert(days []weather.WeatherDay) (int, error) {
	stmt, err := s.db.Prepare(`
		INSERT INTO weather(date, weather_id, min, max, humidity, pressure, wind, degrees)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
		weather_id=excluded.weather_id,
		min=excluded.min,
		max=excluded.max,
		humidity=excluded.humidity,
		pressure=excluded.pressure,
		wind=excluded.wind,
		degrees=excluded.degrees
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	for i, d := range days {
		_, err := stmt.Exec(
			d.Date,
			d.ConditionID,
			d.MinTemp,
			d.MaxTemp,
			d.Humidity,
			d.Pressure,
			d.WindSpeed,
			d.WindDirection,
		)
		if err != nil {
			return i, fmt.Errorf("failed to upsert row for date %d: %v", d.Date, err)
		}
	}

	return len(days), nil
}

// RowsFrom returns all rows with date >= from, ascending by date, as an
// owned slice.
func (s *SQLiteStore) RowsFrom(from int64) ([]weather.WeatherDay, error) {
	query := `
		SELECT date, max, min, humidity, pressure, wind, degrees, weather_id
		FROM weather
		WHERE date >= ?
		ORDER BY date ASC`

	rows, err := s.db.Query(query, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather rows: %v", err)
	}
	defer rows.Close()

	var result []weather.WeatherDay
	for rows.Next() {
		var d weather.WeatherDay
		if err := rows.Scan(
			&d.Date,
			&d.MaxTemp,
			&d.MinTemp,
			&d.Humidity,
			&d.Pressure,
			&d.WindSpeed,
			&d.WindDirection,
			&d.ConditionID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}

	return result, nil
}

// Clear removes every cached row. The AUTOINCREMENT sequence survives, so
// ids assigned after a clear do not collide with ids handed out before it.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM weather"); err != nil {
		return fmt.Errorf("failed to clear weather table: %v", err)
	}
	return nil
}

// IDForDate returns the stored row id for a date, or sql.ErrNoRows.
func (s *SQLiteStore) IDForDate(date int64) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM weather WHERE date = ?", date).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
