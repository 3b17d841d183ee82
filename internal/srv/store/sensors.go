package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNoReading = errors.New("no sensor reading available")

const sqliteConnParams = "?_busy_timeout=5000"

// Reading is one sample of the humidity sensor, values in tenths of % and °C.
type Reading struct {
	Time     time.Time
	Humidity int
	Celsius  int
}

type SensorStore struct {
	sql *sql.DB
}

func OpenSensorStore(ctx context.Context, path string) (*SensorStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	db, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := NewSensorStore(db)
	if err = s.Allocate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSensorStore(db *sql.DB) *SensorStore {
	return &SensorStore{sql: db}
}

func (s *SensorStore) Allocate(ctx context.Context) error {
	_, err := s.sql.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sensor_readings(
			time INTEGER PRIMARY KEY,
			humidity INTEGER NOT NULL,
			celsius INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create sensor_readings table: %w", err)
	}
	return nil
}

func (s *SensorStore) Add(ctx context.Context, r Reading) error {
	_, err := s.sql.ExecContext(ctx,
		"INSERT INTO sensor_readings (time, humidity, celsius) VALUES (?, ?, ?)",
		r.Time.Unix(), r.Humidity, r.Celsius)
	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return nil
}

func (s *SensorStore) Latest(ctx context.Context) (Reading, error) {
	row := s.sql.QueryRowContext(ctx,
		"SELECT time, humidity, celsius FROM sensor_readings ORDER BY time DESC LIMIT 1")
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reading{}, ErrNoReading
	}
	if err != nil {
		return Reading{}, fmt.Errorf("failed to query latest sensor reading: %w", err)
	}
	return r, nil
}

// Recent returns the n latest readings, newest first.
func (s *SensorStore) Recent(ctx context.Context, n int) ([]Reading, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT time, humidity, celsius FROM sensor_readings ORDER BY time DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	readings := make([]Reading, 0, n)
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}
	return readings, nil
}

func (s *SensorStore) Close() error {
	return s.sql.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (Reading, error) {
	var (
		unix int64
		r    Reading
	)
	if err := row.Scan(&unix, &r.Humidity, &r.Celsius); err != nil {
		return Reading{}, err
	}
	r.Time = time.Unix(unix, 0)
	return r, nil
}
