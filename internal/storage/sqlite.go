package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// Store defines the interface for snapshot persistence
type Store interface {
	Close() error
	Migrate() error
	InsertSnapshot(snap *models.Snapshot) error
	InsertBatch(snaps []*models.Snapshot) error
	GetSnapshotsInRange(location string, start, end time.Time, limit int) ([]*models.Snapshot, error)
	GetLatestSnapshot(location string) (*models.Snapshot, error)
	GetDailyStats(location string, start, end time.Time) ([]DailyStat, error)
	DeleteOlderThan(days int) (int64, error)
	GetStorageStats() (*StorageStats, error)
	GetLocations() ([]string, error)
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps a history of dashboard snapshots so charts survive a
// restart even though the engine itself holds no state.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DailyStat represents aggregated statistics for a single day
type DailyStat struct {
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	AvgHumidity    float64   `json:"avg_humidity"`
	AvgLight       float64   `json:"avg_light"`
	AvgMoisture    float64   `json:"avg_moisture"`
	AvgHealthScore float64   `json:"avg_health_score"`
	SnapshotCount  int       `json:"snapshot_count"`
}

// StorageStats contains information about the database
type StorageStats struct {
	TotalSnapshots  int64     `json:"total_snapshots"`
	OldestSnapshot  time.Time `json:"oldest_snapshot,omitempty"`
	NewestSnapshot  time.Time `json:"newest_snapshot,omitempty"`
	UniqueLocations int       `json:"unique_locations"`
}

const timeLayout = "2006-01-02 15:04:05"

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite store initialized")
	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the database schema if it doesn't exist
func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		humidity REAL NOT NULL,
		light REAL NOT NULL,
		moisture REAL NOT NULL,
		co2 REAL NOT NULL,
		temperature REAL NOT NULL,
		co2_absorption REAL NOT NULL,
		label TEXT NOT NULL,
		confidence REAL NOT NULL,
		health_score REAL NOT NULL,
		recorded_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_location_time ON snapshots(location, recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(recorded_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug().Msg("Database schema migrated")
	return nil
}

const insertSQL = `
	INSERT INTO snapshots (location, humidity, light, moisture, co2, temperature, co2_absorption, label, confidence, health_score, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(snap *models.Snapshot) []interface{} {
	r := snap.Reading
	return []interface{}{
		r.Location,
		r.Humidity,
		r.Light,
		r.Moisture,
		r.CO2,
		r.Temperature,
		r.CO2Absorption,
		string(snap.Classification.Label),
		snap.Classification.Confidence,
		snap.Classification.HealthScore,
		r.Timestamp.Format(timeLayout),
	}
}

// InsertSnapshot inserts a single snapshot into the database
func (s *SQLiteStore) InsertSnapshot(snap *models.Snapshot) error {
	if _, err := s.db.Exec(insertSQL, insertArgs(snap)...); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// InsertBatch inserts multiple snapshots in a single transaction
func (s *SQLiteStore) InsertBatch(snaps []*models.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if _, err := stmt.Exec(insertArgs(snap)...); err != nil {
			return fmt.Errorf("failed to insert snapshot in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().Int("count", len(snaps)).Msg("Batch insert completed")
	return nil
}

// GetSnapshotsInRange returns snapshots within a time range, newest first.
// An empty location matches all walls.
func (s *SQLiteStore) GetSnapshotsInRange(location string, start, end time.Time, limit int) ([]*models.Snapshot, error) {
	query := `
		SELECT location, humidity, light, moisture, co2, temperature, co2_absorption, label, confidence, health_score, recorded_at
		FROM snapshots
		WHERE recorded_at BETWEEN ? AND ?
	`
	args := []interface{}{start.Format(timeLayout), end.Format(timeLayout)}
	if location != "" {
		query += " AND location = ?"
		args = append(args, location)
	}
	query += " ORDER BY recorded_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return s.scanSnapshots(rows)
}

// GetLatestSnapshot returns the most recent snapshot for a location
func (s *SQLiteStore) GetLatestSnapshot(location string) (*models.Snapshot, error) {
	query := `
		SELECT location, humidity, light, moisture, co2, temperature, co2_absorption, label, confidence, health_score, recorded_at
		FROM snapshots
		WHERE location = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	rows, err := s.db.Query(query, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer rows.Close()

	snaps, err := s.scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, sql.ErrNoRows
	}
	return snaps[0], nil
}

// GetDailyStats returns aggregated daily statistics for a location
func (s *SQLiteStore) GetDailyStats(location string, start, end time.Time) ([]DailyStat, error) {
	query := `
		SELECT DATE(recorded_at) AS day, location,
			AVG(humidity), AVG(light), AVG(moisture), AVG(health_score), COUNT(*)
		FROM snapshots
		WHERE location = ? AND recorded_at BETWEEN ? AND ?
		GROUP BY day, location
		ORDER BY day DESC
	`

	rows, err := s.db.Query(query, location, start.Format(timeLayout), end.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		var day string
		if err := rows.Scan(&day, &stat.Location, &stat.AvgHumidity, &stat.AvgLight, &stat.AvgMoisture, &stat.AvgHealthScore, &stat.SnapshotCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		if stat.Date, err = time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("failed to parse day %q: %w", day, err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// DeleteOlderThan removes snapshots older than the given number of days and
// returns how many rows were deleted
func (s *SQLiteStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	result, err := s.db.Exec("DELETE FROM snapshots WHERE recorded_at < ?", cutoff.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return result.RowsAffected()
}

// GetStorageStats returns database statistics
func (s *SQLiteStore) GetStorageStats() (*StorageStats, error) {
	stats := &StorageStats{}

	row := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT location), MIN(recorded_at), MAX(recorded_at)
		FROM snapshots
	`)
	var oldest, newest sql.NullString
	if err := row.Scan(&stats.TotalSnapshots, &stats.UniqueLocations, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("failed to query storage stats: %w", err)
	}
	if oldest.Valid {
		if t, err := time.Parse(timeLayout, oldest.String); err == nil {
			stats.OldestSnapshot = t
		}
	}
	if newest.Valid {
		if t, err := time.Parse(timeLayout, newest.String); err == nil {
			stats.NewestSnapshot = t
		}
	}
	return stats, nil
}

// GetLocations returns list of all unique locations
func (s *SQLiteStore) GetLocations() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT location FROM snapshots ORDER BY location")
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// scanSnapshots converts query rows back into snapshots
func (s *SQLiteStore) scanSnapshots(rows *sql.Rows) ([]*models.Snapshot, error) {
	var snaps []*models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var label, recordedAt string
		err := rows.Scan(
			&snap.Reading.Location,
			&snap.Reading.Humidity,
			&snap.Reading.Light,
			&snap.Reading.Moisture,
			&snap.Reading.CO2,
			&snap.Reading.Temperature,
			&snap.Reading.CO2Absorption,
			&label,
			&snap.Classification.Confidence,
			&snap.Classification.HealthScore,
			&recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Classification.Label = models.HealthLabel(label)
		if snap.Reading.Timestamp, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", recordedAt, err)
		}
		snap.GeneratedAt = snap.Reading.Timestamp
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}
