package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iabalyuk/geoguide/places"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// fetchedAtLayout is fixed width so stored timestamps compare correctly as text
const fetchedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage is a persistent place detail cache backed by SQLite.
// Reads are served from the in-memory cache; writes go to both.
type SQLiteStorage struct {
	db          *sql.DB
	memoryCache *Storage
	dbPath      string
	logger      *zap.Logger
}

// NewSQLiteStorage opens (or creates) the database at dbPath and loads it into memory
func NewSQLiteStorage(dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	if dbPath == "" {
		dbPath = "geoguide.db"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "storage.sqlite"), zap.String("db_path", dbPath))

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writes serialized and makes ":memory:" usable.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s := &SQLiteStorage{
		db:          db,
		memoryCache: New(),
		dbPath:      dbPath,
		logger:      logger,
	}
	if err := s.loadFromDB(); err != nil {
		logger.Warn("Failed to load data from database", zap.Error(err))
	}
	if last, err := s.getMetadata("last_updated"); err != nil {
		logger.Warn("Failed to read cache metadata", zap.Error(err))
	} else if last != "" {
		logger.Info("Detail cache last updated", zap.String("last_updated", last))
	}
	return s, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS place_details (
			place_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			vicinity TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			rating REAL,
			phone TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			photo_reference TEXT NOT NULL DEFAULT '',
			opening_hours TEXT NOT NULL DEFAULT '[]',
			fetched_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create place_details table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_place_details_fetched_at ON place_details(fetched_at)`)
	if err != nil {
		return fmt.Errorf("failed to create fetched_at index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// GetDetail returns a cached detail record (from memory)
func (s *SQLiteStorage) GetDetail(placeID string) (places.PlaceDetail, bool) {
	return s.memoryCache.GetDetail(placeID)
}

// PutDetail writes the record to memory and to the database
func (s *SQLiteStorage) PutDetail(detail places.PlaceDetail) {
	if detail.ID == "" {
		return
	}
	fetchedAt := s.memoryCache.now()
	s.memoryCache.putWithTime(detail, fetchedAt)

	if err := s.saveDetail(detail, fetchedAt); err != nil {
		s.logger.Warn("Failed to save detail to database", zap.String("place_id", detail.ID), zap.Error(err))
		return
	}
	s.saveMetadata("last_updated", fetchedAt.Format(time.RFC3339))
}

// PruneOlderThan removes records fetched more than maxAge ago from memory and the database
func (s *SQLiteStorage) PruneOlderThan(maxAge time.Duration) int {
	removed := s.memoryCache.PruneOlderThan(maxAge)

	cutoff := s.memoryCache.now().Add(-maxAge).UTC().Format(fetchedAtLayout)
	res, err := s.db.Exec("DELETE FROM place_details WHERE fetched_at < ?", cutoff)
	if err != nil {
		s.logger.Warn("Failed to prune database", zap.Error(err))
		return removed
	}
	if n, err := res.RowsAffected(); err == nil && int(n) != removed {
		s.logger.Debug("Prune count differs between memory and database",
			zap.Int("memory", removed), zap.Int64("database", n))
	}
	return removed
}

// Count returns the number of cached records
func (s *SQLiteStorage) Count() int {
	return s.memoryCache.Count()
}

// GetLastUpdated returns the time of the last write
func (s *SQLiteStorage) GetLastUpdated() time.Time {
	return s.memoryCache.GetLastUpdated()
}

// ResetStorage clears memory and database
func (s *SQLiteStorage) ResetStorage() {
	s.memoryCache.ResetStorage()

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("Failed to begin reset transaction", zap.Error(err))
		return
	}
	if _, err := tx.Exec("DELETE FROM place_details"); err != nil {
		tx.Rollback()
		s.logger.Error("Failed to clear place_details", zap.Error(err))
		return
	}
	if _, err := tx.Exec("DELETE FROM metadata"); err != nil {
		tx.Rollback()
		s.logger.Error("Failed to clear metadata", zap.Error(err))
		return
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit reset", zap.Error(err))
	}
}

// saveDetail upserts one record
func (s *SQLiteStorage) saveDetail(d places.PlaceDetail, fetchedAt time.Time) error {
	hours := d.OpeningHours
	if hours == nil {
		hours = []string{}
	}
	hoursJSON, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("failed to encode opening hours: %w", err)
	}
	var rating sql.NullFloat64
	if d.Rating != nil {
		rating = sql.NullFloat64{Float64: *d.Rating, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO place_details
			(place_id, name, lat, lng, vicinity, address, rating, phone, website, photo_reference, opening_hours, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.Name, d.Location.Lat, d.Location.Lng, d.Vicinity, d.Address, rating,
		d.Phone, d.Website, d.PhotoReference, string(hoursJSON),
		fetchedAt.UTC().Format(fetchedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert place %s: %w", d.ID, err)
	}
	return nil
}

// loadFromDB loads all records from the database into memory
func (s *SQLiteStorage) loadFromDB() error {
	rows, err := s.db.Query(`
		SELECT place_id, name, lat, lng, vicinity, address, rating, phone, website,
		       photo_reference, opening_hours, fetched_at
		FROM place_details
	`)
	if err != nil {
		return fmt.Errorf("failed to query place_details: %w", err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var (
			d            places.PlaceDetail
			rating       sql.NullFloat64
			hoursJSON    string
			fetchedAtStr string
		)
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Location.Lat, &d.Location.Lng, &d.Vicinity, &d.Address, &rating,
			&d.Phone, &d.Website, &d.PhotoReference, &hoursJSON, &fetchedAtStr,
		); err != nil {
			s.logger.Warn("Failed to scan place_details row", zap.Error(err))
			continue
		}
		fetchedAt, err := time.Parse(fetchedAtLayout, fetchedAtStr)
		if err != nil {
			s.logger.Warn("Failed to parse fetched_at", zap.String("place_id", d.ID), zap.Error(err))
			continue
		}
		if rating.Valid {
			r := rating.Float64
			d.Rating = &r
		}
		var hours []string
		if err := json.Unmarshal([]byte(hoursJSON), &hours); err == nil && len(hours) > 0 {
			d.OpeningHours = hours
		}
		s.memoryCache.putWithTime(d, fetchedAt)
		loaded++
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("Error iterating place_details rows", zap.Error(err))
	}

	s.logger.Info("Loaded place details from database", zap.Int("count", loaded))
	return nil
}

// saveMetadata saves a metadata key-value pair to the database
func (s *SQLiteStorage) saveMetadata(key, value string) {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		key, value,
	)
	if err != nil {
		s.logger.Warn("Failed to save metadata", zap.String("key", key), zap.Error(err))
	}
}

// getMetadata retrieves a metadata value by key
func (s *SQLiteStorage) getMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	return value, nil
}
