package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS insights_cache (
        cache_key TEXT PRIMARY KEY,
        insights TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'ok',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS uploads (
        id TEXT PRIMARY KEY, -- UUID
        filename TEXT NOT NULL,
        cache_key TEXT NOT NULL,
        uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Insight methods

// LookupInsight fetches a cached insight by key. A missing key is (nil, nil),
// never an error.
func (s *SQLiteStore) LookupInsight(cacheKey string) (*Insight, error) {
	var ins Insight
	err := s.db.QueryRow(
		"SELECT cache_key, insights, status, created_at FROM insights_cache WHERE cache_key = ?",
		cacheKey,
	).Scan(&ins.CacheKey, &ins.Insights, &ins.Status, &ins.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to query insight: %w", err)
	}
	return &ins, nil
}

// SaveInsight upserts the record for cacheKey. An existing record is
// overwritten wholesale and its created_at refreshed (last writer wins).
func (s *SQLiteStore) SaveInsight(cacheKey, insights, status string) error {
	stmt, err := s.db.Prepare("INSERT OR REPLACE INTO insights_cache (cache_key, insights, status) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insight upsert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(cacheKey, insights, status); err != nil {
		return fmt.Errorf("failed to execute insight upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListInsights() ([]Insight, error) {
	rows, err := s.db.Query("SELECT cache_key, insights, status, created_at FROM insights_cache")
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()
	return scanInsights(rows)
}

// SearchInsights returns records whose text contains the substring. SQLite
// LIKE is case-insensitive for ASCII, which is the consistent behavior here.
func (s *SQLiteStore) SearchInsights(substring string) ([]Insight, error) {
	rows, err := s.db.Query(
		"SELECT cache_key, insights, status, created_at FROM insights_cache WHERE insights LIKE '%' || ? || '%'",
		substring,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search insights: %w", err)
	}
	defer rows.Close()
	return scanInsights(rows)
}

// ClearInsights deletes every cached record and reports how many were
// removed. Administrative use only.
func (s *SQLiteStore) ClearInsights() (int64, error) {
	res, err := s.db.Exec("DELETE FROM insights_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear insights: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func scanInsights(rows *sql.Rows) ([]Insight, error) {
	var insights []Insight
	for rows.Next() {
		var ins Insight
		if err := rows.Scan(&ins.CacheKey, &ins.Insights, &ins.Status, &ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight row: %w", err)
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}

// Upload methods

func (s *SQLiteStore) RecordUpload(filename, cacheKey string) (*Upload, error) {
	up := Upload{
		ID:         uuid.NewString(),
		Filename:   filename,
		CacheKey:   cacheKey,
		UploadedAt: time.Now(),
	}

	stmt, err := s.db.Prepare("INSERT INTO uploads (id, filename, cache_key, uploaded_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(up.ID, up.Filename, up.CacheKey, up.UploadedAt); err != nil {
		return nil, fmt.Errorf("failed to execute upload insert: %w", err)
	}
	return &up, nil
}

func (s *SQLiteStore) ListUploads(limit int) ([]Upload, error) {
	rows, err := s.db.Query(
		"SELECT id, filename, cache_key, uploaded_at FROM uploads ORDER BY uploaded_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var up Upload
		if err := rows.Scan(&up.ID, &up.Filename, &up.CacheKey, &up.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		uploads = append(uploads, up)
	}
	return uploads, rows.Err()
}
