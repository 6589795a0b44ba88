package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/video-converter/internal/types"
)

// MetadataDB records completed conversions in SQLite. It is best-effort
// bookkeeping for the history endpoint; a write failure never fails a
// conversion.
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (or creates) the conversion history database.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		original_filename TEXT NOT NULL,
		target_format TEXT NOT NULL,
		output_object TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveConversion inserts one completed conversion.
func (mdb *MetadataDB) SaveConversion(rec types.ConversionRecord) error {
	query := `
	INSERT INTO conversions (job_id, original_filename, target_format, output_object, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, rec.JobID, rec.OriginalFilename, rec.TargetFormat,
		rec.OutputObject, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversion record: %v", err)
	}

	return nil
}

// ListConversions returns the most recent conversions, newest first.
func (mdb *MetadataDB) ListConversions(limit int) ([]types.ConversionRecord, error) {
	query := `
	SELECT job_id, original_filename, target_format, output_object, created_at
	FROM conversions ORDER BY created_at DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %v", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var rec types.ConversionRecord
		if err := rows.Scan(&rec.JobID, &rec.OriginalFilename, &rec.TargetFormat,
			&rec.OutputObject, &rec.CreatedAt); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
