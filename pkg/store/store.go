package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-slots/pkg/models"
)

// ErrNotFound is returned when a record id is not in the store.
var ErrNotFound = errors.New("record not found")

// Store persists records in a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize %s: %w", dbPath, err)
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		kind TEXT,
		path TEXT,
		created_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS record_tags (
		record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (record_id, position)
	);

	CREATE TABLE IF NOT EXISTS record_fields (
		record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (record_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
	CREATE INDEX IF NOT EXISTS idx_record_tags_tag ON record_tags(tag);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces records in a single transaction.
func (s *Store) Put(records ...models.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %q has no id", r.Title)
		}
		if _, err := tx.Exec("DELETE FROM records WHERE id = ?", r.ID); err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO records (id, title, kind, path, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, r.ID, r.Title, string(r.Kind), r.Path, r.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.ID, err)
		}
		for i, tag := range r.Tags {
			if _, err := tx.Exec("INSERT INTO record_tags (record_id, position, tag) VALUES (?, ?, ?)", r.ID, i, tag); err != nil {
				return err
			}
		}
		for name, value := range r.Fields {
			if _, err := tx.Exec("INSERT INTO record_fields (record_id, name, value) VALUES (?, ?, ?)", r.ID, name, value); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Get loads one record.
func (s *Store) Get(id string) (models.Record, error) {
	records, err := s.query("WHERE id = ?", id)
	if err != nil {
		return models.Record{}, err
	}
	if len(records) == 0 {
		return models.Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return records[0], nil
}

// All loads every record ordered by creation time.
func (s *Store) All() ([]models.Record, error) {
	return s.query("")
}

// Delete removes a record with its tags and fields.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}

func (s *Store) query(where string, args ...any) ([]models.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, title, kind, path, created_at FROM records
		`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	index := make(map[string]int)
	for rows.Next() {
		var r models.Record
		var kind, path sql.NullString
		var created sql.NullTime
		if err := rows.Scan(&r.ID, &r.Title, &kind, &path, &created); err != nil {
			return nil, err
		}
		r.Kind = models.Kind(kind.String)
		r.Path = path.String
		if created.Valid {
			r.CreatedAt = created.Time
		}
		index[r.ID] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	if err := s.loadTags(records, index); err != nil {
		return nil, err
	}
	if err := s.loadFields(records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) loadTags(records []models.Record, index map[string]int) error {
	rows, err := s.db.Query("SELECT record_id, tag FROM record_tags ORDER BY record_id, position")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			records[i].Tags = append(records[i].Tags, tag)
		}
	}
	return rows.Err()
}

func (s *Store) loadFields(records []models.Record, index map[string]int) error {
	rows, err := s.db.Query("SELECT record_id, name, value FROM record_fields")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		var value float64
		if err := rows.Scan(&id, &name, &value); err != nil {
			return err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if records[i].Fields == nil {
			records[i].Fields = make(map[string]float64)
		}
		records[i].Fields[name] = value
	}
	return rows.Err()
}
