package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/processing"
)

// DB wraps the sqlite database holding settings areas and the result
// cache.
type DB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	area  TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (area, key)
);
CREATE TABLE IF NOT EXISTS transcriptions (
	bubble_id TEXT PRIMARY KEY,
	result    TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (creating if needed) the database at path with WAL enabled.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Area returns a settings area backed by this database.
func (d *DB) Area(name string) Area {
	return &sqliteArea{db: d.db, area: name}
}

// Cache returns the transcription cache backed by this database.
func (d *DB) Cache() Cache {
	return &sqliteCache{db: d.db}
}

type sqliteArea struct {
	db   *sql.DB
	area string
}

func (a *sqliteArea) Get(key string) (string, bool, error) {
	var value string
	err := a.db.QueryRow(
		`SELECT value FROM settings WHERE area = ? AND key = ?`, a.area, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Storage("settings get", err)
	}
	return value, true, nil
}

func (a *sqliteArea) Set(key, value string) error {
	_, err := a.db.Exec(
		`INSERT INTO settings (area, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (area, key) DO UPDATE SET value = excluded.value`,
		a.area, key, value,
	)
	if err != nil {
		return errors.Storage("settings set", err)
	}
	return nil
}

func (a *sqliteArea) Delete(key string) error {
	if _, err := a.db.Exec(
		`DELETE FROM settings WHERE area = ? AND key = ?`, a.area, key,
	); err != nil {
		return errors.Storage("settings delete", err)
	}
	return nil
}

func (a *sqliteArea) All() (map[string]string, error) {
	rows, err := a.db.Query(`SELECT key, value FROM settings WHERE area = ?`, a.area)
	if err != nil {
		return nil, errors.Storage("settings list", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, errors.Storage("settings scan", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

type sqliteCache struct {
	db *sql.DB
}

func (c *sqliteCache) Get(bubbleID string) (*processing.Result, bool, error) {
	var raw string
	err := c.db.QueryRow(
		`SELECT result FROM transcriptions WHERE bubble_id = ?`, bubbleID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Storage("cache get", err)
	}

	var result processing.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, errors.Storage("cache decode", err)
	}
	return &result, true, nil
}

func (c *sqliteCache) Put(bubbleID string, result *processing.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Storage("cache encode", err)
	}
	if _, err := c.db.Exec(
		`INSERT INTO transcriptions (bubble_id, result) VALUES (?, ?)
		 ON CONFLICT (bubble_id) DO UPDATE SET result = excluded.result`,
		bubbleID, raw,
	); err != nil {
		return errors.Storage("cache put", err)
	}
	return nil
}
