package asciify

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register sqlite3
)

// Cache stores rendered text keyed by the SHA-1 of the source image and the
// parameters used to render it.
type Cache struct {
	db *sql.DB
}

// NewCache opens or creates the SQLite database file.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS render (image_id INTEGER NOT NULL, width INTEGER NOT NULL, ramp TEXT NOT NULL, filter TEXT NOT NULL, text TEXT NOT NULL, UNIQUE(image_id, width, ramp, filter), FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) addImage(sha string) (int64, error) {
	if _, err := c.db.Exec("INSERT OR IGNORE INTO image (sha1) VALUES (?)", sha); err != nil {
		return 0, err
	}

	var id int64
	if err := c.db.QueryRow("SELECT id FROM image WHERE sha1 = ?", sha).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the text previously stored for the given key.
func (c *Cache) Get(sha string, width int, ramp, filter string) (string, bool, error) {
	var text string
	switch err := c.db.QueryRow("SELECT r.text FROM render AS r JOIN image AS i ON r.image_id = i.id WHERE i.sha1 = ? AND r.width = ? AND r.ramp = ? AND r.filter = ?", sha, width, ramp, filter).Scan(&text); err {
	case sql.ErrNoRows:
		return "", false, nil
	case nil:
		return text, true, nil
	default:
		return "", false, err
	}
}

// Put stores text for the given key, replacing any existing entry.
func (c *Cache) Put(sha string, width int, ramp, filter, text string) error {
	image, err := c.addImage(sha)
	if err != nil {
		return err
	}

	if _, err := c.db.Exec("INSERT OR REPLACE INTO render (image_id, width, ramp, filter, text) VALUES (?, ?, ?, ?, ?)", image, width, ramp, filter, text); err != nil {
		return err
	}
	return nil
}

// Length returns the number of stored renderings.
func (c *Cache) Length() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM render").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Purge removes everything from the cache.
func (c *Cache) Purge() error {
	if _, err := c.db.Exec("DELETE FROM render"); err != nil {
		return err
	}

	if _, err := c.db.Exec("DELETE FROM image"); err != nil {
		return err
	}

	return nil
}
