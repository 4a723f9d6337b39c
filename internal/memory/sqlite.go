package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore implements Store on a SQLite database with one table per list.
// Row ids preserve insertion order.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("memory: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS searches (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			type      TEXT NOT NULL,
			state     TEXT NOT NULL DEFAULT '',
			location  TEXT NOT NULL DEFAULT '',
			latitude  REAL,
			longitude REAL,
			timestamp TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			name      TEXT NOT NULL,
			latitude  REAL NOT NULL,
			longitude REAL NOT NULL,
			added     TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load reads both tables in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) (*Document, error) {
	return loadDocument(ctx, s.db)
}

// Save replaces the contents of both tables in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceDocument(ctx, tx, doc)
	})
}

// Update runs load, fn and save inside a single transaction.
func (s *SQLiteStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		doc, err := loadDocument(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return replaceDocument(ctx, tx, doc)
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("memory: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("memory: commit: %w", err)
	}
	return nil
}

func loadDocument(ctx context.Context, db dbtx) (*Document, error) {
	doc := NewDocument()

	rows, err := db.QueryContext(ctx,
		`SELECT type, state, location, latitude, longitude, timestamp FROM searches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("memory: query searches: %w", err)
	}
	for rows.Next() {
		var (
			rec      SearchRecord
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&rec.Type, &rec.State, &rec.Location, &lat, &lon, &rec.Timestamp); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("memory: scan search: %w", err)
		}
		if lat.Valid {
			rec.Latitude = &lat.Float64
		}
		if lon.Valid {
			rec.Longitude = &lon.Float64
		}
		doc.Searches = append(doc.Searches, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("memory: iterate searches: %w", err)
	}
	_ = rows.Close()

	rows, err = db.QueryContext(ctx,
		`SELECT name, latitude, longitude, added FROM favorites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("memory: query favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var fav FavoriteRecord
		if err := rows.Scan(&fav.Name, &fav.Latitude, &fav.Longitude, &fav.Added); err != nil {
			return nil, fmt.Errorf("memory: scan favorite: %w", err)
		}
		doc.Favorites = append(doc.Favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory: iterate favorites: %w", err)
	}
	return doc, nil
}

func replaceDocument(ctx context.Context, db dbtx, doc *Document) error {
	for _, stmt := range []string{`DELETE FROM searches`, `DELETE FROM favorites`} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("memory: %s: %w", stmt, err)
		}
	}

	for _, rec := range doc.Searches {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO searches (type, state, location, latitude, longitude, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Type, rec.State, rec.Location, nullableFloat(rec.Latitude), nullableFloat(rec.Longitude), rec.Timestamp,
		); err != nil {
			return fmt.Errorf("memory: insert search: %w", err)
		}
	}
	for _, fav := range doc.Favorites {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO favorites (name, latitude, longitude, added) VALUES (?, ?, ?, ?)`,
			fav.Name, fav.Latitude, fav.Longitude, fav.Added,
		); err != nil {
			return fmt.Errorf("memory: insert favorite: %w", err)
		}
	}
	return nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
