// Package memory persists the weather server's search history and
// favorite locations.
//
// The whole Document is loaded and written as a unit. Two backends share
// the Store interface: a pretty-printed JSON file (the default, compatible
// with existing weather_memory.json files) and a SQLite database.
// Mutations go through Update, which serializes read-modify-write cycles
// per store so concurrent tool calls cannot lose each other's writes.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned by New for an unrecognized Config.Backend.
var ErrUnknownBackend = errors.New("memory: unknown backend")

// Backend names accepted by Config.Backend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Default file names per backend, relative to the working directory.
const (
	DefaultJSONPath   = "weather_memory.json"
	DefaultSQLitePath = "weather_memory.db"
)

// Store defines the persistence interface for the memory document.
// Abstracted so tools can be tested against any backend (DIP).
type Store interface {
	// Load returns the current document. A missing store yields an
	// empty document; a corrupt one yields an error.
	Load(ctx context.Context) (*Document, error)
	// Save replaces the stored document wholesale.
	Save(ctx context.Context, doc *Document) error
	// Update loads the document, applies fn, and saves the result.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, fn func(doc *Document) error) error
	// Close releases any resources held by the backend.
	Close() error
}

// Config selects and locates the backend.
type Config struct {
	Backend string
	Path    string
}

// DefaultConfig returns the JSON backend at its default path.
func DefaultConfig() Config {
	return Config{Backend: BackendJSON, Path: DefaultJSONPath}
}

// New opens the store described by cfg.
func New(cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendJSON
	}

	switch backend {
	case BackendJSON:
		path := cfg.Path
		if path == "" {
			path = DefaultJSONPath
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w %q (want %q or %q)", ErrUnknownBackend, cfg.Backend, BackendJSON, BackendSQLite)
	}
}
