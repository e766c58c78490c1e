package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// database wraps sql.DB with schema bootstrap, mirroring the local
// store's Database wrapper.
type database struct {
	*sql.DB
	path string
}

// openDatabase opens (creating if necessary) the database at
// customPath, or the XDG-compliant default location when customPath
// is empty, and applies the schema.
func openDatabase(customPath string) (*database, error) {
	dbPath, err := resolvePath(customPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &database{DB: db, path: dbPath}
	if err := d.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return d, nil
}

// resolvePath applies the priority customPath > $XDG_DATA_HOME/gosynctasks/sync.db
// > ~/.local/share/gosynctasks/sync.db.
func resolvePath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "gosynctasks", "sync.db"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "gosynctasks", "sync.db"), nil
}

func (d *database) initializeSchema() error {
	for _, pragma := range PragmaStatements() {
		if _, err := d.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %q: %w", pragma, err)
		}
	}
	for _, schema := range AllTableSchemas() {
		if _, err := d.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, index := range AllIndexes() {
		if _, err := d.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return d.recordSchemaVersion()
}

func (d *database) recordSchemaVersion() error {
	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", SchemaVersion).Scan(&count); err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := d.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", SchemaVersion, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}
	return nil
}

// Path returns the database file path in use.
func (d *database) Path() string { return d.path }
