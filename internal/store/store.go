package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// migrations are applied in order; migration i brings the schema to version i+1
var migrations = []string{
	schemaV1,
	schemaV2,
}

var currentSchemaVersion = len(migrations)

// Store holds the release cache and the history of tagging runs
type Store struct {
	db   *sql.DB
	path string
}

// Options tune how the state database is opened
type Options struct {
	// NetworkShare relaxes fsync and keeps temp data in memory, for a
	// database kept on SMB/NFS next to the music library
	NetworkShare bool

	// BusyTimeout is how long a statement waits for a lock held by another dtag process
	BusyTimeout time.Duration
}

// DefaultOptions are used by Open
func DefaultOptions() Options {
	return Options{BusyTimeout: 5 * time.Second}
}

// Open opens or creates the state database at path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, DefaultOptions())
}

// OpenWithOptions opens or creates the state database at path and migrates it
// to the current schema
func OpenWithOptions(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: sqlite has a single writer and the pragmas are per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

// dsn renders the modernc.org/sqlite connection string for opts
func dsn(path string, opts Options) string {
	q := url.Values{}
	for _, p := range pragmas(opts) {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

func pragmas(opts Options) []string {
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultOptions().BusyTimeout
	}

	p := []string{
		fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()),
		"journal_mode(WAL)",
		"foreign_keys(1)",
	}
	if opts.NetworkShare {
		p = append(p,
			"synchronous(NORMAL)", // WAL keeps NORMAL safe, fsync only at checkpoints
			"temp_store(MEMORY)",
			"cache_size(-64000)", // KiB
		)
	}
	return p
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection, shared with the release cache
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the version of the embedded SQLite library
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// SchemaVersion returns the migration level of the database
func (s *Store) SchemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// migrate applies the pending migrations in one transaction
func (s *Store) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		for v := version + 1; v <= currentSchemaVersion; v++ {
			if _, err := tx.Exec(migrations[v-1]); err != nil {
				return fmt.Errorf("failed to apply schema v%d: %w", v, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
				return fmt.Errorf("failed to set schema version %d: %w", v, err)
			}
		}
		return nil
	})
}

// Transaction runs fn in a transaction, committed only when fn returns nil
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
