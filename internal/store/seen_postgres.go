package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/michaelzh/mnews/internal/logger"
)

// PostgresStore keeps the seen set in a single keys table. Keys are
// only ever inserted, matching the monotonic seen-set contract.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects and makes sure the table exists.
func OpenPostgres(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_keys (
			key        TEXT PRIMARY KEY,
			first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create seen_keys table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Load() (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	rows, err := s.db.Query(`SELECT key FROM seen_keys`)
	if err != nil {
		logger.Warn("seen table unreadable, starting empty", "error", err)
		return seen, nil
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return seen, fmt.Errorf("scan seen key: %w", err)
		}
		seen[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return seen, fmt.Errorf("iterate seen keys: %w", err)
	}
	return seen, nil
}

func (s *PostgresStore) Save(seen map[string]struct{}) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO seen_keys (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for key := range seen {
		if _, err := stmt.Exec(key); err != nil {
			return fmt.Errorf("insert seen key: %w", err)
		}
	}
	return tx.Commit()
}
