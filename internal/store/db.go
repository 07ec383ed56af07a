// Package store persists the ledger's relational shape: flat tables keyed
// by surrogate uuid, with every cross-reference a plain id. The sqlite DB is
// the production implementation; Memory mirrors it for tests.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// dateFormat is how dates are stored in sqlite TEXT columns.
const dateFormat = "2006-01-02"

// DB wraps a sqlite database with the repositories the services consume.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the sqlite database at path and applies pending
// migrations. Single-writer discipline comes from sqlite's write lock plus
// MaxOpenConns(1).
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DB{sql: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// withTx runs fn in a transaction.
func (d *DB) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
