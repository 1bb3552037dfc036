/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trustbloc/edge-core/pkg/log"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/trustbloc/epf/pkg/storage"
)

const (
	logModuleName = "epf-sqlitestore"

	createTableStmt = `CREATE TABLE IF NOT EXISTS records (
		store TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (store, key)
	)`
	upsertStmt = `INSERT INTO records (store, key, value) VALUES (?, ?, ?)
		ON CONFLICT(store, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	selectStmt = `SELECT value FROM records WHERE store = ? AND key = ?`
	deleteStmt = `DELETE FROM records WHERE store = ? AND key = ?`
)

var logger = log.New(logModuleName)

// ErrMissingDatabasePath is returned when an attempt is made to instantiate a new Provider with a blank path.
var ErrMissingDatabasePath = errors.New("sqlite database path not set")

// Provider represents a SQLite implementation of the storage.Provider interface.
// All stores share a single records table keyed by store name.
type Provider struct {
	db         *sql.DB
	openStores map[string]*Store
	lock       sync.Mutex
}

// NewProvider opens (creating if needed) the SQLite database at path.
func NewProvider(path string) (*Provider, error) {
	if path == "" {
		return nil, ErrMissingDatabasePath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(createTableStmt); err != nil {
		if errClose := db.Close(); errClose != nil {
			logger.Warnf("Failed to close database after init failure: %s", errClose)
		}

		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	logger.Debugf("Opened SQLite database at %s", path)

	return &Provider{db: db, openStores: make(map[string]*Store)}, nil
}

// OpenStore returns the store with the given name. Store names are case-sensitive.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	store, exists := p.openStores[name]
	if !exists {
		store = &Store{db: p.db, name: name}
		p.openStores[name] = store
	}

	return store, nil
}

// CloseStore closes the store with the given name. Records persist in the database.
func (p *Provider) CloseStore(name string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, exists := p.openStores[name]; !exists {
		return storage.ErrStoreNotFound
	}

	delete(p.openStores, name)

	return nil
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.openStores = make(map[string]*Store)

	return p.db.Close()
}

// Store is a named partition of the records table.
type Store struct {
	db   *sql.DB
	name string
}

// Put inserts or replaces the record stored under k.
func (s *Store) Put(k string, v []byte) error {
	if v == nil {
		v = []byte{}
	}

	if _, err := s.db.Exec(upsertStmt, s.name, k, v); err != nil {
		return fmt.Errorf("failed to put %s in store %s: %w", k, s.name, err)
	}

	return nil
}

// Get fetches the record stored under k. storage.ErrValueNotFound is returned if there is none.
func (s *Store) Get(k string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRow(selectStmt, s.name, k).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrValueNotFound
		}

		return nil, fmt.Errorf("failed to get %s from store %s: %w", k, s.name, err)
	}

	return value, nil
}

// Delete removes the record stored under k. A missing record is not an error.
func (s *Store) Delete(k string) error {
	if _, err := s.db.Exec(deleteStmt, s.name, k); err != nil {
		return fmt.Errorf("failed to delete %s from store %s: %w", k, s.name, err)
	}

	return nil
}
