/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memstore

import (
	"errors"
	"sync"

	"github.com/trustbloc/epf/pkg/storage"
)

// ErrCapacityExceeded is returned by Put when storing a record would take a store past its byte quota.
var ErrCapacityExceeded = errors.New("store capacity exceeded")

// Option configures the memstore Provider.
type Option func(p *Provider)

// WithCapacity limits every store opened by the provider to the given number of bytes (keys plus values).
// A capacity of zero means unlimited.
func WithCapacity(bytes int) Option {
	return func(p *Provider) {
		p.capacity = bytes
	}
}

// Provider represents an MemStore implementation of the storage.Provider interface
type Provider struct {
	dbs      map[string]*MemStore
	capacity int
	lock     sync.Mutex
}

// NewProvider instantiates Provider
func NewProvider(opts ...Option) *Provider {
	p := &Provider{dbs: make(map[string]*MemStore)}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// OpenStore opens and returns a store for the given name. Store names are case-sensitive.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	store, exists := p.dbs[name]
	if !exists {
		return p.newMemStore(name), nil
	}

	return store, nil
}

func (p *Provider) newMemStore(name string) *MemStore {
	store := MemStore{db: make(map[string][]byte), capacity: p.capacity}

	p.dbs[name] = &store

	return &store
}

// CloseStore closes a previously opened store.
func (p *Provider) CloseStore(name string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	store, exists := p.dbs[name]
	if !exists {
		return storage.ErrStoreNotFound
	}

	delete(p.dbs, name)

	store.close()

	return nil
}

// Close closes the provider.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	for _, memStore := range p.dbs {
		memStore.close()
	}

	p.dbs = make(map[string]*MemStore)

	return nil
}

// MemStore is a simple DB that's stored in memory. Useful for demos or testing. Not designed to be performant.
// With a capacity set it behaves like a small, quota-limited browser key-value store.
type MemStore struct {
	db       map[string][]byte
	capacity int
	used     int
	lock     sync.RWMutex
}

// Put stores the given key-value pair in the store.
func (store *MemStore) Put(k string, v []byte) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	used := store.used + len(k) + len(v)

	if old, exists := store.db[k]; exists {
		used -= len(k) + len(old)
	}

	if store.capacity > 0 && used > store.capacity {
		return ErrCapacityExceeded
	}

	valueCopy := make([]byte, len(v))
	copy(valueCopy, v)

	store.db[k] = valueCopy
	store.used = used

	return nil
}

// Get retrieves the value in the store associated with the given key.
func (store *MemStore) Get(k string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	v, exists := store.db[k]
	if !exists {
		return nil, storage.ErrValueNotFound
	}

	return v, nil
}

// Delete removes the value associated with the given key, if any.
func (store *MemStore) Delete(k string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	if old, exists := store.db[k]; exists {
		store.used -= len(k) + len(old)

		delete(store.db, k)
	}

	return nil
}

func (store *MemStore) close() {
	store.lock.Lock()
	defer store.lock.Unlock()

	store.db = make(map[string][]byte)
	store.used = 0
}
