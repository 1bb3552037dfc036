/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ariesstore

import (
	"errors"
	"fmt"
	"sync"

	ariesstorage "github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/epf/pkg/epfutils"
	"github.com/trustbloc/epf/pkg/storage"
)

const logModuleName = "epf-ariesstore"

var logger = log.New(logModuleName)

type sessionIDToUUIDFunc func(id string) (string, error)

// Provider represents a storage.Provider backed by an Aries storage provider (in-memory or MongoDB).
type Provider struct {
	coreProvider    ariesstorage.Provider
	sessionIDToUUID sessionIDToUUIDFunc
	openStores      map[string]*Store
	lock            sync.Mutex
}

// NewProvider instantiates a new Provider wrapping the given Aries provider.
func NewProvider(ariesProvider ariesstorage.Provider) *Provider {
	return &Provider{
		coreProvider:    ariesProvider,
		sessionIDToUUID: epfutils.SessionIDToUUID,
		openStores:      make(map[string]*Store),
	}
}

// OpenStore opens the store with the given name.
// The name is converted to a UUID if it is a base58-encoded 128-bit session ID.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if store, exists := p.openStores[name]; exists {
		return store, nil
	}

	storeName, err := p.getUnderlyingStoreName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to determine underlying store name: %w", err)
	}

	coreStore, err := p.coreProvider.OpenStore(storeName)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Opened underlying store %s for %s", storeName, name)

	store := &Store{coreStore: coreStore, name: name}
	p.openStores[name] = store

	return store, nil
}

// CloseStore closes a store previously opened through this provider.
func (p *Provider) CloseStore(name string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	store, exists := p.openStores[name]
	if !exists {
		return storage.ErrStoreNotFound
	}

	delete(p.openStores, name)

	return store.coreStore.Close()
}

// Close closes the underlying Aries provider along with every store it opened.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.openStores = make(map[string]*Store)

	return p.coreProvider.Close()
}

func (p *Provider) getUnderlyingStoreName(name string) (string, error) {
	if epfutils.CheckSessionID(name) != nil {
		return name, nil
	}

	storeName, err := p.sessionIDToUUID(name)
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID from base 58 encoded 128 bit name: %w", err)
	}

	return storeName, nil
}

// Store represents a storage.Store backed by an Aries store.
type Store struct {
	coreStore ariesstorage.Store
	name      string
}

// Put stores the given record under k.
func (s *Store) Put(k string, v []byte) error {
	return s.coreStore.Put(k, v)
}

// Get fetches the record stored under k. storage.ErrValueNotFound is returned if there is none.
func (s *Store) Get(k string) ([]byte, error) {
	value, err := s.coreStore.Get(k)
	if err != nil {
		if errors.Is(err, ariesstorage.ErrDataNotFound) {
			return nil, storage.ErrValueNotFound
		}

		return nil, err
	}

	return value, nil
}

// Delete removes the record stored under k. A missing record is not an error.
func (s *Store) Delete(k string) error {
	err := s.coreStore.Delete(k)
	if err != nil && !errors.Is(err, ariesstorage.ErrDataNotFound) {
		return fmt.Errorf("failed to delete %s from store %s: %w", k, s.name, err)
	}

	return nil
}
