/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import "errors"

// ErrStoreNotFound is used when a given store was not found in a provider.
var ErrStoreNotFound = errors.New("store not found")

// ErrValueNotFound is used when an attempt is made to retrieve a value from key
var ErrValueNotFound = errors.New("store does not have a value associated with this key")

// Provider represents a storage provider.
type Provider interface {
	// OpenStore opens a store with the given name and returns it.
	OpenStore(name string) (Store, error)

	// CloseStore closes the store with the given name.
	CloseStore(name string) error

	// Close closes all stores created under this store provider.
	Close() error
}

// Store represents a key-value backend used for drafts and document records.
type Store interface {
	// Put stores the key-record pair, replacing any previous record.
	Put(k string, v []byte) error

	// Get fetches the record associated with the given key.
	// ErrValueNotFound is returned if there is none.
	Get(k string) ([]byte, error)

	// Delete removes the record associated with the given key.
	// Deleting a key that holds no record is not an error.
	Delete(k string) error
}
