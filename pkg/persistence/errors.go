/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package persistence

import "fmt"

// Operation names used in StorageError.
const (
	OpSaveDraft      = "save draft"
	OpLoadDraft      = "load draft"
	OpSaveDocuments  = "save documents"
	OpLoadDocuments  = "load documents"
	OpClearDocuments = "clear documents"
)

// StorageError reports a failed persistence operation. Every failure is also logged, so callers
// that only need fire-and-forget behaviour may ignore it.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(op, key string, err error) *StorageError {
	storageErr := &StorageError{Op: op, Key: key, Err: err}

	logger.Errorf("Persistence failure: %s", storageErr)

	return storageErr
}
