/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package persistence stores form drafts and document attachments across a small-capacity legacy
// store and a larger-capacity primary store, migrating attachments from the former to the latter.
//
// Calls are not serialized. Overlapping saves race and the last write wins.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/trustbloc/edge-core/pkg/log"
	"go.uber.org/multierr"

	"github.com/trustbloc/epf/pkg/restapi/models"
	"github.com/trustbloc/epf/pkg/storage"
)

const (
	logModuleName = "epf-persistence"

	// Form11DraftKey is the legacy store key of the Form 11 draft.
	Form11DraftKey = "form11Draft"
	// Form2DraftKey is the legacy store key of the Form 2 draft.
	Form2DraftKey = "form2Draft"
	// DocumentsKey is the key of the composite attachment record in both stores.
	DocumentsKey = "epf_documents"
)

var logger = log.New(logModuleName)

// ErrInvalidTarget is returned by LoadDraft when the target is not a non-nil pointer.
var ErrInvalidTarget = errors.New("draft target must be a non-nil pointer")

// Normalizer is implemented by drafts that fill in fields missing from older saved shapes.
type Normalizer interface {
	Normalize()
}

// Layer is the persistence layer over a legacy (small-capacity) and a primary (large-capacity) store.
type Layer struct {
	legacy  storage.Store
	primary storage.Store
}

// New returns a Layer over the given stores.
func New(legacy, primary storage.Store) *Layer {
	return &Layer{legacy: legacy, primary: primary}
}

// SaveDraft serializes document and writes it under key in the legacy store, replacing any previous draft.
func (l *Layer) SaveDraft(key string, document interface{}) error {
	data, err := json.Marshal(document)
	if err != nil {
		return newStorageError(OpSaveDraft, key, err)
	}

	if err := l.legacy.Put(key, data); err != nil {
		return newStorageError(OpSaveDraft, key, err)
	}

	logger.Debugf("Saved draft %s (%d bytes)", key, len(data))

	return nil
}

// LoadDraft decodes the draft stored under key into target, which should hold the fallback value.
// target is left untouched when no draft exists (nil error) or when the draft cannot be read or
// decoded (*StorageError). A decoded draft is normalized if it implements Normalizer.
func (l *Layer) LoadDraft(key string, target interface{}) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return newStorageError(OpLoadDraft, key, ErrInvalidTarget)
	}

	data, err := l.legacy.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			return nil
		}

		return newStorageError(OpLoadDraft, key, err)
	}

	decoded := reflect.New(targetValue.Elem().Type())

	if err := json.Unmarshal(data, decoded.Interface()); err != nil {
		return newStorageError(OpLoadDraft, key, fmt.Errorf("malformed draft: %w", err))
	}

	if normalizer, ok := decoded.Interface().(Normalizer); ok {
		normalizer.Normalize()
	}

	targetValue.Elem().Set(decoded.Elem())

	return nil
}

// LoadForm11Draft returns the saved Form 11 draft, or fallback if there is none.
func (l *Layer) LoadForm11Draft(fallback models.Form11Data) (models.Form11Data, error) {
	form := fallback

	err := l.LoadDraft(Form11DraftKey, &form)

	return form, err
}

// LoadForm2Draft returns the saved and normalized Form 2 draft, or fallback if there is none.
func (l *Layer) LoadForm2Draft(fallback models.Form2Data) (models.Form2Data, error) {
	form := fallback

	err := l.LoadDraft(Form2DraftKey, &form)

	return form, err
}

// SaveDocuments writes the populated slots of docs to the primary store as one record, replacing the
// previous record in full, then removes the legacy copy.
func (l *Layer) SaveDocuments(docs models.DocumentUploads) error {
	data, err := json.Marshal(StoredUploads(docs))
	if err != nil {
		return newStorageError(OpSaveDocuments, DocumentsKey, err)
	}

	if err := l.primary.Put(DocumentsKey, data); err != nil {
		return newStorageError(OpSaveDocuments, DocumentsKey, err)
	}

	if err := l.legacy.Delete(DocumentsKey); err != nil {
		return newStorageError(OpSaveDocuments, DocumentsKey, fmt.Errorf("failed to retire legacy copy: %w", err))
	}

	logger.Debugf("Saved documents (%d bytes)", len(data))

	return nil
}

// LoadDocuments returns the stored attachments, reading the primary store first and falling back to
// the legacy store. A legacy record is migrated to the primary store before it is returned; if that
// migration fails the attachments are still returned together with the error.
// No record in either store yields empty uploads and a nil error.
func (l *Layer) LoadDocuments() (models.DocumentUploads, error) {
	data, primaryErr := l.primary.Get(DocumentsKey)
	if primaryErr == nil {
		stored, err := decodeStoredUploads(data)
		if err != nil {
			return models.DocumentUploads{}, newStorageError(OpLoadDocuments, DocumentsKey, err)
		}

		return RuntimeUploads(stored), nil
	}

	if !errors.Is(primaryErr, storage.ErrValueNotFound) {
		logger.Errorf("Failed to read documents from primary store, trying legacy store: %s", primaryErr)
	}

	legacyData, err := l.legacy.Get(DocumentsKey)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			if errors.Is(primaryErr, storage.ErrValueNotFound) {
				return models.DocumentUploads{}, nil
			}

			return models.DocumentUploads{}, newStorageError(OpLoadDocuments, DocumentsKey, primaryErr)
		}

		return models.DocumentUploads{}, newStorageError(OpLoadDocuments, DocumentsKey,
			multierr.Append(primaryErr, err))
	}

	return l.migrateLegacyDocuments(legacyData)
}

// migrateLegacyDocuments reconstitutes a legacy record and re-saves it through SaveDocuments, which
// moves it to the primary store.
func (l *Layer) migrateLegacyDocuments(data []byte) (models.DocumentUploads, error) {
	stored, err := decodeStoredUploads(data)
	if err != nil {
		return models.DocumentUploads{}, newStorageError(OpLoadDocuments, DocumentsKey, err)
	}

	docs := RuntimeUploads(stored)

	if err := l.SaveDocuments(docs); err != nil {
		return docs, err
	}

	logger.Infof("Migrated documents from legacy store to primary store")

	return docs, nil
}

// ClearDocuments deletes the attachment record from both stores. Both deletions are always attempted.
func (l *Layer) ClearDocuments() error {
	err := multierr.Append(l.legacy.Delete(DocumentsKey), l.primary.Delete(DocumentsKey))
	if err != nil {
		return newStorageError(OpClearDocuments, DocumentsKey, err)
	}

	return nil
}

func decodeStoredUploads(data []byte) (models.StoredDocumentUploads, error) {
	var stored models.StoredDocumentUploads

	if err := json.Unmarshal(data, &stored); err != nil {
		return models.StoredDocumentUploads{}, fmt.Errorf("malformed document record: %w", err)
	}

	return stored, nil
}
