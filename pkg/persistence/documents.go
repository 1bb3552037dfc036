/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package persistence

import (
	"errors"

	"github.com/trustbloc/epf/pkg/epfutils"
	"github.com/trustbloc/epf/pkg/restapi/models"
)

// ErrEmptyDocument is returned by FromStored for a record without content.
var ErrEmptyDocument = errors.New("stored document has no content")

// ToStored converts an attachment to its persisted form. The preview defaults to the content data URI.
func ToStored(doc *models.DocumentFile) *models.StoredDocument {
	dataURI := epfutils.EncodeDataURI(doc.Type, doc.Content)

	preview := doc.Preview
	if preview == "" {
		preview = dataURI
	}

	return &models.StoredDocument{
		Name:    doc.Name,
		Type:    doc.Type,
		Base64:  dataURI,
		Preview: preview,
	}
}

// FromStored reconstitutes an attachment from its persisted form. The MIME type comes from the
// data URI header, falling back to the stored type.
func FromStored(stored *models.StoredDocument) (*models.DocumentFile, error) {
	if stored.Base64 == "" {
		return nil, ErrEmptyDocument
	}

	mimeType, content, err := epfutils.ParseDataURI(stored.Base64)
	if err != nil {
		return nil, err
	}

	if mimeType == "" {
		mimeType = stored.Type
	}

	return &models.DocumentFile{
		Name:    stored.Name,
		Type:    mimeType,
		Content: content,
		Preview: stored.Base64,
	}, nil
}

// StoredUploads converts every populated slot to persisted form, in the order aadhaar, pan, passbook.
// Absent slots are omitted.
func StoredUploads(docs models.DocumentUploads) models.StoredDocumentUploads {
	var stored models.StoredDocumentUploads

	if docs.Aadhaar != nil {
		stored.Aadhaar = ToStored(docs.Aadhaar)
	}

	if docs.PAN != nil {
		stored.PAN = ToStored(docs.PAN)
	}

	if docs.Passbook != nil {
		stored.Passbook = ToStored(docs.Passbook)
	}

	return stored
}

// RuntimeUploads reconstitutes every populated slot. A slot that cannot be decoded is logged and
// left absent.
func RuntimeUploads(stored models.StoredDocumentUploads) models.DocumentUploads {
	return models.DocumentUploads{
		Aadhaar:  reconstitute("aadhaar", stored.Aadhaar),
		PAN:      reconstitute("pan", stored.PAN),
		Passbook: reconstitute("passbook", stored.Passbook),
	}
}

func reconstitute(slot string, stored *models.StoredDocument) *models.DocumentFile {
	if stored == nil {
		return nil
	}

	doc, err := FromStored(stored)
	if err != nil {
		logger.Warnf("Skipping unreadable %s document %s: %s", slot, stored.Name, err)

		return nil
	}

	return doc
}
