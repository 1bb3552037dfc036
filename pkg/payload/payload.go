/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package payload assembles the submission document sent to the PDF rendering backend.
package payload

import (
	"errors"
	"time"

	"github.com/trustbloc/epf/pkg/persistence"
	"github.com/trustbloc/epf/pkg/restapi/models"
	"github.com/trustbloc/epf/pkg/signature"
)

const (
	// Version is the payload format version.
	Version = "1.0"

	// SameSignatureImage replaces the Form 2 signature image when it reuses the Form 11 signature.
	SameSignatureImage = "same"
)

var (
	// ErrSignatureRequired is returned when a form has no signature.
	ErrSignatureRequired = errors.New("signature is required")
	// ErrResignRequired is returned when a signature's bounding box is unusable and it must be redrawn.
	ErrResignRequired = errors.New("please re-sign - signature data is incomplete")
	// ErrMissingForms is returned by Parse when a payload lacks either form.
	ErrMissingForms = errors.New("payload does not contain both forms")
)

// FormError names the form a signature problem belongs to.
type FormError struct {
	Form string
	Err  error
}

func (e *FormError) Error() string {
	return e.Form + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FormError) Unwrap() error {
	return e.Err
}

// Assemble validates the forms and builds the payload. Signature problems are reported first, as a
// FormError; any other rule the forms or attachments break is reported as a *ValidationError.
// A Form 2 marked same_signature is signed with the Form 11 signature, its image replaced by
// SameSignatureImage.
func Assemble(form11 models.Form11Data, form2 models.Form2Data, docs models.DocumentUploads,
	now time.Time) (*models.Payload, error) {
	if err := checkSignature(form11.Declaration.SignatureData); err != nil {
		return nil, &FormError{Form: "form_11", Err: err}
	}

	if !form2.Declaration.SameSignature {
		if err := checkSignature(form2.Declaration.SignatureData); err != nil {
			return nil, &FormError{Form: "form_2", Err: err}
		}
	}

	if err := Validate(form11, form2, docs); err != nil {
		return nil, err
	}

	if form2.Declaration.SameSignature {
		form11Signature := *form11.Declaration.SignatureData
		bbox := *form11Signature.BBox

		form2.Declaration.SignatureData = &models.SignatureData{Image: SameSignatureImage, BBox: &bbox}
	}

	stored := persistence.StoredUploads(docs)

	return &models.Payload{
		Forms:     models.Forms{Form11: form11, Form2: form2},
		Documents: &stored,
		Meta: models.Meta{
			ExportedAt: now.UTC().Format(time.RFC3339Nano),
			Version:    Version,
		},
	}, nil
}

func checkSignature(sig *models.SignatureData) error {
	if sig == nil || sig.Image == "" {
		return ErrSignatureRequired
	}

	if !signature.IsValidBBox(sig.BBox) {
		return ErrResignRequired
	}

	return nil
}
