/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/trustbloc/epf/pkg/payload"
	"github.com/trustbloc/epf/pkg/persistence"
	"github.com/trustbloc/epf/pkg/restapi/messages"
	"github.com/trustbloc/epf/pkg/restapi/models"
	"github.com/trustbloc/epf/pkg/storage/memstore"
)

// Document slots accepted by the document endpoints and multipart uploads.
const (
	AadhaarSlot  = "aadhaar"
	PANSlot      = "pan"
	PassbookSlot = "passbook"
)

// Unescapes the given path variable from the vars map and writes a response if any failure occurs.
// Returns the unescaped version of the path variable and a bool indicating whether the unescaping was successful.
func unescapePathVar(pathVar string, vars map[string]string, rw http.ResponseWriter) (string, bool) {
	unescapedPathVar, errUnescape := url.PathUnescape(vars[pathVar])
	if errUnescape != nil {
		rw.WriteHeader(http.StatusInternalServerError)

		_, errWrite := rw.Write([]byte(fmt.Sprintf(messages.UnescapeFailure, pathVar, errUnescape)))
		if errWrite != nil {
			logger.Errorf(messages.UnescapeFailure+messages.FailWriteResponse, pathVar, errUnescape, errWrite)
		}

		return "", false
	}

	return unescapedPathVar, true
}

// unescapeDraftVars returns the session ID and a validated draft key.
func unescapeDraftVars(vars map[string]string, rw http.ResponseWriter) (string, string, bool) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, vars, rw)
	if !success {
		return "", "", false
	}

	draftKey, success := unescapePathVar(draftKeyPathVariable, vars, rw)
	if !success {
		return "", "", false
	}

	if draftKey != Form11DraftKey && draftKey != Form2DraftKey {
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.LoadDraftFailure, messages.ErrUnknownDraftKey,
			sessionID, nil)

		return "", "", false
	}

	return sessionID, draftKey, true
}

func persistenceDraftKey(draftKey string) string {
	if draftKey == Form11DraftKey {
		return persistence.Form11DraftKey
	}

	return persistence.Form2DraftKey
}

// decodeDraft checks that a received draft has the shape of its form.
func decodeDraft(draftKey string, data []byte) (interface{}, error) {
	if draftKey == Form11DraftKey {
		var form models.Form11Data

		err := json.Unmarshal(data, &form)

		return form, err
	}

	var form models.Form2Data

	err := json.Unmarshal(data, &form)
	if err != nil {
		return nil, err
	}

	form.Normalize()

	return form, nil
}

func isDocumentSlot(slot string) bool {
	return slot == AadhaarSlot || slot == PANSlot || slot == PassbookSlot
}

func documentInSlot(docs models.DocumentUploads, slot string) *models.DocumentFile {
	switch slot {
	case AadhaarSlot:
		return docs.Aadhaar
	case PANSlot:
		return docs.PAN
	default:
		return docs.Passbook
	}
}

// readDocumentUploads reads the aadhaar, pan and passbook files of a multipart upload. Missing files
// leave their slot empty.
func readDocumentUploads(req *http.Request) (models.DocumentUploads, error) {
	err := req.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		return models.DocumentUploads{}, err
	}

	var docs models.DocumentUploads

	for _, slot := range []struct {
		name   string
		target **models.DocumentFile
	}{{AadhaarSlot, &docs.Aadhaar}, {PANSlot, &docs.PAN}, {PassbookSlot, &docs.Passbook}} {
		doc, err := readDocumentUpload(req, slot.name)
		if err != nil {
			return models.DocumentUploads{}, err
		}

		*slot.target = doc
	}

	return docs, nil
}

func readDocumentUpload(req *http.Request, field string) (*models.DocumentFile, error) {
	file, header, err := req.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}

	defer func() {
		if errClose := file.Close(); errClose != nil {
			logger.Warnf("Failed to close uploaded %s: %s", field, errClose)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}

	return &models.DocumentFile{
		Name:    header.Filename,
		Type:    header.Header.Get("Content-Type"),
		Content: content,
	}, nil
}

// statusFor maps an error to the HTTP status code reported for it.
func statusFor(err error) int {
	var validationErr *payload.ValidationError

	switch {
	case errors.Is(err, messages.ErrSessionNotFound), errors.Is(err, messages.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, messages.ErrUnknownDraftKey), errors.Is(err, messages.ErrUnknownDocumentSlot),
		errors.Is(err, messages.ErrUnknownExportFormat):
		return http.StatusBadRequest
	case errors.Is(err, payload.ErrSignatureRequired), errors.Is(err, payload.ErrResignRequired),
		errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, memstore.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
