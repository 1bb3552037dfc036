/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package payload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/trustbloc/epf/pkg/persistence"
	"github.com/trustbloc/epf/pkg/restapi/models"
)

// Imported is a previously exported payload loaded back for correction.
type Imported struct {
	Form11    models.Form11Data
	Form2     models.Form2Data
	Documents models.DocumentUploads
}

// Parse reads an exported payload. Form 2 is normalized and, when it reuses the Form 11 signature,
// receives a copy of it in place of the "same" marker.
func Parse(data []byte) (*Imported, error) {
	var envelope struct {
		Forms struct {
			Form11 json.RawMessage `json:"form_11"`
			Form2  json.RawMessage `json:"form_2"`
		} `json:"forms"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	if isAbsent(envelope.Forms.Form11) || isAbsent(envelope.Forms.Form2) {
		return nil, ErrMissingForms
	}

	var p models.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	imported := &Imported{Form11: p.Forms.Form11, Form2: p.Forms.Form2}

	imported.Form2.Normalize()
	imported.Form2.ApplySameSignature(&imported.Form11)

	if p.Documents != nil {
		imported.Documents = persistence.RuntimeUploads(*p.Documents)
	}

	return imported, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
