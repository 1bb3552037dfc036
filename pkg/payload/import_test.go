/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

func TestParse(t *testing.T) {
	t.Run("Success: exported payload round trip", func(t *testing.T) {
		form11, form2 := signedForms()
		form2.Declaration.SameSignature = true

		p, err := Assemble(form11, form2, allDocuments(), testNow)
		require.NoError(t, err)

		data, err := json.Marshal(p)
		require.NoError(t, err)

		imported, err := Parse(data)
		require.NoError(t, err)
		require.Equal(t, form11, imported.Form11)
		require.Equal(t, form11.Declaration.SignatureData, imported.Form2.Declaration.SignatureData)
		require.Equal(t, []byte{0x01, 0x02, 0x03}, imported.Documents.Aadhaar.Content)
		require.Equal(t, "pan.pdf", imported.Documents.PAN.Name)
	})
	t.Run("Success: Form 2 normalized", func(t *testing.T) {
		imported, err := Parse([]byte(`{"forms": {"form_11": {}, "form_2": {"epf_nominees": [{"name": "B"}]}}}`))
		require.NoError(t, err)
		require.NotEmpty(t, imported.Form2.EPFNominees[0].ID)
		require.NotNil(t, imported.Form2.EPSFamilyMembers)
		require.Equal(t, models.DocumentUploads{}, imported.Documents)
	})
	t.Run("Failure: missing form", func(t *testing.T) {
		_, err := Parse([]byte(`{"forms": {"form_11": {}}}`))
		require.Equal(t, ErrMissingForms, err)

		_, err = Parse([]byte(`{"forms": {"form_11": {}, "form_2": null}}`))
		require.Equal(t, ErrMissingForms, err)
	})
	t.Run("Failure: not JSON", func(t *testing.T) {
		_, err := Parse([]byte(`forms`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid payload")
	})
}
