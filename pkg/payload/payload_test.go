/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package payload

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

var testNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

func signedForms() (models.Form11Data, models.Form2Data) {
	form11 := models.NewForm11Data(testNow)
	form11.PersonalDetails.MemberName = "Asha"
	form11.PersonalDetails.ParentSpouseName = "Ravi"
	form11.PersonalDetails.DateOfBirth = "1990-04-12"
	form11.ContactDetails.Email = "asha@example.com"
	form11.ContactDetails.MobileNo = "9876543210"
	form11.KYCDetails = models.KYCDetails{
		BankAccountNo: "123456789012",
		IFSCCode:      "SBIN0001234",
		AadhaarNo:     "123412341234",
	}
	form11.Declaration.Place = "Pune"
	form11.Declaration.SignatureData = &models.SignatureData{
		Image: "data:image/png;base64,AQID",
		BBox:  &models.SignatureBBox{X: 10, Y: 12, Width: 90, Height: 40},
	}

	form2 := models.NewForm2Data(testNow)
	form2.MemberName = "Asha"
	form2.FatherHusbandName = "Ravi"
	form2.DateOfBirth = "1990-04-12"
	form2.MobileNo = "9876543210"
	form2.PermanentAddress = "12 Main Rd, Pune"
	form2.EPFNominees[0].Name = "Ravi"
	form2.EPFNominees[0].Relationship = "father"
	form2.PensionNominee = &models.PensionNominee{
		Name:         "Ravi",
		Relationship: "father",
		DateOfBirth:  "1960-01-01",
		Address:      "12 Main Rd, Pune",
	}
	form2.Declaration.Place = "Pune"
	form2.Declaration.SignatureData = &models.SignatureData{
		Image: "data:image/png;base64,BAUG",
		BBox:  &models.SignatureBBox{X: 5, Y: 6, Width: 70, Height: 30},
	}

	return form11, form2
}

func allDocuments() models.DocumentUploads {
	return models.DocumentUploads{
		Aadhaar:  &models.DocumentFile{Name: "aadhaar.png", Type: "image/png", Content: []byte{0x01, 0x02, 0x03}},
		PAN:      &models.DocumentFile{Name: "pan.pdf", Type: "application/pdf", Content: []byte("%PDF")},
		Passbook: &models.DocumentFile{Name: "passbook.jpg", Type: "image/jpeg", Content: []byte("jpeg")},
	}
}

func TestAssemble(t *testing.T) {
	t.Run("Success: own signatures", func(t *testing.T) {
		form11, form2 := signedForms()

		p, err := Assemble(form11, form2, allDocuments(), testNow)
		require.NoError(t, err)
		require.Equal(t, "2024-03-05T10:30:00Z", p.Meta.ExportedAt)
		require.Equal(t, Version, p.Meta.Version)
		require.Equal(t, form2.Declaration.SignatureData, p.Forms.Form2.Declaration.SignatureData)
	})
	t.Run("Success: same signature", func(t *testing.T) {
		form11, form2 := signedForms()
		form2.Declaration.SameSignature = true
		form2.Declaration.SignatureData = nil

		p, err := Assemble(form11, form2, allDocuments(), testNow)
		require.NoError(t, err)
		require.Equal(t, SameSignatureImage, p.Forms.Form2.Declaration.SignatureData.Image)
		require.Equal(t, form11.Declaration.SignatureData.BBox, p.Forms.Form2.Declaration.SignatureData.BBox)

		p.Forms.Form2.Declaration.SignatureData.BBox.Width = 1
		require.Equal(t, float64(90), form11.Declaration.SignatureData.BBox.Width)
	})
	t.Run("Success: documents included", func(t *testing.T) {
		form11, form2 := signedForms()

		p, err := Assemble(form11, form2, allDocuments(), testNow)
		require.NoError(t, err)
		require.NotNil(t, p.Documents)
		require.Equal(t, "data:application/pdf;base64,JVBERg==", p.Documents.PAN.Base64)

		data, err := json.Marshal(p)
		require.NoError(t, err)
		require.Contains(t, string(data), `"passbook"`)
		require.NotContains(t, string(data), `"password"`)
	})
	t.Run("Failure: Form 11 unsigned", func(t *testing.T) {
		form11, form2 := signedForms()
		form11.Declaration.SignatureData = nil

		_, err := Assemble(form11, form2, allDocuments(), testNow)
		require.True(t, errors.Is(err, ErrSignatureRequired))

		var formErr *FormError
		require.True(t, errors.As(err, &formErr))
		require.Equal(t, "form_11", formErr.Form)
	})
	t.Run("Failure: Form 11 degenerate bbox", func(t *testing.T) {
		form11, form2 := signedForms()
		form11.Declaration.SignatureData.BBox = &models.SignatureBBox{X: 10, Y: 10}

		_, err := Assemble(form11, form2, allDocuments(), testNow)
		require.True(t, errors.Is(err, ErrResignRequired))
	})
	t.Run("Failure: Form 11 invalid with same signature on Form 2", func(t *testing.T) {
		form11, form2 := signedForms()
		form11.Declaration.SignatureData.BBox = nil
		form2.Declaration.SameSignature = true

		_, err := Assemble(form11, form2, allDocuments(), testNow)
		require.EqualError(t, err, "form_11: "+ErrResignRequired.Error())
	})
	t.Run("Failure: Form 2 unsigned", func(t *testing.T) {
		form11, form2 := signedForms()
		form2.Declaration.SignatureData = &models.SignatureData{}

		_, err := Assemble(form11, form2, allDocuments(), testNow)
		require.EqualError(t, err, "form_2: "+ErrSignatureRequired.Error())
	})
	t.Run("Failure: Form 2 degenerate bbox", func(t *testing.T) {
		form11, form2 := signedForms()
		form2.Declaration.SignatureData.BBox.Height = 0

		_, err := Assemble(form11, form2, allDocuments(), testNow)
		require.EqualError(t, err, "form_2: "+ErrResignRequired.Error())
	})
	t.Run("Failure: signed but incomplete", func(t *testing.T) {
		form11, form2 := signedForms()
		form11.ContactDetails.Email = "asha"

		p, err := Assemble(form11, form2, models.DocumentUploads{}, testNow)
		require.Nil(t, p)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		require.Equal(t, map[string]string{"email": "Invalid email format"}, validationErr.Form11)
		require.Equal(t, map[string]string{
			"doc_aadhaar":  "Aadhaar upload is required",
			"doc_pan":      "PAN card upload is required",
			"doc_passbook": "Passbook/cheque upload is required",
		}, validationErr.Form2)
		require.EqualError(t, err, "forms are incomplete or invalid: "+
			"form_11.email, form_2.doc_aadhaar, form_2.doc_pan, form_2.doc_passbook")
	})
}

func TestExportTSV(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		form11, form2 := signedForms()
		form11.ContactDetails.PermanentAddress = "12 Main Rd\nPune\t411001"

		tsv, err := ExportTSV(form11, form2)
		require.NoError(t, err)

		lines := strings.Split(tsv, "\n")
		require.Len(t, lines, 2)

		headers := strings.Split(lines[0], "\t")
		values := strings.Split(lines[1], "\t")
		require.Equal(t, len(headers), len(values))

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = values[i]
		}

		require.Equal(t, "form11_personal_details_member_name", headers[0])
		require.Equal(t, "Asha", row["form11_personal_details_member_name"])
		require.Equal(t, "12 Main Rd Pune 411001", row["form11_contact_details_permanent_address"])
		require.Equal(t, "false", row["form11_was_epf_member"])
		require.Equal(t, "90", row["form11_declaration_signature_data_bbox_width"])
		require.Equal(t, "Asha", row["form2_member_name"])
		require.Contains(t, row["form2_epf_nominees"], `"share_percentage":100`)
		require.Equal(t, "[]", row["form2_eps_family_members"])
	})
	t.Run("Success: null values are empty cells", func(t *testing.T) {
		tsv, err := ExportTSV(map[string]interface{}{"a": nil}, map[string]interface{}{"b": map[string]interface{}{}})
		require.NoError(t, err)
		require.Equal(t, "form11_a\n", tsv)
	})
	t.Run("Failure: unserializable form", func(t *testing.T) {
		_, err := ExportTSV(make(chan int), nil)
		require.Error(t, err)
	})
}
