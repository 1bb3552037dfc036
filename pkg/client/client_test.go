/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"crypto/tls"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/epf/pkg/restapi"
	"github.com/trustbloc/epf/pkg/restapi/models"
	"github.com/trustbloc/epf/pkg/restapi/operation"
	"github.com/trustbloc/epf/pkg/storage/ariesstore"
	"github.com/trustbloc/epf/pkg/storage/memstore"
)

var (
	testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC) //nolint: gochecknoglobals

	errFailingMarshal = errors.New("failingMarshal always fails")
	errFailingHeaders = errors.New("failingHeaders always fails")
)

func TestClient_New(t *testing.T) {
	client := New("", WithTLSConfig(&tls.Config{ServerName: "name"}))

	require.NotNil(t, client)
	require.NotNil(t, client.httpClient.Transport)
}

func TestClient_CreateSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := startEPFServer(t)

		client := New(srv.URL)

		sessionID, location, err := client.CreateSession()
		require.NoError(t, err)
		require.NotEmpty(t, sessionID)
		require.True(t, strings.HasSuffix(location, "/sessions/"+sessionID))
	})
	t.Run("Failure: server unreachable", func(t *testing.T) {
		client := New("http://" + unreachableAddress(t))

		sessionID, location, err := client.CreateSession()
		require.Error(t, err)
		require.Empty(t, sessionID)
		require.Empty(t, location)
	})
	t.Run("Failure: unexpected status code", func(t *testing.T) {
		srv := startMockEPFServer(t, http.StatusInternalServerError, "registry unavailable")

		client := New(srv.URL)

		_, _, err := client.CreateSession()
		require.EqualError(t, err, "the EPF server returned status code 500 along with the following message: "+
			"registry unavailable")
	})
}

func TestClient_Drafts(t *testing.T) {
	t.Run("Success: blank forms, then save and load", func(t *testing.T) {
		client, sessionID := newSession(t)

		form11, err := client.LoadForm11Draft(sessionID)
		require.NoError(t, err)
		require.Nil(t, form11.Declaration.SignatureData)

		form11.PersonalDetails.MemberName = "Asha Rao"
		form11.ContactDetails.MobileNo = "9876543210"

		require.NoError(t, client.SaveDraft(sessionID, operation.Form11DraftKey, form11))

		loaded, err := client.LoadForm11Draft(sessionID)
		require.NoError(t, err)
		require.Equal(t, "Asha Rao", loaded.PersonalDetails.MemberName)

		form2, err := client.Sync(sessionID)
		require.NoError(t, err)
		require.Equal(t, "Asha Rao", form2.MemberName)
		require.Equal(t, "9876543210", form2.MobileNo)

		loadedForm2, err := client.LoadForm2Draft(sessionID)
		require.NoError(t, err)
		require.Equal(t, "Asha Rao", loadedForm2.MemberName)
		require.True(t, loadedForm2.Declaration.SameSignature)
	})
	t.Run("Failure: unknown draft key", func(t *testing.T) {
		client, sessionID := newSession(t)

		err := client.SaveDraft(sessionID, "form3", models.NewForm11Data(testNow))
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 400")
	})
	t.Run("Failure: unknown session", func(t *testing.T) {
		client, _ := newSession(t)

		_, err := client.LoadForm2Draft("unknown")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 404")

		_, err = client.Sync("unknown")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 404")
	})
	t.Run("Failure: marshal fails", func(t *testing.T) {
		client, sessionID := newSession(t)
		client.marshal = failingMarshal

		err := client.SaveDraft(sessionID, operation.Form11DraftKey, models.NewForm11Data(testNow))
		require.EqualError(t, err, "failed to marshal draft: "+errFailingMarshal.Error())
	})
	t.Run("Failure: server unreachable", func(t *testing.T) {
		client := New("http://" + unreachableAddress(t))

		_, err := client.LoadForm11Draft("session")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failure while sending request to session session to retrieve draft form11")
	})
}

func TestClient_Signatures(t *testing.T) {
	t.Run("Success: replay, save and crop", func(t *testing.T) {
		client, sessionID := newSession(t)

		sig, err := client.ReplaySignature(testReplayRequest())
		require.NoError(t, err)
		require.Equal(t, &models.SignatureBBox{X: 20, Y: 20, Width: 100, Height: 50}, sig.BBox)

		form11 := models.NewForm11Data(testNow)
		form11.Declaration.SignatureData = sig

		require.NoError(t, client.SaveDraft(sessionID, operation.Form11DraftKey, form11))

		pngBytes, err := client.DraftSignature(sessionID, operation.Form11DraftKey)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(pngBytes))
		require.NoError(t, err)
		require.Equal(t, 100, img.Bounds().Dx())
		require.Equal(t, 50, img.Bounds().Dy())
	})
	t.Run("Failure: nothing drawn", func(t *testing.T) {
		client, _ := newSession(t)

		sig, err := client.ReplaySignature(&models.SignatureReplayRequest{
			Events: []models.SignatureEvent{{Type: "pointermove", X: 5, Y: 5}},
		})
		require.Equal(t, ErrNothingDrawn, err)
		require.Nil(t, sig)
	})
	t.Run("Failure: unknown event type", func(t *testing.T) {
		client, _ := newSession(t)

		_, err := client.ReplaySignature(&models.SignatureReplayRequest{
			Events: []models.SignatureEvent{{Type: "keydown"}},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 400")
	})
	t.Run("Failure: draft without signature", func(t *testing.T) {
		client, sessionID := newSession(t)

		_, err := client.DraftSignature(sessionID, operation.Form2DraftKey)
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 404")
	})
	t.Run("Failure: marshal fails", func(t *testing.T) {
		client, _ := newSession(t)
		client.marshal = failingMarshal

		_, err := client.ReplaySignature(testReplayRequest())
		require.EqualError(t, err, "failed to marshal signature replay request: "+errFailingMarshal.Error())
	})
}

func TestClient_Documents(t *testing.T) {
	t.Run("Success: upload, list, read and clear", func(t *testing.T) {
		client, sessionID := newSession(t)

		err := client.SaveDocuments(sessionID, models.DocumentUploads{
			Aadhaar: &models.DocumentFile{Name: "aadhaar.pdf", Type: "application/pdf", Content: []byte("aadhaar")},
			PAN:     &models.DocumentFile{Name: "pan.png", Type: "image/png", Content: []byte("pan")},
		})
		require.NoError(t, err)

		stored, err := client.LoadDocuments(sessionID)
		require.NoError(t, err)
		require.NotNil(t, stored.Aadhaar)
		require.NotNil(t, stored.PAN)
		require.Nil(t, stored.Passbook)
		require.Equal(t, "data:application/pdf;base64,YWFkaGFhcg==", stored.Aadhaar.Base64)

		doc, err := client.ReadDocument(sessionID, operation.PANSlot)
		require.NoError(t, err)
		require.Equal(t, "pan.png", doc.Name)
		require.Equal(t, "image/png", doc.Type)
		require.Equal(t, []byte("pan"), doc.Content)

		require.NoError(t, client.ClearDocuments(sessionID))

		_, err = client.ReadDocument(sessionID, operation.AadhaarSlot)
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 404")
	})
	t.Run("Failure: unknown slot", func(t *testing.T) {
		client, sessionID := newSession(t)

		_, err := client.ReadDocument(sessionID, "passport")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 400")
	})
	t.Run("Failure: unknown session", func(t *testing.T) {
		client, _ := newSession(t)

		err := client.SaveDocuments("unknown", models.DocumentUploads{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 404")

		_, err = client.LoadDocuments("unknown")
		require.Error(t, err)

		err = client.ClearDocuments("unknown")
		require.Error(t, err)
	})
}

func TestClient_PayloadExportImport(t *testing.T) {
	client, sessionID := newSession(t)

	_, err := client.Payload(sessionID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 422")

	sig, err := client.ReplaySignature(testReplayRequest())
	require.NoError(t, err)

	form11 := models.NewForm11Data(testNow)
	form11.PersonalDetails.MemberName = "Asha Rao"
	form11.PersonalDetails.ParentSpouseName = "Vijay Rao"
	form11.PersonalDetails.DateOfBirth = "1990-04-12"
	form11.ContactDetails.Email = "asha@example.com"
	form11.ContactDetails.MobileNo = "9876543210"
	form11.KYCDetails = models.KYCDetails{
		BankAccountNo: "123456789012",
		IFSCCode:      "SBIN0001234",
		AadhaarNo:     "123412341234",
	}
	form11.Declaration.Place = "Pune"
	form11.Declaration.SignatureData = sig

	require.NoError(t, client.SaveDraft(sessionID, operation.Form11DraftKey, form11))

	form2 := models.NewForm2Data(testNow)
	form2.MemberName = "Asha Rao"
	form2.FatherHusbandName = "Vijay Rao"
	form2.DateOfBirth = "1990-04-12"
	form2.MobileNo = "9876543210"
	form2.PermanentAddress = "12 Main Rd, Pune"
	form2.EPFNominees[0].Name = "Vijay Rao"
	form2.EPFNominees[0].Relationship = "father"
	form2.PensionNominee = &models.PensionNominee{
		Name:         "Vijay Rao",
		Relationship: "father",
		DateOfBirth:  "1960-01-01",
		Address:      "12 Main Rd, Pune",
	}
	form2.Declaration.Place = "Pune"
	form2.Declaration.SameSignature = true

	require.NoError(t, client.SaveDraft(sessionID, operation.Form2DraftKey, form2))

	_, err = client.Payload(sessionID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 422")
	require.Contains(t, err.Error(), "Aadhaar upload is required")

	require.NoError(t, client.SaveDocuments(sessionID, models.DocumentUploads{
		Aadhaar:  &models.DocumentFile{Name: "aadhaar.pdf", Type: "application/pdf", Content: []byte("aadhaar")},
		PAN:      &models.DocumentFile{Name: "pan.png", Type: "image/png", Content: []byte("pan")},
		Passbook: &models.DocumentFile{Name: "passbook.jpg", Type: "image/jpeg", Content: []byte("passbook")},
	}))

	p, err := client.Payload(sessionID)
	require.NoError(t, err)
	require.Equal(t, "Asha Rao", p.Forms.Form11.PersonalDetails.MemberName)
	require.Equal(t, sig.BBox, p.Forms.Form2.Declaration.SignatureData.BBox)
	require.Equal(t, "1.0", p.Meta.Version)

	tsv, err := client.Export(sessionID, operation.ExportFormatTSV)
	require.NoError(t, err)
	require.Contains(t, string(tsv), "Asha Rao")

	_, err = client.Export(sessionID, "xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 400")

	exported, err := client.Export(sessionID, operation.ExportFormatJSON)
	require.NoError(t, err)

	newSessionID, _, err := client.CreateSession()
	require.NoError(t, err)

	require.NoError(t, client.Import(newSessionID, exported))

	imported, err := client.LoadForm11Draft(newSessionID)
	require.NoError(t, err)
	require.Equal(t, "Asha Rao", imported.PersonalDetails.MemberName)

	err = client.Import(newSessionID, []byte("not json"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 400")
}

func TestClient_LogSpec(t *testing.T) {
	client, _ := newSession(t)

	require.NoError(t, client.SetLogSpec("epf-restapi=debug:info"))

	spec, err := client.GetLogSpec()
	require.NoError(t, err)
	require.Contains(t, spec, "epf-restapi=DEBUG")
	require.True(t, strings.HasSuffix(spec, ":INFO"))

	err = client.SetLogSpec("epf-restapi=loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 400")

	client.marshal = failingMarshal

	err = client.SetLogSpec("info")
	require.EqualError(t, err, "failed to marshal log spec: "+errFailingMarshal.Error())
}

func TestClient_WithHeaders(t *testing.T) {
	t.Run("Success: headers are sent", func(t *testing.T) {
		var received string

		router := mux.NewRouter()
		router.HandleFunc("/logspec", func(rw http.ResponseWriter, req *http.Request) {
			received = req.Header.Get("Authorization")

			_, err := rw.Write([]byte("INFO"))
			require.NoError(t, err)
		}).Methods(http.MethodGet)

		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)

		client := New(srv.URL, WithHeaders(func(req *http.Request) (*http.Header, error) {
			header := req.Header.Clone()
			header.Set("Authorization", "Bearer token")

			return &header, nil
		}))

		spec, err := client.GetLogSpec()
		require.NoError(t, err)
		require.Equal(t, "INFO", spec)
		require.Equal(t, "Bearer token", received)
	})
	t.Run("Failure: headers func fails", func(t *testing.T) {
		srv := startEPFServer(t)

		client := New(srv.URL, WithHeaders(func(*http.Request) (*http.Header, error) {
			return nil, errFailingHeaders
		}))

		_, _, err := client.CreateSession()
		require.EqualError(t, err, "add optional request headers error: "+errFailingHeaders.Error())
	})
}

func newSession(t *testing.T) (*Client, string) {
	t.Helper()

	srv := startEPFServer(t)

	client := New(srv.URL)

	sessionID, _, err := client.CreateSession()
	require.NoError(t, err)

	return client, sessionID
}

func startEPFServer(t *testing.T) *httptest.Server {
	t.Helper()

	controller, err := restapi.New(&operation.Config{
		LegacyProvider:  memstore.NewProvider(),
		PrimaryProvider: ariesstore.NewProvider(mem.NewProvider()),
		Now:             func() time.Time { return testNow },
	})
	require.NoError(t, err)

	router := mux.NewRouter()

	for _, handler := range controller.GetOperations() {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func startMockEPFServer(t *testing.T, statusCode int, message string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(statusCode)

		_, err := rw.Write([]byte(message))
		require.NoError(t, err)
	}))
	t.Cleanup(srv.Close)

	return srv
}

// unreachableAddress returns the address of a server that has already been shut down.
func unreachableAddress(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.Listener.Addr().String()
	srv.Close()

	return addr
}

func testReplayRequest() *models.SignatureReplayRequest {
	return &models.SignatureReplayRequest{
		RenderedWidth:  200,
		RenderedHeight: 75,
		Events: []models.SignatureEvent{
			{Type: "pointerdown", X: 10, Y: 10},
			{Type: "pointermove", X: 60, Y: 35},
			{Type: "pointerup"},
		},
	}
}

func failingMarshal(_ interface{}) ([]byte, error) {
	return nil, errFailingMarshal
}
