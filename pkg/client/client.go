/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"

	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

const (
	failSendRequestForDraft    = "failure while sending request to session %s to retrieve draft %s: %w"
	failSendRequestForDocument = "failure while sending request to session %s to retrieve document %s: %w"
	unexpectedStatusCode       = "the EPF server returned status code %d along with the following message: %s"
)

var logger = log.New("epf-client")

// ErrNothingDrawn is returned by ReplaySignature when the replayed gesture left no ink.
var ErrNothingDrawn = errors.New("replayed gesture produced no signature")

type addHeaders func(req *http.Request) (*http.Header, error)

type marshalFunc func(interface{}) ([]byte, error)

// Client is used to interact with an EPF server.
type Client struct {
	epfServerURL string
	httpClient   *http.Client
	marshal      marshalFunc
	headersFunc  addHeaders
}

// Option configures the epf client
type Option func(opts *Client)

// WithTLSConfig option is for definition of secured HTTP transport using a tls.Config instance
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(opts *Client) {
		opts.httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}
}

// WithHeaders option is for setting additional http request headers
func WithHeaders(addHeadersFunc addHeaders) Option {
	return func(opts *Client) {
		opts.headersFunc = addHeadersFunc
	}
}

// New returns a new instance of an EPF client.
func New(epfServerURL string, opts ...Option) *Client {
	c := &Client{epfServerURL: epfServerURL, httpClient: &http.Client{}, marshal: json.Marshal}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateSession sends the EPF server a request to open a new session.
// The new session ID and its location are returned.
func (c *Client) CreateSession() (string, string, error) {
	logger.Debugf("Sending request to create a new session.")

	statusCode, httpHdr, respBytes, err := c.sendHTTPRequest(http.MethodPost, c.epfServerURL+"/sessions", nil, "")
	if err != nil {
		return "", "", err
	}

	if statusCode != http.StatusCreated {
		return "", "", fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	location := httpHdr.Get("Location")

	sessionID, err := url.PathUnescape(path.Base(location))
	if err != nil {
		return "", "", fmt.Errorf("failed to read session ID from location %s: %w", location, err)
	}

	return sessionID, location, nil
}

// SaveDraft sends the EPF server a draft of the form11 or form2 form.
func (c *Client) SaveDraft(sessionID, draftKey string, draft interface{}) error {
	jsonToSend, err := c.marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	logger.Debugf("Sending request to save draft %s: %s", draftKey, jsonToSend)

	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPut, c.draftURL(sessionID, draftKey), jsonToSend,
		"application/json")
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return nil
}

// LoadForm11Draft retrieves the Form 11 draft of a session. A blank form is returned if none was saved.
func (c *Client) LoadForm11Draft(sessionID string) (*models.Form11Data, error) {
	form := &models.Form11Data{}

	err := c.loadDraft(sessionID, "form11", form)
	if err != nil {
		return nil, err
	}

	return form, nil
}

// LoadForm2Draft retrieves the Form 2 draft of a session. A blank form is returned if none was saved.
func (c *Client) LoadForm2Draft(sessionID string) (*models.Form2Data, error) {
	form := &models.Form2Data{}

	err := c.loadDraft(sessionID, "form2", form)
	if err != nil {
		return nil, err
	}

	return form, nil
}

// DraftSignature retrieves the signature of a draft, cropped to its ink bounding box, as PNG bytes.
func (c *Client) DraftSignature(sessionID, draftKey string) ([]byte, error) {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, c.draftURL(sessionID, draftKey)+"/signature",
		nil, "")
	if err != nil {
		return nil, fmt.Errorf(failSendRequestForDraft, sessionID, draftKey, err)
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return respBytes, nil
}

// Sync copies the shared Form 11 fields into the Form 2 draft and returns the updated Form 2.
func (c *Client) Sync(sessionID string) (*models.Form2Data, error) {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPost, c.sessionURL(sessionID)+"/sync", nil, "")
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	form := &models.Form2Data{}

	err = json.Unmarshal(respBytes, form)
	if err != nil {
		return nil, err
	}

	return form, nil
}

// SaveDocuments uploads the attachments of a session. Empty slots are left out of the upload.
func (c *Client) SaveDocuments(sessionID string, docs models.DocumentUploads) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for field, doc := range map[string]*models.DocumentFile{
		"aadhaar": docs.Aadhaar, "pan": docs.PAN, "passbook": docs.Passbook,
	} {
		if doc == nil {
			continue
		}

		err := writeDocumentPart(writer, field, doc)
		if err != nil {
			return fmt.Errorf("failed to write %s upload: %w", field, err)
		}
	}

	err := writer.Close()
	if err != nil {
		return fmt.Errorf("failed to close document upload: %w", err)
	}

	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPut, c.sessionURL(sessionID)+"/documents",
		body.Bytes(), writer.FormDataContentType())
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return nil
}

// LoadDocuments retrieves the attachments of a session in their stored, data URI form.
func (c *Client) LoadDocuments(sessionID string) (*models.StoredDocumentUploads, error) {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, c.sessionURL(sessionID)+"/documents", nil, "")
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	docs := &models.StoredDocumentUploads{}

	err = json.Unmarshal(respBytes, docs)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// ReadDocument retrieves one attachment of a session with its original bytes, type and file name.
func (c *Client) ReadDocument(sessionID, slot string) (*models.DocumentFile, error) {
	endpoint := fmt.Sprintf("%s/documents/%s", c.sessionURL(sessionID), url.PathEscape(slot))

	statusCode, httpHdr, respBytes, err := c.sendHTTPRequest(http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, fmt.Errorf(failSendRequestForDocument, sessionID, slot, err)
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	doc := &models.DocumentFile{Type: httpHdr.Get("Content-Type"), Content: respBytes}

	_, params, err := mime.ParseMediaType(httpHdr.Get("Content-Disposition"))
	if err == nil {
		doc.Name = params["filename"]
	}

	return doc, nil
}

// ClearDocuments removes every attachment of a session.
func (c *Client) ClearDocuments(sessionID string) error {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodDelete, c.sessionURL(sessionID)+"/documents", nil,
		"")
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return nil
}

// Payload retrieves the submission payload of a session.
func (c *Client) Payload(sessionID string) (*models.Payload, error) {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, c.sessionURL(sessionID)+"/payload", nil, "")
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	p := &models.Payload{}

	err = json.Unmarshal(respBytes, p)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Export retrieves the forms of a session as a downloadable file in the given format (json or tsv).
func (c *Client) Export(sessionID, format string) ([]byte, error) {
	endpoint := c.sessionURL(sessionID) + "/export?format=" + url.QueryEscape(format)

	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return respBytes, nil
}

// Import loads an exported payload back into a session.
func (c *Client) Import(sessionID string, exported []byte) error {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPost, c.sessionURL(sessionID)+"/import",
		exported, "application/json")
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return nil
}

// ReplaySignature sends a recorded signature gesture to the EPF server and returns the rendered signature.
// ErrNothingDrawn is returned when the gesture left no ink.
func (c *Client) ReplaySignature(replayRequest *models.SignatureReplayRequest) (*models.SignatureData, error) {
	jsonToSend, err := c.marshal(replayRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signature replay request: %w", err)
	}

	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPost, c.epfServerURL+"/signatures", jsonToSend,
		"application/json")
	if err != nil {
		return nil, err
	}

	switch statusCode {
	case http.StatusOK:
		sig := &models.SignatureData{}

		err = json.Unmarshal(respBytes, sig)
		if err != nil {
			return nil, err
		}

		return sig, nil
	case http.StatusNoContent:
		return nil, ErrNothingDrawn
	default:
		return nil, fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}
}

// SetLogSpec changes the log levels of the EPF server.
func (c *Client) SetLogSpec(spec string) error {
	jsonToSend, err := c.marshal(models.LogSpec{Spec: spec})
	if err != nil {
		return fmt.Errorf("failed to marshal log spec: %w", err)
	}

	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodPut, c.epfServerURL+"/logspec", jsonToSend,
		"application/json")
	if err != nil {
		return err
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return nil
}

// GetLogSpec retrieves the current log levels of the EPF server.
func (c *Client) GetLogSpec() (string, error) {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, c.epfServerURL+"/logspec", nil, "")
	if err != nil {
		return "", err
	}

	if statusCode != http.StatusOK {
		return "", fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return string(respBytes), nil
}

func (c *Client) loadDraft(sessionID, draftKey string, form interface{}) error {
	statusCode, _, respBytes, err := c.sendHTTPRequest(http.MethodGet, c.draftURL(sessionID, draftKey), nil, "")
	if err != nil {
		return fmt.Errorf(failSendRequestForDraft, sessionID, draftKey, err)
	}

	if statusCode != http.StatusOK {
		return fmt.Errorf(unexpectedStatusCode, statusCode, respBytes)
	}

	return json.Unmarshal(respBytes, form)
}

func (c *Client) sessionURL(sessionID string) string {
	return fmt.Sprintf("%s/sessions/%s", c.epfServerURL, url.PathEscape(sessionID))
}

func (c *Client) draftURL(sessionID, draftKey string) string {
	return fmt.Sprintf("%s/drafts/%s", c.sessionURL(sessionID), url.PathEscape(draftKey))
}

func (c *Client) sendHTTPRequest(method, endpoint string, body []byte,
	contentType string) (int, http.Header, []byte, error) {
	req, errReq := http.NewRequest(method, endpoint, bytes.NewBuffer(body))
	if errReq != nil {
		return -1, nil, nil, errReq
	}

	if c.headersFunc != nil {
		httpHeaders, err := c.headersFunc(req)
		if err != nil {
			return -1, nil, nil, fmt.Errorf("add optional request headers error: %w", err)
		}

		if httpHeaders != nil {
			req.Header = httpHeaders.Clone()
		}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req) //nolint: bodyclose
	if err != nil {
		return -1, nil, nil, err
	}

	defer closeReadCloser(resp.Body)

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, nil, nil, err
	}

	logger.Debugf(`sent %s request to %s response status code: %d response body: %s`, method, endpoint,
		resp.StatusCode, respBytes)

	return resp.StatusCode, resp.Header, respBytes, nil
}

func writeDocumentPart(writer *multipart.Writer, field string, doc *models.DocumentFile) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data",
		map[string]string{"name": field, "filename": doc.Name}))

	if doc.Type != "" {
		header.Set("Content-Type", doc.Type)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	_, err = part.Write(doc.Content)

	return err
}

func closeReadCloser(respBody io.ReadCloser) {
	err := respBody.Close()
	if err != nil {
		logger.Errorf("Failed to close response body: %s", err)
	}
}
