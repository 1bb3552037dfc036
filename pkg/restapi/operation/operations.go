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
	"time"

	"github.com/gorilla/mux"
	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/epf/pkg/epfutils"
	"github.com/trustbloc/epf/pkg/internal/common/support"
	"github.com/trustbloc/epf/pkg/payload"
	"github.com/trustbloc/epf/pkg/persistence"
	"github.com/trustbloc/epf/pkg/restapi/messages"
	"github.com/trustbloc/epf/pkg/restapi/models"
	"github.com/trustbloc/epf/pkg/signature"
	"github.com/trustbloc/epf/pkg/storage"
)

const (
	logModuleName = "epf-restapi"

	sessionIDPathVariable = "sessionID"
	draftKeyPathVariable  = "draftKey"
	slotPathVariable      = "slot"

	// Form11DraftKey selects the Form 11 draft in draft endpoints.
	Form11DraftKey = "form11"
	// Form2DraftKey selects the Form 2 draft in draft endpoints.
	Form2DraftKey = "form2"

	// ExportFormatJSON selects the assembled payload in the export endpoint.
	ExportFormatJSON = "json"
	// ExportFormatTSV selects the flattened form table in the export endpoint.
	ExportFormatTSV = "tsv"

	sessionsEndpointPathRoot = "/sessions"
	sessionEndpointPathRoot  = sessionsEndpointPathRoot + "/{" + sessionIDPathVariable + "}"

	createSessionEndpoint  = sessionsEndpointPathRoot
	draftEndpoint          = sessionEndpointPathRoot + "/drafts/{" + draftKeyPathVariable + "}"
	draftSignatureEndpoint = draftEndpoint + "/signature"
	syncEndpoint           = sessionEndpointPathRoot + "/sync"
	documentsEndpoint      = sessionEndpointPathRoot + "/documents"
	documentEndpoint       = documentsEndpoint + "/{" + slotPathVariable + "}"
	payloadEndpoint        = sessionEndpointPathRoot + "/payload"
	exportEndpoint         = sessionEndpointPathRoot + "/export"
	importEndpoint         = sessionEndpointPathRoot + "/import"
	signaturesEndpoint     = "/signatures"
	logSpecEndpoint        = "/logspec"

	sessionRegistryStoreName = "sessions"

	maxUploadMemory = 32 << 20
)

var logger = log.New(logModuleName)

// Operation defines handler logic for the EPF service.
type Operation struct {
	handlers []Handler
	sessions *SessionCollection
	now      func() time.Time
}

// Handler represents an HTTP handler for each controller API endpoint.
type Handler interface {
	Path() string
	Method() string
	Handle() http.HandlerFunc
}

// Config defines configuration for EPF operations.
type Config struct {
	// LegacyProvider holds the small-capacity stores that drafts are written to.
	LegacyProvider storage.Provider
	// PrimaryProvider holds the large-capacity stores that documents are written to, and the session registry.
	PrimaryProvider storage.Provider
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// SessionCollection represents the per-session persistence layers.
type SessionCollection struct {
	legacyProvider  storage.Provider
	primaryProvider storage.Provider
	registry        storage.Store
}

type sessionRecord struct {
	CreatedAt string `json:"created_at"`
}

// New returns a new EPF operations instance.
func New(config *Config) (*Operation, error) {
	registry, err := config.PrimaryProvider.OpenStore(sessionRegistryStoreName)
	if err != nil {
		return nil, fmt.Errorf("failed to open session registry: %w", err)
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	svc := &Operation{
		sessions: &SessionCollection{
			legacyProvider:  config.LegacyProvider,
			primaryProvider: config.PrimaryProvider,
			registry:        registry,
		},
		now: now,
	}

	svc.registerHandler()

	return svc, nil
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []Handler{
		support.NewHTTPHandler(createSessionEndpoint, http.MethodPost, c.createSessionHandler),
		support.NewHTTPHandler(draftEndpoint, http.MethodPut, c.saveDraftHandler),
		support.NewHTTPHandler(draftEndpoint, http.MethodGet, c.loadDraftHandler),
		support.NewHTTPHandler(draftSignatureEndpoint, http.MethodGet, c.draftSignatureHandler),
		support.NewHTTPHandler(syncEndpoint, http.MethodPost, c.syncHandler),
		support.NewHTTPHandler(documentsEndpoint, http.MethodPut, c.saveDocumentsHandler),
		support.NewHTTPHandler(documentsEndpoint, http.MethodGet, c.loadDocumentsHandler),
		support.NewHTTPHandler(documentsEndpoint, http.MethodDelete, c.clearDocumentsHandler),
		support.NewHTTPHandler(documentEndpoint, http.MethodGet, c.readDocumentHandler),
		support.NewHTTPHandler(payloadEndpoint, http.MethodGet, c.payloadHandler),
		support.NewHTTPHandler(exportEndpoint, http.MethodGet, c.exportHandler),
		support.NewHTTPHandler(importEndpoint, http.MethodPost, c.importHandler),
		support.NewHTTPHandler(signaturesEndpoint, http.MethodPost, c.replaySignatureHandler),
		support.NewHTTPHandler(logSpecEndpoint, http.MethodPut, c.changeLogSpecHandler),
		support.NewHTTPHandler(logSpecEndpoint, http.MethodGet, c.getLogSpecHandler),
	}
}

// GetRESTHandlers gets all controller API handler available for this service.
func (c *Operation) GetRESTHandlers() []Handler {
	return c.handlers
}

// Create Session swagger:route POST /sessions createSessionReq
//
// Creates a new form-filling session.
//
// Responses:
//    default: genericError
//        201: createSessionRes
func (c *Operation) createSessionHandler(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf(messages.DebugLogEvent, "Received request to create a new session.")

	sessionID, err := c.sessions.createSession(c.now())
	if err != nil {
		writeCreateSessionFailure(rw, err)
		return
	}

	writeCreateSessionSuccess(rw, sessionID, req.Host)
}

// Save Draft swagger:route PUT /sessions/{sessionID}/drafts/{draftKey} saveDraftReq
//
// Replaces the draft of one form.
//
// Responses:
//    default: genericError
//        200: emptyRes
func (c *Operation) saveDraftHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, draftKey, success := unescapeDraftVars(mux.Vars(req), rw)
	if !success {
		return
	}

	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.SaveDraftFailReadRequestBody, err,
			sessionID, nil)
		return
	}

	logger.Debugf(messages.DebugLogEventWithReceivedData,
		fmt.Sprintf("Received request to save draft %s in session %s.", draftKey, sessionID), requestBody)

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, requestBody)
		return
	}

	draft, err := decodeDraft(draftKey, requestBody)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.InvalidDraft, err, sessionID, requestBody)
		return
	}

	err = layer.SaveDraft(persistenceDraftKey(draftKey), draft)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SaveDraftFailure, err, sessionID, requestBody)
		return
	}

	logger.Debugf(messages.DebugLogEvent, fmt.Sprintf(messages.SaveDraftSuccess, draftKey, sessionID))
}

// Load Draft swagger:route GET /sessions/{sessionID}/drafts/{draftKey} loadDraftReq
//
// Retrieves the draft of one form, or a blank form if none was saved.
//
// Responses:
//    default: genericError
//        200: loadDraftRes
func (c *Operation) loadDraftHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, draftKey, success := unescapeDraftVars(mux.Vars(req), rw)
	if !success {
		return
	}

	logger.Debugf(messages.DebugLogEvent,
		fmt.Sprintf("Received request to load draft %s in session %s.", draftKey, sessionID))

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	writeJSONResponse(rw, c.loadDraft(layer, draftKey), sessionID)
}

// Draft Signature swagger:route GET /sessions/{sessionID}/drafts/{draftKey}/signature draftSignatureReq
//
// Retrieves the declaration signature of a draft, cropped to its ink, as a PNG image.
//
// Responses:
//    default: genericError
//        200: draftSignatureRes
func (c *Operation) draftSignatureHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, draftKey, success := unescapeDraftVars(mux.Vars(req), rw)
	if !success {
		return
	}

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	form11, form2 := c.loadForms(layer)

	sig := form11.Declaration.SignatureData
	if draftKey == Form2DraftKey {
		form2.ApplySameSignature(&form11)
		sig = form2.Declaration.SignatureData
	}

	if sig == nil {
		writeErrorWithSessionID(rw, http.StatusNotFound, messages.SignatureCropFailure, messages.ErrNoSignature,
			sessionID, nil)
		return
	}

	if !signature.IsValidBBox(sig.BBox) {
		writeErrorWithSessionID(rw, http.StatusUnprocessableEntity, messages.SignatureCropFailure,
			payload.ErrResignRequired, sessionID, nil)
		return
	}

	cropped, err := signature.Crop(sig)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusUnprocessableEntity, messages.SignatureCropFailure, err, sessionID, nil)
		return
	}

	pngBytes, err := signature.EncodePNG(cropped)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.SignatureCropFailure, err, sessionID, nil)
		return
	}

	writeFileResponse(rw, pngBytes, "image/png", "", sessionID)
}

// Sync swagger:route POST /sessions/{sessionID}/sync syncReq
//
// Copies the member details and signature of the Form 11 draft into the Form 2 draft.
//
// Responses:
//    default: genericError
//        200: loadDraftRes
func (c *Operation) syncHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	form11, form2 := c.loadForms(layer)

	form2.SyncFromForm11(&form11)

	err = layer.SaveDraft(persistence.Form2DraftKey, form2)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SaveDraftFailure, err, sessionID, nil)
		return
	}

	writeJSONResponse(rw, form2, sessionID)
}

// Save Documents swagger:route PUT /sessions/{sessionID}/documents saveDocumentsReq
//
// Replaces the attachments of a session with the files of a multipart upload
// (fields aadhaar, pan and passbook, each optional).
//
// Responses:
//    default: genericError
//        200: emptyRes
func (c *Operation) saveDocumentsHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	docs, err := readDocumentUploads(req)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.SaveDocumentsFailReadRequest, err, sessionID, nil)
		return
	}

	err = layer.SaveDocuments(docs)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SaveDocumentsFailure, err, sessionID, nil)
		return
	}

	logger.Debugf(messages.DebugLogEvent, fmt.Sprintf(messages.SaveDocumentsSuccess, sessionID))
}

// Load Documents swagger:route GET /sessions/{sessionID}/documents loadDocumentsReq
//
// Retrieves the attachment record of a session.
//
// Responses:
//    default: genericError
//        200: loadDocumentsRes
func (c *Operation) loadDocumentsHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	docs, ok := c.loadDocuments(rw, sessionID)
	if !ok {
		return
	}

	writeJSONResponse(rw, persistence.StoredUploads(docs), sessionID)
}

// Read Document swagger:route GET /sessions/{sessionID}/documents/{slot} readDocumentReq
//
// Retrieves the original bytes of one attachment.
//
// Responses:
//    default: genericError
//        200: readDocumentRes
func (c *Operation) readDocumentHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	slot, success := unescapePathVar(slotPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	if !isDocumentSlot(slot) {
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.LoadDocumentsFailure,
			messages.ErrUnknownDocumentSlot, sessionID, nil)
		return
	}

	docs, ok := c.loadDocuments(rw, sessionID)
	if !ok {
		return
	}

	doc := documentInSlot(docs, slot)
	if doc == nil {
		writeErrorWithSessionID(rw, http.StatusNotFound, messages.LoadDocumentsFailure, messages.ErrDocumentNotFound,
			sessionID, nil)
		return
	}

	writeFileResponse(rw, doc.Content, doc.Type, doc.Name, sessionID)
}

// Clear Documents swagger:route DELETE /sessions/{sessionID}/documents clearDocumentsReq
//
// Removes every attachment of a session.
//
// Responses:
//    default: genericError
//        200: emptyRes
func (c *Operation) clearDocumentsHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	err = layer.ClearDocuments()
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.ClearDocumentsFailure, err, sessionID, nil)
		return
	}

	logger.Debugf(messages.DebugLogEvent, fmt.Sprintf(messages.ClearDocumentsSuccess, sessionID))
}

// Payload swagger:route GET /sessions/{sessionID}/payload payloadReq
//
// Assembles the submission payload from the drafts and attachments of a session.
//
// Responses:
//    default: genericError
//        200: payloadRes
//        422: genericError
func (c *Operation) payloadHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	p, ok := c.assemblePayload(rw, sessionID)
	if !ok {
		return
	}

	writeJSONResponse(rw, p, sessionID)
}

// Export swagger:route GET /sessions/{sessionID}/export exportReq
//
// Downloads the forms of a session as the JSON payload (format=json, default) or as a
// tab-separated table (format=tsv).
//
// Responses:
//    default: genericError
//        200: exportRes
func (c *Operation) exportHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	format := req.URL.Query().Get("format")
	if format == "" {
		format = ExportFormatJSON
	}

	switch format {
	case ExportFormatJSON:
		p, ok := c.assemblePayload(rw, sessionID)
		if !ok {
			return
		}

		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.ExportFailure, err, sessionID, nil)
			return
		}

		writeFileResponse(rw, data, "application/json", "epf-forms.json", sessionID)
	case ExportFormatTSV:
		c.exportTSV(rw, sessionID)
	default:
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.ExportFailure, messages.ErrUnknownExportFormat,
			sessionID, nil)
	}
}

// Import swagger:route POST /sessions/{sessionID}/import importReq
//
// Loads a previously exported payload back into the drafts and attachments of a session.
//
// Responses:
//    default: genericError
//        200: emptyRes
func (c *Operation) importHandler(rw http.ResponseWriter, req *http.Request) {
	sessionID, success := unescapePathVar(sessionIDPathVariable, mux.Vars(req), rw)
	if !success {
		return
	}

	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.ImportFailReadRequestBody, err,
			sessionID, nil)
		return
	}

	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	imported, err := payload.Parse(requestBody)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusBadRequest, messages.InvalidImport, err, sessionID, requestBody)
		return
	}

	err = storeImported(layer, imported)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.ImportFailure, err, sessionID, nil)
		return
	}

	logger.Infof(messages.ImportSuccess, sessionID)
}

// Replay Signature swagger:route POST /signatures replaySignatureReq
//
// Renders a recorded signature gesture and returns the image and ink bounding box it produced.
//
// Responses:
//    default: genericError
//        200: replaySignatureRes
//        204: emptyRes
func (c *Operation) replaySignatureHandler(rw http.ResponseWriter, req *http.Request) {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, messages.ReplayFailReadRequestBody, err, nil)
		return
	}

	var replayRequest models.SignatureReplayRequest

	err = json.Unmarshal(requestBody, &replayRequest)
	if err != nil {
		writeError(rw, http.StatusBadRequest, messages.InvalidReplay, err, requestBody)
		return
	}

	result, err := signature.Replay(&replayRequest)
	if err != nil {
		writeError(rw, http.StatusBadRequest, messages.InvalidReplay, err, requestBody)
		return
	}

	if result == nil {
		logger.Debugf(messages.DebugLogEventWithReceivedData, messages.ReplayNothingDrawn, requestBody)

		rw.WriteHeader(http.StatusNoContent)

		return
	}

	writeJSONResponse(rw, result, "")
}

// Change Log Spec swagger:route PUT /logspec changeLogSpecReq
//
// Changes the current log specification.
// Format: ModuleName1=Level1:ModuleName2=Level2:ModuleNameN=LevelN:AllOtherModuleDefaultLevel
// Valid log levels: critical, error, warning, info, debug
//
// Responses:
//    default: genericError
//        200: changeLogSpecRes
func (c *Operation) changeLogSpecHandler(rw http.ResponseWriter, req *http.Request) {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writePutLogSpecRequestReadFailure(rw, err)
		return
	}

	var incomingLogSpec models.LogSpec

	err = json.Unmarshal(requestBody, &incomingLogSpec)
	if err != nil {
		writeInvalidLogSpec(rw, err, requestBody)
		return
	}

	err = setLogSpec(incomingLogSpec.Spec)
	if err != nil {
		writeInvalidLogSpec(rw, err, requestBody)
		return
	}

	writePutLogSpecSuccess(rw, requestBody)
}

// Get Log Spec swagger:route GET /logspec getLogSpecReq
//
// Gets the current log specification.
// Format: ModuleName1=Level1:ModuleName2=Level2:ModuleNameN=LevelN:AllOtherModuleDefaultLevel
//
// Responses:
//    default: genericError
//        200: getLogSpecRes
func (c *Operation) getLogSpecHandler(rw http.ResponseWriter, _ *http.Request) {
	writeGetLogSpecSuccess(rw, getLogSpec())
}

// loadDraft returns the saved draft, or a blank form if there is none or it cannot be read.
// Read failures are logged by the persistence layer.
func (c *Operation) loadDraft(layer *persistence.Layer, draftKey string) interface{} {
	form11, form2 := c.loadForms(layer)

	if draftKey == Form11DraftKey {
		return form11
	}

	return form2
}

func (c *Operation) loadForms(layer *persistence.Layer) (models.Form11Data, models.Form2Data) {
	today := c.now()

	form11, _ := layer.LoadForm11Draft(models.NewForm11Data(today))
	form2, _ := layer.LoadForm2Draft(models.NewForm2Data(today))

	return form11, form2
}

// loadDocuments writes an error response and returns false if the session or its attachments cannot be read.
func (c *Operation) loadDocuments(rw http.ResponseWriter, sessionID string) (models.DocumentUploads, bool) {
	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return models.DocumentUploads{}, false
	}

	return readDocuments(rw, layer, sessionID)
}

// readDocuments writes an error response and returns false if the attachments cannot be read.
// Attachments that were read but could not be migrated are still served.
func readDocuments(rw http.ResponseWriter, layer *persistence.Layer,
	sessionID string) (models.DocumentUploads, bool) {
	docs, err := layer.LoadDocuments()
	if err != nil {
		if docs == (models.DocumentUploads{}) {
			writeErrorWithSessionID(rw, statusFor(err), messages.LoadDocumentsFailure, err, sessionID, nil)
			return models.DocumentUploads{}, false
		}

		logger.Warnf(messages.LoadDocumentsFailure, sessionID, err)
	}

	return docs, true
}

func (c *Operation) assemblePayload(rw http.ResponseWriter, sessionID string) (*models.Payload, bool) {
	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return nil, false
	}

	form11, form2 := c.loadForms(layer)

	docs, ok := readDocuments(rw, layer, sessionID)
	if !ok {
		return nil, false
	}

	p, err := payload.Assemble(form11, form2, docs, c.now())
	if err != nil {
		var validationErr *payload.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationFailure(rw, validationErr, sessionID)
			return nil, false
		}

		writeErrorWithSessionID(rw, statusFor(err), messages.AssemblePayloadFailure, err, sessionID, nil)

		return nil, false
	}

	return p, true
}

func (c *Operation) exportTSV(rw http.ResponseWriter, sessionID string) {
	layer, err := c.sessions.open(sessionID)
	if err != nil {
		writeErrorWithSessionID(rw, statusFor(err), messages.SessionLookupFailure, err, sessionID, nil)
		return
	}

	form11, form2 := c.loadForms(layer)

	table, err := payload.ExportTSV(form11, form2)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.ExportFailure, err, sessionID, nil)
		return
	}

	writeFileResponse(rw, []byte(table), "text/tab-separated-values", "epf-forms.tsv", sessionID)
}

func (sc *SessionCollection) createSession(now time.Time) (string, error) {
	sessionID, err := epfutils.GenerateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	record, err := json.Marshal(sessionRecord{CreatedAt: now.UTC().Format(time.RFC3339)})
	if err != nil {
		return "", err
	}

	err = sc.registry.Put(sessionID, record)
	if err != nil {
		return "", fmt.Errorf("failed to register session: %w", err)
	}

	return sessionID, nil
}

// open returns the persistence layer of a registered session.
func (sc *SessionCollection) open(sessionID string) (*persistence.Layer, error) {
	_, err := sc.registry.Get(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			return nil, messages.ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	legacy, err := sc.legacyProvider.OpenStore(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy store: %w", err)
	}

	primary, err := sc.primaryProvider.OpenStore(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary store: %w", err)
	}

	return persistence.New(legacy, primary), nil
}

func storeImported(layer *persistence.Layer, imported *payload.Imported) error {
	err := layer.SaveDraft(persistence.Form11DraftKey, imported.Form11)
	if err != nil {
		return err
	}

	err = layer.SaveDraft(persistence.Form2DraftKey, imported.Form2)
	if err != nil {
		return err
	}

	if imported.Documents == (models.DocumentUploads{}) {
		return nil
	}

	return layer.SaveDocuments(imported.Documents)
}
