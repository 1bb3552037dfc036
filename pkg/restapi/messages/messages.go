/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messages

const (
	// ErrSessionNotFound is used when a session could not be found in the registry.
	ErrSessionNotFound = epfError("specified session does not exist")
	// ErrUnknownDraftKey is used when a draft key other than form11 or form2 is requested.
	ErrUnknownDraftKey = epfError("draft key must be form11 or form2")
	// ErrUnknownDocumentSlot is used when a document slot other than aadhaar, pan or passbook is requested.
	ErrUnknownDocumentSlot = epfError("document slot must be aadhaar, pan or passbook")
	// ErrDocumentNotFound is used when a requested document slot is empty.
	ErrDocumentNotFound = epfError("specified document does not exist")
	// ErrNoSignature is used when a cropped signature is requested from a draft that has none.
	ErrNoSignature = epfError("draft has no signature")
	// ErrUnknownExportFormat is used when an export format other than json or tsv is requested.
	ErrUnknownExportFormat = epfError("export format must be json or tsv")

	// FailWriteResponse is logged when a ResponseWriter fails to write.
	FailWriteResponse = ` Failed to write response back to sender: %s.`

	// DebugLogEvent is used for logging debug information.
	DebugLogEvent = "Event: %s"
	// DebugLogEventWithReceivedData is used for logging debug information along with the data received from the sender.
	DebugLogEventWithReceivedData = DebugLogEvent + " Received data: %s"

	// CreateSessionFailure is used when an error prevents a new session from being created.
	CreateSessionFailure = "Failed to create a new session: %s."
	// CreateSessionSuccess is used when a new session is created.
	CreateSessionSuccess = "Successfully created new session at %s."

	// SessionLookupFailure is used when a session cannot be resolved.
	SessionLookupFailure = "Failed to open session %s: %s."

	// SaveDraftFailReadRequestBody is used when the incoming request body can't be read.
	// This should not happen during normal operation.
	SaveDraftFailReadRequestBody = "Received request to save a draft in session %s, " +
		"but failed to read the request body: %s."
	// InvalidDraft is used when a received draft cannot be decoded.
	InvalidDraft = "Received invalid draft for session %s: %s."
	// SaveDraftFailure is used when a draft cannot be written.
	SaveDraftFailure = "Failed to save draft in session %s: %s."
	// SaveDraftSuccess is used when a draft is written.
	SaveDraftSuccess = "Successfully saved draft %s in session %s."
	// LoadDraftFailure is used when a draft cannot be read.
	LoadDraftFailure = "Failed to load draft in session %s: %s."

	// SignatureCropFailure is used when the signature of a draft cannot be cropped.
	SignatureCropFailure = "Failed to crop signature in session %s: %s."

	// SaveDocumentsFailReadRequest is used when the multipart document upload can't be parsed.
	SaveDocumentsFailReadRequest = "Received request to save documents in session %s, " +
		"but failed to read the upload: %s."
	// SaveDocumentsFailure is used when documents cannot be written.
	SaveDocumentsFailure = "Failed to save documents in session %s: %s."
	// SaveDocumentsSuccess is used when documents are written.
	SaveDocumentsSuccess = "Successfully saved documents in session %s."
	// LoadDocumentsFailure is used when documents cannot be read.
	LoadDocumentsFailure = "Failed to load documents in session %s: %s."
	// ClearDocumentsFailure is used when documents cannot be removed.
	ClearDocumentsFailure = "Failed to clear documents in session %s: %s."
	// ClearDocumentsSuccess is used when documents are removed.
	ClearDocumentsSuccess = "Successfully cleared documents in session %s."

	// AssemblePayloadFailure is used when the submission payload cannot be built.
	AssemblePayloadFailure = "Failed to assemble payload for session %s: %s."
	// ExportFailure is used when the forms of a session cannot be exported.
	ExportFailure = "Failed to export session %s: %s."

	// ImportFailReadRequestBody is used when the incoming request body can't be read.
	// This should not happen during normal operation.
	ImportFailReadRequestBody = "Received request to import a payload into session %s, " +
		"but failed to read the request body: %s."
	// InvalidImport is used when a received payload cannot be imported.
	InvalidImport = "Received invalid payload for session %s: %s."
	// ImportFailure is used when an imported payload cannot be stored.
	ImportFailure = "Failed to store imported payload in session %s: %s."
	// ImportSuccess is used when a payload is imported.
	ImportSuccess = "Successfully imported payload into session %s."

	// ReplayFailReadRequestBody is used when the incoming request body can't be read.
	// This should not happen during normal operation.
	ReplayFailReadRequestBody = "Received request to render a signature, but failed to read the request body: %s."
	// InvalidReplay is used when a signature replay request is invalid.
	InvalidReplay = "Received invalid signature replay request: %s."
	// ReplayNothingDrawn is used when a replayed gesture produced no signature.
	ReplayNothingDrawn = "Signature replay produced no ink."

	// MarshalResponseFailure is used when a response body cannot be marshalled.
	// This should not happen during normal operation.
	MarshalResponseFailure = "Failed to marshal response: %s."

	// PutLogSpecFailReadRequestBody is used when the incoming request body can't be read..
	// This should not happen during normal operation.
	PutLogSpecFailReadRequestBody = "Received request to change the log spec, " +
		"but failed to read the request body: %s."
	// InvalidLogSpec is used when a request is made to change the current log specification
	// but it is in an invalid format.
	InvalidLogSpec = `Invalid log spec. It needs to be in the following format: ` +
		`ModuleName1=Level1:ModuleName2=Level2:ModuleNameN=LevelN:AllOtherModuleDefaultLevel
Valid log levels: critical,error,warning,info,debug
Error: %s`
	// SetLogSpecSuccess is used when the current log specification is successfully changed.
	SetLogSpecSuccess = "Successfully set log level(s)."
	// GetLogSpecSuccess is used when the current log specification is successfully retrieved.
	GetLogSpecSuccess = "Successfully got log level(s)."

	// UnescapeFailure is used when an error occurs while unescaping a path variable
	UnescapeFailure = "Unable to unescape %s path variable: %s."
)

type epfError string

// Error returns the associated EPF error message.
// This satisfies the built-in error interface.
func (e epfError) Error() string { return string(e) }
