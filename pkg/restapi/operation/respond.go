/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/epf/pkg/payload"
	"github.com/trustbloc/epf/pkg/restapi/messages"
)

func writeCreateSessionFailure(rw http.ResponseWriter, errSessionCreation error) {
	logger.Errorf(messages.CreateSessionFailure, errSessionCreation)

	rw.WriteHeader(http.StatusInternalServerError)

	_, errWrite := rw.Write([]byte(fmt.Sprintf(messages.CreateSessionFailure, errSessionCreation)))
	if errWrite != nil {
		logger.Errorf(messages.CreateSessionFailure+messages.FailWriteResponse, errSessionCreation, errWrite)
	}
}

func writeCreateSessionSuccess(rw http.ResponseWriter, sessionID, hostURL string) {
	newSessionLocation := hostURL + sessionsEndpointPathRoot + "/" + url.PathEscape(sessionID)

	logger.Debugf(messages.DebugLogEvent, fmt.Sprintf(messages.CreateSessionSuccess, newSessionLocation))

	rw.Header().Set("Location", newSessionLocation)
	rw.WriteHeader(http.StatusCreated)
}

func writeErrorWithSessionID(rw http.ResponseWriter, statusCode int, message string, err error, sessionID string,
	receivedData []byte) {
	if statusCode >= http.StatusInternalServerError {
		logger.Errorf(message, sessionID, err)
	} else {
		logger.Infof(message, sessionID, err)
	}

	logger.Debugf(messages.DebugLogEventWithReceivedData, fmt.Sprintf(message, sessionID, err), receivedData)

	rw.WriteHeader(statusCode)

	_, errWrite := rw.Write([]byte(fmt.Sprintf(message, sessionID, err)))
	if errWrite != nil {
		logger.Errorf(message+messages.FailWriteResponse, sessionID, err, errWrite)
		logger.Debugf(messages.DebugLogEventWithReceivedData,
			fmt.Sprintf(message+messages.FailWriteResponse, sessionID, err, errWrite),
			receivedData)
	}
}

// writeValidationFailure responds with the field errors keyed by form, so the client can mark each field.
func writeValidationFailure(rw http.ResponseWriter, validationErr *payload.ValidationError, sessionID string) {
	logger.Infof(messages.AssemblePayloadFailure, sessionID, validationErr)

	responseBytes, err := json.Marshal(validationErr)
	if err != nil {
		writeErrorWithSessionID(rw, http.StatusInternalServerError, messages.AssemblePayloadFailure, err,
			sessionID, nil)

		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusUnprocessableEntity)

	_, errWrite := rw.Write(responseBytes)
	if errWrite != nil {
		logger.Errorf(messages.AssemblePayloadFailure+messages.FailWriteResponse, sessionID, validationErr, errWrite)
	}
}

func writeError(rw http.ResponseWriter, statusCode int, message string, err error, receivedData []byte) {
	logger.Infof(message, err)
	logger.Debugf(messages.DebugLogEventWithReceivedData, fmt.Sprintf(message, err), receivedData)

	rw.WriteHeader(statusCode)

	_, errWrite := rw.Write([]byte(fmt.Sprintf(message, err)))
	if errWrite != nil {
		logger.Errorf(message+messages.FailWriteResponse, err, errWrite)
	}
}

func writeJSONResponse(rw http.ResponseWriter, v interface{}, sessionID string) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		logger.Errorf(messages.MarshalResponseFailure, err)
		rw.WriteHeader(http.StatusInternalServerError)

		return
	}

	if log.IsEnabledFor(logModuleName, log.DEBUG) {
		logger.Debugf(messages.DebugLogEvent,
			fmt.Sprintf("Responding to session %s with %s", sessionID, responseBytes))
	}

	rw.Header().Set("Content-Type", "application/json")

	_, errWrite := rw.Write(responseBytes)
	if errWrite != nil {
		logger.Errorf("Failed to send response for session %s."+messages.FailWriteResponse, sessionID, errWrite)
	}
}

func writeFileResponse(rw http.ResponseWriter, content []byte, contentType, fileName, sessionID string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Length", strconv.Itoa(len(content)))

	if fileName != "" {
		rw.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	}

	_, errWrite := rw.Write(content)
	if errWrite != nil {
		logger.Errorf("Failed to send file %s for session %s."+messages.FailWriteResponse, fileName, sessionID,
			errWrite)
	}
}

func writePutLogSpecRequestReadFailure(rw http.ResponseWriter, errBodyRead error) {
	logger.Errorf(messages.PutLogSpecFailReadRequestBody, errBodyRead)

	rw.WriteHeader(http.StatusInternalServerError)

	_, errWrite := rw.Write([]byte(fmt.Sprintf(messages.PutLogSpecFailReadRequestBody, errBodyRead)))
	if errWrite != nil {
		logger.Errorf(messages.PutLogSpecFailReadRequestBody+messages.FailWriteResponse, errBodyRead, errWrite)
	}
}

// Always logs the received data at the error level, since debug logging may not be enabled yet.
func writeInvalidLogSpec(rw http.ResponseWriter, err error, receivedData []byte) {
	logger.Errorf(messages.DebugLogEventWithReceivedData, fmt.Sprintf(messages.InvalidLogSpec, err), receivedData)

	rw.WriteHeader(http.StatusBadRequest)

	_, errWrite := rw.Write([]byte(fmt.Sprintf(messages.InvalidLogSpec, err)))
	if errWrite != nil {
		logger.Errorf(messages.DebugLogEventWithReceivedData,
			fmt.Sprintf(messages.InvalidLogSpec+messages.FailWriteResponse, err, errWrite), receivedData)
	}
}

func writePutLogSpecSuccess(rw io.Writer, requestBody []byte) {
	_, errWrite := rw.Write([]byte(messages.SetLogSpecSuccess))
	if errWrite != nil {
		logger.Errorf(messages.SetLogSpecSuccess+messages.FailWriteResponse, errWrite)
		logger.Debugf(messages.DebugLogEventWithReceivedData,
			fmt.Sprintf(messages.SetLogSpecSuccess+messages.FailWriteResponse, errWrite), requestBody)
	}
}

func writeGetLogSpecSuccess(rw io.Writer, logSpec string) {
	logger.Debugf(messages.DebugLogEvent, messages.GetLogSpecSuccess)

	_, errWrite := rw.Write([]byte(logSpec))
	if errWrite != nil {
		logger.Errorf(messages.GetLogSpecSuccess+messages.FailWriteResponse, errWrite)
	}
}
