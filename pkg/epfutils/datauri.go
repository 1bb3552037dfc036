/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epfutils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataURIScheme = "data:"
	base64Marker  = ";base64"
)

// ErrNotDataURI is returned when a string is not a base64 data URI.
var ErrNotDataURI = errors.New("value is not a base64 data URI")

// EncodeDataURI returns data as a data:<mimeType>;base64,<payload> URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return dataURIScheme + mimeType + base64Marker + "," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI splits a base64 data URI into its MIME type and decoded bytes.
// The MIME type is empty if the header does not name one.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataURIScheme) {
		return "", nil, ErrNotDataURI
	}

	header, payload, found := strings.Cut(strings.TrimPrefix(uri, dataURIScheme), ",")
	if !found || !strings.HasSuffix(header, base64Marker) {
		return "", nil, ErrNotDataURI
	}

	mimeType := strings.TrimSuffix(header, base64Marker)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}

	return mimeType, data, nil
}
