/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package support

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPHandler(t *testing.T) {
	path := "/sessions"
	method := http.MethodPost

	handled := false

	handler := NewHTTPHandler(path, method, func(rw http.ResponseWriter, req *http.Request) {
		handled = true
	})
	require.Equal(t, path, handler.Path())
	require.Equal(t, method, handler.Method())
	require.NotNil(t, handler.Handle())

	handler.Handle()(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	require.True(t, handled)
}
