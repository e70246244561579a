package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteOK(w, map[string]bool{"allowed": true})
	require.NoError(t, err)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body["allowed"])
}

func TestWriteForbidden(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteForbidden(w, "request denied", map[string]interface{}{
		"deny_reasons": []string{"over limit"},
	})
	require.NoError(t, err)

	assert.Equal(t, 403, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body.Error)
	assert.Equal(t, "request denied", body.Message)
	assert.Contains(t, body.Details, "deny_reasons")
}

func TestWriteErrorDefaults(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteUnauthorized(w, ""))
	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")

	w = httptest.NewRecorder()
	require.NoError(t, WriteNotFound(w, ""))
	assert.Equal(t, 404, w.Code)

	w = httptest.NewRecorder()
	require.NoError(t, WriteInternalServerError(w, ""))
	assert.Equal(t, 500, w.Code)
}
