package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOK_EnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()

	OK(rec, map[string]string{"id": "1"}, "done")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, map[string]any{"id": "1"}, body["data"])
}

func TestOK_NilDataOmitted(t *testing.T) {
	rec := httptest.NewRecorder()

	OK(rec, nil, "nothing here")

	body := decode(t, rec)
	_, present := body["data"]
	assert.False(t, present)
}

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusNotFound, "not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not found", body["message"])
}

func TestPage_EmptySliceStaysArray(t *testing.T) {
	rec := httptest.NewRecorder()

	Page(rec, []string{}, Pagination{Total: 0, Page: 1, Limit: 10, Pages: 0})

	body := decode(t, rec)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Empty(t, data)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, 1.0, pagination["page"])
}
