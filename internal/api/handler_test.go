package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engineer-search/internal/search"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &search.ValidationError{Issues: []search.ValidationIssue{
		{Field: "limit", Message: "must be positive"},
	}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "validation_failed", body["error"])
	require.Len(t, body["issues"], 1)
}

func TestWriteErrorNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &search.NotFoundError{Code: "engineer_not_found", ID: "eng_42"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "engineer_not_found", body["error"])
	assert.Equal(t, "eng_42", body["id"])
}

func TestWriteErrorSearchErrorCarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &search.SearchError{Err: errors.New("Neo.ClientError.Statement.SyntaxError: oops")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "SEARCH_ERROR", body["error"])
	assert.Equal(t, "Neo.ClientError.Statement.SyntaxError: oops", body["details"])
}

func TestWriteErrorSearchErrorUnwrapsThroughChain(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("advisor conflict search: %w",
		&search.SearchError{Err: errors.New("connection reset")})
	writeError(rec, wrapped)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "SEARCH_ERROR", body["error"])
	assert.Equal(t, "connection reset", body["details"])
}

func TestWriteErrorUnknownStaysOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("something private"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body, "details")
}

func TestDBHealthHandler(t *testing.T) {
	healthy := dbHealthHandler(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy(rec, httptest.NewRequest(http.MethodGet, "/db-health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeResponse(t, rec)["status"])

	down := dbHealthHandler(func(context.Context) error { return errors.New("no route to host") })
	rec = httptest.NewRecorder()
	down(rec, httptest.NewRequest(http.MethodGet, "/db-health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unreachable", decodeResponse(t, rec)["status"])
}
