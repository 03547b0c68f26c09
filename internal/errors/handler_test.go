package errors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblemAPIError(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name       string
		err        *APIError
		wantType   string
		wantStatus int
	}{
		{"sheet not found", SheetNotFoundError("BET"), TypeSheetNotFound, http.StatusUnprocessableEntity},
		{"insufficient data", InsufficientDataError(errors.New("1 pair")), TypeInsufficientData, http.StatusUnprocessableEntity},
		{"render failed", RenderFailedError(errors.New("no points")), TypeRenderFailed, http.StatusInternalServerError},
		{"record not found", RecordNotFoundError(7), TypeRecordNotFound, http.StatusNotFound},
		{"eln down", ELNError(errors.New("dial tcp")), TypeELNUnavailable, http.StatusBadGateway},
		{"upload too large", ErrUploadTooLarge, TypePayloadTooLarge, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/bet/files/7/report", nil)
			problem := h.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.err.ErrorCode, problem.Extensions["error_code"])
		})
	}
}

func TestErrorToProblemAppError(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name       string
		err        *AppError
		wantType   string
		wantStatus int
		wantCode   string
	}{
		{"extraction", NewExtractionError("extract a.xlsx", errors.New("zip: not a valid zip file")), TypeValidation, http.StatusUnprocessableEntity, "EXTRACTION_FAILED"},
		{"render", NewRenderError("render plot for record 3", errors.New("png encode")), TypeRenderFailed, http.StatusInternalServerError, "RENDER_FAILED"},
		{"eln", NewELNError("create experiment", errors.New("dial tcp")), TypeELNUnavailable, http.StatusBadGateway, "ELN_UNAVAILABLE"},
		{"storage", NewStorageError("persist record", errors.New("database locked")), TypeInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/bet/upload", nil)
			problem := h.ErrorToProblem(tt.err, r)

			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantCode, problem.Extensions["error_code"])
			// The client never sees the underlying cause.
			assert.NotContains(t, problem.Detail, tt.err.Cause.Error())
		})
	}
}

func TestErrorToProblemContextCancelled(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/bet/files", nil)

	problem := h.ErrorToProblem(context.DeadlineExceeded, r)
	assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
	assert.Equal(t, TypeTimeout, problem.Type)
}

func TestErrorToProblemGeneric(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/bet/files", nil)

	problem := h.ErrorToProblem(errors.New("disk exploded"), r)
	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	assert.Equal(t, TypeInternal, problem.Type)
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/bet/upload", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, SheetNotFoundError("BET"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, TypeSheetNotFound, decoded["type"])
	assert.Equal(t, "SHEET_NOT_FOUND", decoded["error_code"])
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := newTestHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/bet/files", nil)
	w := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNotFoundHandler(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	h.NotFound(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
