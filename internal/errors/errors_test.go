package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusUnprocessableEntity, "SHEET_NOT_FOUND", "missing sheet")

	assert.Equal(t, "missing sheet", err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "SHEET_NOT_FOUND", err.ErrorCode)
}

func TestPredefinedStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, ErrSheetNotFound.StatusCode)
	assert.Equal(t, http.StatusUnprocessableEntity, ErrInsufficientData.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, ErrRenderFailed.StatusCode)
	assert.Equal(t, http.StatusNotFound, ErrRecordNotFound.StatusCode)
	assert.Equal(t, http.StatusBadGateway, ErrELNUnavailable.StatusCode)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ErrUploadTooLarge.StatusCode)
}

func TestSheetNotFoundError(t *testing.T) {
	err := SheetNotFoundError("BET")

	assert.Equal(t, "SHEET_NOT_FOUND", err.ErrorCode)
	assert.Contains(t, err.Message, `"BET"`)
	assert.Equal(t, "BET", err.Details)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, RecordNotFoundError(42))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "RECORD_NOT_FOUND", resp.Error.ErrorCode)
}

func TestAppError(t *testing.T) {
	cause := New(http.StatusInternalServerError, "X", "boom")
	err := NewExtractionError("cell coercion failed", cause)

	assert.Contains(t, err.Error(), "EXTRACTION")
	assert.Contains(t, err.Error(), "cell coercion failed")
	assert.Equal(t, cause, err.Unwrap())

	err.WithContext("cell", "C12")
	assert.Equal(t, "C12", err.Context["cell"])
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := NewNotFoundError("measurement")
	assert.Equal(t, "[NOT_FOUND] measurement not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(422, TypeInsufficientData, "Unprocessable Entity", "only one valid pair", "/api/bet/files/3/report").
		WithExtension("error_code", "INSUFFICIENT_DATA")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeInsufficientData, decoded["type"])
	assert.Equal(t, "INSUFFICIENT_DATA", decoded["error_code"])
	assert.Equal(t, float64(422), decoded["status"])
}
