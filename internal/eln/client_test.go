package eln

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betlab/internal/shared/testutil"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger, _ := testutil.NewTestLogger(t)
	return NewClient(Config{
		BaseURL:   srv.URL,
		Token:     "apiKey-test",
		VerifySSL: true,
	}, logger)
}

func TestConfigured(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	assert.False(t, NewClient(Config{}, logger).Configured())
	assert.False(t, NewClient(Config{BaseURL: "https://eln"}, logger).Configured())
	assert.True(t, NewClient(Config{BaseURL: "https://eln", Token: "k"}, logger).Configured())
}

func TestCreateExperiment(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/experiments", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Location", srvURL(r)+"/experiments/17")
		w.WriteHeader(http.StatusCreated)
	}))

	id, err := c.CreateExperiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "17", id)
	assert.Equal(t, "apiKey-test", gotAuth)
}

func TestCreateExperimentUnconfigured(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	c := NewClient(Config{}, logger)

	_, err := c.CreateExperiment(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateExperimentMissingLocation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	_, err := c.CreateExperiment(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location")
}

func TestUpdateExperiment(t *testing.T) {
	var patched map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/experiments/17", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &patched))
		w.WriteHeader(http.StatusOK)
	}))

	err := c.UpdateExperiment(context.Background(), "17", "BET Measurement", "<h1>Report</h1>")
	require.NoError(t, err)
	assert.Equal(t, "BET Measurement", patched["title"])
	assert.Equal(t, "<h1>Report</h1>", patched["body"])
}

func TestAttachFileMultipart(t *testing.T) {
	var fileName, partType string
	var fileData []byte
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/experiments/17/uploads", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		fileName = header.Filename
		partType = header.Header.Get("Content-Type")
		fileData, err = io.ReadAll(f)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.AttachFile(context.Background(), "17", "BET_Plot_17.pdf", "application/pdf", []byte("%PDF fake"))
	require.NoError(t, err)
	assert.Equal(t, "BET_Plot_17.pdf", fileName)
	assert.Equal(t, "application/pdf", partType)
	assert.Equal(t, []byte("%PDF fake"), fileData)
}

func TestSetTag(t *testing.T) {
	var tagged map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/experiments/17/tags", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &tagged))
		w.WriteHeader(http.StatusCreated)
	}))

	require.NoError(t, c.SetTag(context.Background(), "17", "BET_result"))
	assert.Equal(t, "BET_result", tagged["tag"])
}

func TestErrorStatusSurfaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.SetTag(context.Background(), "17", "BET_result")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestExperimentURL(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	c := NewClient(Config{BaseURL: "https://eln.example.org/api/v2/", Token: "k"}, logger)
	assert.Equal(t, "https://eln.example.org/api/v2/experiments/17", c.ExperimentURL("17"))
}

// srvURL reconstructs the origin for Location headers relative to the test
// server.
func srvURL(r *http.Request) string {
	return "http://" + r.Host
}
