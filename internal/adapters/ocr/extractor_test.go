package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ReadsFieldsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "image/png", req.MimeType)
		assert.Equal(t, "cmVjZWlwdA==", req.Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":{"totalAmount":5400,"vendor":{"name":"ACME"},"date":"2026-04-01","extra":"ignored"}}`))
	}))
	defer srv.Close()

	fields, err := New(Config{Endpoint: srv.URL}).Extract(context.Background(), []byte("receipt"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, float64(5400), fields["total_amount"])
	assert.Equal(t, "ACME", fields["vendor"])
	assert.Equal(t, "2026-04-01", fields["date"])
	assert.NotContains(t, fields, "extra")
}

func TestExtract_RootLevelFieldsAndNonScalars(t *testing.T) {
	fields := parseFields([]byte(`{"total_amount":"1,200","description":{"nested":true},"summary":"会議費"}`))

	assert.Equal(t, "1,200", fields["total_amount"])
	assert.Equal(t, "会議費", fields["description"])
}

func TestExtract_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported document", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL}).Extract(context.Background(), []byte("x"), "application/pdf")
	assert.ErrorContains(t, err, "422")
}

func TestExtract_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := New(Config{Endpoint: srv.URL}).Extract(context.Background(), []byte("x"), "application/pdf")
	assert.Error(t, err)
}
