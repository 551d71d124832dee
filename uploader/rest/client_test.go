package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/memosync/core"
	"github.com/poiesic/memosync/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *core.MemoryRecord {
	return &core.MemoryRecord{
		Id:          42,
		Title:       "Groceries",
		Content:     "buy milk",
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		ContentHash: core.ContentHash("buy milk"),
		SyncKey:     "7d0e5a3c-2f1b-4d8e-9a6c-1b2c3d4e5f60",
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/memories"},
		{"unsupported scheme", "ftp://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.url)
			assert.Error(t, err)
		})
	}

	_, err := NewClient("")
	assert.ErrorIs(t, err, uploader.ErrServerURLRequired)
}

func TestNewClient_InvalidTimeout(t *testing.T) {
	_, err := NewClient("http://localhost:5000", WithTimeout(0))
	assert.Error(t, err)
}

func TestUpload_Success(t *testing.T) {
	var gotPath, gotMethod string
	var gotHeaders http.Header
	var gotBody memoryPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":981,"title":"Groceries"},"message":"Memory created successfully"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", WithToken("secret"))
	require.NoError(t, err)

	rec := testRecord()
	receipt, err := client.Upload(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "981", receipt.RemoteID)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/memories", gotPath)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, rec.SyncKey, gotHeaders.Get("Idempotency-Key"))
	assert.Equal(t, "Bearer secret", gotHeaders.Get("Authorization"))

	assert.Equal(t, "Groceries", gotBody.Title)
	assert.Equal(t, "buy milk", gotBody.Content)
	assert.Equal(t, rec.ContentHash, gotBody.ContentHash)
	assert.Equal(t, "2025-03-01T09:00:00Z", gotBody.CreatedAt)
	assert.Equal(t, "42", gotBody.ClientID)
}

func TestUpload_StringID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"id":"mem_abc"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	receipt, err := client.Upload(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, "mem_abc", receipt.RemoteID)
}

func TestUpload_NoAuthorizationWithoutToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	receipt, err := client.Upload(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Empty(t, receipt.RemoteID)
	assert.Empty(t, auth)
}

func TestUpload_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
		code      string
	}{
		{
			name:      "validation error",
			status:    http.StatusUnprocessableEntity,
			body:      `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"content is required","details":{}}}`,
			permanent: true,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "unauthorized",
			status:    http.StatusUnauthorized,
			body:      ``,
			permanent: true,
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			body:      `{"success":false,"error":{"code":"DATABASE_ERROR","message":"locked"}}`,
			permanent: false,
			code:      "DATABASE_ERROR",
		},
		{
			name:      "unavailable",
			status:    http.StatusServiceUnavailable,
			body:      `<html>bad gateway</html>`,
			permanent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL)
			require.NoError(t, err)

			_, err = client.Upload(context.Background(), testRecord())
			require.Error(t, err)

			var se *uploader.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.permanent, uploader.IsPermanent(err))
		})
	}
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), testRecord())
	require.Error(t, err)
	assert.False(t, uploader.IsPermanent(err))
}

func TestUpload_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Upload(ctx, testRecord())
	assert.ErrorIs(t, err, context.Canceled)
}
