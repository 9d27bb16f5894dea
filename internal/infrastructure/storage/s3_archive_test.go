package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/fiscalsync/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Unit Tests (no external dependencies)
// ============================================================================

func TestNewS3DocumentArchive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{Region: "eu-west-1"}, "bucket is required"},
		{"key without secret", &config.StorageConfig{Bucket: "b", AccessKeyID: "k"}, "must be set together"},
		{"secret without key", &config.StorageConfig{Bucket: "b", SecretAccessKey: "s"}, "must be set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3DocumentArchive(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		archive, err := NewS3DocumentArchive(&config.StorageConfig{
			Bucket:          "fiscal-docs",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			Endpoint:        "localhost:9000",
			UsePathStyle:    true,
		}, WithLogger(zap.NewNop()), WithPresignExpiration(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "fiscal-docs", archive.GetBucket())
		assert.Equal(t, time.Minute, archive.presignExpiration)
	})
}

func TestObjectKey(t *testing.T) {
	tenantID := uuid.MustParse("7d3e3c1a-4a0e-4a57-9a5e-1f1e6c7a9b01")

	key, err := objectKey("fiscal", tenantID, "FT-01P2026-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "fiscal/7d3e3c1a-4a0e-4a57-9a5e-1f1e6c7a9b01/FT-01P2026-1.pdf", key)

	key, err = objectKey("", tenantID, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "7d3e3c1a-4a0e-4a57-9a5e-1f1e6c7a9b01/a.pdf", key)

	for _, name := range []string{"", "../x.pdf", "a/b.pdf"} {
		_, err := objectKey("fiscal", tenantID, name)
		assert.Error(t, err, name)
	}
	_, err = objectKey("fiscal", uuid.Nil, "a.pdf")
	assert.Error(t, err)
}

func TestS3DocumentArchive_Save(t *testing.T) {
	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody = string(body)
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	archive, err := NewS3DocumentArchive(&config.StorageConfig{
		Bucket:          "fiscal-docs",
		Region:          "eu-west-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        server.URL,
		Prefix:          "/fiscal/",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	tenantID := uuid.New()
	key, err := archive.Save(context.Background(), tenantID, "FT-1.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "fiscal/"+tenantID.String()+"/FT-1.pdf", key)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/fiscal-docs/"+key, gotPath)
	assert.Equal(t, "application/pdf", gotType)
	assert.True(t, strings.Contains(gotBody, "%PDF-1.4"))
}

func TestS3DocumentArchive_SaveError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer server.Close()

	archive, err := NewS3DocumentArchive(&config.StorageConfig{
		Bucket:          "fiscal-docs",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        server.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	_, err = archive.Save(context.Background(), uuid.New(), "FT-1.pdf", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload document")
}

func TestS3DocumentArchive_DownloadURL(t *testing.T) {
	archive, err := NewS3DocumentArchive(&config.StorageConfig{
		Bucket:          "fiscal-docs",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	url, expires, err := archive.DownloadURL(context.Background(), "fiscal/t/a.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "localhost:9000/fiscal-docs/fiscal/t/a.pdf")
	assert.Contains(t, url, "X-Amz-Signature")
	assert.True(t, expires.After(time.Now()))

	_, _, err = archive.DownloadURL(context.Background(), "")
	assert.Error(t, err)
}

func TestMemoryDocumentArchive(t *testing.T) {
	archive := NewMemoryDocumentArchive("fiscal")
	tenantID := uuid.New()

	key, err := archive.Save(context.Background(), tenantID, "a.pdf", []byte("pdf"))
	require.NoError(t, err)

	content, ok := archive.Get(key)
	require.True(t, ok)
	assert.Equal(t, "pdf", string(content))

	_, err = archive.Save(context.Background(), tenantID, "../a.pdf", []byte("pdf"))
	assert.Error(t, err)
}

func TestNewDocumentArchive(t *testing.T) {
	archive, err := NewDocumentArchive(context.Background(), &config.StorageConfig{Backend: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryDocumentArchive{}, archive)

	_, err = NewDocumentArchive(context.Background(), &config.StorageConfig{Backend: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
