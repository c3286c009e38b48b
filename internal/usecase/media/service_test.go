package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl = ttl
	return true
}

func TestPDF_DownloadsThenCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 test"))
	}))
	defer srv.Close()

	cache := newMemCache()
	svc := New(Config{}, cache, zap.NewNop())
	u := srv.URL + "/doc.pdf"

	data, fromCache, err := svc.PDF(context.Background(), u)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "%PDF-1.4 test", string(data))
	assert.Equal(t, DefaultPDFTTL, cache.ttl)
	assert.Contains(t, cache.data, pdfKey(u))

	data, fromCache, err = svc.PDF(context.Background(), u)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "%PDF-1.4 test", string(data))
	assert.Equal(t, int32(1), hits.Load(), "second call must be served from cache")
}

func TestPDF_NilCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pdf"))
	}))
	defer srv.Close()

	svc := New(Config{}, nil, zap.NewNop())
	data, _, err := svc.PDF(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
}

func TestPDF_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	cache := newMemCache()
	svc := New(Config{MaxPDFBytes: 10}, cache, zap.NewNop())
	_, _, err := svc.PDF(context.Background(), srv.URL)
	require.ErrorIs(t, err, domain.ErrProviderError)
	assert.Empty(t, cache.data)
}

func TestPDF_UpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := New(Config{}, nil, zap.NewNop())

	_, _, err := svc.PDF(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.PDF(context.Background(), srv.URL+"/broken")
	assert.ErrorIs(t, err, domain.ErrProviderError)
}

func TestPDF_RejectsBadURLs(t *testing.T) {
	svc := New(Config{}, nil, zap.NewNop())
	for _, u := range []string{"", "ftp://example.com/a.pdf", "/relative.pdf", "file:///etc/passwd", "http://"} {
		_, _, err := svc.PDF(context.Background(), u)
		assert.ErrorIs(t, err, domain.ErrValidation, "url %q", u)
	}
}

func TestOpenVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/webm")
		w.Header().Set("Content-Length", "5")
		w.Write([]byte("frame"))
	}))
	defer srv.Close()

	svc := New(Config{}, nil, zap.NewNop())
	st, err := svc.OpenVideo(context.Background(), srv.URL+"/v.webm")
	require.NoError(t, err)
	defer st.Body.Close()

	assert.Equal(t, "video/webm", st.ContentType)
	assert.Equal(t, int64(5), st.ContentLength)
	body, err := io.ReadAll(st.Body)
	require.NoError(t, err)
	assert.Equal(t, "frame", string(body))
}

func TestOpenVideo_DefaultContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte{0, 0, 0})
	}))
	defer srv.Close()

	svc := New(Config{HTTPClient: srv.Client()}, nil, zap.NewNop())
	st, err := svc.OpenVideo(context.Background(), srv.URL)
	require.NoError(t, err)
	defer st.Body.Close()
	assert.Equal(t, defaultVideoType, st.ContentType)
}

func TestOpenVideo_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc := New(Config{}, nil, zap.NewNop())
	_, err := svc.OpenVideo(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrProviderError)

	_, err = svc.OpenVideo(context.Background(), "javascript:alert(1)")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"https://openlibrary.org/works/OL45883W/read", "https://openlibrary.org/works/OL45883W.pdf"},
		{"https://openlibrary.org/works/OL45883W", "https://openlibrary.org/works/OL45883W.pdf"},
		{"http://arxiv.org/abs/2301.00001v2", "https://arxiv.org/pdf/2301.00001v2.pdf"},
	}
	for _, tt := range tests {
		got, err := ExportURL(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, got)
	}

	for _, id := range []string{"", "  ", "https://example.com/doc", "https://arxiv.org/abs/"} {
		_, err := ExportURL(id)
		assert.True(t, errors.Is(err, domain.ErrValidation), "id %q: %v", id, err)
	}
}
