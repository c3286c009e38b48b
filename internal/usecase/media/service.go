// Package media proxies documents and videos from upstream sources so the
// frontend can embed them from a single origin.
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// Defaults for Config fields left at zero.
const (
	DefaultPDFTTL      = 24 * time.Hour
	DefaultMaxPDFBytes = 50 << 20
	DefaultTimeout     = 30 * time.Second
	defaultVideoType   = "video/mp4"
)

// Config tunes the proxies.
type Config struct {
	PDFTTL      time.Duration
	MaxPDFBytes int64
	Timeout     time.Duration // whole PDF download; time to first byte for video
	HTTPClient  *http.Client  // optional, replaces both clients (tests)
}

// Stream is an open upstream video body. The caller closes Body.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// Service downloads PDFs (with caching) and opens video streams.
type Service struct {
	pdfClient   *http.Client
	videoClient *http.Client
	cache       Cache
	ttl         time.Duration
	maxPDFBytes int64
	logger      *zap.Logger
}

// New creates a media service. cache may be nil.
func New(cfg Config, cache Cache, logger *zap.Logger) *Service {
	if cfg.PDFTTL <= 0 {
		cfg.PDFTTL = DefaultPDFTTL
	}
	if cfg.MaxPDFBytes <= 0 {
		cfg.MaxPDFBytes = DefaultMaxPDFBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	pdfClient := httputil.NewClient(cfg.Timeout)
	// no overall timeout: a video body may legitimately take minutes
	videoClient := &http.Client{Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: cfg.Timeout,
	}}
	if cfg.HTTPClient != nil {
		pdfClient, videoClient = cfg.HTTPClient, cfg.HTTPClient
	}

	return &Service{
		pdfClient:   pdfClient,
		videoClient: videoClient,
		cache:       cache,
		ttl:         cfg.PDFTTL,
		maxPDFBytes: cfg.MaxPDFBytes,
		logger:      logger,
	}
}

// PDF returns the document at rawURL, from cache when possible.
// fromCache reports whether the upstream was skipped.
func (s *Service) PDF(ctx context.Context, rawURL string) (data []byte, fromCache bool, err error) {
	if err := validateURL(rawURL); err != nil {
		return nil, false, err
	}

	key := pdfKey(rawURL)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			return data, true, nil
		}
	}

	resp, err := httputil.Get(ctx, s.pdfClient, "pdf", rawURL, nil)
	if err != nil {
		return nil, false, upstreamError(err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > s.maxPDFBytes {
		return nil, false, fmt.Errorf("pdf is %d bytes, limit %d: %w", resp.ContentLength, s.maxPDFBytes, domain.ErrProviderError)
	}
	data, err = io.ReadAll(io.LimitReader(resp.Body, s.maxPDFBytes+1))
	if err != nil {
		return nil, false, upstreamError(err)
	}
	if int64(len(data)) > s.maxPDFBytes {
		return nil, false, fmt.Errorf("pdf exceeds %d bytes: %w", s.maxPDFBytes, domain.ErrProviderError)
	}

	if s.cache != nil && len(data) > 0 {
		s.cache.Set(ctx, key, data, s.ttl)
	}
	s.logger.Debug("PDF downloaded", zap.String("host", hostOf(rawURL)), zap.Int("bytes", len(data)))
	return data, false, nil
}

// OpenVideo opens the upstream video for pass-through streaming. No range support.
func (s *Service) OpenVideo(ctx context.Context, rawURL string) (*Stream, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	resp, err := httputil.Get(ctx, s.videoClient, "video", rawURL, nil)
	if err != nil {
		return nil, upstreamError(err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultVideoType
	}
	return &Stream{Body: resp.Body, ContentType: ct, ContentLength: resp.ContentLength}, nil
}

// ExportURL maps a text resource identifier to a direct PDF download URL.
// Only OpenLibrary and arXiv resources can be exported.
func ExportURL(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", domain.NewValidation("id parameter required")
	case strings.Contains(id, "openlibrary.org"):
		return strings.ReplaceAll(id, "/read", "") + ".pdf", nil
	case strings.Contains(id, "arxiv.org"):
		last := id[strings.LastIndex(id, "/")+1:]
		if last == "" {
			return "", domain.NewValidation("arXiv id has no identifier segment")
		}
		return "https://arxiv.org/pdf/" + last + ".pdf", nil
	}
	return "", domain.NewValidation("resource type not supported for export")
}

func pdfKey(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return "pdf:" + hex.EncodeToString(h[:])
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return domain.NewValidation("url parameter required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.NewValidation("url must be an absolute http(s) URL")
	}
	return nil
}

func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var se *httputil.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("upstream: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("upstream: %w: %w", err, domain.ErrProviderError)
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Host
	}
	return ""
}
