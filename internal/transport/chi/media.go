package chi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/logger"
	mediauc "github.com/pathwise-edu/pathwise/internal/usecase/media"
)

// ExportPDF handles GET /api/text/export/pdf?id=.
func (s *Server) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	downloadURL, err := mediauc.ExportURL(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	msg := "Redirigiendo a OpenLibrary PDF"
	if strings.Contains(id, "arxiv.org") {
		msg = "Redirigiendo a arXiv PDF"
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Success:     true,
		DownloadURL: downloadURL,
		Message:     msg,
	})
}

// StreamPDF handles GET /api/text/stream-pdf?url=.
func (s *Server) StreamPDF(w http.ResponseWriter, r *http.Request) {
	data, fromCache, err := s.media.PDF(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if fromCache {
		cacheStatus = "HIT"
	}
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", `inline; filename="document.pdf"`)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// StreamVideo handles GET /api/videos/stream?url=. The upstream body is
// copied through without buffering.
func (s *Server) StreamVideo(w http.ResponseWriter, r *http.Request) {
	stream, err := s.media.OpenVideo(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer stream.Body.Close()

	h := w.Header()
	h.Set("Content-Type", stream.ContentType)
	if stream.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(stream.ContentLength, 10))
	}
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, stream.Body); err != nil && !errors.Is(err, r.Context().Err()) {
		logger.FromContextOr(r.Context(), s.logger).Warn("video stream interrupted", zap.Error(err))
	}
}
