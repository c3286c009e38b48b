package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
)

const topRecommendations = 3

// SearchScholarships handles POST /api/scholarships/search.
func (s *Server) SearchScholarships(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.scholarships.Search(r.Context(), req.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scholarshipSearchResponse{
		Success: true,
		Profile: profileEcho{
			Nombre:    res.Profile.Name,
			Nivel:     res.Profile.Level,
			Ubicacion: res.Profile.Location,
		},
		Scholarships:     matchesToDTO(res.Matches, 0),
		Total:            len(res.Matches),
		AIRecommendation: res.Advice,
	})
}

// RecommendScholarships handles POST /api/scholarships/recommend.
func (s *Server) RecommendScholarships(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.scholarships.Recommend(r.Context(), req.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Success:         true,
		Recommendation:  res.Advice,
		TopScholarships: matchesToDTO(res.Matches, topRecommendations),
	})
}

// ListScholarships handles GET /api/scholarships/all.
func (s *Server) ListScholarships(w http.ResponseWriter, _ *http.Request) {
	all := s.scholarships.List()
	if all == nil {
		all = []scholarship.Record{}
	}
	writeJSON(w, http.StatusOK, scholarshipListResponse{
		Success:      true,
		Scholarships: all,
		Total:        len(all),
	})
}

// GetScholarship handles GET /api/scholarships/{id}.
func (s *Server) GetScholarship(w http.ResponseWriter, r *http.Request) {
	rec, err := s.scholarships.Get(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Scholarship not found")
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scholarshipResponse{Success: true, Scholarship: rec})
}
