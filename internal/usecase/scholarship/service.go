package scholarship

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
)

// Profile defaults for optional fields.
const (
	DefaultName     = "Estudiante"
	DefaultLocation = "México"
)

// NoMatchAdvice is returned by Recommend instead of calling the model when nothing matched.
const NoMatchAdvice = "No se encontraron becas compatibles con tu perfil. Te recomendamos ampliar tu " +
	"búsqueda o consultar con tu escuela sobre oportunidades locales."

// Result is a scored search with optional AI advice.
type Result struct {
	Profile scholarship.Profile // normalized input
	Matches []scholarship.Match
	Advice  string // empty when no advice was produced
}

// Service matches student profiles against the scholarship catalog.
type Service struct {
	catalog Catalog
	advisor Advisor
	logger  *zap.Logger
}

// New creates a scholarship service. advisor may be nil.
func New(catalog Catalog, advisor Advisor, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, advisor: advisor, logger: logger}
}

// Search scores the catalog for the profile. When an advisor is configured and
// something matched, advice is attached on a best-effort basis.
func (s *Service) Search(ctx context.Context, p scholarship.Profile) (Result, error) {
	p, err := normalizeProfile(p)
	if err != nil {
		return Result{}, err
	}

	matches := scholarship.MatchAll(p, s.catalog.All())
	res := Result{Profile: p, Matches: matches}

	if len(matches) > 0 && s.advisorEnabled() {
		advice, err := s.advisor.ScholarshipAdvice(ctx, p, matches)
		if err != nil {
			s.logger.Warn("Scholarship advice failed", zap.String("level", p.Level), zap.Error(err))
		} else {
			res.Advice = advice
		}
	}

	s.logger.Info("Scholarship search",
		zap.String("level", p.Level),
		zap.Int("catalog", len(s.catalog.All())),
		zap.Int("matches", len(matches)),
		zap.Bool("advice", res.Advice != ""),
	)
	return res, nil
}

// Recommend always produces AI advice. Fails with domain.ErrNotConfigured without an advisor.
func (s *Service) Recommend(ctx context.Context, p scholarship.Profile) (Result, error) {
	if !s.advisorEnabled() {
		return Result{}, fmt.Errorf("scholarship advice: %w", domain.ErrNotConfigured)
	}
	p, err := normalizeProfile(p)
	if err != nil {
		return Result{}, err
	}

	matches := scholarship.MatchAll(p, s.catalog.All())
	if len(matches) == 0 {
		return Result{Profile: p, Matches: matches, Advice: NoMatchAdvice}, nil
	}
	advice, err := s.advisor.ScholarshipAdvice(ctx, p, matches)
	if err != nil {
		return Result{}, fmt.Errorf("scholarship advice: %w", err)
	}
	return Result{Profile: p, Matches: matches, Advice: advice}, nil
}

// List returns the whole catalog in catalog order.
func (s *Service) List() []scholarship.Record {
	return s.catalog.All()
}

// Get returns a catalog record by id.
func (s *Service) Get(id string) (scholarship.Record, error) {
	r, ok := s.catalog.Get(strings.TrimSpace(id))
	if !ok {
		return scholarship.Record{}, fmt.Errorf("scholarship %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *Service) advisorEnabled() bool {
	return s.advisor != nil && s.advisor.Enabled()
}

func normalizeProfile(p scholarship.Profile) (scholarship.Profile, error) {
	p.Level = strings.ToLower(strings.TrimSpace(p.Level))
	if p.Level == "" {
		return p, domain.NewValidation("nivel_educativo is required")
	}
	if p.Average != nil && (*p.Average < 0 || *p.Average > 10) {
		return p, domain.NewValidation("promedio must be between 0 and 10")
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = DefaultName
	}
	if strings.TrimSpace(p.Location) == "" {
		p.Location = DefaultLocation
	}
	p.EconomicStatus = strings.ToLower(strings.TrimSpace(p.EconomicStatus))
	p.FieldOfStudy = strings.ToLower(strings.TrimSpace(p.FieldOfStudy))
	return p, nil
}
