package pathwise

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
	scholarshipuc "github.com/pathwise-edu/pathwise/internal/usecase/scholarship"
)

// MatchScholarships scores the catalog against the profile. Advice is
// best-effort and empty when AI is not configured.
func (c *Client) MatchScholarships(ctx context.Context, p Profile) (_ ScholarshipResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("match_scholarships", start, err) }()

	res, err := c.scholarships.Search(ctx, profileToDomain(p))
	if err != nil {
		return ScholarshipResult{}, fmt.Errorf("match scholarships: %w", err)
	}
	return resultFromDomain(res), nil
}

// RecommendScholarships is MatchScholarships with mandatory AI advice.
// It fails with ErrNotConfigured when no generator is set.
func (c *Client) RecommendScholarships(ctx context.Context, p Profile) (_ ScholarshipResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend_scholarships", start, err) }()

	res, err := c.scholarships.Recommend(ctx, profileToDomain(p))
	if err != nil {
		return ScholarshipResult{}, fmt.Errorf("recommend scholarships: %w", err)
	}
	return resultFromDomain(res), nil
}

// Scholarships returns the whole catalog in catalog order.
func (c *Client) Scholarships() []Scholarship {
	records := c.scholarships.List()
	out := make([]Scholarship, len(records))
	for i, r := range records {
		out[i] = scholarshipFromDomain(r)
	}
	return out
}

// Scholarship returns one catalog entry or ErrNotFound.
func (c *Client) Scholarship(id string) (Scholarship, error) {
	r, err := c.scholarships.Get(id)
	if err != nil {
		return Scholarship{}, fmt.Errorf("scholarship %q: %w", id, err)
	}
	return scholarshipFromDomain(r), nil
}

func profileToDomain(p Profile) scholarship.Profile {
	return scholarship.Profile{
		Name:           p.Name,
		Level:          p.Level,
		Average:        p.Average,
		EconomicStatus: p.EconomicStatus,
		Location:       p.Location,
		FieldOfStudy:   p.FieldOfStudy,
		Description:    p.Description,
	}
}

func resultFromDomain(res scholarshipuc.Result) ScholarshipResult {
	matches := make([]ScholarshipMatch, len(res.Matches))
	for i, m := range res.Matches {
		matches[i] = ScholarshipMatch{
			Scholarship: scholarshipFromDomain(m.Record),
			Score:       m.Score,
			Reasons:     m.Reasons,
		}
	}
	return ScholarshipResult{Matches: matches, Advice: res.Advice}
}

func scholarshipFromDomain(r scholarship.Record) Scholarship {
	return Scholarship{
		ID:           r.ID,
		Title:        r.Title,
		Institution:  r.Institution,
		Levels:       r.Levels,
		Description:  r.Description,
		Amount:       r.Amount,
		Requirements: r.Requirements,
		Deadline:     r.Deadline,
		URL:          r.URL,
		Tags:         r.Tags,
	}
}
