package pathwise

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/query"
)

// SearchText queries the book, paper and PDF catalogs.
func (c *Client) SearchText(ctx context.Context, q Query) (SearchResult, error) {
	return c.search(ctx, "search_text", c.text, q)
}

// SearchVideos queries the video catalogs. Without WithYouTube, WithVimeo
// or WithVideoProvider the result is always empty.
func (c *Client) SearchVideos(ctx context.Context, q Query) (SearchResult, error) {
	return c.search(ctx, "search_videos", c.videos, q)
}

func (c *Client) search(ctx context.Context, op string, svc searchUseCase, q Query) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	dq, err := query.New(q.Subject, q.Topic, q.Language, q.GradeLevel, q.MaxResults)
	if err != nil {
		return SearchResult{}, domain.NewValidation(err.Error())
	}

	res, err := svc.Search(ctx, dq)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	items := res.Items
	if items == nil {
		items = []Resource{}
	}
	return SearchResult{Items: items, FromCache: res.FromCache}, nil
}
