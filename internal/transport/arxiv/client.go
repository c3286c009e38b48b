// Package arxiv queries the arXiv paper catalog through its Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultBaseURL is the arXiv query endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

const maxSummaryRunes = 500

// Config holds client settings. Empty fields take defaults.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client searches arXiv papers. arXiv carries no language metadata, so the
// language argument is ignored and every entry is accepted.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates an arXiv client.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: cfg.BaseURL}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Links   []link `xml:"link"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// Fetch returns up to maxResults papers sorted by relevance.
func (c *Client) Fetch(ctx context.Context, topic, _ string, maxResults int) ([]resource.Item, error) {
	params := url.Values{
		"search_query": {"all:" + topic},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	resp, err := httputil.Get(ctx, c.http, "arxiv", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing arxiv response: %w", err)
	}

	items := make([]resource.Item, 0, len(f.Entries))
	for _, e := range f.Entries {
		if len(items) >= maxResults {
			break
		}
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		items = append(items, toItem(e, id))
	}
	return items, nil
}

func toItem(e entry, id string) resource.Item {
	summary := strings.Join(strings.Fields(e.Summary), " ")
	title := resource.Title(e.Title)
	pdf := pdfLink(e.Links)

	pdfLine := pdf
	if pdfLine == "" {
		pdfLine = "No disponible"
	}

	return resource.Item{
		Source:      resource.SourceArxiv,
		Kind:        resource.KindPaper,
		ID:          lastSegment(id),
		Title:       title,
		URL:         id,
		Description: truncate(summary, maxSummaryRunes),
		Content:     fmt.Sprintf("%s\n\nResumen:\n%s\n\nPaper completo: %s\nPDF: %s", title, summary, id, pdfLine),
		Paper: &resource.Paper{
			Summary: truncate(summary, maxSummaryRunes),
			PDFURL:  pdf,
		},
	}
}

func pdfLink(links []link) string {
	for _, l := range links {
		if l.Title == "pdf" {
			return l.Href
		}
	}
	return ""
}

// lastSegment returns the arXiv id from an entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
