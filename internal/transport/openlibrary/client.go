// Package openlibrary queries the OpenLibrary book catalog.
package openlibrary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pathwise-edu/pathwise/internal/domain/language"
	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultBaseURL is the public OpenLibrary site, which also serves the API.
const DefaultBaseURL = "https://openlibrary.org"

const (
	unknownAuthor      = "Desconocido"
	defaultDescription = "Libro educativo disponible en OpenLibrary"
	maxSubjects        = 3
)

// Config holds client settings. Empty fields take defaults.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client searches full-text books.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates an OpenLibrary client.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Language         []string `json:"language"`
	HasFulltext      bool     `json:"has_fulltext"`
	Subject          []string `json:"subject"`
}

// Fetch returns up to maxResults books with full text in the requested
// language. Twice as many candidates are requested to survive filtering.
func (c *Client) Fetch(ctx context.Context, topic, lang string, maxResults int) ([]resource.Item, error) {
	params := url.Values{
		"q":            {topic},
		"limit":        {strconv.Itoa(maxResults * 2)},
		"has_fulltext": {"true"},
	}

	var sr searchResponse
	if err := httputil.GetJSON(ctx, c.http, "openlibrary", c.baseURL+"/search.json?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}

	items := make([]resource.Item, 0, maxResults)
	for _, d := range sr.Docs {
		if len(items) >= maxResults {
			break
		}
		if !d.HasFulltext || d.Key == "" {
			continue
		}
		if !language.Matches(d.Language, lang) {
			continue
		}
		items = append(items, toItem(d))
	}
	return items, nil
}

func toItem(d doc) resource.Item {
	author := unknownAuthor
	if len(d.AuthorName) > 0 {
		author = strings.Join(d.AuthorName, ", ")
	}

	description := defaultDescription
	if len(d.Subject) > 0 {
		subjects := d.Subject[:min(len(d.Subject), maxSubjects)]
		description = "Temas: " + strings.Join(subjects, ", ")
	}

	title := resource.Title(d.Title)
	link := DefaultBaseURL + d.Key

	return resource.Item{
		Source:      resource.SourceOpenLibrary,
		Kind:        resource.KindBook,
		ID:          strings.TrimPrefix(d.Key, "/works/"),
		Title:       title,
		URL:         link,
		Description: description,
		Content:     content(title, author, d.FirstPublishYear, d.Language, description),
		Book: &resource.Book{
			Author:    author,
			Year:      d.FirstPublishYear,
			Languages: d.Language,
			ReadURL:   link,
		},
	}
}

func content(title, author string, year int, langs []string, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nAutor: %s\n", title, author)
	if year > 0 {
		fmt.Fprintf(&b, "Año: %d\n", year)
	}
	if len(langs) > 0 {
		fmt.Fprintf(&b, "Idiomas: %s\n", strings.Join(langs[:min(len(langs), 3)], ", "))
	}
	fmt.Fprintf(&b, "\n%s\n\nDisponible para lectura en línea en OpenLibrary.", description)
	return b.String()
}
