// Package googlecse finds educational documents through Google Custom Search.
package googlecse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultBaseURL is the Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// educationalTerms biases results toward teaching material.
const educationalTerms = ` (lecture OR tutorial OR "course" OR "lecture notes" OR syllabus OR tutorial OR "teaching material" OR "study guide")`

// maxNum is the API's upper bound for the num parameter.
const maxNum = 10

// Config holds client settings. APIKey and EngineID are required.
type Config struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	HTTPClient *http.Client
}

// Client searches documents.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	engineID string
}

// New creates a Custom Search client.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: cfg.BaseURL, apiKey: cfg.APIKey, engineID: cfg.EngineID}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Fetch returns up to maxResults documents restricted to the language.
func (c *Client) Fetch(ctx context.Context, topic, lang string, maxResults int) ([]resource.Item, error) {
	params := url.Values{
		"key": {c.apiKey},
		"cx":  {c.engineID},
		"q":   {topic + educationalTerms},
		"num": {strconv.Itoa(min(maxResults, maxNum))},
		"lr":  {"lang_" + lang},
	}

	var sr searchResponse
	if err := httputil.GetJSON(ctx, c.http, "google", c.baseURL+"?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}

	items := make([]resource.Item, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.Link == "" {
			continue
		}
		title := resource.Title(it.Title)
		snippet := it.Snippet
		if snippet == "" {
			snippet = "No disponible"
		}
		items = append(items, resource.Item{
			Source:      resource.SourceGoogle,
			Kind:        resource.KindPDF,
			ID:          it.Link,
			Title:       title,
			URL:         it.Link,
			Description: it.Snippet,
			Content:     fmt.Sprintf("%s\n\nVista previa:\n%s\n\nEnlace directo:\n%s", title, snippet, it.Link),
			Document: &resource.Document{
				Snippet: it.Snippet,
				PDFURL:  it.Link,
			},
		})
	}
	return items, nil
}
