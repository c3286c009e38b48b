// Package youtube searches embeddable educational videos on YouTube.
package youtube

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultBaseURL is the YouTube Data API v3 search endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3/search"

const (
	unknownChannel = "Canal desconocido"
	platform       = "YouTube"
	maxPerPage     = 50
)

// educationalTerms is appended to the topic per language.
var educationalTerms = map[string]string{
	"fr": "tutoriel",
}

const defaultTerm = "tutorial"

// Config holds client settings. APIKey is required.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client searches videos.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New creates a YouTube client.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

type thumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Default thumbnail `json:"default"`
				Medium  thumbnail `json:"medium"`
				High    thumbnail `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Fetch returns up to maxResults embeddable, safe-search videos.
func (c *Client) Fetch(ctx context.Context, topic, lang string, maxResults int) ([]resource.Item, error) {
	term, ok := educationalTerms[lang]
	if !ok {
		term = defaultTerm
	}

	params := url.Values{
		"part":              {"snippet"},
		"q":                 {topic + " " + term},
		"type":              {"video"},
		"maxResults":        {strconv.Itoa(min(maxResults, maxPerPage))},
		"key":               {c.apiKey},
		"relevanceLanguage": {lang},
		"safeSearch":        {"strict"},
		"videoEmbeddable":   {"true"},
		"videoSyndicated":   {"true"},
		"order":             {"relevance"},
	}

	var sr searchResponse
	if err := httputil.GetJSON(ctx, c.http, "youtube", c.baseURL+"?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}

	items := make([]resource.Item, 0, len(sr.Items))
	for _, it := range sr.Items {
		id := it.ID.VideoID
		if id == "" {
			continue
		}
		sn := it.Snippet

		channel := sn.ChannelTitle
		if channel == "" {
			channel = unknownChannel
		}
		thumb := sn.Thumbnails.High.URL
		if thumb == "" {
			thumb = sn.Thumbnails.Medium.URL
		}
		if thumb == "" {
			thumb = sn.Thumbnails.Default.URL
		}

		items = append(items, resource.Item{
			Source:      resource.SourceYouTube,
			Kind:        resource.KindVideo,
			ID:          id,
			Title:       resource.Title(sn.Title),
			URL:         "https://www.youtube.com/watch?v=" + id,
			Description: sn.Description,
			Video: &resource.Video{
				VideoID:     id,
				Channel:     channel,
				Thumbnail:   thumb,
				EmbedURL:    "https://www.youtube.com/embed/" + id,
				PublishedAt: sn.PublishedAt,
				Platform:    platform,
			},
		})
	}
	return items, nil
}
