// Package vimeo searches Creative Commons educational videos on Vimeo.
package vimeo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultBaseURL is the Vimeo API root.
const DefaultBaseURL = "https://api.vimeo.com"

const (
	platform = "Vimeo"
	// thumbnailSize is the index into pictures.sizes used as thumbnail.
	thumbnailSize = 2
	maxPerPage    = 100
)

// Config holds client settings. AccessToken is required.
type Config struct {
	AccessToken string
	BaseURL     string
	HTTPClient  *http.Client
}

// Client searches videos.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// New creates a Vimeo client.
func New(cfg Config) *Client {
	c := &Client{http: cfg.HTTPClient, baseURL: strings.TrimRight(cfg.BaseURL, "/"), token: cfg.AccessToken}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

type searchResponse struct {
	Data []struct {
		URI            string `json:"uri"`
		Name           string `json:"name"`
		Description    string `json:"description"`
		Link           string `json:"link"`
		PlayerEmbedURL string `json:"player_embed_url"`
		CreatedTime    string `json:"created_time"`
		User           struct {
			Name string `json:"name"`
		} `json:"user"`
		Pictures struct {
			Sizes []struct {
				Link string `json:"link"`
			} `json:"sizes"`
		} `json:"pictures"`
	} `json:"data"`
}

// Fetch returns up to maxResults CC-licensed videos. Vimeo has no language
// filter, so lang is ignored.
func (c *Client) Fetch(ctx context.Context, topic, _ string, maxResults int) ([]resource.Item, error) {
	params := url.Values{
		"query":    {topic + " education"},
		"filter":   {"CC"},
		"per_page": {strconv.Itoa(min(maxResults, maxPerPage))},
		"sort":     {"relevant"},
	}
	header := http.Header{"Authorization": {"Bearer " + c.token}}

	var sr searchResponse
	if err := httputil.GetJSON(ctx, c.http, "vimeo", c.baseURL+"/videos?"+params.Encode(), header, &sr); err != nil {
		return nil, err
	}

	items := make([]resource.Item, 0, len(sr.Data))
	for _, v := range sr.Data {
		id := v.URI[strings.LastIndex(v.URI, "/")+1:]
		if id == "" {
			continue
		}
		var thumb string
		if len(v.Pictures.Sizes) > thumbnailSize {
			thumb = v.Pictures.Sizes[thumbnailSize].Link
		}
		items = append(items, resource.Item{
			Source:      resource.SourceVimeo,
			Kind:        resource.KindVideo,
			ID:          id,
			Title:       resource.Title(v.Name),
			URL:         v.Link,
			Description: v.Description,
			Video: &resource.Video{
				VideoID:     id,
				Channel:     v.User.Name,
				Thumbnail:   thumb,
				EmbedURL:    v.PlayerEmbedURL,
				PublishedAt: v.CreatedTime,
				Platform:    platform,
			},
		})
	}
	return items, nil
}
