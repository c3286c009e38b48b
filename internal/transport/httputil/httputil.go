// Package httputil holds the HTTP helpers shared by the upstream catalog clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// UserAgent is sent on every upstream request.
const UserAgent = "pathwise/1.0 (+https://github.com/pathwise-edu/pathwise)"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Service, e.Code)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.Code, e.Body)
}

// NewClient returns an http.Client with the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Get issues a GET and returns the response when the status is 2xx.
// The caller closes the body.
func Get(ctx context.Context, client *http.Client, service, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", service, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Service: service, Code: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// GetJSON issues a GET and decodes the JSON body into dst.
func GetJSON(ctx context.Context, client *http.Client, service, rawURL string, header http.Header, dst any) error {
	resp, err := Get(ctx, client, service, rawURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("parsing %s response: %w", service, err)
	}
	return nil
}
