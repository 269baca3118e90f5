// Package httpclient wraps outbound HTTP for title resolution.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/arkive-app/arkive/internal/constants"
)

// Client wraps an http.Client with sane defaults for one-shot page fetches.
type Client struct {
	httpClient *http.Client
}

// New creates a new Client. Pass nil to use the default transport.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	return &Client{httpClient: httpClient}
}

// DocumentTitle fetches rawURL and extracts the first <title> element. On any
// failure (network error, non-2xx status, missing tag) it returns the URL
// itself so callers always get a usable title; the error reports what went
// wrong for logging.
func (c *Client) DocumentTitle(ctx context.Context, rawURL string) (string, error) {
	fetchURL := rawURL
	if !strings.HasPrefix(fetchURL, "http://") && !strings.HasPrefix(fetchURL, "https://") {
		fetchURL = "https://" + fetchURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return rawURL, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawURL, fmt.Errorf("fetch %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rawURL, fmt.Errorf("fetch %s: status %s", fetchURL, resp.Status)
	}

	title, ok := extractTitle(resp)
	if !ok {
		return rawURL, nil
	}
	return title, nil
}

// extractTitle tokenizes the body until the first <title> text node. The
// tokenizer tolerates the malformed markup real pages ship.
func extractTitle(resp *http.Response) (string, bool) {
	z := html.NewTokenizer(resp.Body)
	inTitle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				title := strings.TrimSpace(string(z.Text()))
				if title != "" {
					return title, true
				}
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// IsValidHTTPURL reports whether str parses as an absolute http or https URL.
func IsValidHTTPURL(str string) bool {
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
