// Package search finds chord-sheet page links through the Google Custom
// Search JSON API, restricted to the target chord-sheet site.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable is returned when the search API cannot be reached or
// answers with a failure status.
var ErrUnavailable = errors.New("search API unavailable")

const (
	baseURL   = "https://www.googleapis.com/customsearch/v1"
	userAgent = "song-enrich/1.0"

	// maxResults bounds how many search hits are scanned for an
	// admissible chord-sheet link.
	maxResults = 5

	// sheetDomain is the chord-sheet site links must belong to.
	sheetDomain = "cifraclub.com.br"

	// siteKeyword biases the search toward chord-sheet pages.
	siteKeyword = "cifra"

	// excludedPath marks video-lesson subpages, which carry no
	// extractable text sheet.
	excludedPath = "/videoaulas"
)

// Client is a Google Custom Search API client.
type Client struct {
	apiKey     string
	engineID   string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a search client for the given API key and engine id.
func NewClient(apiKey, engineID string) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// FindSheetLink searches for a chord-sheet page for the given song and
// returns the first admissible result link. Returns "" (and no error) when
// no result passes the domain and path filters; that is an expected
// outcome, not a failure.
func (c *Client) FindSheetLink(ctx context.Context, title, artist string) (string, error) {
	params := url.Values{
		"key": {c.apiKey},
		"cx":  {c.engineID},
		"q":   {fmt.Sprintf("%s %s %s", artist, title, siteKeyword)},
		"num": {strconv.Itoa(maxResults)},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("searching for chord sheet: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing search response: %w", err)
	}

	for _, item := range resp.Items {
		if admissibleSheetURL(item.Link) {
			return item.Link, nil
		}
	}

	return "", nil
}

// admissibleSheetURL reports whether a result link points at a scrapeable
// chord-sheet page: on the sheet domain and not a video-lesson subpage.
func admissibleSheetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host != sheetDomain {
		return false
	}

	return !strings.Contains(u.Path, excludedPath)
}

// doRequest performs a single GET against the search API.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable,
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}
