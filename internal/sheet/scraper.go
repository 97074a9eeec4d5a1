// Package sheet scrapes chord sheets from public song pages.
//
// The parsing rests on markup-structure assumptions about the target site
// (a <pre> block holding the sheet, a small element holding the key label)
// and is deliberately kept behind a narrow interface so it can be hardened
// or swapped when the site's markup changes.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnavailable is returned when the sheet page cannot be reached or
// answers with a failure status.
var ErrUnavailable = errors.New("sheet page unavailable")

const (
	// browserUserAgent identifies us as a regular browser; the sheet site
	// blocks default Go client identifiers.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// sheetSelector matches the pre-formatted block holding the chord sheet.
	sheetSelector = "pre"

	// keySelector matches the element holding the song-key label.
	keySelector = "#cifra_tom a"
)

var (
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
)

// ChordSheet is the extracted content of one chord-sheet page.
type ChordSheet struct {
	Key  string // musical key label, "" when the page has none
	Body string // plain-text sheet with newlines, markup stripped
}

// Scraper fetches and parses chord-sheet pages.
type Scraper struct {
	httpClient *http.Client
}

// NewScraper creates a Scraper with a conservative request timeout.
func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch downloads the page at url and extracts its chord sheet.
// Returns (nil, nil) when the page has no extractable sheet block,
// a normal outcome for pages whose markup carries no text sheet.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*ChordSheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing sheet page: %w", err)
	}

	block := doc.Find(sheetSelector).First()
	if block.Length() == 0 {
		return nil, nil
	}

	raw, err := block.Html()
	if err != nil {
		return nil, fmt.Errorf("reading sheet block: %w", err)
	}

	body := normalize(raw)
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	key := strings.TrimSpace(doc.Find(keySelector).First().Text())

	return &ChordSheet{Key: key, Body: body}, nil
}

// normalize turns a sheet block's inner HTML into plain text.
// Line-break tags become newlines BEFORE the remaining markup is stripped;
// stripping first would collapse the line structure.
func normalize(raw string) string {
	text := lineBreakRe.ReplaceAllString(raw, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Trim(text, "\n")
}
