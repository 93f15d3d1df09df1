package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/set-night/campusdesk/internal/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Containers tried in order before falling back to <body>.
var contentSelectors = []string{
	"main", "article", ".content", ".main-content",
	"#content", "#main", ".post-content", ".entry-content",
}

const (
	textElements  = "p, h1, h2, h3, h4, h5, h6, li, td"
	noiseElements = "script, style, nav, header, footer"
	minBlockLen   = 10
)

// WebFetcher downloads a page and reduces it to readable text.
type WebFetcher struct {
	httpClient *http.Client
}

func NewWebFetcher() *WebFetcher {
	return &WebFetcher{
		httpClient: &http.Client{Timeout: config.FetchTimeout},
	}
}

// Fetch returns the page text trimmed to budget characters ("..." appended
// when cut). Any failure is returned as an error; the text is never an error
// description.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string, budget int) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxFetchBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	text := ExtractText(body, parsed)
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", rawURL)
	}
	return TruncateRunes(text, budget, "..."), nil
}

// ExtractText pulls the meaningful text blocks out of an HTML page. It
// prefers the main content container, then a readability pass, then every
// line of the page.
func ExtractText(body []byte, pageURL *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find(noiseElements).Remove()

	var parts []string
	contentRoot(doc).Find(textElements).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); utf8.RuneCountInString(text) > minBlockLen {
			parts = append(parts, text)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		if parts = meaningfulLines(article.TextContent); len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	return strings.Join(meaningfulLines(doc.Text()), "\n")
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body")
}

// meaningfulLines splits text on lines and double spaces, keeping chunks
// longer than minBlockLen.
func meaningfulLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			if chunk = strings.TrimSpace(chunk); utf8.RuneCountInString(chunk) > minBlockLen {
				out = append(out, chunk)
			}
		}
	}
	return out
}

// TruncateRunes cuts s to limit characters and appends suffix when it did.
// A negative limit disables truncation.
func TruncateRunes(s string, limit int, suffix string) string {
	if limit < 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + suffix
}
