package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Extractor downloads an article page and keeps its readable text.
type Extractor struct {
	client    *http.Client
	userAgent string
}

func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Extract returns the plain text body of the page at link.
func (e *Extractor) Extract(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", link, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", link, resp.StatusCode)
	}

	doc, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("readability %s: %w", link, err)
	}

	return cleanText(doc.TextContent), nil
}

// readability leaves long runs of blank lines behind.
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}
