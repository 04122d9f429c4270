package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/model"
	"github.com/DalintonC/lomigg-news/internal/retry"
)

const maxFeedSize = 10 << 20

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client    *http.Client
	userAgent string
	// only the first maxItems entries of a feed are kept
	maxItems int
	retry    *retry.Executor
	log      logrus.FieldLogger
}

func NewFetcher(timeout time.Duration, userAgent string, maxItems int, executor *retry.Executor, log logrus.FieldLogger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxItems:  maxItems,
		retry:     executor,
		log:       log,
	}
}

// Fetch returns the leading items of src, retrying download and parse failures.
func (f *Fetcher) Fetch(ctx context.Context, src model.Source) ([]model.Item, error) {
	items, err := retry.Do(ctx, f.retry, func(ctx context.Context) ([]model.Item, error) {
		return f.fetchOnce(ctx, src.FeedURL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.ID, err)
	}

	if len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	return items, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]model.Item, error) {
	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	return f.parse(data)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
}

// parse tries gofeed first and falls back to the more lenient rss package.
func (f *Fetcher) parse(data []byte) ([]model.Item, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err == nil {
		items := make([]model.Item, 0, len(feed.Items))
		for _, item := range feed.Items {
			items = append(items, fromGofeed(item))
		}
		return items, nil
	}

	fallback, fallbackErr := rss.Parse(data)
	if fallbackErr != nil {
		return nil, errors.Join(err, fallbackErr)
	}

	f.log.WithError(err).Debug("gofeed rejected feed, parsed with fallback")

	items := make([]model.Item, 0, len(fallback.Items))
	for _, item := range fallback.Items {
		items = append(items, fromRSS(item))
	}

	return items, nil
}

func fromGofeed(item *gofeed.Item) model.Item {
	out := model.Item{
		Title:          item.Title,
		Link:           item.Link,
		EncodedContent: item.Content,
		Description:    item.Description,
		Categories:     item.Categories,
		MediaURL:       mediaContentURL(item),
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			out.Enclosure = enclosure.URL
			break
		}
	}

	switch {
	case item.PublishedParsed != nil:
		out.Published = item.PublishedParsed
	case item.UpdatedParsed != nil:
		out.Published = item.UpdatedParsed
	}

	return out
}

func mediaContentURL(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}

	for _, ext := range media["content"] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}

	return ""
}

func fromRSS(item *rss.Item) model.Item {
	out := model.Item{
		Title:          item.Title,
		Link:           item.Link,
		EncodedContent: item.Content,
		Description:    item.Summary,
		Categories:     item.Categories,
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			out.Enclosure = enclosure.URL
			break
		}
	}

	if !item.Date.IsZero() {
		published := item.Date
		out.Published = &published
	}

	return out
}
