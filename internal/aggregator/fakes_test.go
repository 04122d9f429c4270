package aggregator_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DalintonC/lomigg-news/internal/metrics"
	"github.com/DalintonC/lomigg-news/internal/model"
)

type staticSources []model.Source

func (s staticSources) Sources(context.Context) ([]model.Source, error) { return s, nil }

type failingSources struct{}

func (failingSources) Sources(context.Context) ([]model.Source, error) {
	return nil, errors.New("sources table missing")
}

type feedResult struct {
	items []model.Item
	err   error
	// closed before the fetch returns, when set
	wait <-chan struct{}
}

type fakeFetcher struct {
	mu    sync.Mutex
	feeds map[string]feedResult
	calls map[string]int
}

func newFakeFetcher(feeds map[string]feedResult) *fakeFetcher {
	return &fakeFetcher{feeds: feeds, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, src model.Source) ([]model.Item, error) {
	f.mu.Lock()
	f.calls[src.ID]++
	feed := f.feeds[src.ID]
	f.mu.Unlock()

	if feed.wait != nil {
		select {
		case <-feed.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return feed.items, feed.err
}

type memoryStore struct {
	rows        map[string]model.Article
	existingErr error
	upsertErr   error
	upserts     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]model.Article)}
}

func (s *memoryStore) Existing(context.Context) ([]model.StoredTranslation, error) {
	if s.existingErr != nil {
		return nil, s.existingErr
	}

	out := make([]model.StoredTranslation, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, model.StoredTranslation{ID: a.ID, Title: a.Title, Description: a.Description, SummaryLong: a.SummaryLong})
	}
	return out, nil
}

func (s *memoryStore) Upsert(_ context.Context, articles []model.Article) (int, error) {
	s.upserts++
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	for _, a := range articles {
		s.rows[a.ID] = a
	}
	return len(articles), nil
}

type translateCall struct {
	title, description, content string
}

type fakeTranslator struct {
	calls []translateCall
	// keyed by original title; missing titles get a prefixed translation
	errs  map[string]error
	nulls map[string]bool
}

func (t *fakeTranslator) Name() string { return "fake" }

func (t *fakeTranslator) Translate(_ context.Context, title, description, content string) (*model.Translation, error) {
	t.calls = append(t.calls, translateCall{title, description, content})
	if err := t.errs[title]; err != nil {
		return nil, err
	}
	if t.nulls[title] {
		return nil, nil
	}
	return &model.Translation{Title: "ES " + title, Description: "ES " + description, Summary: "Resumen de " + title}, nil
}

type report struct {
	err  error
	tags map[string]string
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *fakeReporter) Report(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{err, tags})
}

func (r *fakeReporter) components() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, rep.tags["component"])
	}
	return out
}

type mapCache map[string]model.Translation

func (c mapCache) Get(_ context.Context, id string) (*model.Translation, error) {
	t, ok := c[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (c mapCache) Set(_ context.Context, id string, t model.Translation) error {
	c[id] = t
	return nil
}

type fakeExtractor struct {
	links []string
	text  string
}

func (e *fakeExtractor) Extract(_ context.Context, link string) (string, error) {
	e.links = append(e.links, link)
	return e.text, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

type observed struct {
	run *metrics.Run
	err error
}

type fakeObserver struct {
	runs []observed
}

func (o *fakeObserver) Observe(r *metrics.Run, _ time.Duration, err error) {
	o.runs = append(o.runs, observed{r, err})
}
