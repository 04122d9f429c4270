package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/metrics"
	"github.com/DalintonC/lomigg-news/internal/model"
	"github.com/DalintonC/lomigg-news/internal/normalize"
	"github.com/DalintonC/lomigg-news/internal/retry"
)

type SourceProvider interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

type FeedFetcher interface {
	Fetch(ctx context.Context, src model.Source) ([]model.Item, error)
}

type ArticleStore interface {
	Existing(ctx context.Context) ([]model.StoredTranslation, error)
	Upsert(ctx context.Context, articles []model.Article) (int, error)
}

type Translator interface {
	Translate(ctx context.Context, title, description, content string) (*model.Translation, error)
	Name() string
}

type TranslationCache interface {
	Get(ctx context.Context, id string) (*model.Translation, error)
	Set(ctx context.Context, id string, t model.Translation) error
}

type ContentExtractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

type Reporter interface {
	Report(err error, tags map[string]string)
}

type Observer interface {
	Observe(r *metrics.Run, took time.Duration, runErr error)
}

// RunHook is called after every run, successful or not.
type RunHook func(ctx context.Context, res Result, err error)

// SourceResult is the outcome of fetching one source. Items is nil when Err is set.
type SourceResult struct {
	Source model.Source
	Items  []model.Item
	Err    error
}

type Result struct {
	RunID    string
	Articles []model.Article
	Metrics  *metrics.Run
	Duration time.Duration
}

type Config struct {
	// Sources fetched at the same time. Values below 1 mean 1.
	Concurrency      int
	FilterKeywords   []string
	TranslationDelay time.Duration
	GallerySize      int
}

type Aggregator struct {
	sources  SourceProvider
	fetcher  FeedFetcher
	articles ArticleStore
	reporter Reporter
	log      logrus.FieldLogger

	normalizer *normalize.Normalizer
	storeRetry *retry.Executor

	translator Translator
	cache      TranslationCache
	extractor  ContentExtractor
	observer   Observer
	hooks      []RunHook

	concurrency      int
	filterKeywords   []string
	translationDelay time.Duration

	sleep retry.Sleeper
	now   func() time.Time
}

type Option func(*Aggregator)

// WithTranslator enables translation of new articles. A nil translator keeps it disabled.
func WithTranslator(t Translator) Option {
	return func(a *Aggregator) { a.translator = t }
}

func WithCache(c TranslationCache) Option {
	return func(a *Aggregator) { a.cache = c }
}

func WithExtractor(e ContentExtractor) Option {
	return func(a *Aggregator) { a.extractor = e }
}

// WithStoreRetry sets the executor wrapping store reads and writes.
func WithStoreRetry(e *retry.Executor) Option {
	return func(a *Aggregator) { a.storeRetry = e }
}

func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

func WithRunHook(h RunHook) Option {
	return func(a *Aggregator) { a.hooks = append(a.hooks, h) }
}

func WithSleeper(s retry.Sleeper) Option {
	return func(a *Aggregator) { a.sleep = s }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func New(
	sources SourceProvider,
	fetcher FeedFetcher,
	articles ArticleStore,
	reporter Reporter,
	log logrus.FieldLogger,
	cfg Config,
	opts ...Option,
) *Aggregator {
	a := &Aggregator{
		sources:          sources,
		fetcher:          fetcher,
		articles:         articles,
		reporter:         reporter,
		log:              log,
		normalizer:       normalize.New(cfg.GallerySize),
		storeRetry:       retry.New(retry.DefaultPolicy()),
		concurrency:      max(cfg.Concurrency, 1),
		filterKeywords:   lowerAll(cfg.FilterKeywords),
		translationDelay: cfg.TranslationDelay,
		sleep:            retry.Sleep,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start runs the pipeline immediately and then on every tick until ctx is done.
// A failed run is logged and reported; the next tick runs again.
func (a *Aggregator) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.runLogged(ctx)
		}
	}
}

func (a *Aggregator) runLogged(ctx context.Context) {
	if _, err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.WithError(err).Error("aggregation run failed")
	}
}

// Run executes one aggregation pass and persists its result.
// Only a source list or persistence failure makes it return an error.
func (a *Aggregator) Run(ctx context.Context) (res Result, err error) {
	started := a.now()
	run := metrics.NewRun()
	res = Result{RunID: uuid.NewString(), Metrics: run}
	log := a.log.WithField("run_id", res.RunID)

	defer func() {
		res.Duration = a.now().Sub(started)
		if a.observer != nil {
			a.observer.Observe(run, res.Duration, err)
		}
		for _, hook := range a.hooks {
			hook(ctx, res, err)
		}
	}()

	log.Info("aggregation started")

	existing := a.loadExisting(ctx, log)

	sources, err := a.sources.Sources(ctx)
	if err != nil {
		err = fmt.Errorf("list sources: %w", err)
		a.reporter.Report(err, map[string]string{"component": "sources"})
		return res, err
	}
	enabled := lo.Filter(sources, func(s model.Source, _ int) bool { return s.Enabled })

	collected, err := a.collect(ctx, log, run, a.fetchAll(ctx, enabled), existing)
	if err != nil {
		return res, err
	}

	articles, removed := Dedup(collected)
	run.DuplicatesRemoved = removed
	SortByPublishTime(articles)
	res.Articles = articles

	persisted, err := retry.Do(ctx, a.storeRetry, func(ctx context.Context) (int, error) {
		return a.articles.Upsert(ctx, articles)
	})
	if err != nil {
		err = fmt.Errorf("persist %d articles: %w", len(articles), err)
		a.reporter.Report(err, map[string]string{"component": "persist"})
		return res, err
	}
	run.ArticlesPersisted = persisted

	log.WithFields(run.Fields()).WithField("duration", a.now().Sub(started).String()).
		WithField("status", "ok").Info("aggregation finished")

	return res, nil
}

// loadExisting degrades to an empty set when the store cannot be read.
func (a *Aggregator) loadExisting(ctx context.Context, log logrus.FieldLogger) map[string]model.StoredTranslation {
	stored, err := retry.Do(ctx, a.storeRetry, a.articles.Existing)
	if err != nil {
		log.WithError(err).Warn("could not load existing articles, treating every item as new")
		a.reporter.Report(fmt.Errorf("load existing articles: %w", err), map[string]string{"component": "load_existing"})
		return map[string]model.StoredTranslation{}
	}

	log.WithField("count", len(stored)).Debug("loaded existing articles")

	return lo.KeyBy(stored, func(s model.StoredTranslation) string { return s.ID })
}

// fetchAll fetches sources on a bounded pool. Results come back in the order of sources.
func (a *Aggregator) fetchAll(ctx context.Context, sources []model.Source) []SourceResult {
	type indexed struct {
		idx int
		res SourceResult
	}

	var (
		results = make([]SourceResult, len(sources))
		out     = make(chan indexed)
		sem     = make(chan struct{}, a.concurrency)
		wg      sync.WaitGroup
	)

	for i, src := range sources {
		wg.Add(1)

		go func(i int, src model.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := a.fetcher.Fetch(ctx, src)
			out <- indexed{idx: i, res: SourceResult{Source: src, Items: items, Err: err}}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	// single writer
	for r := range out {
		results[r.idx] = r.res
	}

	return results
}
