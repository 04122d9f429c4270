package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tomakado/containers/set"

	"github.com/DalintonC/lomigg-news/internal/metrics"
	"github.com/DalintonC/lomigg-news/internal/model"
)

// translationState spaces out provider calls within one run.
type translationState struct {
	calls int
}

// ErrUnparseableTranslation marks a provider reply that carried no usable translation.
var ErrUnparseableTranslation = errors.New("translation response could not be parsed")

// collect folds per-source results into articles in source order.
// It returns an error only when ctx is cancelled.
func (a *Aggregator) collect(
	ctx context.Context,
	log logrus.FieldLogger,
	run *metrics.Run,
	results []SourceResult,
	existing map[string]model.StoredTranslation,
) ([]model.Article, error) {
	var (
		collected []model.Article
		inRun     = make(map[string]struct{})
		state     translationState
	)

	for _, result := range results {
		src := result.Source
		run.SourceDone(src.ID, result.Err)

		srcLog := log.WithField("source", src.ID)
		if result.Err != nil {
			srcLog.WithError(result.Err).Error("failed to fetch source")
			a.reporter.Report(fmt.Errorf("fetch %s: %w", src.ID, result.Err), map[string]string{
				"component": "fetch",
				"source":    src.ID,
			})
			continue
		}

		srcLog.WithField("count", len(result.Items)).Info("fetched source")

		for _, item := range result.Items {
			run.ItemsSeen++

			if a.itemShouldBeSkipped(item) {
				run.ItemsFiltered++
				continue
			}

			article := a.normalizer.Article(src, item, a.now())

			// a later copy of an id already collected in this run is dropped by Dedup
			if _, dup := inRun[article.ID]; dup {
				collected = append(collected, article)
				continue
			}
			inRun[article.ID] = struct{}{}

			if stored, ok := existing[article.ID]; ok {
				article.CopyForward(stored)
				run.ItemsExisting++
				run.Reused++
				collected = append(collected, article)
				continue
			}

			run.ItemsNew++
			if err := a.translate(ctx, srcLog, run, &state, &article); err != nil {
				return nil, err
			}
			collected = append(collected, article)
		}
	}

	return collected, nil
}

// translate attaches Spanish fields to a new article. Provider failures leave the
// article in its source language; only ctx cancellation is returned.
func (a *Aggregator) translate(
	ctx context.Context,
	log logrus.FieldLogger,
	run *metrics.Run,
	state *translationState,
	article *model.Article,
) error {
	if a.translator == nil {
		run.TranslationSkipped++
		return nil
	}

	log = log.WithField("item", article.ID)

	if a.cache != nil {
		cached, err := a.cache.Get(ctx, article.ID)
		if err != nil {
			log.WithError(err).Warn("translation cache read failed")
		}
		if cached != nil {
			article.ApplyTranslation(*cached)
			run.Reused++
			return nil
		}
	}

	content := article.ContentRaw
	if content == "" && a.extractor != nil {
		text, err := a.extractor.Extract(ctx, article.Link)
		if err != nil {
			log.WithError(err).Warn("failed to extract article content")
		}
		content = text
	}

	if state.calls > 0 {
		if err := a.sleep(ctx, a.translationDelay); err != nil {
			return fmt.Errorf("wait between translations: %w", err)
		}
	}
	state.calls++

	translated, err := a.translator.Translate(ctx, article.TitleOriginal, article.DescriptionOriginal, content)
	if err == nil && translated == nil {
		err = ErrUnparseableTranslation
	}
	if err != nil {
		run.TranslationFailed++
		log.WithError(err).WithField("model", a.translator.Name()).Warn("translation failed")
		a.reporter.Report(fmt.Errorf("translate %s: %w", article.ID, err), map[string]string{
			"component": "translate",
			"source":    article.SourceID,
			"item":      article.ID,
		})
		return nil
	}

	article.ApplyTranslation(*translated)
	run.Translated++
	log.WithField("model", a.translator.Name()).Debug("translated article")

	if a.cache != nil {
		if err := a.cache.Set(ctx, article.ID, *translated); err != nil {
			log.WithError(err).Warn("translation cache write failed")
		}
	}

	return nil
}

// itemShouldBeSkipped matches keywords against the lowercased title and categories.
func (a *Aggregator) itemShouldBeSkipped(item model.Item) bool {
	if len(a.filterKeywords) == 0 {
		return false
	}

	categories := set.New(lowerAll(item.Categories)...)
	title := strings.ToLower(item.Title)

	return lo.SomeBy(a.filterKeywords, func(keyword string) bool {
		return categories.Contains(keyword) || strings.Contains(title, keyword)
	})
}

// Dedup keeps the first article of every id and reports how many were dropped.
func Dedup(articles []model.Article) ([]model.Article, int) {
	unique := lo.UniqBy(articles, func(a model.Article) string { return a.ID })

	return unique, len(articles) - len(unique)
}

// SortByPublishTime orders newest first. Articles without a publish time go last,
// and equal keys keep their relative order.
func SortByPublishTime(articles []model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		pi, pj := articles[i].PublishTime, articles[j].PublishTime
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
}

func lowerAll(values []string) []string {
	return lo.Map(values, func(v string, _ int) string { return strings.ToLower(strings.TrimSpace(v)) })
}
