package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "lomigg_news"

// Exporter mirrors run counters into Prometheus collectors on a private registry.
type Exporter struct {
	registry *prometheus.Registry

	items        *prometheus.CounterVec
	sources      *prometheus.CounterVec
	translations *prometheus.CounterVec
	persisted    prometheus.Counter
	runs         *prometheus.CounterVec
	duration     prometheus.Histogram
	lastSuccess  prometheus.Gauge
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Feed items processed, by outcome.",
		}, []string{"kind"}),
		sources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Source fetches, by source and status.",
		}, []string{"source", "status"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation outcomes.",
		}, []string{"outcome"}),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_persisted_total",
			Help:      "Articles written to the store.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Aggregation runs, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of an aggregation run.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	e.registry.MustRegister(e.items, e.sources, e.translations, e.persisted, e.runs, e.duration, e.lastSuccess)

	return e
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe adds the counters of a finished run. runErr is the fatal error of the run, if any.
func (e *Exporter) Observe(r *Run, took time.Duration, runErr error) {
	e.items.WithLabelValues("seen").Add(float64(r.ItemsSeen))
	e.items.WithLabelValues("new").Add(float64(r.ItemsNew))
	e.items.WithLabelValues("existing").Add(float64(r.ItemsExisting))
	e.items.WithLabelValues("filtered").Add(float64(r.ItemsFiltered))
	e.items.WithLabelValues("duplicate").Add(float64(r.DuplicatesRemoved))

	for id, status := range r.Sources {
		e.sources.WithLabelValues(id, string(status)).Inc()
	}

	e.translations.WithLabelValues("translated").Add(float64(r.Translated))
	e.translations.WithLabelValues("reused").Add(float64(r.Reused))
	e.translations.WithLabelValues("failed").Add(float64(r.TranslationFailed))
	e.translations.WithLabelValues("skipped").Add(float64(r.TranslationSkipped))

	e.persisted.Add(float64(r.ArticlesPersisted))
	e.duration.Observe(took.Seconds())

	if runErr != nil {
		e.runs.WithLabelValues("failed").Inc()
		return
	}

	e.runs.WithLabelValues("succeeded").Inc()
	e.lastSuccess.SetToCurrentTime()
}

// Push sends the registry to a Pushgateway. Batch runs are too short-lived to be scraped.
func (e *Exporter) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(e.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}

	return nil
}
