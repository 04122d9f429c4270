package metrics

import (
	"github.com/sirupsen/logrus"
)

type SourceStatus string

const (
	SourceSucceeded SourceStatus = "succeeded"
	SourceFailed    SourceStatus = "failed"
)

// Run holds the counters of one aggregation run. It is owned by the run that
// fills it and is never shared between goroutines.
type Run struct {
	ItemsSeen         int `json:"items_seen"`
	ItemsNew          int `json:"items_new"`
	ItemsExisting     int `json:"items_existing"`
	ItemsFiltered     int `json:"items_filtered"`
	DuplicatesRemoved int `json:"duplicates_removed"`

	SourcesSucceeded int                     `json:"sources_succeeded"`
	SourcesFailed    int                     `json:"sources_failed"`
	Sources          map[string]SourceStatus `json:"sources"`

	// Translation outcomes
	Translated         int `json:"translated"`
	Reused             int `json:"reused"`
	TranslationFailed  int `json:"translation_failed"`
	TranslationSkipped int `json:"translation_skipped"`

	ArticlesPersisted int `json:"articles_persisted"`
}

func NewRun() *Run {
	return &Run{Sources: make(map[string]SourceStatus)}
}

func (r *Run) SourceDone(id string, err error) {
	if err != nil {
		r.SourcesFailed++
		r.Sources[id] = SourceFailed
		return
	}

	r.SourcesSucceeded++
	r.Sources[id] = SourceSucceeded
}

func (r *Run) Fields() logrus.Fields {
	return logrus.Fields{
		"items_seen":          r.ItemsSeen,
		"items_new":           r.ItemsNew,
		"items_existing":      r.ItemsExisting,
		"items_filtered":      r.ItemsFiltered,
		"duplicates_removed":  r.DuplicatesRemoved,
		"sources_succeeded":   r.SourcesSucceeded,
		"sources_failed":      r.SourcesFailed,
		"translated":          r.Translated,
		"reused":              r.Reused,
		"translation_failed":  r.TranslationFailed,
		"translation_skipped": r.TranslationSkipped,
		"articles_persisted":  r.ArticlesPersisted,
	}
}
