package model

import "time"

// Source is a configured feed endpoint.
type Source struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	FeedURL  string `yaml:"url"`
	Category string `yaml:"category"`
	// Lower value means higher priority.
	Priority int    `yaml:"priority"`
	Language string `yaml:"language"`
	Enabled  bool   `yaml:"enabled"`
}

// Item is a raw feed entry as the source provided it. It lives for one run only.
type Item struct {
	Title string
	// Canonical article URL
	Link string
	// Enclosure URL, if the feed attached one
	Enclosure string
	// url attribute of media:content
	MediaURL string
	// content:encoded
	EncodedContent string
	Content        string
	Description    string
	Categories     []string
	// Nil when the feed date is missing or unparseable
	Published *time.Time
}

// Article is the persisted, normalized entity.
type Article struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	TitleOriginal       string     `json:"title_original"`
	Slug                string     `json:"slug"`
	Description         string     `json:"description"`
	DescriptionOriginal string     `json:"description_original"`
	SummaryLong         *string    `json:"summary_long"`
	ContentRaw          string     `json:"content_raw"`
	Link                string     `json:"link"`
	Image               *string    `json:"image"`
	ImageGallery        []string   `json:"image_gallery"`
	PublishTime         *time.Time `json:"publish_time"`
	Category            string     `json:"category"`
	SourceName          string     `json:"source_name"`
	SourceID            string     `json:"source_id"`
	Priority            int        `json:"priority"`
	IngestedAt          time.Time  `json:"ingested_at"`
}

// Translation is what a translation backend produced for one article.
type Translation struct {
	Title       string `json:"title_es"`
	Description string `json:"description_es"`
	Summary     string `json:"summary_es"`
}

// StoredTranslation is the prior state kept for an identity already in the store.
type StoredTranslation struct {
	ID          string
	Title       string
	Description string
	SummaryLong *string
}

// ApplyTranslation replaces the display fields with translated ones.
func (a *Article) ApplyTranslation(t Translation) {
	a.Title = t.Title
	a.Description = t.Description
	summary := t.Summary
	a.SummaryLong = &summary
}

// CopyForward restores the display fields from a previously stored record.
func (a *Article) CopyForward(s StoredTranslation) {
	a.Title = s.Title
	a.Description = s.Description
	a.SummaryLong = s.SummaryLong
}
