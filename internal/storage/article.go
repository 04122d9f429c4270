package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/DalintonC/lomigg-news/internal/model"
)

type ArticleStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticleStorage {
	return &ArticleStorage{db: db}
}

// Existing returns the stored display fields of every article.
func (s *ArticleStorage) Existing(ctx context.Context) ([]model.StoredTranslation, error) {
	var rows []dbStoredTranslation
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, description, summary_long FROM articles`); err != nil {
		return nil, fmt.Errorf("select existing articles: %w", err)
	}

	return lo.Map(rows, func(row dbStoredTranslation, _ int) model.StoredTranslation {
		return model.StoredTranslation{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			SummaryLong: fromNullString(row.SummaryLong),
		}
	}), nil
}

const upsertArticle = `
INSERT INTO articles (
	id, title, title_original, slug, description, description_original, summary_long,
	content_raw, link, image, image_gallery, publish_time, category, source_name,
	source_id, priority, ingested_at
) VALUES (
	:id, :title, :title_original, :slug, :description, :description_original, :summary_long,
	:content_raw, :link, :image, :image_gallery, :publish_time, :category, :source_name,
	:source_id, :priority, :ingested_at
)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	title_original = excluded.title_original,
	slug = excluded.slug,
	description = excluded.description,
	description_original = excluded.description_original,
	summary_long = excluded.summary_long,
	content_raw = excluded.content_raw,
	link = excluded.link,
	image = excluded.image,
	image_gallery = excluded.image_gallery,
	publish_time = excluded.publish_time,
	category = excluded.category,
	source_name = excluded.source_name,
	source_id = excluded.source_id,
	priority = excluded.priority,
	ingested_at = excluded.ingested_at`

// Upsert writes all articles in one transaction, replacing rows with the same id.
func (s *ArticleStorage) Upsert(ctx context.Context, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, article := range articles {
		if _, err := tx.NamedExecContext(ctx, upsertArticle, toDBArticle(article)); err != nil {
			return 0, fmt.Errorf("upsert article %s: %w", article.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}

	return len(articles), nil
}

// Count returns the number of stored articles.
func (s *ArticleStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return count, nil
}

// Recent returns the newest stored articles, undated ones last.
func (s *ArticleStorage) Recent(ctx context.Context, limit int) ([]model.Article, error) {
	var rows []dbArticle
	query := s.db.Rebind(`SELECT * FROM articles
		ORDER BY CASE WHEN publish_time IS NULL THEN 1 ELSE 0 END, publish_time DESC, id
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select recent articles: %w", err)
	}

	return lo.Map(rows, func(row dbArticle, _ int) model.Article { return row.toModel() }), nil
}

type dbStoredTranslation struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	SummaryLong sql.NullString `db:"summary_long"`
}

type dbArticle struct {
	ID                  string         `db:"id"`
	Title               string         `db:"title"`
	TitleOriginal       string         `db:"title_original"`
	Slug                string         `db:"slug"`
	Description         string         `db:"description"`
	DescriptionOriginal string         `db:"description_original"`
	SummaryLong         sql.NullString `db:"summary_long"`
	ContentRaw          string         `db:"content_raw"`
	Link                string         `db:"link"`
	Image               sql.NullString `db:"image"`
	ImageGallery        stringList     `db:"image_gallery"`
	PublishTime         sql.NullTime   `db:"publish_time"`
	Category            string         `db:"category"`
	SourceName          string         `db:"source_name"`
	SourceID            string         `db:"source_id"`
	Priority            int            `db:"priority"`
	IngestedAt          time.Time      `db:"ingested_at"`
}

func toDBArticle(a model.Article) dbArticle {
	row := dbArticle{
		ID:                  a.ID,
		Title:               a.Title,
		TitleOriginal:       a.TitleOriginal,
		Slug:                a.Slug,
		Description:         a.Description,
		DescriptionOriginal: a.DescriptionOriginal,
		SummaryLong:         toNullString(a.SummaryLong),
		ContentRaw:          a.ContentRaw,
		Link:                a.Link,
		Image:               toNullString(a.Image),
		ImageGallery:        stringList(a.ImageGallery),
		Category:            a.Category,
		SourceName:          a.SourceName,
		SourceID:            a.SourceID,
		Priority:            a.Priority,
		IngestedAt:          a.IngestedAt.UTC(),
	}
	if a.PublishTime != nil {
		row.PublishTime = sql.NullTime{Time: a.PublishTime.UTC(), Valid: true}
	}

	return row
}

func (row dbArticle) toModel() model.Article {
	a := model.Article{
		ID:                  row.ID,
		Title:               row.Title,
		TitleOriginal:       row.TitleOriginal,
		Slug:                row.Slug,
		Description:         row.Description,
		DescriptionOriginal: row.DescriptionOriginal,
		SummaryLong:         fromNullString(row.SummaryLong),
		ContentRaw:          row.ContentRaw,
		Link:                row.Link,
		Image:               fromNullString(row.Image),
		ImageGallery:        []string(row.ImageGallery),
		Category:            row.Category,
		SourceName:          row.SourceName,
		SourceID:            row.SourceID,
		Priority:            row.Priority,
		IngestedAt:          row.IngestedAt.UTC(),
	}
	if row.PublishTime.Valid {
		published := row.PublishTime.Time.UTC()
		a.PublishTime = &published
	}

	return a
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	return &s.String
}

// stringList is stored as a JSON array in a text column.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

func (l *stringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = stringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out

	return nil
}
