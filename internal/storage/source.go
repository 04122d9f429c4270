package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/DalintonC/lomigg-news/internal/model"
)

// SourceStorage keeps the feed list in the database for deployments that
// manage sources there instead of in sources.yaml.
type SourceStorage struct {
	db *sqlx.DB
}

func NewSourceStorage(db *sqlx.DB) *SourceStorage {
	return &SourceStorage{db: db}
}

// Sources returns every source in a stable order: priority, then id.
func (s *SourceStorage) Sources(ctx context.Context) ([]model.Source, error) {
	var sources []dbSource
	if err := s.db.SelectContext(ctx, &sources,
		`SELECT id, name, feed_url, category, priority, language, enabled, created_at FROM sources ORDER BY priority, id`,
	); err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return source.toModel()
	}), nil
}

func (s *SourceStorage) SourceByID(ctx context.Context, id string) (*model.Source, error) {
	var source dbSource
	if err := s.db.GetContext(ctx, &source,
		s.db.Rebind(`SELECT id, name, feed_url, category, priority, language, enabled, created_at FROM sources WHERE id = ?`),
		id,
	); err != nil {
		return nil, fmt.Errorf("select source %s: %w", id, err)
	}

	m := source.toModel()
	return &m, nil
}

// Add inserts or replaces a source.
func (s *SourceStorage) Add(ctx context.Context, source model.Source) error {
	row := dbSource{
		ID:        source.ID,
		Name:      source.Name,
		FeedURL:   source.FeedURL,
		Category:  source.Category,
		Priority:  source.Priority,
		Language:  source.Language,
		Enabled:   source.Enabled,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sources (id, name, feed_url, category, priority, language, enabled, created_at)
		VALUES (:id, :name, :feed_url, :category, :priority, :language, :enabled, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			feed_url = excluded.feed_url,
			category = excluded.category,
			priority = excluded.priority,
			language = excluded.language,
			enabled = excluded.enabled`, row); err != nil {
		return fmt.Errorf("add source %s: %w", source.ID, err)
	}

	return nil
}

func (s *SourceStorage) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sources WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}

	return nil
}

type dbSource struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	Category  string    `db:"category"`
	Priority  int       `db:"priority"`
	Language  string    `db:"language"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
}

func (s dbSource) toModel() model.Source {
	return model.Source{
		ID:       s.ID,
		Name:     s.Name,
		FeedURL:  s.FeedURL,
		Category: s.Category,
		Priority: s.Priority,
		Language: s.Language,
		Enabled:  s.Enabled,
	}
}
