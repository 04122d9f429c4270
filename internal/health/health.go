package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/config"
	"github.com/DalintonC/lomigg-news/internal/translation"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type Report struct {
	Status    Status    `json:"status"`
	Checks    []Check   `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
}

// Healthy is true only when every check passed without warnings.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

type ArticleCounter interface {
	Count(ctx context.Context) (int, error)
}

type Checker struct {
	cfg   config.Config
	store ArticleCounter
	log   logrus.FieldLogger
}

// NewChecker accepts a nil store when the database could not be opened.
func NewChecker(cfg config.Config, store ArticleCounter, log logrus.FieldLogger) *Checker {
	return &Checker{cfg: cfg, store: store, log: log}
}

func (c *Checker) Run(ctx context.Context) Report {
	checks := []Check{
		c.environment(),
		c.database(ctx),
		c.ai(),
	}

	status := StatusOK
	for _, check := range checks {
		switch {
		case check.Status == StatusError:
			status = StatusError
		case check.Status == StatusWarning && status == StatusOK:
			status = StatusWarning
		}
	}

	return Report{Status: status, Checks: checks, CheckedAt: time.Now().UTC()}
}

func (c *Checker) environment() Check {
	check := Check{Name: "environment"}

	if err := c.cfg.Validate(); err != nil {
		check.Status = StatusError
		check.Message = err.Error()
		return check
	}

	if c.cfg.SourcesFrom == "file" {
		sources, err := config.LoadSources(c.cfg.SourcesFile)
		if err != nil {
			check.Status = StatusError
			check.Message = err.Error()
			return check
		}
		check.Status = StatusOK
		check.Message = fmt.Sprintf("%d sources configured", len(sources))
		return check
	}

	check.Status = StatusOK
	check.Message = "sources read from database"

	return check
}

func (c *Checker) database(ctx context.Context) Check {
	check := Check{Name: "database"}

	if c.store == nil {
		check.Status = StatusError
		check.Message = "database unavailable"
		return check
	}

	count, err := c.store.Count(ctx)
	if err != nil {
		check.Status = StatusError
		check.Message = err.Error()
		return check
	}

	check.Status = StatusOK
	check.Message = fmt.Sprintf("%d articles stored", count)

	return check
}

func (c *Checker) ai() Check {
	check := Check{Name: "ai"}

	provider, err := translation.NewProvider(c.cfg.TranslationSettings(), c.log)
	switch {
	case errors.Is(err, translation.ErrNoCredential):
		check.Status = StatusWarning
		check.Message = fmt.Sprintf("no API key for model %q, articles will not be translated", c.cfg.TranslationModel)
	case err != nil:
		check.Status = StatusError
		check.Message = err.Error()
	case provider == nil:
		check.Status = StatusWarning
		check.Message = "translation disabled"
	default:
		check.Status = StatusOK
		check.Message = "translation model " + provider.Name()
	}

	return check
}
