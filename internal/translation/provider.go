package translation

import (
	"context"
	"errors"

	"github.com/DalintonC/lomigg-news/internal/model"
)

var (
	ErrNoCredential = errors.New("translation: no credential for model")
	ErrUnknownModel = errors.New("translation: unknown model")
)

// Provider turns a source-language article into its Spanish edition.
//
// A nil translation with a nil error means the backend answered with something
// that could not be parsed. Both outcomes leave the article untranslated.
type Provider interface {
	Translate(ctx context.Context, title, description, content string) (*model.Translation, error)
	Name() string
}
