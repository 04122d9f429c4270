package config

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/DalintonC/lomigg-news/internal/model"
)

type sourcesFile struct {
	Sources []model.Source `yaml:"sources"`
}

// LoadSources reads the feed list from a YAML file, keeping file order.
func LoadSources(path string) ([]model.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for i, src := range file.Sources {
		if src.ID == "" || src.FeedURL == "" {
			return nil, fmt.Errorf("%w: source #%d needs id and url", ErrInvalid, i+1)
		}
	}

	duplicates := lo.FindDuplicatesBy(file.Sources, func(src model.Source) string { return src.ID })
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: duplicate source id %q", ErrInvalid, duplicates[0].ID)
	}

	return file.Sources, nil
}

// SourceFile serves sources from a YAML file, re-read on every call.
type SourceFile struct {
	path string
}

func NewSourceFile(path string) *SourceFile {
	return &SourceFile{path: path}
}

func (f *SourceFile) Sources(_ context.Context) ([]model.Source, error) {
	return LoadSources(f.path)
}
