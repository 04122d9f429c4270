package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DalintonC/lomigg-news/internal/model"
)

// Top returns the first n articles of an already sorted set.
func Top(articles []model.Article, n int) []model.Article {
	if n < 0 {
		n = 0
	}
	if n > len(articles) {
		n = len(articles)
	}

	return articles[:n]
}

func Encode(articles []model.Article) ([]byte, error) {
	if articles == nil {
		articles = []model.Article{}
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}

	return data, nil
}

// WriteFile replaces path with data through a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".news-output-*.json")
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	return nil
}
