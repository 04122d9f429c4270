package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/model"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completion API.
// Groq is served by the same client pointed at its base URL.
type OpenAIProvider struct {
	// sdk client
	client *openai.Client
	// backend name for logs and reports
	name  string
	model string
	log   logrus.FieldLogger
	// calls are serialized, the backends rate limit per key
	mu sync.Mutex
}

func NewOpenAIProvider(name, apiKey, model, baseURL string, httpClient *http.Client, log logrus.FieldLogger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	log.WithFields(logrus.Fields{"provider": name, "model": model}).Info("translation provider enabled")

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
		log:    log,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Translate(ctx context.Context, title, description, content string) (*model.Translation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	request := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: Prompt(title, description, ClipContent(content, description)),
			},
		},
		Temperature: 0.3,
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, errors.New("empty completion"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	translation := ParseResponse(text)
	if translation == nil {
		p.log.WithField("provider", p.name).WithField("raw", truncate(text, 200)).Warn("unparseable translation response")
	}

	return translation, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
