package translation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/model"
)

// CohereProvider uses the Cohere chat endpoint.
type CohereProvider struct {
	client *cohereclient.Client
	model  string
	log    logrus.FieldLogger
	mu     sync.Mutex
}

func NewCohereProvider(apiKey, model string, httpClient *http.Client, log logrus.FieldLogger) *CohereProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	log.WithFields(logrus.Fields{"provider": ModelCohere, "model": model}).Info("translation provider enabled")

	return &CohereProvider{
		client: cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		),
		model: model,
		log:   log,
	}
}

func (p *CohereProvider) Name() string {
	return ModelCohere
}

func (p *CohereProvider) Translate(ctx context.Context, title, description, content string) (*model.Translation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		modelName   = p.model
		preamble    = systemPrompt
		temperature = 0.3
	)

	resp, err := p.client.Chat(ctx, &cohere.ChatRequest{
		Message:     Prompt(title, description, ClipContent(content, description)),
		Model:       &modelName,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("cohere: empty response")
	}

	text := strings.TrimSpace(resp.Text)
	translation := ParseResponse(text)
	if translation == nil {
		p.log.WithField("provider", ModelCohere).WithField("raw", truncate(text, 200)).Warn("unparseable translation response")
	}

	return translation, nil
}
