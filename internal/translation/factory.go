package translation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Model keys accepted by NewProvider. Groq is the fast default, the others are alternates.
const (
	ModelGroq   = "groq"
	ModelOpenAI = "openai"
	ModelCohere = "cohere"
)

type Settings struct {
	// Empty disables translation.
	Model string

	GroqAPIKey   string
	OpenAIAPIKey string
	CohereAPIKey string

	GroqModel   string
	OpenAIModel string
	CohereModel string

	// Overrides the backend URL, used against OpenAI-compatible gateways.
	BaseURL string
	Timeout time.Duration
}

// NewProvider builds the provider selected by s.Model. A nil provider with a nil
// error means translation is disabled.
func NewProvider(s Settings, log logrus.FieldLogger) (Provider, error) {
	if s.Model == "" {
		log.Warn("translation disabled, no model selected")
		return nil, nil
	}

	keys := map[string]string{
		ModelGroq:   s.GroqAPIKey,
		ModelOpenAI: s.OpenAIAPIKey,
		ModelCohere: s.CohereAPIKey,
	}

	apiKey, known := keys[s.Model]
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, s.Model)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoCredential, s.Model)
	}

	httpClient := &http.Client{Timeout: s.Timeout}

	switch s.Model {
	case ModelGroq:
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		return NewOpenAIProvider(ModelGroq, apiKey, s.GroqModel, baseURL, httpClient, log), nil
	case ModelOpenAI:
		return NewOpenAIProvider(ModelOpenAI, apiKey, s.OpenAIModel, s.BaseURL, httpClient, log), nil
	default:
		return NewCohereProvider(apiKey, s.CohereModel, httpClient, log), nil
	}
}
