package translation_test

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DalintonC/lomigg-news/internal/translation"
)

func TestNewProvider(t *testing.T) {
	log, _ := test.NewNullLogger()

	tests := []struct {
		name     string
		settings translation.Settings
		wantName string
		wantErr  error
		disabled bool
	}{
		{
			name:     "disabled",
			settings: translation.Settings{},
			disabled: true,
		},
		{
			name:     "groq",
			settings: translation.Settings{Model: "groq", GroqAPIKey: "gsk", GroqModel: "llama-3.3-70b-versatile"},
			wantName: "groq",
		},
		{
			name:     "openai",
			settings: translation.Settings{Model: "openai", OpenAIAPIKey: "sk", OpenAIModel: "gpt-4o-mini"},
			wantName: "openai",
		},
		{
			name:     "cohere",
			settings: translation.Settings{Model: "cohere", CohereAPIKey: "co", CohereModel: "command-r"},
			wantName: "cohere",
		},
		{
			name:     "missing credential",
			settings: translation.Settings{Model: "groq", OpenAIAPIKey: "sk"},
			wantErr:  translation.ErrNoCredential,
		},
		{
			name:     "unknown model",
			settings: translation.Settings{Model: "gemini", GroqAPIKey: "gsk"},
			wantErr:  translation.ErrUnknownModel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := translation.NewProvider(tc.settings, log)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, p)
				return
			}

			require.NoError(t, err)
			if tc.disabled {
				require.Nil(t, p)
				return
			}
			require.Equal(t, tc.wantName, p.Name())
		})
	}
}
