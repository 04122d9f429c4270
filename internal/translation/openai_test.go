package translation_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DalintonC/lomigg-news/internal/translation"
)

func completionServer(t *testing.T, content string, status int, seen *[]map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		*seen = append(*seen, req)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit"}}`))
			return
		}

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   req["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	return server
}

func newGroq(t *testing.T, server *httptest.Server) translation.Provider {
	t.Helper()

	log, _ := test.NewNullLogger()
	p, err := translation.NewProvider(translation.Settings{
		Model:      translation.ModelGroq,
		GroqAPIKey: "gsk-test",
		GroqModel:  "llama-3.3-70b-versatile",
		BaseURL:    server.URL + "/v1",
		Timeout:    5 * time.Second,
	}, log)
	require.NoError(t, err)

	return p
}

func TestOpenAIProviderTranslate(t *testing.T) {
	var seen []map[string]any
	server := completionServer(t, "```json\n{\"title_es\":\"Título\",\"description_es\":\"Descripción\",\"summary_es\":\"Resumen\"}\n```", http.StatusOK, &seen)

	got, err := newGroq(t, server).Translate(context.Background(), "Title", "Description", "<p>Body</p>")

	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Título", got.Title)
	require.Equal(t, "Descripción", got.Description)
	require.Equal(t, "Resumen", got.Summary)

	require.Len(t, seen, 1)
	require.Equal(t, "llama-3.3-70b-versatile", seen[0]["model"])
	messages := seen[0]["messages"].([]any)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].(map[string]any)["role"])
	require.Contains(t, messages[0].(map[string]any)["content"], "objeto JSON")
	require.EqualValues(t, 0.3, seen[0]["temperature"])
	require.Contains(t, messages[1].(map[string]any)["content"], "Contenido completo: Body")
}

func TestOpenAIProviderUnparseableResponse(t *testing.T) {
	var seen []map[string]any
	server := completionServer(t, "No puedo traducir esto.", http.StatusOK, &seen)

	got, err := newGroq(t, server).Translate(context.Background(), "Title", "Description", "")

	require.NoError(t, err)
	require.Nil(t, got)
}

func TestOpenAIProviderBackendError(t *testing.T) {
	var seen []map[string]any
	server := completionServer(t, "", http.StatusTooManyRequests, &seen)

	got, err := newGroq(t, server).Translate(context.Background(), "Title", "Description", "")

	require.Error(t, err)
	require.Nil(t, got)
	require.Contains(t, err.Error(), "groq")
}

func TestOpenAIProviderBlankTranslation(t *testing.T) {
	var seen []map[string]any
	server := completionServer(t, `{"title_es":"","description_es":"","summary_es":""}`, http.StatusOK, &seen)

	got, err := newGroq(t, server).Translate(context.Background(), "Title", "Description", "")

	require.NoError(t, err)
	require.Nil(t, got)
}
