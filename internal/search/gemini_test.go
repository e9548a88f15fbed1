package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/model"
	"wanderlust/internal/search"
)

const kyotoPayload = `{
	"name": "Kyoto",
	"country": "Japan",
	"description": "Former imperial capital.",
	"popularAttractions": ["Fushimi Inari", "Kinkaku-ji"],
	"estimatedBudget": {"low": 90, "high": 250, "currency": "USD"},
	"weatherInfo": "Hot summers, cool winters.",
	"suggestedActivities": ["Tea ceremony", "Bamboo grove walk"]
}`

func geminiResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(body)
}

func newClient(t *testing.T, handler http.HandlerFunc) *search.GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return search.NewGeminiClient("test-key",
		search.WithBaseURL(srv.URL),
		search.WithModel("test-model"),
		search.WithTimeout(2*time.Second),
		search.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestGeminiClient_Lookup(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, geminiResponse(kyotoPayload))
	})

	info, err := client.Lookup(context.Background(), "  kyoto ")

	require.NoError(t, err)
	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "Kyoto", info.Name)
	assert.Equal(t, "Japan", info.Country)
	assert.Equal(t, []string{"Fushimi Inari", "Kinkaku-ji"}, info.PopularAttractions)
	assert.Equal(t, model.Budget{Low: 90, High: 250, Currency: "USD"}, info.EstimatedBudget)
	assert.NotEmpty(t, info.ImageURL)

	config := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", config["responseMimeType"])
	prompt := gotBody["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, prompt, `"kyoto"`)
}

func TestGeminiClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"candidates": []}`)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, geminiResponse(`{"name": `))
		}},
		{"no match", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, geminiResponse(`{"name": "", "country": ""}`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, tc.handler)

			_, err := client.Lookup(context.Background(), "Atlantis")

			assert.ErrorIs(t, err, model.ErrLookup)
		})
	}
}

func TestGeminiClient_EmptyQuery(t *testing.T) {
	called := false
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := client.Lookup(context.Background(), "  ")

	assert.ErrorIs(t, err, model.ErrLookup)
	assert.False(t, called)
}

func TestGeminiClient_ContextCancelled(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Lookup(ctx, "Kyoto")

	assert.ErrorIs(t, err, model.ErrLookup)
	assert.True(t, errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "canceled"))
}
