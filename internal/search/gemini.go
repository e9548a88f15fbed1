package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wanderlust/internal/model"
)

const (
	geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"
)

// GeminiClient resolves destinations with the Gemini generateContent API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a GeminiClient.
type Option func(*GeminiClient)

// WithBaseURL points the client at a different API root.
func WithBaseURL(base string) Option {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithModel selects the model name.
func WithModel(model string) Option {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *GeminiClient) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *GeminiClient) { c.log = log }
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(apiKey string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    geminiAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup asks the model for a structured description of the destination
// named by query. Every failure wraps model.ErrLookup.
func (c *GeminiClient) Lookup(ctx context.Context, query string) (model.DestinationInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.DestinationInfo{}, fmt.Errorf("%w: empty query", model.ErrLookup)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: destinationPrompt(query)}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   destinationSchema,
		},
	})
	if err != nil {
		return model.DestinationInfo{}, fmt.Errorf("%w: request encoding failed: %v", model.ErrLookup, err)
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return model.DestinationInfo{}, fmt.Errorf("%w: request creation failed: %v", model.ErrLookup, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.DestinationInfo{}, fmt.Errorf("%w: network error: %w", model.ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.DestinationInfo{}, fmt.Errorf("%w: API error: status %d", model.ErrLookup, resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.DestinationInfo{}, fmt.Errorf("%w: JSON decode error: %v", model.ErrLookup, err)
	}

	text := result.firstText()
	if text == "" {
		return model.DestinationInfo{}, fmt.Errorf("%w: empty response", model.ErrLookup)
	}

	var info model.DestinationInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		return model.DestinationInfo{}, fmt.Errorf("%w: malformed destination payload: %v", model.ErrLookup, err)
	}
	if strings.TrimSpace(info.Name) == "" {
		return model.DestinationInfo{}, fmt.Errorf("%w: no destination matched %q", model.ErrLookup, query)
	}
	if info.ImageURL == "" {
		info.ImageURL = placeholderImage(info.Name)
	}

	c.log.Debug("destination lookup finished",
		"query", query,
		"name", info.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return info, nil
}

func destinationPrompt(query string) string {
	return fmt.Sprintf(`Provide travel information for the destination %q. `+
		`Include the canonical destination name, its country, a short description, `+
		`popular attractions, an estimated daily budget range per person with a currency code, `+
		`a summary of the weather and best time to visit, and suggested activities. `+
		`If the text does not name a real place, return an empty name.`, query)
}

func placeholderImage(name string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(strings.ToLower(name)) + "/1200/800"
}

// API request/response types

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

var destinationSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"name":               {Type: "STRING"},
		"country":            {Type: "STRING"},
		"description":        {Type: "STRING"},
		"popularAttractions": {Type: "ARRAY", Items: &schema{Type: "STRING"}},
		"estimatedBudget": {
			Type: "OBJECT",
			Properties: map[string]*schema{
				"low":      {Type: "NUMBER"},
				"high":     {Type: "NUMBER"},
				"currency": {Type: "STRING"},
			},
			Required: []string{"low", "high", "currency"},
		},
		"weatherInfo":         {Type: "STRING"},
		"suggestedActivities": {Type: "ARRAY", Items: &schema{Type: "STRING"}},
	},
	Required: []string{"name", "country", "description", "popularAttractions", "estimatedBudget", "weatherInfo", "suggestedActivities"},
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) firstText() string {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text
			}
		}
	}
	return ""
}
