// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/memosync/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxAttempts = 3

// ErrNoTitle is returned when the model produced nothing usable.
var ErrNoTitle = errors.New("model returned no title")

// Titler implements ai.Titler using OpenAI-compatible chat APIs.
type Titler struct {
	client llms.Model
	maxLen int
	logger *slog.Logger
}

var _ ai.Titler = (*Titler)(nil)

// titleResponse is the JSON object the model is asked to return.
type titleResponse struct {
	Title string `json:"title"`
}

// newTitler is an internal constructor that returns the concrete type.
func newTitler(config *ai.Config) (*Titler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return newTitlerWithModel(client, config.MaxTitleLength), nil
}

func newTitlerWithModel(client llms.Model, maxLen int) *Titler {
	return &Titler{
		client: client,
		maxLen: maxLen,
		logger: slog.Default().With("component", "openai-titler"),
	}
}

// NewTitler creates a new titler using the provided configuration.
//
// Returns ai.Titler interface to enforce abstraction.
func NewTitler(config *ai.Config) (ai.Titler, error) {
	return newTitler(config)
}

// GenerateTitle asks the model for a title for content.
func (t *Titler) GenerateTitle(ctx context.Context, content string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(t.maxLen))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(strings.TrimSpace(content))},
		},
	}

	// Small models occasionally answer with an empty or unusable string;
	// ask again a couple of times before giving up.
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := t.client.GenerateContent(ctx, messages, llms.WithTemperature(0.2), llms.WithJSONMode())
		if err != nil {
			t.logger.Error("failed to generate title", "attempt", attempt, "err", err)
			return "", err
		}
		if len(response.Choices) < 1 {
			t.logger.Debug("no choices returned from model", "attempt", attempt)
			continue
		}

		title := cleanTitle(parseTitle(response.Choices[0].Content), t.maxLen)
		if title != "" {
			return title, nil
		}
		t.logger.Warn("unusable title response", "attempt", attempt, "response", response.Choices[0].Content)
	}
	return "", ErrNoTitle
}

// parseTitle extracts the title from a model response. JSON is preferred;
// anything else is taken as the title itself.
func parseTitle(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var resp titleResponse
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err == nil {
			return resp.Title
		}
	}
	return text
}

// cleanTitle collapses whitespace, strips wrapping quotes and trailing
// punctuation, and truncates to maxLen characters.
func cleanTitle(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "\"'`“”‘’")
	s = strings.TrimRight(s, ".,;:!- ")
	if utf8.RuneCountInString(s) > maxLen {
		s = strings.TrimSpace(string([]rune(s)[:maxLen]))
	}
	return s
}
