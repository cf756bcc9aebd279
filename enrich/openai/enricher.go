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

	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/enrich"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxAttempts = 3

// Enricher implements enrich.Enricher using OpenAI-compatible chat APIs.
type Enricher struct {
	client   llms.Model
	maxChars int
	logger   *slog.Logger
}

var _ enrich.Enricher = (*Enricher)(nil)

// entities is the JSON document requested from the model.
type entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
	Language      string   `json:"language"`
}

// New creates an LLM enricher from the LLM settings of cfg.
func New(cfg *enrich.Config) (*Enricher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.LLMEnabled() {
		return nil, errors.New("enrich/openai: LLMHost is required")
	}

	// Local OpenAI-compatible services accept any token
	token := cfg.LLMToken
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.LLMHost),
		openai.WithToken(token),
		openai.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return NewWithModel(client, cfg.MaxChars, nil), nil
}

// NewWithModel creates an enricher around an existing langchaingo model.
func NewWithModel(client llms.Model, maxChars int, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		client:   client,
		maxChars: maxChars,
		logger:   logger.With("component", "openai-enricher"),
	}
}

// Enrich asks the model for named entities and the document language.
func (e *Enricher) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	text = prepareText(text, e.maxChars)
	if text == "" {
		return &core.Entities{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result entities
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return &core.Entities{}, nil
		}

		raw := repairJSON(stripFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing entity response", "attempt", attempt, "response", raw, "err", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, lastErr
	}

	return &core.Entities{
		People:        dedupe(result.People),
		Organizations: dedupe(result.Organizations),
		Locations:     dedupe(result.Locations),
		Language:      strings.ToLower(strings.TrimSpace(result.Language)),
	}, nil
}
