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


package enrich

import (
	"errors"
	"strings"
)

// Config holds configuration for document enrichment.
type Config struct {
	// Keyphrases enables frequency-ranked keyphrases.
	// Default: true
	Keyphrases bool

	// MaxKeyphrases is the number of keyphrases kept per document.
	// Default: 10
	MaxKeyphrases int

	// LLMHost is the base URL of an OpenAI-compatible chat API used for entity
	// recognition. Empty disables LLM enrichment.
	// Example: "http://localhost:11434/v1"
	LLMHost string

	// LLMModel is the chat model identifier.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	LLMModel string

	// LLMToken is the API token. Local servers accept any value.
	LLMToken string

	// MaxChars truncates the text sent to the LLM.
	// Default: 8000
	MaxChars int

	// CacheSize is the number of enrichment results kept in memory.
	// Zero disables the cache.
	// Default: 1024
	CacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithKeyphrases enables or disables keyphrase ranking.
func WithKeyphrases(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Keyphrases = enabled
	}
}

// WithMaxKeyphrases sets the number of keyphrases kept per document.
func WithMaxKeyphrases(n int) ConfigOption {
	return func(c *Config) {
		c.MaxKeyphrases = n
	}
}

// WithLLM configures LLM entity recognition.
func WithLLM(host, model, token string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
		c.LLMModel = model
		c.LLMToken = token
	}
}

// WithMaxChars sets the LLM input truncation length.
func WithMaxChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxChars = n
	}
}

// WithCacheSize sets the result cache size.
func WithCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = n
	}
}

// DefaultConfig returns a Config with keyphrases on and LLM enrichment off.
func DefaultConfig() *Config {
	return &Config{
		Keyphrases:    true,
		MaxKeyphrases: DefaultMaxKeyphrases,
		LLMModel:      "qwen2.5:3b",
		MaxChars:      8000,
		CacheSize:     DefaultCacheSize,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LLMEnabled reports whether LLM enrichment is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMHost != ""
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix required by OpenAI-compatible APIs to LLMHost.
func (c *Config) Normalize() {
	if c.LLMHost != "" && !strings.HasSuffix(c.LLMHost, "/v1") {
		c.LLMHost = strings.TrimSuffix(c.LLMHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Keyphrases && c.MaxKeyphrases < 1 {
		return errors.New("enrich config: MaxKeyphrases must be positive")
	}
	if c.LLMEnabled() {
		if c.LLMModel == "" {
			return errors.New("enrich config: LLMModel is required when LLMHost is set")
		}
		if c.MaxChars < 1 {
			return errors.New("enrich config: MaxChars must be positive")
		}
	}
	if c.CacheSize < 0 {
		return errors.New("enrich config: CacheSize cannot be negative")
	}
	return nil
}

// Build assembles the configured enrichment chain. llm may be nil. Returns
// nil when nothing is enabled.
func Build(cfg *Config, llm Enricher) (Enricher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var chain []Enricher
	if llm != nil {
		chain = append(chain, llm)
	}
	if cfg.Keyphrases {
		chain = append(chain, NewKeyphrases(cfg.MaxKeyphrases))
	}
	if len(chain) == 0 {
		return nil, nil
	}

	e := Merge(chain...)
	if cfg.CacheSize > 0 {
		cached, err := NewCache(e, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return e, nil
}
