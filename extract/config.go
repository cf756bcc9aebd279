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


package extract

import (
	"errors"
	"strings"
	"time"
)

// Extractor kinds.
const (
	KindTika   = "tika"
	KindLoader = "loader"
)

// Config holds configuration for content extractors.
type Config struct {
	// Kind selects the extractor implementation: "tika" or "loader".
	Kind string

	// TikaURL is the base URL of an Apache Tika server.
	// Example: "http://localhost:9998"
	TikaURL string

	// Timeout bounds a single extraction request.
	// Default: 2m
	Timeout time.Duration

	// MaxBytes caps how much of a document is read by the in-process loader.
	// Default: 64 MiB
	MaxBytes int64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithKind sets the extractor kind.
func WithKind(kind string) ConfigOption {
	return func(c *Config) {
		c.Kind = kind
	}
}

// WithTikaURL sets the Tika server URL.
func WithTikaURL(url string) ConfigOption {
	return func(c *Config) {
		c.TikaURL = url
	}
}

// WithTimeout sets the per-document extraction timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxBytes sets the maximum number of bytes read per document.
func WithMaxBytes(n int64) ConfigOption {
	return func(c *Config) {
		c.MaxBytes = n
	}
}

// DefaultConfig returns a Config for a Tika server on localhost.
func DefaultConfig() *Config {
	return &Config{
		Kind:     KindTika,
		TikaURL:  "http://localhost:9998",
		Timeout:  2 * time.Minute,
		MaxBytes: 64 << 20,
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

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	c.TikaURL = strings.TrimSuffix(c.TikaURL, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Kind {
	case KindTika:
		if c.TikaURL == "" {
			return errors.New("extract config: TikaURL is required")
		}
	case KindLoader:
	default:
		return errors.New("extract config: Kind must be tika or loader")
	}
	if c.Timeout <= 0 {
		return errors.New("extract config: Timeout must be positive")
	}
	if c.MaxBytes <= 0 {
		return errors.New("extract config: MaxBytes must be positive")
	}
	return nil
}
