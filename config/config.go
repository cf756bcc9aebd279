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


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/blobsearch/enrich"
	"github.com/poiesic/blobsearch/extract"
	"github.com/poiesic/blobsearch/ingestion"
	"gopkg.in/yaml.v3"
)

// Store types.
const (
	StoreAzure = "azure"
	StoreFS    = "fs"
)

// Index types.
const (
	IndexAzureSearch = "azuresearch"
	IndexBadger      = "badger"
)

// StoreConfig selects and configures the object store.
type StoreConfig struct {
	Type        string `yaml:"type"`
	Account     string `yaml:"account"`
	Key         string `yaml:"key"`
	Endpoint    string `yaml:"endpoint"`
	Container   string `yaml:"container"`
	Prefix      string `yaml:"prefix"`
	PageSize    int    `yaml:"page_size"`
	Root        string `yaml:"root"`
	GrantSecret string `yaml:"grant_secret"`
}

// IndexConfig selects and configures the search index.
type IndexConfig struct {
	Type       string        `yaml:"type"`
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Name       string        `yaml:"name"`
	APIVersion string        `yaml:"api_version"`
	Path       string        `yaml:"path"`
	InMemory   bool          `yaml:"in_memory"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ExtractorConfig selects and configures the content extractor.
type ExtractorConfig struct {
	Type     string        `yaml:"type"`
	TikaURL  string        `yaml:"tika_url"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

// EnrichmentConfig configures optional enrichment.
type EnrichmentConfig struct {
	Keyphrases    bool   `yaml:"keyphrases"`
	MaxKeyphrases int    `yaml:"max_keyphrases"`
	LLMHost       string `yaml:"llm_host"`
	LLMModel      string `yaml:"llm_model"`
	LLMToken      string `yaml:"llm_token"`
	MaxChars      int    `yaml:"max_chars"`
	CacheSize     int    `yaml:"cache_size"`
}

// PipelineConfig configures batching and concurrency.
type PipelineConfig struct {
	Parallelism    int `yaml:"parallelism"`
	BatchSize      int `yaml:"batch_size"`
	ReportInterval int `yaml:"report_interval"`
	ResetAttempts  int `yaml:"reset_attempts"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration of a blobsearch run.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Index      IndexConfig      `yaml:"index"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Default returns the configuration used when no file is present: a local
// directory store and an embedded index.
func Default() *Config {
	ext := extract.DefaultConfig()
	enr := enrich.DefaultConfig()
	return &Config{
		Store: StoreConfig{
			Type:      StoreFS,
			Root:      "./data",
			Container: "documents",
			PageSize:  100,
		},
		Index: IndexConfig{
			Type:       IndexBadger,
			Name:       "documents",
			APIVersion: "2023-11-01",
			Path:       "./index",
			Timeout:    30 * time.Second,
		},
		Extractor: ExtractorConfig{
			Type:     ext.Kind,
			TikaURL:  ext.TikaURL,
			Timeout:  ext.Timeout,
			MaxBytes: ext.MaxBytes,
		},
		Enrichment: EnrichmentConfig{
			Keyphrases:    enr.Keyphrases,
			MaxKeyphrases: enr.MaxKeyphrases,
			LLMModel:      enr.LLMModel,
			MaxChars:      enr.MaxChars,
			CacheSize:     enr.CacheSize,
		},
		Pipeline: PipelineConfig{
			Parallelism:    ingestion.DefaultParallelism,
			BatchSize:      ingestion.DefaultBatchSize,
			ReportInterval: ingestion.DefaultReportInterval,
			ResetAttempts:  ingestion.DefaultResetAttempts,
		},
	}
}

// Load reads a YAML config from path on top of Default. If the file does not
// exist, the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the selected components have what they need. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	c.Store.Type = strings.ToLower(strings.TrimSpace(c.Store.Type))
	switch c.Store.Type {
	case StoreAzure:
		if c.Store.Account == "" {
			add("store.account is required for the azure store")
		}
		if c.Store.Key == "" {
			add("store.key is required for the azure store")
		}
	case StoreFS:
		if c.Store.Root == "" {
			add("store.root is required for the fs store")
		}
	default:
		add("store.type must be %s or %s, got %q", StoreAzure, StoreFS, c.Store.Type)
	}
	if c.Store.Container == "" {
		add("store.container is required")
	}

	c.Index.Type = strings.ToLower(strings.TrimSpace(c.Index.Type))
	switch c.Index.Type {
	case IndexAzureSearch:
		if c.Index.Endpoint == "" {
			add("index.endpoint is required for azuresearch")
		}
		if c.Index.APIKey == "" {
			add("index.api_key is required for azuresearch")
		}
	case IndexBadger:
		if c.Index.Path == "" && !c.Index.InMemory {
			add("index.path is required unless index.in_memory is set")
		}
	default:
		add("index.type must be %s or %s, got %q", IndexAzureSearch, IndexBadger, c.Index.Type)
	}
	if c.Index.Name == "" {
		add("index.name is required")
	}

	if err := c.ExtractConfig().Validate(); err != nil {
		add("%v", err)
	}
	if err := c.EnrichConfig().Validate(); err != nil {
		add("%v", err)
	}

	if c.Pipeline.Parallelism < 1 {
		add("pipeline.parallelism must be positive")
	}
	if c.Pipeline.BatchSize < 1 {
		add("pipeline.batch_size must be positive")
	}
	if c.Pipeline.ResetAttempts < 1 {
		add("pipeline.reset_attempts must be positive")
	}

	return errors.Join(errs...)
}

// ExtractConfig returns the extractor section as a normalized extract.Config.
func (c *Config) ExtractConfig() *extract.Config {
	cfg := extract.NewConfig(
		extract.WithKind(c.Extractor.Type),
		extract.WithTikaURL(c.Extractor.TikaURL),
		extract.WithTimeout(c.Extractor.Timeout),
		extract.WithMaxBytes(c.Extractor.MaxBytes),
	)
	cfg.Normalize()
	return cfg
}

// EnrichConfig returns the enrichment section as a normalized enrich.Config.
func (c *Config) EnrichConfig() *enrich.Config {
	cfg := enrich.NewConfig(
		enrich.WithKeyphrases(c.Enrichment.Keyphrases),
		enrich.WithMaxKeyphrases(c.Enrichment.MaxKeyphrases),
		enrich.WithLLM(c.Enrichment.LLMHost, c.Enrichment.LLMModel, c.Enrichment.LLMToken),
		enrich.WithMaxChars(c.Enrichment.MaxChars),
		enrich.WithCacheSize(c.Enrichment.CacheSize),
	)
	cfg.Normalize()
	return cfg
}
