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


package blobsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/blobstore/azure"
	"github.com/poiesic/blobsearch/blobstore/fs"
	"github.com/poiesic/blobsearch/config"
	"github.com/poiesic/blobsearch/enrich"
	"github.com/poiesic/blobsearch/enrich/openai"
	"github.com/poiesic/blobsearch/extract"
	"github.com/poiesic/blobsearch/extract/loader"
	"github.com/poiesic/blobsearch/extract/tika"
	"github.com/poiesic/blobsearch/index"
	"github.com/poiesic/blobsearch/index/azuresearch"
	"github.com/poiesic/blobsearch/index/badger"
	"github.com/poiesic/blobsearch/ingestion"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine wires the configured store, extractor, enrichment and index into
// ingestion pipelines. It owns the embedded index backend when one is used.
type Engine struct {
	cfg        *config.Config
	extractCfg *extract.Config
	backend    *badger.Backend
	enricher   enrich.Enricher
	metrics    *ingestion.Metrics
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger     *slog.Logger
	progress   io.Writer
	registerer prometheus.Registerer
	llm        enrich.Enricher
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithProgress sets where progress lines are written. Default is no output.
func WithProgress(w io.Writer) Option {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithRegisterer registers pipeline metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registerer = reg
	}
}

// WithLLMEnricher replaces the LLM enricher built from the enrichment config.
func WithLLMEnricher(e enrich.Enricher) Option {
	return func(o *engineOptions) {
		o.llm = e
	}
}

// New validates cfg and prepares the shared resources of a run.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		cfg:        cfg,
		extractCfg: cfg.ExtractConfig(),
		progress:   options.progress,
		logger:     options.logger,
	}

	enrichCfg := cfg.EnrichConfig()
	llm := options.llm
	if llm == nil && enrichCfg.LLMEnabled() {
		client, err := openai.New(enrichCfg)
		if err != nil {
			return nil, fmt.Errorf("create llm enricher: %w", err)
		}
		llm = client
	}
	enricher, err := enrich.Build(enrichCfg, llm)
	if err != nil {
		return nil, err
	}
	e.enricher = enricher

	if options.registerer != nil {
		metrics, err := ingestion.NewMetrics(options.registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		e.metrics = metrics
	}

	if cfg.Index.Type == config.IndexBadger {
		backend, err := badger.OpenBackend(cfg.Index.Path, cfg.Index.InMemory)
		if err != nil {
			return nil, fmt.Errorf("open index backend: %w", err)
		}
		e.backend = backend
	}

	return e, nil
}

// Close releases the embedded index backend, if any.
func (e *Engine) Close() error {
	if e.backend == nil {
		return nil
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing index backend", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// NewStore creates a client for the configured container.
func (e *Engine) NewStore() (blobstore.Store, error) {
	sc := e.cfg.Store
	switch sc.Type {
	case config.StoreAzure:
		opts := []azure.Option{azure.WithLogger(e.logger), azure.WithPageSize(int32(sc.PageSize))}
		if sc.Endpoint != "" {
			opts = append(opts, azure.WithEndpoint(sc.Endpoint))
		}
		store, err := azure.New(sc.Account, sc.Key, sc.Container, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreFS:
		opts := []fs.Option{fs.WithLogger(e.logger)}
		if sc.GrantSecret != "" {
			opts = append(opts, fs.WithSecret([]byte(sc.GrantSecret)))
		}
		store, err := fs.New(sc.Root, sc.Container, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: store type %q", ErrUnsupported, sc.Type)
	}
}

// NewExtractor creates the configured extractor reading documents through opener.
func (e *Engine) NewExtractor(opener extract.Opener) (extract.Extractor, error) {
	switch e.extractCfg.Kind {
	case extract.KindTika:
		ext, err := tika.New(e.extractCfg, opener, tika.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		return ext, nil
	case extract.KindLoader:
		ext, err := loader.New(e.extractCfg, opener, e.logger)
		if err != nil {
			return nil, err
		}
		return ext, nil
	default:
		return nil, fmt.Errorf("%w: extractor type %q", ErrUnsupported, e.extractCfg.Kind)
	}
}

// NewIndex creates a client for the configured index.
func (e *Engine) NewIndex() (index.Index, error) {
	ic := e.cfg.Index
	switch ic.Type {
	case config.IndexAzureSearch:
		opts := []azuresearch.Option{azuresearch.WithLogger(e.logger)}
		if ic.APIVersion != "" {
			opts = append(opts, azuresearch.WithAPIVersion(ic.APIVersion))
		}
		if ic.Timeout > 0 {
			opts = append(opts, azuresearch.WithTimeout(ic.Timeout))
		}
		idx, err := azuresearch.New(ic.Endpoint, ic.APIKey, ic.Name, opts...)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexBadger:
		idx, err := badger.New(e.backend, ic.Name, e.logger)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: index type %q", ErrUnsupported, ic.Type)
	}
}

// NewSearcher returns a local query interface over the embedded index.
func (e *Engine) NewSearcher() (index.Searcher, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: local search needs the %s index", ErrUnsupported, config.IndexBadger)
	}
	idx, err := badger.New(e.backend, e.cfg.Index.Name, e.logger)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Enricher returns the configured enrichment chain, or nil.
func (e *Engine) Enricher() enrich.Enricher {
	return e.enricher
}

// NewPipeline creates an ingestion pipeline from the configuration. opts are
// applied after the configured ones.
func (e *Engine) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	pc := e.cfg.Pipeline
	base := []ingestion.Option{
		ingestion.WithLogger(e.logger),
		ingestion.WithParallelism(pc.Parallelism),
		ingestion.WithBatchSize(pc.BatchSize),
		ingestion.WithPrefix(e.cfg.Store.Prefix),
		ingestion.WithProgress(e.progress, pc.ReportInterval),
		ingestion.WithResetRetry(pc.ResetAttempts, ingestion.DefaultResetDelay),
		ingestion.WithMetrics(e.metrics),
	}
	if e.enricher != nil {
		base = append(base, ingestion.WithEnricher(e.enricher))
	}
	return ingestion.NewPipeline(e.NewStore, e.NewExtractor, e.NewIndex, append(base, opts...)...)
}

// Run executes one ingestion run with the configured pipeline.
func (e *Engine) Run(ctx context.Context, opts ...ingestion.Option) (*ingestion.Summary, error) {
	p, err := e.NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// ListDocuments returns every document name under the configured prefix.
func (e *Engine) ListDocuments(ctx context.Context) ([]string, error) {
	store, err := e.NewStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	names, err := blobstore.ListAll(ctx, store, e.cfg.Store.Prefix)
	if err != nil {
		return nil, errors.Join(ErrListFailed, err)
	}
	return names, nil
}
