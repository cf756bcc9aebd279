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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/enrich"
	"github.com/poiesic/blobsearch/index"
)

const (
	// DefaultParallelism is the number of batches processed concurrently.
	DefaultParallelism = 16

	// DefaultResetAttempts is how often the index reset is tried.
	DefaultResetAttempts = 3

	// DefaultResetDelay is the base backoff between index reset attempts.
	DefaultResetDelay = 500 * time.Millisecond
)

// State is the coordinator state of a Pipeline.
type State int32

const (
	StateIdle State = iota
	StateIndexReset
	StateEnumerating
	StateProcessing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIndexReset:
		return "index_reset"
	case StateEnumerating:
		return "enumerating"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DefinitionFunc returns the schema an index is recreated with.
type DefinitionFunc func(name string) *index.Definition

// Pipeline resets the index, enumerates documents into batches and runs
// one pool task per batch.
type Pipeline struct {
	stores     StoreFactory
	extractors ExtractorFactory
	indexes    IndexFactory
	enricher   enrich.Enricher
	definition DefinitionFunc

	prefix         string
	parallelism    int
	batchSize      int
	reportInterval int
	resetAttempts  int
	resetDelay     time.Duration

	progress io.Writer
	metrics  *Metrics
	stats    *Stats
	now      func() time.Time
	logger   *slog.Logger

	state   atomic.Int32
	running atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithParallelism sets how many batches are processed concurrently.
func WithParallelism(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.parallelism = n
		return nil
	}
}

// WithBatchSize sets the number of documents per batch.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		p.batchSize = n
		return nil
	}
}

// WithPrefix restricts the run to documents whose names start with prefix.
func WithPrefix(prefix string) Option {
	return func(p *Pipeline) error {
		p.prefix = prefix
		return nil
	}
}

// WithEnricher enables optional enrichment. It must be safe for concurrent use.
func WithEnricher(e enrich.Enricher) Option {
	return func(p *Pipeline) error {
		p.enricher = e
		return nil
	}
}

// WithDefinition overrides index.DefaultDefinition.
func WithDefinition(fn DefinitionFunc) Option {
	return func(p *Pipeline) error {
		if fn == nil {
			return fmt.Errorf("definition func cannot be nil")
		}
		p.definition = fn
		return nil
	}
}

// WithProgress sets where progress lines are written.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		if reportInterval > 0 {
			p.reportInterval = reportInterval
		}
		return nil
	}
}

// WithMetrics sets the Prometheus collectors updated during runs.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithResetRetry sets how often the index reset is attempted and the base
// backoff delay between attempts.
func WithResetRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.resetAttempts = attempts
		p.resetDelay = baseDelay
		return nil
	}
}

// WithClock sets the time source used for access grants.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		p.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline from client factories.
func NewPipeline(stores StoreFactory, extractors ExtractorFactory, indexes IndexFactory, opts ...Option) (*Pipeline, error) {
	if stores == nil {
		return nil, ErrStoreFactoryRequired
	}
	if extractors == nil {
		return nil, ErrExtractorFactoryRequired
	}
	if indexes == nil {
		return nil, ErrIndexFactoryRequired
	}

	p := &Pipeline{
		stores:         stores,
		extractors:     extractors,
		indexes:        indexes,
		definition:     index.DefaultDefinition,
		parallelism:    DefaultParallelism,
		batchSize:      DefaultBatchSize,
		reportInterval: DefaultReportInterval,
		resetAttempts:  DefaultResetAttempts,
		resetDelay:     DefaultResetDelay,
		stats:          &Stats{},
		now:            time.Now,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// State returns the current coordinator state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Stats returns the counters of the current or last run.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Run executes one full ingestion: reset the index, enumerate, process every
// batch, and report. Index reset and enumeration failures are returned as
// *core.FatalSetupError. Per-document and per-record failures are only
// counted in the Summary. Cancelling ctx stops dispatch; in-flight documents
// finish their current call and Run returns a FatalSetupError for the
// processing stage along with the partial Summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	started := time.Now()
	p.stats.reset()

	p.setState(StateIndexReset)
	if err := p.resetIndex(ctx, logger); err != nil {
		p.setState(StateDone)
		return nil, &core.FatalSetupError{Stage: core.StageIndexReset, Err: err}
	}

	p.setState(StateEnumerating)
	batches, err := p.enumerate(ctx, logger)
	if err != nil {
		p.setState(StateDone)
		return nil, &core.FatalSetupError{Stage: core.StageEnumerating, Err: err}
	}
	total := CountDocuments(batches)

	p.setState(StateProcessing)
	logger.Info("processing documents", "documents", total, "batches", len(batches), "parallelism", p.parallelism)
	tracker := NewProgressTracker(p.progress, total, p.reportInterval)
	tracker.Start()

	if err := p.dispatch(ctx, batches, tracker, logger); err != nil {
		p.setState(StateDone)
		return nil, &core.FatalSetupError{Stage: core.StageProcessing, Err: err}
	}
	tracker.Finish()

	summary := p.stats.summary(runID, total, len(batches), time.Since(started))
	p.setState(StateDone)

	if err := ctx.Err(); err != nil {
		return summary, &core.FatalSetupError{Stage: core.StageProcessing, Err: err}
	}

	logger.Info("run complete",
		"documents", summary.Enumerated,
		"indexed", summary.Indexed,
		"document_errors", summary.DocumentErrors,
		"publish_errors", summary.PublishErrors,
		"elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}

// resetIndex deletes the index if it exists and recreates it.
func (p *Pipeline) resetIndex(ctx context.Context, logger *slog.Logger) error {
	idx, err := p.indexes()
	if err != nil {
		return err
	}
	defer idx.Close()

	return retryWithBackoff(ctx, logger, func() error {
		exists, err := idx.Exists(ctx)
		if err != nil {
			return fmt.Errorf("check index: %w", err)
		}
		if exists {
			if err := idx.Delete(ctx); err != nil && !errors.Is(err, index.ErrIndexNotFound) {
				return fmt.Errorf("delete index: %w", err)
			}
			logger.Info("deleted index", "index", idx.Name())
		}
		if err := idx.Create(ctx, p.definition(idx.Name())); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		logger.Info("created index", "index", idx.Name())
		return nil
	}, p.resetAttempts, p.resetDelay)
}

func (p *Pipeline) enumerate(ctx context.Context, logger *slog.Logger) ([]core.Batch, error) {
	store, err := p.stores()
	if err != nil {
		return nil, &core.EnumerationError{Prefix: p.prefix, Err: err}
	}
	defer store.Close()

	return NewEnumerator(store, p.batchSize, logger).Enumerate(ctx, p.prefix)
}

// dispatch submits one pool task per batch and waits for all of them.
func (p *Pipeline) dispatch(ctx context.Context, batches []core.Batch, tracker *ProgressTracker, logger *slog.Logger) error {
	if len(batches) == 0 {
		return nil
	}

	pool, err := ants.NewPool(p.parallelism)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			p.runBatch(ctx, batch, tracker, logger)
		})
		if err != nil {
			wg.Done()
			logger.Error("failed to submit batch", "batch", batch.ID, "err", err)
			p.failBatch(batch, tracker, logger, err)
		}
	}
	wg.Wait()
	return nil
}

func (p *Pipeline) runBatch(ctx context.Context, batch core.Batch, tracker *ProgressTracker, logger *slog.Logger) {
	logger = logger.With("batch", batch.ID)

	w, err := p.newWorker(tracker, logger)
	if err != nil {
		p.failBatch(batch, tracker, logger, err)
		return
	}
	defer func() {
		if err := w.close(); err != nil {
			logger.Warn("failed to close worker clients", "err", err)
		}
	}()

	w.processBatch(ctx, batch)
	logger.Debug("batch finished", "documents", batch.Len())
}
