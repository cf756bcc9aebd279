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
	"log/slog"
	"time"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/enrich"
	"github.com/poiesic/blobsearch/extract"
	"github.com/poiesic/blobsearch/index"
)

// StoreFactory builds a store client. Every batch task gets its own.
type StoreFactory func() (blobstore.Store, error)

// ExtractorFactory builds an extractor that fetches documents through opener.
type ExtractorFactory func(opener extract.Opener) (extract.Extractor, error)

// IndexFactory builds an index client.
type IndexFactory func() (index.Index, error)

// worker processes the documents of one batch with its own clients.
type worker struct {
	store     blobstore.Store
	extractor extract.Extractor
	index     index.Index
	enricher  enrich.Enricher
	publisher *Publisher
	stats     *Stats
	metrics   *Metrics
	tracker   *ProgressTracker
	now       func() time.Time
	logger    *slog.Logger
}

// newWorker builds the per-task clients. Clients created before a failure
// are closed.
func (p *Pipeline) newWorker(tracker *ProgressTracker, logger *slog.Logger) (*worker, error) {
	store, err := p.stores()
	if err != nil {
		return nil, err
	}
	extractor, err := p.extractors(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	idx, err := p.indexes()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &worker{
		store:     store,
		extractor: extractor,
		index:     idx,
		enricher:  p.enricher,
		publisher: NewPublisher(idx, p.stats, p.metrics, logger),
		stats:     p.stats,
		metrics:   p.metrics,
		tracker:   tracker,
		now:       p.now,
		logger:    logger.With("component", "worker"),
	}, nil
}

func (w *worker) close() error {
	return errors.Join(w.index.Close(), w.store.Close())
}

// process turns one document into an index record: grant, extract,
// attributes, optional enrichment, normalize. A failure in any required step
// is returned as a *core.DocumentError.
func (w *worker) process(ctx context.Context, batchID int, ref core.DocumentRef) (*core.IndexRecord, error) {
	start, expiry := blobstore.GrantWindow(w.now())
	uri, err := w.store.Grant(ctx, ref.Name, start, expiry)
	if err != nil {
		return nil, &core.DocumentError{Document: ref, Step: core.StepGrant, Err: err}
	}

	extraction, err := w.extractor.Extract(ctx, uri)
	if err != nil {
		return nil, &core.DocumentError{Document: ref, Step: core.StepExtract, Err: err}
	}

	attrs, err := w.store.Attributes(ctx, ref.Name)
	if err != nil {
		return nil, &core.DocumentError{Document: ref, Step: core.StepAttributes, Err: err}
	}

	var entities *core.Entities
	if w.enricher != nil && extraction != nil && extraction.Text != "" {
		entities, err = w.enricher.Enrich(ctx, extraction.Text)
		if err != nil {
			w.logger.Warn("enrichment failed, indexing partial result", "batch", batchID, "document", ref.String(), "err", err)
		}
	}

	record := core.NewIndexRecord(core.StorageName(w.store.URL(), ref.Name), extraction, attrs, entities)
	if err := core.ValidateIndexRecord(record); err != nil {
		return nil, &core.DocumentError{Document: ref, Step: core.StepNormalize, Err: err}
	}

	w.logger.Debug("processed document", "batch", batchID, "document", ref.String(), "key", record.Key())
	return record, nil
}

// processBatch processes and publishes every document of the batch in order.
// Document failures are logged and counted; the batch continues. It stops
// early only when ctx is cancelled.
func (w *worker) processBatch(ctx context.Context, batch core.Batch) {
	w.metrics.batchStarted()
	defer w.metrics.batchFinished()

	for _, ref := range batch.Refs {
		if ctx.Err() != nil {
			return
		}

		started := time.Now()
		record, err := w.process(ctx, batch.ID, ref)
		if err != nil {
			w.logger.Error("document failed", "batch", batch.ID, "document", ref.String(), "err", err)
			w.stats.documentErrors.Add(1)
			w.metrics.observeDocument(outcomeFailed, time.Since(started).Seconds())
		} else {
			w.metrics.observeDocument(outcomeSuccess, time.Since(started).Seconds())
			w.publisher.Publish(ctx, record)
		}

		w.stats.completed.Add(1)
		w.tracker.Increment(1)
	}
}

// failBatch accounts for every document of a batch whose clients could not
// be built.
func (p *Pipeline) failBatch(batch core.Batch, tracker *ProgressTracker, logger *slog.Logger, cause error) {
	for _, ref := range batch.Refs {
		err := &core.DocumentError{Document: ref, Step: core.StepSetup, Err: cause}
		logger.Error("document failed", "batch", batch.ID, "document", ref.String(), "err", err)
		p.stats.documentErrors.Add(1)
		p.stats.completed.Add(1)
		p.metrics.observeDocument(outcomeFailed, 0)
		tracker.Increment(1)
	}
}
