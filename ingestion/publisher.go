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

	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/index"
)

// Publisher submits records to an index and accounts for every record it
// was given. Nothing is retried.
type Publisher struct {
	idx     index.Index
	stats   *Stats
	metrics *Metrics
	logger  *slog.Logger
}

// NewPublisher creates a publisher. stats and metrics may be nil.
func NewPublisher(idx index.Index, stats *Stats, metrics *Metrics, logger *slog.Logger) *Publisher {
	if stats == nil {
		stats = &Stats{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		idx:     idx,
		stats:   stats,
		metrics: metrics,
		logger:  logger.With("component", "publisher"),
	}
}

// Publish submits a single record.
func (p *Publisher) Publish(ctx context.Context, record *core.IndexRecord) core.UploadOutcome {
	return p.PublishBatch(ctx, []*core.IndexRecord{record})[0]
}

// PublishBatch submits records in one request and returns one outcome per
// record, in input order. A transport failure fails every record; a record
// the index did not report on is failed with ErrNoResult.
func (p *Publisher) PublishBatch(ctx context.Context, records []*core.IndexRecord) []core.UploadOutcome {
	if len(records) == 0 {
		return []core.UploadOutcome{}
	}

	keys := make([]string, len(records))
	for i, rec := range records {
		if rec != nil {
			keys[i] = rec.Key()
		}
	}

	results, err := p.idx.Upload(ctx, records)
	if err != nil {
		perr := &core.PublishError{Keys: keys, Err: err}
		p.logger.Error("index submission failed", "index", p.idx.Name(), "keys", keys, "err", perr)
		p.stats.publishErrors.Add(int64(len(records)))
		p.metrics.published(outcomeFailed, len(records))

		outcomes := make([]core.UploadOutcome, len(records))
		for i, key := range keys {
			outcomes[i] = core.UploadOutcome{Key: key, Message: err.Error()}
		}
		return outcomes
	}

	byKey := make(map[string]core.UploadOutcome, len(results))
	for _, r := range results {
		byKey[r.Key] = r
	}

	outcomes := make([]core.UploadOutcome, len(records))
	var (
		failedKeys []string
		failures   []error
	)
	for i, key := range keys {
		outcome, ok := byKey[key]
		if !ok {
			outcome = core.UploadOutcome{Key: key, Message: ErrNoResult.Error()}
		}
		outcomes[i] = outcome

		if outcome.Succeeded {
			continue
		}
		failedKeys = append(failedKeys, key)
		if ok {
			failures = append(failures, errors.New(key+": "+outcome.Message))
		} else {
			failures = append(failures, ErrNoResult)
		}
	}

	indexed := len(records) - len(failedKeys)
	p.stats.indexed.Add(int64(indexed))
	p.stats.publishErrors.Add(int64(len(failedKeys)))
	p.metrics.published(outcomeIndexed, indexed)
	p.metrics.published(outcomeFailed, len(failedKeys))

	if len(failedKeys) > 0 {
		perr := &core.PublishError{Keys: failedKeys, Err: errors.Join(failures...)}
		p.logger.Error("records rejected by index", "index", p.idx.Name(), "keys", failedKeys, "err", perr)
	}
	return outcomes
}
