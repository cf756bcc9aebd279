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
	"log/slog"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
)

const (
	// DefaultBatchSize is the number of documents handed to one worker task.
	DefaultBatchSize = 100

	// listLogInterval is how many names are retrieved between progress logs.
	listLogInterval = 100000
)

// Enumerator lists every document under a prefix and groups the names into
// fixed-size batches.
type Enumerator struct {
	store     blobstore.Store
	batchSize int
	logger    *slog.Logger
}

// NewEnumerator creates a new enumerator.
// batchSize: number of documents per batch (defaults to DefaultBatchSize when <= 0)
func NewEnumerator(store blobstore.Store, batchSize int, logger *slog.Logger) *Enumerator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Enumerator{
		store:     store,
		batchSize: batchSize,
		logger:    logger.With("component", "enumerator"),
	}
}

// Enumerate lists documents under prefix in store order. Every batch but the
// last holds exactly batchSize references and no empty batch is produced.
// Any listing failure discards the partial listing and returns an
// *core.EnumerationError.
func (e *Enumerator) Enumerate(ctx context.Context, prefix string) ([]core.Batch, error) {
	container := e.store.Container()

	var (
		batches []core.Batch
		current []core.DocumentRef
		listed  int
	)

	err := e.store.List(ctx, prefix, func(name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		current = append(current, core.DocumentRef{Container: container, Name: name})
		listed++

		if len(current) == e.batchSize {
			batches = append(batches, core.Batch{ID: len(batches), Refs: current})
			current = make([]core.DocumentRef, 0, e.batchSize)
		}

		if listed%listLogInterval == 0 {
			e.logger.Info("listing documents", "retrieved", listed, "prefix", prefix)
		}
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, &core.EnumerationError{Prefix: prefix, Listed: listed, Err: err}
	}

	if len(current) > 0 {
		batches = append(batches, core.Batch{ID: len(batches), Refs: current})
	}

	e.logger.Info("listed documents", "documents", listed, "batches", len(batches), "prefix", prefix)
	return batches, nil
}

// CountDocuments returns the total number of references across batches.
func CountDocuments(batches []core.Batch) int {
	total := 0
	for _, b := range batches {
		total += b.Len()
	}
	return total
}
