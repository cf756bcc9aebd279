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


package index

import (
	"context"

	"github.com/poiesic/blobsearch/core"
)

// Index is a search index bound to one index name.
// Implementations must be safe for concurrent use.
type Index interface {
	// Name returns the index name.
	Name() string

	// Exists reports whether the index is defined.
	Exists(ctx context.Context) (bool, error)

	// Delete removes the index definition and all of its records.
	Delete(ctx context.Context) error

	// Create defines the index. It fails if the index already exists.
	Create(ctx context.Context, def *Definition) error

	// Upload upserts records by key. The returned outcomes hold one entry per
	// record the service reported on. A non-nil error means the submission
	// as a whole failed and no outcome can be trusted.
	Upload(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error)

	// Close releases resources held by the index client.
	Close() error
}

// Searcher is implemented by indexes that can answer queries locally.
type Searcher interface {
	// Get returns the record stored under key.
	Get(ctx context.Context, key string) (*core.IndexRecord, error)

	// Count returns the number of records in the index.
	Count(ctx context.Context) (int, error)

	// Search returns records whose searchable fields contain every query word.
	Search(ctx context.Context, query string, limit int) ([]*core.IndexRecord, error)

	// Suggest returns distinct suggester source values starting with prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}
