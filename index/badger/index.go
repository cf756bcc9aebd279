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


package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/index"
)

// Index is an index.Index stored in a shared Backend.
type Index struct {
	backend *Backend
	name    string
	logger  *slog.Logger
}

var (
	_ index.Index    = (*Index)(nil)
	_ index.Searcher = (*Index)(nil)
)

// New binds an index name to a backend. The backend stays open after the
// index is closed.
func New(backend *Backend, name string, logger *slog.Logger) (*Index, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if err := index.ValidateName(name); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		backend: backend,
		name:    name,
		logger:  logger.With("component", "badger-index", "index", name),
	}, nil
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// Exists reports whether the index definition is stored.
func (i *Index) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := i.Definition(ctx)
	if errors.Is(err, index.ErrIndexNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Definition returns the stored index definition.
func (i *Index) Definition(ctx context.Context) (*index.Definition, error) {
	var def index.Definition
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDefinitionKey(i.name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return index.ErrIndexNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &def)
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// Delete drops every record of the index and then its definition.
func (i *Index) Delete(ctx context.Context) error {
	exists, err := i.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return index.ErrIndexNotFound
	}

	if err := i.backend.DropPrefix(makeRecordPrefix(i.name)); err != nil {
		return fmt.Errorf("drop records: %w", err)
	}
	err = i.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Delete(makeDefinitionKey(i.name))
	}, true)
	if err != nil {
		return err
	}

	i.logger.Debug("deleted index")
	return nil
}

// Create stores the definition. The definition name must match the index.
func (i *Index) Create(ctx context.Context, def *index.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("%w: definition is nil", index.ErrInvalidDefinition)
	}
	if def.Name != i.name {
		return fmt.Errorf("%w: definition is for %q, not %q", index.ErrInvalidDefinition, def.Name, i.name)
	}
	if err := def.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(def)
	if err != nil {
		return err
	}

	err = i.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDefinitionKey(i.name))
		if err == nil {
			return index.ErrIndexExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Set(makeDefinitionKey(i.name), data)
	}, true)
	if err != nil {
		return err
	}

	i.logger.Debug("created index", "fields", len(def.Fields))
	return nil
}

// Upload upserts each record in its own transaction. Invalid records and
// write conflicts are reported per record; a missing index fails the whole
// submission.
func (i *Index) Upload(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error) {
	exists, err := i.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, index.ErrIndexNotFound
	}

	outcomes := make([]core.UploadOutcome, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, i.put(rec))
	}
	return outcomes, nil
}

func (i *Index) put(rec *core.IndexRecord) core.UploadOutcome {
	var key string
	if rec != nil {
		key = rec.Key()
	}
	if err := core.ValidateIndexRecord(rec); err != nil {
		return core.UploadOutcome{Key: key, StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	status := http.StatusCreated
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		recKey := makeRecordKey(i.name, key)
		if _, err := tx.Get(recKey); err == nil {
			status = http.StatusOK
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Set(recKey, index.MarshalRecord(rec))
	}, true)

	switch {
	case err == nil:
		return core.UploadOutcome{Key: key, Succeeded: true, StatusCode: status}
	case errors.Is(err, badger.ErrConflict):
		return core.UploadOutcome{Key: key, StatusCode: http.StatusConflict, Message: err.Error()}
	default:
		return core.UploadOutcome{Key: key, StatusCode: http.StatusServiceUnavailable, Message: err.Error()}
	}
}

// Close is a no-op; the Backend is closed by its owner.
func (i *Index) Close() error {
	return nil
}
