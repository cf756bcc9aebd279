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
	"errors"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/index"
)

// Get returns the record stored under key.
func (i *Index) Get(ctx context.Context, key string) (*core.IndexRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *core.IndexRecord
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(i.name, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return index.ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = index.UnmarshalRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Count returns the number of stored records.
func (i *Index) Count(ctx context.Context) (int, error) {
	count := 0
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordPrefix(i.name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if count%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// forEach decodes every record of the index in key order until fn returns
// false or an error.
func (i *Index) forEach(ctx context.Context, fn func(*core.IndexRecord) bool) error {
	return i.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordPrefix(i.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.IndexRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = index.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if !fn(record) {
				return nil
			}
		}
		return nil
	}, false)
}

// Search returns up to limit records whose searchable fields contain every
// non-stop word of query, in key order.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]*core.IndexRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return []*core.IndexRecord{}, nil
	}

	results := []*core.IndexRecord{}
	err := i.forEach(ctx, func(rec *core.IndexRecord) bool {
		if containsAllWords(searchableText(rec), queryWords) {
			results = append(results, rec)
		}
		return len(results) < limit
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Suggest returns distinct people, organization and location names with a
// word starting with prefix, sorted, at most limit of them.
func (i *Index) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}, nil
	}

	seen := map[string]struct{}{}
	err := i.forEach(ctx, func(rec *core.IndexRecord) bool {
		for _, values := range [][]string{rec.People, rec.Organizations, rec.Locations} {
			for _, v := range values {
				if matchesInfix(v, prefix) {
					seen[v] = struct{}{}
				}
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func searchableText(rec *core.IndexRecord) string {
	parts := []string{rec.Content, rec.StorageContentType, rec.StorageName, rec.Author, rec.MergedContent, rec.Text}
	parts = append(parts, rec.People...)
	parts = append(parts, rec.Organizations...)
	parts = append(parts, rec.Locations...)
	parts = append(parts, rec.Keyphrases...)
	return strings.Join(parts, " ")
}

// matchesInfix reports whether any word of value starts with prefix.
func matchesInfix(value, prefix string) bool {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, prefix) {
		return true
	}
	for _, word := range strings.Fields(lower) {
		if strings.HasPrefix(word, prefix) {
			return true
		}
	}
	return false
}
