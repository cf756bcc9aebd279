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


package enrich

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/blobsearch/core"
)

// DefaultCacheSize is the number of results kept by a Cache.
const DefaultCacheSize = 1024

// Cache memoizes an Enricher by text fingerprint. Failed calls are not cached.
type Cache struct {
	next  Enricher
	cache *lru.Cache[string, *core.Entities]
}

var _ Enricher = (*Cache)(nil)

// NewCache wraps next with an LRU cache of the given size.
func NewCache(next Enricher, size int) (*Cache, error) {
	if next == nil {
		return nil, ErrEnricherRequired
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *core.Entities](size)
	if err != nil {
		return nil, err
	}
	return &Cache{next: next, cache: c}, nil
}

// Enrich returns a cached result for identical text or delegates to the
// wrapped Enricher. Failed results are returned as the wrapped Enricher
// produced them and are not cached.
func (c *Cache) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	key := core.Fingerprint(text)
	if ent, ok := c.cache.Get(key); ok {
		return clone(ent), nil
	}

	ent, err := c.next.Enrich(ctx, text)
	if err != nil {
		// partial results pass through uncached
		return ent, err
	}
	if ent != nil {
		c.cache.Add(key, clone(ent))
	}
	return ent, nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.cache.Len()
}

func clone(e *core.Entities) *core.Entities {
	return &core.Entities{
		People:        slices.Clone(e.People),
		Organizations: slices.Clone(e.Organizations),
		Locations:     slices.Clone(e.Locations),
		Keyphrases:    slices.Clone(e.Keyphrases),
		Language:      e.Language,
	}
}
