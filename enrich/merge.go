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
	"errors"

	"github.com/poiesic/blobsearch/core"
)

type merged []Enricher

// Merge combines enrichers. They run in order and, per field, the first
// non-empty value wins. Failures are joined into the returned error while the
// results of the remaining enrichers are still merged.
func Merge(enrichers ...Enricher) Enricher {
	out := make(merged, 0, len(enrichers))
	for _, e := range enrichers {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m merged) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	result := &core.Entities{}
	var errs []error

	for _, e := range m {
		ent, err := e.Enrich(ctx, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ent == nil {
			continue
		}
		if len(result.People) == 0 {
			result.People = ent.People
		}
		if len(result.Organizations) == 0 {
			result.Organizations = ent.Organizations
		}
		if len(result.Locations) == 0 {
			result.Locations = ent.Locations
		}
		if len(result.Keyphrases) == 0 {
			result.Keyphrases = ent.Keyphrases
		}
		if result.Language == "" {
			result.Language = ent.Language
		}
	}

	return result, errors.Join(errs...)
}
