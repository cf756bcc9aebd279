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

	"github.com/poiesic/blobsearch/core"
)

// Enricher derives entities, keyphrases and language from document text.
// Implementations must be thread-safe for concurrent use.
type Enricher interface {
	// Enrich analyzes text. Fields it cannot determine are left empty.
	Enrich(ctx context.Context, text string) (*core.Entities, error)
}

// Func adapts a function to the Enricher interface.
type Func func(ctx context.Context, text string) (*core.Entities, error)

// Enrich calls f.
func (f Func) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	return f(ctx, text)
}
