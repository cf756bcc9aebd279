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


package mock

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/enrich"
)

// MockEnricher is a mock implementation of enrich.Enricher for testing.
// It is safe for concurrent use.
type MockEnricher struct {
	// EnrichFunc allows customizing the behavior of Enrich.
	EnrichFunc func(ctx context.Context, text string) (*core.Entities, error)

	callCount atomic.Int64
}

var _ enrich.Enricher = (*MockEnricher)(nil)

// NewMockEnricher creates a mock enricher with default behavior.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// Enrich returns capitalized words as people.
// Default behavior: every word starting with an upper-case letter is reported
// as a person and the language is "en".
func (m *MockEnricher) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	m.callCount.Add(1)

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, text)
	}

	people := []string{}
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}
		if unicode.IsUpper([]rune(word)[0]) {
			people = append(people, word)
		}
	}

	return &core.Entities{People: people, Language: "en"}, nil
}

// CallCount returns the number of times Enrich was called.
func (m *MockEnricher) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockEnricher) Reset() {
	m.callCount.Store(0)
	m.EnrichFunc = nil
}
