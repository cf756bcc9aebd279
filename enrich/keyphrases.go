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
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/blobsearch/core"
)

// DefaultMaxKeyphrases is the number of keyphrases kept per document.
const DefaultMaxKeyphrases = 10

const minTokenLength = 3

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off",
		"own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "not", "have", "has",
		"had", "you", "your", "our", "their", "they", "them", "his", "her", "she", "him", "who", "which",
		"what", "when", "where", "how", "all", "any", "each", "other", "some", "there", "here", "also",
		"may", "would", "could", "one", "more", "most", "only",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Keyphrases ranks the words of a document by frequency, ignoring stop words.
type Keyphrases struct {
	max int
}

var _ Enricher = (*Keyphrases)(nil)

// NewKeyphrases creates a keyphrase ranker returning at most max phrases.
func NewKeyphrases(max int) *Keyphrases {
	if max <= 0 {
		max = DefaultMaxKeyphrases
	}
	return &Keyphrases{max: max}
}

// Enrich returns the most frequent non-stop words of text. Ties keep the order
// of first occurrence.
func (k *Keyphrases) Enrich(ctx context.Context, text string) (*core.Entities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &core.Entities{Keyphrases: k.rank(text)}, nil
}

func (k *Keyphrases) rank(text string) []string {
	type term struct {
		word  string
		count int
		first int
	}

	terms := map[string]*term{}
	for i, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(tok)) < minTokenLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if t, ok := terms[tok]; ok {
			t.count++
			continue
		}
		terms[tok] = &term{word: tok, count: 1, first: i}
	}

	ranked := make([]*term, 0, len(terms))
	for _, t := range terms {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	if len(ranked) > k.max {
		ranked = ranked[:k.max]
	}
	out := make([]string, len(ranked))
	for i, t := range ranked {
		out[i] = t.word
	}
	return out
}
