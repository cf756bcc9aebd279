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


// Package enrich adds entities, keyphrases and language to extracted text.
//
// Enrichment is optional: the ingestion pipeline indexes a document without
// entities when no Enricher is configured or when enrichment fails.
//
// Building blocks:
//   - Keyphrases: stop-word filtered frequency ranking, in process
//   - openai: people, organizations, locations and language from an
//     OpenAI-compatible chat model
//   - Merge: combines enrichers, first non-empty value per field wins
//   - Cache: LRU memoization keyed by a fingerprint of the text
//
// Build assembles these from a Config.
package enrich
