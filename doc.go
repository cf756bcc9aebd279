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


// Package blobsearch indexes the documents of an object store container
// into a search index.
//
// An Engine is built from a config.Config. Each Run resets the index, lists
// the container under the configured prefix, and processes the documents in
// batches of 100 on a bounded worker pool: every document gets a read-only
// access grant, is extracted, optionally enriched, normalized into a
// core.IndexRecord and upserted by its storage path key.
//
// Supported components:
//   - stores: Azure Blob Storage (blobstore/azure) and local directories (blobstore/fs)
//   - extractors: Apache Tika server (extract/tika) and in-process loaders (extract/loader)
//   - indexes: Azure Cognitive Search (index/azuresearch) and embedded BadgerDB (index/badger)
//   - enrichment: keyphrases and OpenAI-compatible LLM entity recognition (enrich, enrich/openai)
package blobsearch
