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


// Package ingestion runs the indexing pipeline.
//
// A Pipeline resets the target index, enumerates every document under a
// prefix into fixed-size batches, and processes batches concurrently on an
// ants pool. Each batch task builds its own store, extractor and index
// clients, then for every document requests a read-only grant, extracts
// text and metadata, reads store attributes, optionally enriches, normalizes
// and publishes the record.
//
// Failures are tiered: index reset and enumeration failures abort the run
// with a *core.FatalSetupError; a failed document is logged and counted and
// its batch continues; a record the index rejects is logged and counted.
package ingestion
