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


// Package core defines the domain types shared by every blobsearch package.
//
// A run turns DocumentRefs listed from an object store into IndexRecords.
// NewIndexRecord is the metadata normalizer: it merges extractor output,
// store attributes and optional enrichment into one record and applies the
// documented defaults (null content type, 1900-01-01 last-modified sentinel,
// empty entity lists).
//
// The index key of a record is its StoragePath, a URL token produced by
// EncodeStoragePath from "<container URL>/<document name>".
//
// # Errors
//
// FatalSetupError, DocumentError, PublishError and EnumerationError carry
// the failure taxonomy used by the ingestion pipeline. All of them unwrap to
// their cause.
package core
