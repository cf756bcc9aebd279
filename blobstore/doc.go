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


// Package blobstore defines the object store contract used by the ingestion
// pipeline.
//
// A Store lists document names, issues time-limited read-only access grants,
// fetches documents through those grants and reports the attributes the store
// maintains for each document. Two backends are provided:
//
//   - azure: Azure Blob Storage through the azblob SDK (SAS grants)
//   - fs: a local directory tree (signed file:// grants)
//
// Grants are requested with the window returned by GrantWindow.
package blobstore
