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


// Package extract defines the content extraction contract.
//
// An Extractor receives the access grant for one document, fetches the bytes
// through an Opener and returns the document text plus a flat metadata map.
// The extraction algorithm itself is opaque to the pipeline.
//
// Implementations:
//   - tika: delegates to an Apache Tika server (/rmeta/text)
//   - loader: runs in process on langchaingo document loaders
//   - mock: test double
package extract
