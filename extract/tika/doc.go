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


// Package tika implements extract.Extractor against an Apache Tika server.
//
// Each document is streamed to /rmeta/text through the go-tika client. The
// response lists the container document followed by any embedded documents;
// their text is concatenated and the metadata of the container is flattened
// into strings.
package tika
