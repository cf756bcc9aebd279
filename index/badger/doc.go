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


// Package badger implements index.Index on an embedded BadgerDB database.
//
// Several indexes can share one Backend. Each index stores its definition as
// JSON under "idxdef:<name>" and its records, serialized with mus-go, under
// "idxrec:<name>:<key>". Delete drops the record prefix, so an index reset
// costs one prefix scan.
//
// Besides the ingestion contract the index answers local queries (Get,
// Count, Search, Suggest) for the command line tool.
//
// # Thread Safety
//
// BadgerDB is safe for concurrent use and every Upload record is written in
// its own transaction, so workers can share a Backend.
package badger
