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


// Package azure implements blobstore.Store on Azure Blob Storage.
//
// Listing uses the flat blob pager, grants are blob SAS URLs signed with the
// account's shared key and restricted to read permission, and attributes come
// from the blob properties (Content-MD5 is reported base64 encoded).
package azure
