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


// Package loader implements extract.Extractor in process.
//
// The document type is sniffed from its content with mimetype and the bytes
// are handed to the matching langchaingo document loader: PDF (one part per
// page), HTML, CSV or plain text. Other types are rejected with
// extract.ErrUnsupportedContent.
package loader
