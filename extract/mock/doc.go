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


// Package mock provides a mock extract.Extractor for testing.
//
//	ext := mock.NewMockExtractor(store)
//	ext.ExtractFunc = func(ctx context.Context, uri string) (*core.Extraction, error) {
//	    return nil, errors.New("tika unavailable")
//	}
//
// Without ExtractFunc the mock returns the raw document bytes as text.
package mock
