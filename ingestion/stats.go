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


package ingestion

import (
	"sync/atomic"
	"time"
)

// Stats holds the run-wide counters. Workers update them concurrently.
type Stats struct {
	completed      atomic.Int64
	indexed        atomic.Int64
	documentErrors atomic.Int64
	publishErrors  atomic.Int64
}

func (s *Stats) reset() {
	s.completed.Store(0)
	s.indexed.Store(0)
	s.documentErrors.Store(0)
	s.publishErrors.Store(0)
}

// Completed returns the number of documents that finished processing,
// whether or not they were indexed.
func (s *Stats) Completed() int64 { return s.completed.Load() }

// Indexed returns the number of records the index accepted.
func (s *Stats) Indexed() int64 { return s.indexed.Load() }

// DocumentErrors returns the number of documents that failed before publishing.
func (s *Stats) DocumentErrors() int64 { return s.documentErrors.Load() }

// PublishErrors returns the number of records the index did not accept.
func (s *Stats) PublishErrors() int64 { return s.publishErrors.Load() }

// Summary is the result of a run.
type Summary struct {
	RunID          string
	Enumerated     int
	Batches        int
	Completed      int64
	Indexed        int64
	DocumentErrors int64
	PublishErrors  int64
	Elapsed        time.Duration
}

// Failed returns the number of documents that were not indexed.
func (s *Summary) Failed() int64 {
	return s.DocumentErrors + s.PublishErrors
}

func (s *Stats) summary(runID string, enumerated, batches int, elapsed time.Duration) *Summary {
	return &Summary{
		RunID:          runID,
		Enumerated:     enumerated,
		Batches:        batches,
		Completed:      s.Completed(),
		Indexed:        s.Indexed(),
		DocumentErrors: s.DocumentErrors(),
		PublishErrors:  s.PublishErrors(),
		Elapsed:        elapsed,
	}
}
