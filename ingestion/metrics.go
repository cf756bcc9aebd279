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
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeIndexed = "indexed"
	outcomeFailed  = "failed"
	outcomeSuccess = "success"
)

// Metrics holds the Prometheus collectors updated during a run. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	documents        *prometheus.CounterVec
	documentDuration prometheus.Histogram
	batchesInFlight  prometheus.Gauge
	publishes        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blobsearch",
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		documentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blobsearch",
			Name:      "document_duration_seconds",
			Help:      "Time spent granting, extracting, enriching and normalizing one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		batchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blobsearch",
			Name:      "batches_in_flight",
			Help:      "Batches currently being processed.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blobsearch",
			Name:      "publish_total",
			Help:      "Records submitted to the index, by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.documents, m.documentDuration, m.batchesInFlight, m.publishes} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeDocument(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
	m.documentDuration.Observe(seconds)
}

func (m *Metrics) batchStarted() {
	if m == nil {
		return
	}
	m.batchesInFlight.Inc()
}

func (m *Metrics) batchFinished() {
	if m == nil {
		return
	}
	m.batchesInFlight.Dec()
}

func (m *Metrics) published(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.publishes.WithLabelValues(outcome).Add(float64(n))
}
