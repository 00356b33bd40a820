// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package pow

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/hashchain/models/chain"
)

const (
	namespace   = "hashchain"
	subsystem   = "pow"
	labelResult = "result"
)

const (
	resultFound   = "found"
	resultAborted = "aborted"
)

// MetricsProver wraps a prover and records the outcome and duration of its
// cancellable searches.
type MetricsProver struct {
	prover chain.Prover

	searches *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetricsProver wraps the given prover and registers its metrics with the
// given registerer.
func NewMetricsProver(prover chain.Prover, registerer prometheus.Registerer) *MetricsProver {

	factory := promauto.With(registerer)

	searchOpts := prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "searches_total",
		Help:      "number of proof searches by result",
	}
	searches := factory.NewCounterVec(searchOpts, []string{labelResult})

	durationOpts := prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "search_seconds",
		Help:      "duration of successful proof searches",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}
	duration := factory.NewHistogram(durationOpts)

	m := MetricsProver{
		prover:   prover,
		searches: searches,
		duration: duration,
	}

	return &m
}

// Valid forwards to the wrapped prover.
func (m *MetricsProver) Valid(last uint64, candidate uint64) bool {
	return m.prover.Valid(last, candidate)
}

// SearchContext forwards to the wrapped prover and records the result.
func (m *MetricsProver) SearchContext(ctx context.Context, last uint64) (uint64, error) {
	start := time.Now()
	proof, err := m.prover.SearchContext(ctx, last)
	if errors.Is(err, chain.ErrSearchAborted) {
		m.searches.WithLabelValues(resultAborted).Inc()
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	m.searches.WithLabelValues(resultFound).Inc()
	m.duration.Observe(time.Since(start).Seconds())
	return proof, nil
}
