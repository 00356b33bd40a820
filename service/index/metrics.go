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

package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/hashchain/models/chain"
)

const namespace = "hashchain"

// MetricsWriter wraps a writer and counts the blocks and transactions it persists.
type MetricsWriter struct {
	write chain.Writer

	blocks       prometheus.Counter
	transactions prometheus.Counter
}

func NewMetricsWriter(write chain.Writer, registerer prometheus.Registerer) *MetricsWriter {

	factory := promauto.With(registerer)

	blockOpts := prometheus.CounterOpts{
		Name:      "indexed_blocks_total",
		Namespace: namespace,
		Help:      "number of indexed blocks",
	}
	blocks := factory.NewCounter(blockOpts)

	transactionOpts := prometheus.CounterOpts{
		Name:      "indexed_transactions_total",
		Namespace: namespace,
		Help:      "number of indexed transactions",
	}
	transactions := factory.NewCounter(transactionOpts)

	w := MetricsWriter{
		write:        write,
		blocks:       blocks,
		transactions: transactions,
	}

	return &w
}

func (w *MetricsWriter) Block(block chain.Block) error {
	err := w.write.Block(block)
	if err != nil {
		return err
	}
	w.blocks.Inc()
	w.transactions.Add(float64(len(block.Transactions)))
	return nil
}
