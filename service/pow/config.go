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
	"runtime"

	"github.com/optakt/hashchain/models/chain"
)

// DefaultConfig is the default configuration of the proof-of-work.
var DefaultConfig = Config{
	Difficulty: chain.DefaultDifficulty,
	Workers:    uint(runtime.NumCPU()),
	BatchSize:  4096,
}

// Config is the configuration of the proof-of-work.
type Config struct {
	Difficulty uint
	Workers    uint
	BatchSize  uint64
}

// WithDifficulty sets the number of leading zero hex characters that the
// digest of a guess needs to have for the guess to be accepted.
func WithDifficulty(difficulty uint) func(*Config) {
	return func(cfg *Config) {
		cfg.Difficulty = difficulty
	}
}

// WithWorkers sets the number of goroutines that scan candidates in parallel
// during a cancellable search.
func WithWorkers(workers uint) func(*Config) {
	return func(cfg *Config) {
		cfg.Workers = workers
	}
}

// WithBatchSize sets the number of contiguous candidates that each worker scans
// per round of a cancellable search.
func WithBatchSize(size uint64) func(*Config) {
	return func(cfg *Config) {
		cfg.BatchSize = size
	}
}
