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

package rest

import (
	"time"

	"github.com/optakt/hashchain/models/chain"
)

// DefaultConfig is the default configuration of the REST controller.
var DefaultConfig = Config{
	MineTimeout: time.Minute,
	Reader:      nil,
}

// Config is the configuration of the REST controller.
type Config struct {
	MineTimeout time.Duration
	Reader      chain.Reader
}

// WithMineTimeout sets how long a mining request may search for a proof
// before it gives up.
func WithMineTimeout(timeout time.Duration) func(*Config) {
	return func(cfg *Config) {
		cfg.MineTimeout = timeout
	}
}

// WithReader sets a reader of persisted blocks used to look up single blocks,
// instead of the ledger.
func WithReader(read chain.Reader) func(*Config) {
	return func(cfg *Config) {
		cfg.Reader = read
	}
}
