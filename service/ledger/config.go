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

package ledger

import (
	"time"

	"github.com/optakt/hashchain/models/chain"
)

// DefaultConfig is the default configuration of the ledger.
var DefaultConfig = Config{
	GenesisProof:    chain.GenesisProof,
	GenesisPrevious: chain.GenesisPrevious,
	ProofCheck:      true,
	StrictRestore:   true,
	Writer:          nil,
	Clock:           time.Now,
}

// Config is the configuration of the ledger.
type Config struct {
	GenesisProof    uint64
	GenesisPrevious string
	ProofCheck      bool
	StrictRestore   bool
	Writer          chain.Writer
	Clock           func() time.Time
}

// WithGenesisProof sets the proof of the genesis block.
func WithGenesisProof(proof uint64) func(*Config) {
	return func(cfg *Config) {
		cfg.GenesisProof = proof
	}
}

// WithGenesisPrevious sets the sentinel used as previous hash of the genesis
// block. It should not be a valid digest.
func WithGenesisPrevious(previous string) func(*Config) {
	return func(cfg *Config) {
		cfg.GenesisPrevious = previous
	}
}

// WithProofCheck sets whether new blocks need a proof that is valid for the
// proof of the last block.
func WithProofCheck(check bool) func(*Config) {
	return func(cfg *Config) {
		cfg.ProofCheck = check
	}
}

// WithStrictRestore sets whether restoring a chain checks the links between
// blocks and their proofs. Without it, only the indexes and timestamps of the
// restored blocks are checked, so that a chain written with overridden previous
// hashes or without proof checks can be loaded again. Verify always checks
// everything.
func WithStrictRestore(strict bool) func(*Config) {
	return func(cfg *Config) {
		cfg.StrictRestore = strict
	}
}

// WithWriter sets a writer that persists every block before it is appended.
func WithWriter(write chain.Writer) func(*Config) {
	return func(cfg *Config) {
		cfg.Writer = write
	}
}

// WithClock sets the source of block timestamps.
func WithClock(clock func() time.Time) func(*Config) {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}
