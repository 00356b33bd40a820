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

package chain

import (
	"context"
)

// Hasher produces the canonical digest of a block.
type Hasher interface {
	Digest(block Block) string
}

// Prover validates and searches proof-of-work solutions.
type Prover interface {
	Valid(last uint64, candidate uint64) bool
	SearchContext(ctx context.Context, last uint64) (uint64, error)
}

// Codec encodes and compresses values for persistence.
type Codec interface {
	Encode(value interface{}) ([]byte, error)
	Decode(data []byte, value interface{}) error

	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)

	Marshal(value interface{}) ([]byte, error)
	Unmarshal(data []byte, value interface{}) error
}

// Writer persists blocks as they are appended to the chain.
type Reader interface {
	Last() (uint64, error)
	Block(index uint64) (Block, error)
}

type Writer interface {
	Block(block Block) error
}

// Chain is the programmatic interface of a ledger.
type Chain interface {
	NewTransaction(sender string, recipient string, amount string) uint64
	NewBlock(proof uint64) (Block, error)
	NewBlockWithPrevious(proof uint64, previous string) (Block, error)
	Mine(ctx context.Context) (Block, error)

	LastBlock() (Block, error)
	Block(index uint64) (Block, error)
	Blocks() []Block
	Pending() []Transaction
	Height() uint64

	Verify() error
}
