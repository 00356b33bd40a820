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

package mocks

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/hashchain/models/chain"
)

var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericIndex = uint64(42)

	GenericProof = uint64(35293)

	GenericBytes = []byte(`test`)

	GenericTime = time.Date(1972, 11, 12, 13, 14, 15, 16, time.UTC)

	GenericDigest = "0000c415de5ceea33c02daa85a1c218ecca1b1c9e9864ed34d183597844de8e2"

	GenericBlock = chain.Block{
		Index:        GenericIndex,
		Timestamp:    GenericTime,
		Transactions: GenericTransactions(3),
		Proof:        GenericProof,
		PreviousHash: GenericDigest,
	}
)

// GenericTransactions returns a deterministic list of transactions.
func GenericTransactions(number int) []chain.Transaction {
	// Ensure consistent deterministic results.
	random := rand.New(rand.NewSource(0))

	transactions := make([]chain.Transaction, 0, number)
	for i := 0; i < number; i++ {
		transaction := chain.Transaction{
			Sender:    fmt.Sprintf("sender-%x", random.Uint32()),
			Recipient: fmt.Sprintf("recipient-%x", random.Uint32()),
			Amount:    fmt.Sprint(random.Intn(1000) + 1),
		}
		transactions = append(transactions, transaction)
	}

	return transactions
}

// GenericBlocks returns a list of blocks with consecutive indices starting at
// the genesis index. The blocks are not linked by their digests.
func GenericBlocks(number int) []chain.Block {
	blocks := make([]chain.Block, 0, number)
	for i := 0; i < number; i++ {
		block := chain.Block{
			Index:        chain.GenesisIndex + uint64(i),
			Timestamp:    GenericTime.Add(time.Duration(i) * time.Second),
			Transactions: GenericTransactions(i),
			Proof:        GenericProof + uint64(i),
			PreviousHash: GenericDigest,
		}
		blocks = append(blocks, block)
	}

	return blocks
}
