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
	"time"
)

// Transaction is a transfer intent waiting to be frozen into a block. The amount
// is an opaque token and is never interpreted.
type Transaction struct {
	Sender    string `json:"sender" cbor:"sender"`
	Recipient string `json:"recipient" cbor:"recipient"`
	Amount    string `json:"amount" cbor:"amount"`
}

// Block is one immutable entry of the chain. Index is 1-based and equals the
// position of the block in the chain.
type Block struct {
	Index        uint64        `json:"index" cbor:"index"`
	Timestamp    time.Time     `json:"timestamp" cbor:"timestamp"`
	Transactions []Transaction `json:"transactions" cbor:"transactions"`
	Proof        uint64        `json:"proof" cbor:"proof"`
	PreviousHash string        `json:"previous_hash" cbor:"previous_hash"`
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	dup := b
	dup.Transactions = make([]Transaction, len(b.Transactions))
	copy(dup.Transactions, b.Transactions)
	return dup
}
