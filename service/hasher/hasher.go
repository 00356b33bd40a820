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

package hasher

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/minio/sha256-simd"

	"github.com/optakt/hashchain/models/chain"
)

// Field names of the canonical block and transaction records.
const (
	fieldIndex        = "index"
	fieldTimestamp    = "timestamp"
	fieldTransactions = "transactions"
	fieldProof        = "proof"
	fieldPrevious     = "previous_hash"

	fieldSender    = "sender"
	fieldRecipient = "recipient"
	fieldAmount    = "amount"
)

var (
	blockFields       = ordered(fieldIndex, fieldTimestamp, fieldTransactions, fieldProof, fieldPrevious)
	transactionFields = ordered(fieldSender, fieldRecipient, fieldAmount)
)

// Hasher computes the digest of a block over a canonical serialization. The
// serialization is a CBOR array of alternating field names and values, where
// the field names always appear in lexical order. The order is owned by the
// hasher, so it does not depend on how the encoder treats maps or structs.
type Hasher struct {
	encoder cbor.EncMode
}

// New creates a new hasher.
func New() *Hasher {

	// The core deterministic options only fix the encoding of integers and
	// lengths to their shortest form; we never hand a map to the encoder.
	// They are fixed and always valid, so this cannot fail.
	encoder, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	h := Hasher{
		encoder: encoder,
	}

	return &h
}

// Digest returns the lowercase hex-encoded SHA-256 digest of the canonical
// serialization of the given block.
func (h *Hasher) Digest(block chain.Block) string {
	data := h.Canonical(block)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Canonical returns the canonical serialization of the given block.
func (h *Hasher) Canonical(block chain.Block) []byte {

	transactions := make([]interface{}, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		values := map[string]interface{}{
			fieldSender:    tx.Sender,
			fieldRecipient: tx.Recipient,
			fieldAmount:    tx.Amount,
		}
		transactions = append(transactions, flatten(transactionFields, values))
	}

	values := map[string]interface{}{
		fieldIndex:        block.Index,
		fieldTimestamp:    block.Timestamp.UTC().UnixNano(),
		fieldTransactions: transactions,
		fieldProof:        block.Proof,
		fieldPrevious:     block.PreviousHash,
	}

	// The record only contains strings, integers and nested arrays thereof,
	// which the encoder can always represent.
	data, err := h.encoder.Marshal(flatten(blockFields, values))
	if err != nil {
		panic(fmt.Sprintf("could not encode canonical block (index: %d): %s", block.Index, err))
	}

	return data
}

// Fields returns the canonical order of the block fields.
func Fields() []string {
	fields := make([]string, len(blockFields))
	copy(fields, blockFields)
	return fields
}

func flatten(fields []string, values map[string]interface{}) []interface{} {
	record := make([]interface{}, 0, 2*len(fields))
	for _, field := range fields {
		record = append(record, field, values[field])
	}
	return record
}

func ordered(fields ...string) []string {
	sort.Strings(fields)
	return fields
}
