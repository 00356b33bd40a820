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

package hasher_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/hashchain/codec/zbor"
	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/hasher"
	"github.com/optakt/hashchain/testing/mocks"
)

func TestHasher_Digest(t *testing.T) {
	hash := hasher.New()

	t.Run("digest is lowercase hex of fixed length", func(t *testing.T) {
		digest := hash.Digest(mocks.GenericBlock)

		assert.Len(t, digest, chain.DigestLength)
		_, err := hex.DecodeString(digest)
		assert.NoError(t, err)
		assert.Regexp(t, "^[0-9a-f]+$", digest)
	})

	t.Run("repeated calls give the same digest", func(t *testing.T) {
		first := hash.Digest(mocks.GenericBlock)
		second := hash.Digest(mocks.GenericBlock)

		assert.Equal(t, first, second)
		assert.Equal(t, first, hasher.New().Digest(mocks.GenericBlock))
	})

	t.Run("field assignment order does not matter", func(t *testing.T) {
		var forward chain.Block
		forward.Index = 2
		forward.Timestamp = mocks.GenericTime
		forward.Transactions = mocks.GenericTransactions(2)
		forward.Proof = 12345
		forward.PreviousHash = mocks.GenericDigest

		var backward chain.Block
		backward.PreviousHash = mocks.GenericDigest
		backward.Proof = 12345
		backward.Transactions = mocks.GenericTransactions(2)
		backward.Timestamp = mocks.GenericTime
		backward.Index = 2

		assert.Equal(t, hash.Digest(forward), hash.Digest(backward))
	})

	t.Run("timestamp location does not matter", func(t *testing.T) {
		local := mocks.GenericBlock.Clone()
		local.Timestamp = mocks.GenericTime.In(time.FixedZone("UTC+3", 3*60*60))

		assert.Equal(t, hash.Digest(mocks.GenericBlock), hash.Digest(local))
	})

	t.Run("nil and empty transactions are equivalent", func(t *testing.T) {
		empty := mocks.GenericBlock.Clone()
		empty.Transactions = []chain.Transaction{}
		null := mocks.GenericBlock.Clone()
		null.Transactions = nil

		assert.Equal(t, hash.Digest(empty), hash.Digest(null))
	})

	t.Run("every field changes the digest", func(t *testing.T) {
		base := hash.Digest(mocks.GenericBlock)

		mutations := map[string]func(*chain.Block){
			"index":     func(b *chain.Block) { b.Index++ },
			"timestamp": func(b *chain.Block) { b.Timestamp = b.Timestamp.Add(time.Nanosecond) },
			"proof":     func(b *chain.Block) { b.Proof++ },
			"previous":  func(b *chain.Block) { b.PreviousHash = chain.GenesisPrevious },
			"sender":    func(b *chain.Block) { b.Transactions[0].Sender = "Hal Finney" },
			"recipient": func(b *chain.Block) { b.Transactions[0].Recipient = "Hal Finney" },
			"amount":    func(b *chain.Block) { b.Transactions[0].Amount = "6 BTC" },
			"order": func(b *chain.Block) {
				b.Transactions[0], b.Transactions[1] = b.Transactions[1], b.Transactions[0]
			},
			"extra": func(b *chain.Block) {
				b.Transactions = append(b.Transactions, chain.Transaction{})
			},
		}

		for name, mutate := range mutations {
			block := mocks.GenericBlock.Clone()
			mutate(&block)
			assert.NotEqual(t, base, hash.Digest(block), name)
		}
	})

	t.Run("digest survives a storage round trip", func(t *testing.T) {
		codec, err := zbor.NewCodec()
		require.NoError(t, err)

		data, err := codec.Marshal(mocks.GenericBlock)
		require.NoError(t, err)

		var block chain.Block
		err = codec.Unmarshal(data, &block)
		require.NoError(t, err)

		assert.Equal(t, hash.Digest(mocks.GenericBlock), hash.Digest(block))
	})
}

func TestHasher_Canonical(t *testing.T) {
	hash := hasher.New()

	data := hash.Canonical(mocks.GenericBlock)

	var record []interface{}
	err := cbor.Unmarshal(data, &record)
	require.NoError(t, err)
	require.Len(t, record, 10)

	var names []string
	for i := 0; i < len(record); i += 2 {
		name, ok := record[i].(string)
		require.True(t, ok)
		names = append(names, name)
	}

	assert.Equal(t, []string{"index", "previous_hash", "proof", "timestamp", "transactions"}, names)
	assert.Equal(t, names, hasher.Fields())
	assert.Equal(t, uint64(mocks.GenericBlock.Index), record[1])
	assert.Equal(t, mocks.GenericBlock.PreviousHash, record[3])

	transactions, ok := record[9].([]interface{})
	require.True(t, ok)
	require.Len(t, transactions, len(mocks.GenericBlock.Transactions))

	first, ok := transactions[0].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{
		"amount", mocks.GenericBlock.Transactions[0].Amount,
		"recipient", mocks.GenericBlock.Transactions[0].Recipient,
		"sender", mocks.GenericBlock.Transactions[0].Sender,
	}, first)
}
