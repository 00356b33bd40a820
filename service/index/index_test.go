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

package index_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/hashchain/codec/zbor"
	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/hasher"
	"github.com/optakt/hashchain/service/index"
	"github.com/optakt/hashchain/service/ledger"
	"github.com/optakt/hashchain/service/pow"
	"github.com/optakt/hashchain/service/storage"
	"github.com/optakt/hashchain/testing/helpers"
	"github.com/optakt/hashchain/testing/mocks"
)

func TestIndex(t *testing.T) {

	codec, err := zbor.NewCodec()
	require.NoError(t, err)

	t.Run("empty index", func(t *testing.T) {
		t.Parallel()

		db := helpers.InMemoryDB(t)
		lib := storage.New(codec)
		reader, err := index.NewReader(db, lib)
		require.NoError(t, err)

		_, err = reader.Last()
		assert.ErrorIs(t, err, chain.ErrNotFound)

		_, err = reader.Block(chain.GenesisIndex)
		assert.ErrorIs(t, err, chain.ErrNotFound)

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		assert.Empty(t, blocks)
	})

	t.Run("ledger persists and restores through index", func(t *testing.T) {
		t.Parallel()

		db := helpers.InMemoryDB(t)
		lib := storage.New(codec)
		writer := index.NewWriter(db, lib)
		reader, err := index.NewReader(db, lib, index.WithCacheSize(1<<20))
		require.NoError(t, err)

		hash := hasher.New()
		prover, err := pow.New(pow.WithDifficulty(2))
		require.NoError(t, err)

		l, err := ledger.New(mocks.NoopLogger, hash, prover, ledger.WithWriter(writer))
		require.NoError(t, err)

		l.NewTransaction("Satoshi", "Mike", "5 BTC")
		l.NewTransaction("Mike", "Alice", "1 BTC")
		_, err = l.NewBlock(prover.Search(chain.GenesisProof))
		require.NoError(t, err)

		want := l.Blocks()

		last, err := reader.Last()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), last)

		block, err := reader.Block(2)
		require.NoError(t, err)
		assert.Equal(t, hash.Digest(want[1]), hash.Digest(block))

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		require.Len(t, blocks, len(want))

		restored, err := ledger.Restore(mocks.NoopLogger, hash, prover, blocks, ledger.WithWriter(writer))
		require.NoError(t, err)
		assert.Equal(t, l.Height(), restored.Height())

		for i, block := range restored.Blocks() {
			assert.Equal(t, hash.Digest(want[i]), hash.Digest(block))
		}
	})

	t.Run("detects inconsistent last index", func(t *testing.T) {
		t.Parallel()

		db := helpers.InMemoryDB(t)
		lib := storage.New(codec)
		reader, err := index.NewReader(db, lib)
		require.NoError(t, err)

		genesis := mocks.GenericBlock
		genesis.Index = chain.GenesisIndex
		err = db.Update(lib.SaveBlock(genesis))
		require.NoError(t, err)

		_, err = reader.Blocks()
		assert.ErrorIs(t, err, chain.ErrInvalidBlock)

		err = db.Update(lib.SaveLast(2))
		require.NoError(t, err)

		_, err = reader.Blocks()
		assert.ErrorIs(t, err, chain.ErrInvalidBlock)

		err = db.Update(lib.SaveLast(chain.GenesisIndex))
		require.NoError(t, err)

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		assert.Len(t, blocks, 1)
	})

	t.Run("reader serves restored ledger with overrides", func(t *testing.T) {
		t.Parallel()

		db := helpers.InMemoryDB(t)
		lib := storage.New(codec)
		writer := index.NewWriter(db, lib)
		reader, err := index.NewReader(db, lib)
		require.NoError(t, err)

		hash := hasher.New()
		prover, err := pow.New(pow.WithDifficulty(2))
		require.NoError(t, err)

		l, err := ledger.New(mocks.NoopLogger, hash, prover, ledger.WithWriter(writer))
		require.NoError(t, err)
		_, err = l.NewBlockWithPrevious(prover.Search(chain.GenesisProof), mocks.GenericDigest)
		require.NoError(t, err)

		blocks, err := reader.Blocks()
		require.NoError(t, err)

		restored, err := ledger.Restore(mocks.NoopLogger, hash, prover, blocks, ledger.WithWriter(writer), ledger.WithStrictRestore(false))
		require.NoError(t, err)
		assert.Equal(t, l.Height(), restored.Height())

		block, err := reader.Block(2)
		require.NoError(t, err)
		assert.Equal(t, mocks.GenericDigest, block.PreviousHash)
	})

	t.Run("metrics writer counts indexed data", func(t *testing.T) {
		t.Parallel()

		db := helpers.InMemoryDB(t)
		registry := prometheus.NewRegistry()
		writer := index.NewMetricsWriter(index.NewWriter(db, storage.New(codec)), registry)

		err := writer.Block(mocks.GenericBlock)
		require.NoError(t, err)

		count, err := testutil.GatherAndCount(registry, "hashchain_indexed_blocks_total", "hashchain_indexed_transactions_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("metrics writer forwards failures", func(t *testing.T) {
		t.Parallel()

		failing := mocks.BaselineWriter(t)
		failing.BlockFunc = func(chain.Block) error {
			return mocks.GenericError
		}
		writer := index.NewMetricsWriter(failing, prometheus.NewRegistry())

		err := writer.Block(mocks.GenericBlock)
		assert.ErrorIs(t, err, mocks.GenericError)
	})
}
