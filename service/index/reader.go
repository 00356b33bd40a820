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
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/ristretto"

	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/storage"
)

const minCounters = 1000

// Reader reads persisted blocks from the index database. Blocks never change
// once persisted, so decoded blocks are kept in a cache.
type Reader struct {
	db    *badger.DB
	lib   *storage.Library
	cache Cache
}

// NewReader creates a new reader on top of the given database.
func NewReader(db *badger.DB, lib *storage.Library, options ...func(*Config)) (*Reader, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	// Assume around a thousand bytes per block, and count ten times as many.
	counters := cfg.CacheSize / 100
	if counters < minCounters {
		counters = minCounters
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     cfg.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create block cache: %w", err)
	}

	r := Reader{
		db:    db,
		lib:   lib,
		cache: cache,
	}

	return &r, nil
}

// Last returns the index of the last persisted block.
func (r *Reader) Last() (uint64, error) {
	var index uint64
	err := r.db.View(r.lib.RetrieveLast(&index))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("last index: %w", chain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("could not retrieve last index: %w", err)
	}
	return index, nil
}

// Block returns the persisted block with the given index.
func (r *Reader) Block(index uint64) (chain.Block, error) {

	cached, ok := r.cache.Get(index)
	if ok {
		return cached.(chain.Block).Clone(), nil
	}

	var block chain.Block
	err := r.db.View(r.lib.RetrieveBlock(index, &block))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chain.Block{}, fmt.Errorf("block %d: %w", index, chain.ErrNotFound)
	}
	if err != nil {
		return chain.Block{}, fmt.Errorf("could not retrieve block %d: %w", index, err)
	}

	r.cache.Set(index, block, cost(block))

	return block.Clone(), nil
}

// Blocks returns all persisted blocks in index order. The last block has to
// match the persisted last index, otherwise the index is inconsistent.
func (r *Reader) Blocks() ([]chain.Block, error) {

	var blocks []chain.Block
	var last uint64
	err := r.db.View(func(tx *badger.Txn) error {
		err := r.lib.IterateBlocks(func(block chain.Block) error {
			blocks = append(blocks, block)
			return nil
		})(tx)
		if err != nil {
			return fmt.Errorf("could not iterate blocks: %w", err)
		}
		if len(blocks) == 0 {
			return nil
		}
		err = r.lib.RetrieveLast(&last)(tx)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: missing last index for %d blocks", chain.ErrInvalidBlock, len(blocks))
		}
		if err != nil {
			return fmt.Errorf("could not retrieve last index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(blocks) > 0 && blocks[len(blocks)-1].Index != last {
		return nil, fmt.Errorf("%w: last persisted block is %d, but last index is %d", chain.ErrInvalidBlock, blocks[len(blocks)-1].Index, last)
	}

	return blocks, nil
}

func cost(block chain.Block) int64 {
	size := 64 + len(block.PreviousHash)
	for _, transaction := range block.Transactions {
		size += len(transaction.Sender) + len(transaction.Recipient) + len(transaction.Amount)
	}
	return int64(size)
}
