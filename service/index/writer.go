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
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/storage"
)

// Writer persists blocks to the index database.
type Writer struct {
	db  *badger.DB
	lib *storage.Library
}

// NewWriter creates a new writer on top of the given database.
func NewWriter(db *badger.DB, lib *storage.Library) *Writer {

	w := Writer{
		db:  db,
		lib: lib,
	}

	return &w
}

// Block persists the block and marks it as the last one, in a single transaction.
func (w *Writer) Block(block chain.Block) error {
	err := w.db.Update(storage.Combine(
		w.lib.SaveBlock(block),
		w.lib.SaveLast(block.Index),
	))
	if err != nil {
		return fmt.Errorf("could not index block %d: %w", block.Index, err)
	}
	return nil
}
