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

package storage

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/hashchain/models/chain"
)

func (l *Library) SaveLast(index uint64) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixLast), index)
}

func (l *Library) SaveBlock(block chain.Block) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixBlock, block.Index), block)
}

func (l *Library) RetrieveLast(index *uint64) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixLast), index)
}

func (l *Library) RetrieveBlock(index uint64, block *chain.Block) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixBlock, index), block)
}
