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
	"context"
	"testing"

	"github.com/optakt/hashchain/models/chain"
)

type Chain struct {
	NewTransactionFunc       func(sender string, recipient string, amount string) uint64
	NewBlockFunc             func(proof uint64) (chain.Block, error)
	NewBlockWithPreviousFunc func(proof uint64, previous string) (chain.Block, error)
	MineFunc                 func(ctx context.Context) (chain.Block, error)
	LastBlockFunc            func() (chain.Block, error)
	BlockFunc                func(index uint64) (chain.Block, error)
	BlocksFunc               func() []chain.Block
	PendingFunc              func() []chain.Transaction
	HeightFunc               func() uint64
	VerifyFunc               func() error
}

func BaselineChain(t *testing.T) *Chain {
	t.Helper()

	c := Chain{
		NewTransactionFunc: func(string, string, string) uint64 {
			return GenericIndex + 1
		},
		NewBlockFunc: func(uint64) (chain.Block, error) {
			return GenericBlock.Clone(), nil
		},
		NewBlockWithPreviousFunc: func(uint64, string) (chain.Block, error) {
			return GenericBlock.Clone(), nil
		},
		MineFunc: func(context.Context) (chain.Block, error) {
			return GenericBlock.Clone(), nil
		},
		LastBlockFunc: func() (chain.Block, error) {
			return GenericBlock.Clone(), nil
		},
		BlockFunc: func(uint64) (chain.Block, error) {
			return GenericBlock.Clone(), nil
		},
		BlocksFunc: func() []chain.Block {
			return GenericBlocks(4)
		},
		PendingFunc: func() []chain.Transaction {
			return GenericTransactions(2)
		},
		HeightFunc: func() uint64 {
			return GenericIndex
		},
		VerifyFunc: func() error {
			return nil
		},
	}

	return &c
}

func (c *Chain) NewTransaction(sender string, recipient string, amount string) uint64 {
	return c.NewTransactionFunc(sender, recipient, amount)
}

func (c *Chain) NewBlock(proof uint64) (chain.Block, error) {
	return c.NewBlockFunc(proof)
}

func (c *Chain) NewBlockWithPrevious(proof uint64, previous string) (chain.Block, error) {
	return c.NewBlockWithPreviousFunc(proof, previous)
}

func (c *Chain) Mine(ctx context.Context) (chain.Block, error) {
	return c.MineFunc(ctx)
}

func (c *Chain) LastBlock() (chain.Block, error) {
	return c.LastBlockFunc()
}

func (c *Chain) Block(index uint64) (chain.Block, error) {
	return c.BlockFunc(index)
}

func (c *Chain) Blocks() []chain.Block {
	return c.BlocksFunc()
}

func (c *Chain) Pending() []chain.Transaction {
	return c.PendingFunc()
}

func (c *Chain) Height() uint64 {
	return c.HeightFunc()
}

func (c *Chain) Verify() error {
	return c.VerifyFunc()
}
