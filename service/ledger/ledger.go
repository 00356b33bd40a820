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

package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"

	"github.com/optakt/hashchain/models/chain"
)

// Ledger owns an append-only chain of blocks and the buffer of transactions
// waiting to be included in the next block. It is safe for concurrent use.
type Ledger struct {
	log    zerolog.Logger
	cfg    Config
	hash   chain.Hasher
	prover chain.Prover

	mutex   *sync.RWMutex
	blocks  []chain.Block
	pending *deque.Deque
}

// New creates a ledger whose chain holds a single genesis block.
func New(log zerolog.Logger, hash chain.Hasher, prover chain.Prover, options ...func(*Config)) (*Ledger, error) {

	l := newLedger(log, hash, prover, options...)

	genesis := chain.Block{
		Index:        chain.GenesisIndex,
		Timestamp:    l.cfg.Clock().UTC(),
		Transactions: []chain.Transaction{},
		Proof:        l.cfg.GenesisProof,
		PreviousHash: l.cfg.GenesisPrevious,
	}
	err := l.commit(genesis)
	if err != nil {
		return nil, fmt.Errorf("could not commit genesis block: %w", err)
	}

	return l, nil
}

// Restore creates a ledger from a previously persisted chain, after checking
// that the chain is valid. The pending buffer of the new ledger is empty.
func Restore(log zerolog.Logger, hash chain.Hasher, prover chain.Prover, blocks []chain.Block, options ...func(*Config)) (*Ledger, error) {

	l := newLedger(log, hash, prover, options...)

	strict := l.cfg.StrictRestore
	err := l.verify(blocks, strict, strict && l.cfg.ProofCheck)
	if err != nil {
		return nil, fmt.Errorf("could not verify chain: %w", err)
	}

	l.blocks = make([]chain.Block, 0, len(blocks))
	for _, block := range blocks {
		l.blocks = append(l.blocks, block.Clone())
	}

	l.log.Info().Uint64("height", l.height()).Bool("strict", strict).Msg("ledger restored")

	return l, nil
}

func newLedger(log zerolog.Logger, hash chain.Hasher, prover chain.Prover, options ...func(*Config)) *Ledger {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	l := Ledger{
		log:     log.With().Str("component", "ledger").Logger(),
		cfg:     cfg,
		hash:    hash,
		prover:  prover,
		mutex:   &sync.RWMutex{},
		blocks:  nil,
		pending: deque.New(),
	}

	return &l
}

// NewTransaction adds a transaction to the pending buffer and returns the index
// of the block that will include it. No validation is done on the fields.
func (l *Ledger) NewTransaction(sender string, recipient string, amount string) uint64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	transaction := chain.Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
	l.pending.PushBack(transaction)

	return l.height() + 1
}

// NewBlock appends a block with the given proof, which links to the digest of
// the last block and includes all pending transactions.
func (l *Ledger) NewBlock(proof uint64) (chain.Block, error) {
	return l.NewBlockWithPrevious(proof, "")
}

// NewBlockWithPrevious appends a block like NewBlock, but uses the given
// previous hash instead of the digest of the last block, unless it is empty.
func (l *Ledger) NewBlockWithPrevious(proof uint64, previous string) (chain.Block, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.append(proof, previous)
}

// Mine searches for a proof following the last block and appends a block with
// it. If another block was appended in the meantime, it searches again from
// the new last block.
func (l *Ledger) Mine(ctx context.Context) (chain.Block, error) {
	for {
		l.mutex.RLock()
		last, err := l.last()
		l.mutex.RUnlock()
		if err != nil {
			return chain.Block{}, err
		}

		proof, err := l.prover.SearchContext(ctx, last.Proof)
		if err != nil {
			return chain.Block{}, fmt.Errorf("could not find proof: %w", err)
		}

		l.mutex.Lock()
		if l.height() != last.Index {
			l.mutex.Unlock()
			l.log.Debug().Uint64("index", last.Index).Msg("chain moved during search, searching again")
			continue
		}
		block, err := l.append(proof, "")
		l.mutex.Unlock()

		return block, err
	}
}

// LastBlock returns the most recently appended block.
func (l *Ledger) LastBlock() (chain.Block, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	last, err := l.last()
	if err != nil {
		return chain.Block{}, err
	}

	return last.Clone(), nil
}

// Block returns the block with the given index.
func (l *Ledger) Block(index uint64) (chain.Block, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if index < chain.GenesisIndex || index > l.height() {
		return chain.Block{}, fmt.Errorf("block %d: %w", index, chain.ErrNotFound)
	}

	return l.blocks[index-chain.GenesisIndex].Clone(), nil
}

// Blocks returns a copy of the whole chain.
func (l *Ledger) Blocks() []chain.Block {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	blocks := make([]chain.Block, 0, len(l.blocks))
	for _, block := range l.blocks {
		blocks = append(blocks, block.Clone())
	}

	return blocks
}

// Pending returns the transactions waiting for the next block, in submission order.
func (l *Ledger) Pending() []chain.Transaction {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.frozen()
}

// Height returns the number of blocks in the chain.
func (l *Ledger) Height() uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.height()
}

// Verify checks the whole chain and returns an error for every block that
// breaks it.
func (l *Ledger) Verify() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.verify(l.blocks, true, l.cfg.ProofCheck)
}

// append needs the write lock to be held.
func (l *Ledger) append(proof uint64, previous string) (chain.Block, error) {

	last, err := l.last()
	if err != nil {
		return chain.Block{}, err
	}

	if l.cfg.ProofCheck && !l.prover.Valid(last.Proof, proof) {
		return chain.Block{}, fmt.Errorf("proof %d does not follow proof %d: %w", proof, last.Proof, chain.ErrInvalidProof)
	}

	if previous == "" {
		previous = l.hash.Digest(last)
	}

	timestamp := l.cfg.Clock().UTC()
	if timestamp.Before(last.Timestamp) {
		timestamp = last.Timestamp
	}

	block := chain.Block{
		Index:        last.Index + 1,
		Timestamp:    timestamp,
		Transactions: l.frozen(),
		Proof:        proof,
		PreviousHash: previous,
	}
	err = l.commit(block)
	if err != nil {
		return chain.Block{}, err
	}

	l.pending.Clear()

	return block.Clone(), nil
}

// commit persists the block if a writer is configured, and only then appends
// it to the chain.
func (l *Ledger) commit(block chain.Block) error {

	if l.cfg.Writer != nil {
		err := l.cfg.Writer.Block(block)
		if err != nil {
			return fmt.Errorf("could not write block %d: %w", block.Index, err)
		}
	}

	l.blocks = append(l.blocks, block)

	l.log.Debug().
		Uint64("index", block.Index).
		Uint64("proof", block.Proof).
		Int("transactions", len(block.Transactions)).
		Msg("block appended")

	return nil
}

func (l *Ledger) last() (chain.Block, error) {
	if len(l.blocks) == 0 {
		return chain.Block{}, chain.ErrEmptyChain
	}
	return l.blocks[len(l.blocks)-1], nil
}

func (l *Ledger) height() uint64 {
	return uint64(len(l.blocks))
}

func (l *Ledger) frozen() []chain.Transaction {
	transactions := make([]chain.Transaction, 0, l.pending.Len())
	for i := 0; i < l.pending.Len(); i++ {
		transactions = append(transactions, l.pending.At(i).(chain.Transaction))
	}
	return transactions
}
