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

package pow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/minio/sha256-simd"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/optakt/hashchain/models/chain"
)

// maxDifficulty is the number of hex characters in a SHA-256 digest.
const maxDifficulty = 2 * sha256.Size

// checkInterval is the number of candidates a worker scans between two checks
// for cancellation.
const checkInterval = 1024

// ProofOfWork binds each new block to the proof of its predecessor. A candidate
// proof is accepted when the SHA-256 digest of the decimal representations of
// the last proof and the candidate, concatenated, starts with the configured
// number of zero hex characters.
type ProofOfWork struct {
	cfg      Config
	attempts *atomic.Uint64
}

// New creates a new proof-of-work with the given options.
func New(options ...func(*Config)) (*ProofOfWork, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	if cfg.Difficulty > maxDifficulty {
		return nil, fmt.Errorf("difficulty too high (max: %d, got: %d)", maxDifficulty, cfg.Difficulty)
	}
	if cfg.Workers == 0 {
		return nil, fmt.Errorf("need at least one worker")
	}
	if cfg.BatchSize == 0 {
		return nil, fmt.Errorf("need a non-zero batch size")
	}

	p := ProofOfWork{
		cfg:      cfg,
		attempts: atomic.NewUint64(0),
	}

	return &p, nil
}

// Difficulty returns the configured difficulty.
func (p *ProofOfWork) Difficulty() uint {
	return p.cfg.Difficulty
}

// Attempts returns the number of candidates checked by searches so far.
func (p *ProofOfWork) Attempts() uint64 {
	return p.attempts.Load()
}

// Valid returns whether the candidate is an acceptable proof following the last proof.
func (p *ProofOfWork) Valid(last uint64, candidate uint64) bool {
	var buf [40]byte
	return p.valid(buf[:0], last, candidate)
}

// Search returns the smallest valid proof following the last proof. It scans
// the candidates one by one from zero and does not return until it finds one.
func (p *ProofOfWork) Search(last uint64) uint64 {
	var buf [40]byte
	candidate := uint64(0)
	for !p.valid(buf[:0], last, candidate) {
		candidate++
	}
	p.attempts.Add(candidate + 1)
	return candidate
}

// SearchContext returns the same proof as Search, but spreads the scan over the
// configured number of workers and gives up when the context is done. The
// candidates are scanned in rounds; in each round, every worker scans its own
// contiguous batch, and the lowest batch with a solution wins the round. This
// keeps the result identical to the one of the linear scan.
func (p *ProofOfWork) SearchContext(ctx context.Context, last uint64) (uint64, error) {

	workers := uint64(p.cfg.Workers)
	batch := p.cfg.BatchSize

	for base := uint64(0); ; base += workers * batch {

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %s", chain.ErrSearchAborted, ctx.Err())
		default:
		}

		// The winner is the lowest worker that found a solution in this round.
		// Workers above the winner can stop right away, while the ones below it
		// need to finish their batch, as they might still find a lower proof.
		winner := atomic.NewUint64(workers)
		found := make([]uint64, workers)

		group, gctx := errgroup.WithContext(ctx)
		for worker := uint64(0); worker < workers; worker++ {
			worker := worker
			start := base + worker*batch
			group.Go(func() error {
				var buf [40]byte
				for offset := uint64(0); offset < batch; offset++ {
					if offset%checkInterval == 0 {
						if gctx.Err() != nil {
							return gctx.Err()
						}
						if winner.Load() < worker {
							p.attempts.Add(offset)
							return nil
						}
					}
					candidate := start + offset
					if !p.valid(buf[:0], last, candidate) {
						continue
					}
					p.attempts.Add(offset + 1)
					found[worker] = candidate
					for {
						current := winner.Load()
						if current <= worker || winner.CAS(current, worker) {
							break
						}
					}
					return nil
				}
				p.attempts.Add(batch)
				return nil
			})
		}

		err := group.Wait()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", chain.ErrSearchAborted, err)
		}

		lowest := winner.Load()
		if lowest < workers {
			return found[lowest], nil
		}
	}
}

func (p *ProofOfWork) valid(buf []byte, last uint64, candidate uint64) bool {

	guess := strconv.AppendUint(buf, last, 10)
	guess = strconv.AppendUint(guess, candidate, 10)
	sum := sha256.Sum256(guess)

	// Each byte holds two hex characters, the high nibble being the first one.
	for i := uint(0); i < p.cfg.Difficulty; i++ {
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f != 0 {
			return false
		}
	}

	return true
}
