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
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/optakt/hashchain/models/chain"
)

// verify checks the indexes and timestamps of the given blocks, and optionally
// their links and proofs.
func (l *Ledger) verify(blocks []chain.Block, links bool, proofs bool) error {

	if len(blocks) == 0 {
		return chain.ErrEmptyChain
	}

	var merr *multierror.Error

	genesis := blocks[0]
	if genesis.Index != chain.GenesisIndex {
		merr = multierror.Append(merr, fmt.Errorf("%w: genesis block has index %d", chain.ErrInvalidBlock, genesis.Index))
	}
	if links && genesis.PreviousHash != l.cfg.GenesisPrevious {
		merr = multierror.Append(merr, fmt.Errorf("%w: genesis block has previous hash %q", chain.ErrInvalidBlock, genesis.PreviousHash))
	}

	for i := 1; i < len(blocks); i++ {
		parent := blocks[i-1]
		block := blocks[i]

		if block.Index != parent.Index+1 {
			merr = multierror.Append(merr, fmt.Errorf("%w: block %d follows block %d", chain.ErrInvalidBlock, block.Index, parent.Index))
		}
		if links {
			digest := l.hash.Digest(parent)
			if block.PreviousHash != digest {
				merr = multierror.Append(merr, fmt.Errorf("%w: block %d links to %s instead of %s", chain.ErrInvalidBlock, block.Index, block.PreviousHash, digest))
			}
		}
		if block.Timestamp.Before(parent.Timestamp) {
			merr = multierror.Append(merr, fmt.Errorf("%w: block %d is older than its parent", chain.ErrInvalidBlock, block.Index))
		}
		if proofs && !l.prover.Valid(parent.Proof, block.Proof) {
			merr = multierror.Append(merr, fmt.Errorf("%w: block %d has invalid proof %d", chain.ErrInvalidProof, block.Index, block.Proof))
		}
	}

	return merr.ErrorOrNil()
}
