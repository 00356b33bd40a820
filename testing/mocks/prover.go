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
)

type Prover struct {
	ValidFunc         func(last uint64, candidate uint64) bool
	SearchContextFunc func(ctx context.Context, last uint64) (uint64, error)
}

func BaselineProver(t *testing.T) *Prover {
	t.Helper()

	p := Prover{
		ValidFunc: func(uint64, uint64) bool {
			return true
		},
		SearchContextFunc: func(context.Context, uint64) (uint64, error) {
			return GenericProof, nil
		},
	}

	return &p
}

func (p *Prover) Valid(last uint64, candidate uint64) bool {
	return p.ValidFunc(last, candidate)
}

func (p *Prover) SearchContext(ctx context.Context, last uint64) (uint64, error) {
	return p.SearchContextFunc(ctx, last)
}
