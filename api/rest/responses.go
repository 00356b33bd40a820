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

package rest

import (
	"github.com/optakt/hashchain/models/chain"
)

type ChainResponse struct {
	Length uint64        `json:"length"`
	Blocks []chain.Block `json:"blocks"`
}

type BlockResponse struct {
	Block  chain.Block `json:"block"`
	Digest string      `json:"digest"`
}

type TransactionResponse struct {
	Index uint64 `json:"index"`
}

type ProofResponse struct {
	Valid bool `json:"valid"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
