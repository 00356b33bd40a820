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

package chain

// Genesis defaults used when a ledger is constructed without overrides. The
// previous hash of the genesis block is a sentinel that can never be a valid
// hex-encoded digest.
const (
	GenesisIndex    = 1
	GenesisProof    = 100
	GenesisPrevious = "1"
)

// DigestLength is the length of a hex-encoded block digest.
const DigestLength = 64

// DefaultDifficulty is the number of leading zero hex characters required for
// a proof-of-work guess to be accepted.
const DefaultDifficulty = 4
