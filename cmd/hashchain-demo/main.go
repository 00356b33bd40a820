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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/hasher"
	"github.com/optakt/hashchain/service/ledger"
	"github.com/optakt/hashchain/service/pow"
)

const (
	success = 0
	failure = 1
)

type batch struct {
	proof        uint64
	transactions []chain.Transaction
}

// The two batches of the reference walkthrough, with the proofs it submits
// without searching.
var batches = []batch{
	{
		proof: 12345,
		transactions: []chain.Transaction{
			{Sender: "Satoshi", Recipient: "Mike", Amount: "5 BTC"},
			{Sender: "Mike", Recipient: "Satoshi", Amount: "1 BTC"},
			{Sender: "Satoshi", Recipient: "Hal Finney", Amount: "5 BTC"},
		},
	},
	{
		proof: 6789,
		transactions: []chain.Transaction{
			{Sender: "Mike", Recipient: "Alice", Amount: "1 BTC"},
			{Sender: "Alice", Recipient: "Bob", Amount: "0.5 BTC"},
			{Sender: "Bob", Recipient: "Mike", Amount: "0.5 BTC"},
		},
	},
}

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching to abort a long search.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagDifficulty uint
		flagLevel      string
		flagMine       bool
		flagTimeout    time.Duration
		flagWorkers    uint
	)

	pflag.UintVarP(&flagDifficulty, "difficulty", "f", chain.DefaultDifficulty, "number of leading zero hex characters needed for a valid proof")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.BoolVarP(&flagMine, "mine", "n", true, "search for valid proofs instead of using the fixed ones")
	pflag.DurationVarP(&flagTimeout, "timeout", "t", time.Minute, "maximum duration of each proof search")
	pflag.UintVarP(&flagWorkers, "workers", "w", uint(runtime.NumCPU()), "number of goroutines used for proof searches")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	hash := hasher.New()
	prover, err := pow.New(
		pow.WithDifficulty(flagDifficulty),
		pow.WithWorkers(flagWorkers),
	)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize proof-of-work")
		return failure
	}

	// The fixed proofs are not valid, so they are only accepted when the
	// ledger does not check them.
	blockchain, err := ledger.New(log, hash, prover, ledger.WithProofCheck(flagMine))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize ledger")
		return failure
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sig
		log.Warn().Msg("aborting")
		cancel()
	}()

	for _, batch := range batches {
		for _, transaction := range batch.transactions {
			index := blockchain.NewTransaction(transaction.Sender, transaction.Recipient, transaction.Amount)
			log.Info().
				Str("sender", transaction.Sender).
				Str("recipient", transaction.Recipient).
				Str("amount", transaction.Amount).
				Uint64("index", index).
				Msg("transaction submitted")
		}

		var block chain.Block
		if flagMine {
			start := time.Now()
			sctx, scancel := context.WithTimeout(ctx, flagTimeout)
			block, err = blockchain.Mine(sctx)
			scancel()
			log.Debug().Dur("duration", time.Since(start)).Uint64("attempts", prover.Attempts()).Msg("search finished")
		} else {
			block, err = blockchain.NewBlock(batch.proof)
		}
		if err != nil {
			log.Error().Err(err).Msg("could not append block")
			return failure
		}

		log.Info().
			Uint64("index", block.Index).
			Uint64("proof", block.Proof).
			Str("previous", block.PreviousHash).
			Str("digest", hash.Digest(block)).
			Int("transactions", len(block.Transactions)).
			Msg("block appended")
	}

	err = blockchain.Verify()
	if err != nil {
		log.Error().Err(err).Msg("chain verification failed")
		return failure
	}

	data, err := json.MarshalIndent(blockchain.Blocks(), "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("could not encode chain")
		return failure
	}
	fmt.Println(string(data))

	return success
}
