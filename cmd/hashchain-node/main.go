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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/dgraph-io/badger/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/ziflex/lecho/v2"

	"github.com/optakt/hashchain/api/rest"
	"github.com/optakt/hashchain/codec/zbor"
	"github.com/optakt/hashchain/engine"
	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/service/hasher"
	"github.com/optakt/hashchain/service/index"
	"github.com/optakt/hashchain/service/ledger"
	"github.com/optakt/hashchain/service/metrics"
	"github.com/optakt/hashchain/service/pow"
	"github.com/optakt/hashchain/service/profiler"
	"github.com/optakt/hashchain/service/storage"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagAddress     string
		flagCache       uint64
		flagCheckProofs bool
		flagData        string
		flagDifficulty  uint
		flagLevel       string
		flagMetrics     string
		flagProfiler    string
		flagTimeout     time.Duration
		flagWorkers     uint
	)

	pflag.StringVarP(&flagAddress, "address", "a", "127.0.0.1:5000", "address to serve the REST API on")
	pflag.Uint64VarP(&flagCache, "cache", "e", uint64(64*datasize.MB), "maximum cache size for decoded blocks in bytes")
	pflag.BoolVarP(&flagCheckProofs, "check-proofs", "c", true, "reject new blocks with a proof that is not valid for the last block")
	pflag.StringVarP(&flagData, "data", "d", "data", "path to database directory for the chain")
	pflag.UintVarP(&flagDifficulty, "difficulty", "f", chain.DefaultDifficulty, "number of leading zero hex characters needed for a valid proof")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address to serve metrics on (disabled if empty)")
	pflag.StringVarP(&flagProfiler, "profiler", "p", "", "address to serve runtime profiles on (disabled if empty)")
	pflag.DurationVarP(&flagTimeout, "timeout", "t", time.Minute, "maximum duration of a proof search for a mining request")
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
	elog := lecho.From(log)

	// Open the block database.
	db, err := badger.Open(chain.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open block database")
		return failure
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Error().Err(err).Msg("could not close block database")
		}
	}()

	// The storage library is initialized with a codec and provides functions to
	// interact with a Badger database while encoding and compressing
	// transparently.
	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	lib := storage.New(codec)

	// All metrics go to a dedicated registry, which also carries the Go
	// runtime collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	err = metrics.RegisterBadgerMetrics(registry)
	if err != nil {
		log.Error().Err(err).Msg("could not register badger metrics")
		return failure
	}

	read, err := index.NewReader(db, lib, index.WithCacheSize(int64(flagCache)))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize index reader")
		return failure
	}
	write := index.NewMetricsWriter(index.NewWriter(db, lib), registry)

	hash := hasher.New()
	work, err := pow.New(
		pow.WithDifficulty(flagDifficulty),
		pow.WithWorkers(flagWorkers),
	)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize proof-of-work")
		return failure
	}
	prover := pow.NewMetricsProver(work, registry)

	// If the database already holds a chain, we restore it; otherwise, we start
	// a new one, which persists its genesis block right away. The persisted
	// chain was written by this node, possibly with overridden previous hashes
	// or with proof checks disabled, so restoring it only checks its structure.
	options := []func(*ledger.Config){
		ledger.WithProofCheck(flagCheckProofs),
		ledger.WithWriter(write),
		ledger.WithStrictRestore(false),
	}
	blocks, err := read.Blocks()
	if err != nil {
		log.Error().Err(err).Msg("could not read persisted blocks")
		return failure
	}
	var blockchain *ledger.Ledger
	if len(blocks) == 0 {
		blockchain, err = ledger.New(log, hash, prover, options...)
	} else {
		blockchain, err = ledger.Restore(log, hash, prover, blocks, options...)
	}
	if err != nil {
		log.Error().Err(err).Msg("could not initialize ledger")
		return failure
	}
	err = blockchain.Verify()
	if err != nil {
		log.Warn().Err(err).Msg("restored chain does not verify")
	}

	ctrl := rest.NewController(blockchain, hash, prover, rest.WithMineTimeout(flagTimeout), rest.WithReader(read))

	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Logger = elog
	server.Use(lecho.Middleware(lecho.Config{Logger: elog}))
	ctrl.Register(server)

	e := engine.New(log, "Hashchain Node", sig).
		Component(
			"api",
			func() error {
				err := server.Start(flagAddress)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				err := server.Shutdown(ctx)
				if err != nil {
					log.Error().Err(err).Msg("could not shut down API server")
				}
			},
		)

	if flagMetrics != "" {
		mserver := metrics.NewServer(log, flagMetrics, registry)
		e.Component(
			"metrics",
			mserver.Run,
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				err := mserver.Stop(ctx)
				if err != nil {
					log.Error().Err(err).Msg("could not shut down metrics server")
				}
			},
		)
	}

	if flagProfiler != "" {
		pserver := profiler.NewServer(log, flagProfiler)
		e.Component(
			"profiler",
			pserver.Run,
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				err := pserver.Stop(ctx)
				if err != nil {
					log.Error().Err(err).Msg("could not shut down profiler")
				}
			},
		)
	}

	err = e.Run()
	if err != nil {
		log.Error().Err(err).Msg("failed")
		return failure
	}

	return success
}
