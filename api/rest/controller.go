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
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/optakt/hashchain/models/chain"
)

// Controller exposes a ledger over HTTP.
type Controller struct {
	cfg      Config
	chain    chain.Chain
	hash     chain.Hasher
	prover   chain.Prover
	validate *validator.Validate
}

// NewController creates a controller for the given ledger. The hasher is used
// to add digests to block responses, and the prover to check proofs.
func NewController(ledger chain.Chain, hash chain.Hasher, prover chain.Prover, options ...func(*Config)) *Controller {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	c := Controller{
		cfg:      cfg,
		chain:    ledger,
		hash:     hash,
		prover:   prover,
		validate: validator.New(),
	}

	return &c
}

// Register adds the routes of the controller to the given server.
func (c *Controller) Register(server *echo.Echo) {
	server.GET("/chain", c.GetChain)
	server.GET("/blocks/last", c.GetLastBlock)
	server.GET("/blocks/:index", c.GetBlock)
	server.GET("/transactions/pending", c.GetPending)
	server.POST("/transactions", c.PostTransaction)
	server.POST("/blocks", c.PostBlock)
	server.POST("/mine", c.PostMine)
	server.GET("/proofs/:last/:candidate", c.GetProof)
	server.GET("/verify", c.GetVerify)
}

func (c *Controller) GetChain(ctx echo.Context) error {

	blocks := c.chain.Blocks()

	res := ChainResponse{
		Length: uint64(len(blocks)),
		Blocks: blocks,
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetLastBlock(ctx echo.Context) error {

	block, err := c.chain.LastBlock()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, c.blockResponse(block))
}

func (c *Controller) GetBlock(ctx echo.Context) error {

	index, err := strconv.ParseUint(ctx.Param("index"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid block index: %s", err))
	}

	lookup := c.chain.Block
	if c.cfg.Reader != nil {
		lookup = c.cfg.Reader.Block
	}

	block, err := lookup(index)
	if errors.Is(err, chain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, c.blockResponse(block))
}

func (c *Controller) GetPending(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.chain.Pending())
}

func (c *Controller) PostTransaction(ctx echo.Context) error {

	var req TransactionRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid transaction request: %s", err))
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid transaction request: %s", err))
	}

	index := c.chain.NewTransaction(req.Sender, req.Recipient, req.Amount)

	res := TransactionResponse{
		Index: index,
	}

	return ctx.JSON(http.StatusCreated, res)
}

func (c *Controller) PostBlock(ctx echo.Context) error {

	var req BlockRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid block request: %s", err))
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid block request: %s", err))
	}

	block, err := c.chain.NewBlockWithPrevious(*req.Proof, req.PreviousHash)
	if errors.Is(err, chain.ErrInvalidProof) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, c.blockResponse(block))
}

func (c *Controller) PostMine(ctx echo.Context) error {

	mctx, cancel := context.WithTimeout(ctx.Request().Context(), c.cfg.MineTimeout)
	defer cancel()

	block, err := c.chain.Mine(mctx)
	if errors.Is(err, chain.ErrSearchAborted) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, c.blockResponse(block))
}

func (c *Controller) GetProof(ctx echo.Context) error {

	last, err := strconv.ParseUint(ctx.Param("last"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid last proof: %s", err))
	}
	candidate, err := strconv.ParseUint(ctx.Param("candidate"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid candidate proof: %s", err))
	}

	res := ProofResponse{
		Valid: c.prover.Valid(last, candidate),
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetVerify(ctx echo.Context) error {

	res := VerifyResponse{
		Valid: true,
	}
	err := c.chain.Verify()
	if err != nil {
		res.Valid = false
		res.Error = err.Error()
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) blockResponse(block chain.Block) BlockResponse {
	res := BlockResponse{
		Block:  block,
		Digest: c.hash.Digest(block),
	}
	return res
}
