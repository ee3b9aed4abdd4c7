// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package contract builds signed deploys that run wasm loaded from files.
package contract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/keys"
)

var ErrWasmRead = errors.New("wasm read error")

// WasmReadError wraps the underlying os error when a contract file cannot be read
type WasmReadError struct {
	Path string
	Err  error
}

func (e *WasmReadError) Error() string {
	return fmt.Sprintf("failed to read wasm %s: %v", e.Path, e.Err)
}

func (e *WasmReadError) Unwrap() error { return e.Err }

func (e *WasmReadError) Is(target error) bool {
	return target == ErrWasmRead
}

// Contract holds session wasm and optional payment wasm. Empty payment wasm selects the
// network's standard payment.
type Contract struct {
	sessionPath string
	paymentPath string
	sessionWasm []byte
	paymentWasm []byte
	paramsOpts  []deploy.ParamsOptionFunc
	logger      *slog.Logger
}

// ContractOptionFunc is a type that represents functions that modify the contract config
type ContractOptionFunc func(*Contract)

// WithPaymentPath specifies a custom payment contract
func WithPaymentPath(path string) ContractOptionFunc {
	return func(c *Contract) {
		c.paymentPath = path
	}
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) ContractOptionFunc {
	return func(c *Contract) {
		c.logger = logger
	}
}

// WithParams specifies options applied to the params of every deploy
func WithParams(opts ...deploy.ParamsOptionFunc) ContractOptionFunc {
	return func(c *Contract) {
		c.paramsOpts = append(c.paramsOpts, opts...)
	}
}

// NewContract reads the session wasm, and the payment wasm if one was specified
func NewContract(sessionPath string, opts ...ContractOptionFunc) (*Contract, error) {
	c := &Contract{
		sessionPath: sessionPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	var err error
	c.sessionWasm, err = readWasm(sessionPath)
	if err != nil {
		return nil, err
	}
	c.paymentWasm = []byte{}
	if c.paymentPath != "" {
		c.paymentWasm, err = readWasm(c.paymentPath)
		if err != nil {
			return nil, err
		}
	}
	c.logger.Debug(
		"loaded contract",
		"component", "contract",
		"session", sessionPath,
		"session_size", len(c.sessionWasm),
		"payment_size", len(c.paymentWasm),
	)
	return c, nil
}

func readWasm(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &WasmReadError{Path: path, Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &WasmReadError{Path: path, Err: err}
	}
	return data, nil
}

func (c *Contract) SessionWasm() []byte {
	return c.sessionWasm
}

func (c *Contract) PaymentWasm() []byte {
	return c.paymentWasm
}

// Deploy builds a deploy running the session wasm with args and signs it with signingKey
func (c *Contract) Deploy(
	args deploy.RuntimeArgs,
	paymentAmount clvalue.U512,
	account keys.PublicKey,
	signingKey keys.AsymmetricKey,
	chainName string,
) (*deploy.Deploy, error) {
	session := deploy.ModuleBytes{
		Module: c.sessionWasm,
		Args:   args,
	}
	paymentArgs, err := deploy.NewRuntimeArgs(deploy.NewArg("amount", paymentAmount))
	if err != nil {
		return nil, err
	}
	payment := deploy.ModuleBytes{
		Module: c.paymentWasm,
		Args:   paymentArgs,
	}
	d, err := deploy.MakeDeploy(
		deploy.NewParams(account, chainName, c.paramsOpts...),
		session,
		payment,
	)
	if err != nil {
		return nil, err
	}
	signed, err := deploy.SignDeploy(d, signingKey)
	if err != nil {
		return nil, err
	}
	c.logger.Info(
		"built contract deploy",
		"component", "contract",
		"deploy_hash", signed.Hash.String(),
		"account", account.Hex(),
		"chain", chainName,
	)
	return signed, nil
}

// BoundContract always deploys and signs with the same key
type BoundContract struct {
	contract *Contract
	key      keys.AsymmetricKey
}

func NewBoundContract(contract *Contract, key keys.AsymmetricKey) *BoundContract {
	return &BoundContract{
		contract: contract,
		key:      key,
	}
}

func (b *BoundContract) Deploy(
	args deploy.RuntimeArgs,
	paymentAmount clvalue.U512,
	chainName string,
) (*deploy.Deploy, error) {
	return b.contract.Deploy(args, paymentAmount, b.key.PublicKey(), b.key, chainName)
}

// FaucetArgs are the arguments of the faucet contract: the account to fund
func FaucetArgs(account keys.AccountHash) deploy.RuntimeArgs {
	args, _ := deploy.NewRuntimeArgs(
		deploy.NewArg("account", clvalue.NewAccountKey(account)),
	)
	return args
}

// TransferArgs are the arguments of the transfer contract
func TransferArgs(account keys.AccountHash, amount clvalue.U512) deploy.RuntimeArgs {
	args, _ := deploy.NewRuntimeArgs(
		deploy.NewArg("account", clvalue.NewAccountKey(account)),
		deploy.NewArg("amount", amount),
	)
	return args
}
