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

package contract_test

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/contract"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/internal/test"
	"github.com/blinklabs-io/gocasper/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testWasm = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestNewContract(t *testing.T) {
	defer goleak.VerifyNone(t)
	sessionPath := test.WriteTempFile(t, "session.wasm", testWasm)
	c, err := contract.NewContract(sessionPath, contract.WithLogger(test.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, testWasm, c.SessionWasm())
	assert.Empty(t, c.PaymentWasm())
	paymentWasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x02}
	paymentPath := test.WriteTempFile(t, "payment.wasm", paymentWasm)
	c, err = contract.NewContract(sessionPath, contract.WithPaymentPath(paymentPath))
	require.NoError(t, err)
	assert.Equal(t, paymentWasm, c.PaymentWasm())
}

func TestNewContractMissingFile(t *testing.T) {
	defer goleak.VerifyNone(t)
	missing := filepath.Join(t.TempDir(), "missing.wasm")
	_, err := contract.NewContract(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrWasmRead)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	sessionPath := test.WriteTempFile(t, "session.wasm", testWasm)
	_, err = contract.NewContract(sessionPath, contract.WithPaymentPath(missing))
	assert.ErrorIs(t, err, contract.ErrWasmRead)
	// A directory cannot be read as wasm
	_, err = contract.NewContract(t.TempDir())
	assert.ErrorIs(t, err, contract.ErrWasmRead)
}

func TestContractDeploy(t *testing.T) {
	defer goleak.VerifyNone(t)
	key, err := keys.GenerateEd25519Key()
	require.NoError(t, err)
	ts := time.UnixMilli(1_700_000_000_000)
	c, err := contract.NewContract(
		test.WriteTempFile(t, "session.wasm", testWasm),
		contract.WithLogger(test.DiscardLogger()),
		contract.WithParams(deploy.WithTimestamp(ts)),
	)
	require.NoError(t, err)
	args := contract.TransferArgs(key.PublicKey().AccountHash(), clvalue.U512FromUint64(100))
	amount := clvalue.U512FromUint64(10_000_000_000)
	d, err := c.Deploy(args, amount, key.PublicKey(), key, "casper-test")
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	assert.True(t, d.IsSignedBy(key.PublicKey()))
	assert.Equal(t, uint64(ts.UnixMilli()), d.Header.Timestamp)
	session, ok := d.Session.(deploy.ModuleBytes)
	require.True(t, ok)
	assert.Equal(t, testWasm, session.Module)
	assert.True(t, session.Args.Equal(args))
	// No payment wasm means standard payment
	payment, ok := d.Payment.(deploy.ModuleBytes)
	require.True(t, ok)
	assert.True(t, payment.IsStandardPayment())
	assert.True(t, deploy.ItemsEqual(deploy.StandardPayment(amount), payment))

	bound := contract.NewBoundContract(c, key)
	boundDeploy, err := bound.Deploy(args, amount, "casper-test")
	require.NoError(t, err)
	assert.Equal(t, d.Hash, boundDeploy.Hash)
}

func TestFaucetArgs(t *testing.T) {
	pk, err := keys.NewEd25519PublicKey(bytes.Repeat([]byte{0x2a}, 32))
	require.NoError(t, err)
	accountHash := pk.AccountHash()
	args := contract.FaucetArgs(accountHash)
	assert.Equal(t, []string{"account"}, args.Names())
	v, ok := args.Get("account")
	require.True(t, ok)
	assert.True(t, clvalue.TypesEqual(clvalue.TypeKey, v.Type))
	assert.Equal(t, append([]byte{0}, accountHash.Bytes()...), v.Bytes)
	transferArgs := contract.TransferArgs(accountHash, clvalue.U512FromUint64(5))
	assert.Equal(t, []string{"account", "amount"}, transferArgs.Names())
}
