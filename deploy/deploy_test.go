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

package deploy_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/cbor"
	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/internal/test"
	"github.com/blinklabs-io/gocasper/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testChainName = "casper-test"

var testTimestamp = time.UnixMilli(1_600_000_000_123)

func testKeys(t *testing.T) (*keys.Ed25519Key, *keys.Secp256k1Key) {
	t.Helper()
	edKey, err := keys.NewEd25519Key(
		test.DecodeHexString("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"),
	)
	require.NoError(t, err)
	secpKey, err := keys.NewSecp256k1Key(bytes.Repeat([]byte{0x11}, 32))
	require.NoError(t, err)
	return edKey, secpKey
}

func testSession(t *testing.T, target string) deploy.ModuleBytes {
	t.Helper()
	args, err := deploy.NewRuntimeArgs(
		deploy.NewArg("target", clvalue.String(target)),
		deploy.NewArg("amount", clvalue.U512FromUint64(1000)),
	)
	require.NoError(t, err)
	return deploy.ModuleBytes{Module: []byte{0x00, 0x61, 0x73, 0x6d}, Args: args}
}

func testPayment() deploy.ModuleBytes {
	return deploy.StandardPayment(clvalue.U512FromUint64(1_000_000_000))
}

func makeTestDeploy(t *testing.T, account keys.PublicKey, opts ...deploy.ParamsOptionFunc) *deploy.Deploy {
	t.Helper()
	opts = append([]deploy.ParamsOptionFunc{deploy.WithTimestamp(testTimestamp)}, opts...)
	d, err := deploy.MakeDeploy(
		deploy.NewParams(account, testChainName, opts...),
		testSession(t, "alice"),
		testPayment(),
	)
	require.NoError(t, err)
	return d
}

func TestMakeDeployDefaults(t *testing.T) {
	edKey, _ := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey())
	assert.True(t, d.Header.Account.Equal(edKey.PublicKey()))
	assert.Equal(t, uint64(1_600_000_000_123), d.Header.Timestamp)
	assert.Equal(t, uint32(1_800_000), d.Header.TTL)
	assert.Equal(t, uint64(1), d.Header.GasPrice)
	assert.Empty(t, d.Header.Dependencies)
	assert.Equal(t, testChainName, d.Header.ChainName)
	assert.Empty(t, d.Approvals)
	body := append(deploy.ItemToBytes(testPayment()), deploy.ItemToBytes(testSession(t, "alice"))...)
	assert.Equal(t, keys.Blake2b256Hash(body), d.Header.BodyHash)
	assert.Equal(t, keys.Blake2b256Hash(d.Header.ToBytes()), d.Hash)
	require.NoError(t, d.Validate())
}

func TestMakeDeployClock(t *testing.T) {
	edKey, _ := testKeys(t)
	d, err := deploy.MakeDeploy(
		deploy.NewParams(
			edKey.PublicKey(),
			testChainName,
			deploy.WithClock(func() time.Time { return testTimestamp }),
		),
		testSession(t, "alice"),
		testPayment(),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(testTimestamp.UnixMilli()), d.Header.Timestamp)
	assert.False(t, d.Header.Expired(testTimestamp.Add(29*time.Minute)))
	assert.True(t, d.Header.Expired(testTimestamp.Add(31*time.Minute)))
}

func TestMakeDeployDeterministic(t *testing.T) {
	edKey, secpKey := testKeys(t)
	base := makeTestDeploy(t, edKey.PublicKey())
	again := makeTestDeploy(t, edKey.PublicKey())
	assert.Equal(t, base.Hash, again.Hash)
	assert.Equal(t, base.ToBytes(), again.ToBytes())
	variants := map[string]*deploy.Deploy{
		"account":      makeTestDeploy(t, secpKey.PublicKey()),
		"timestamp":    makeTestDeploy(t, edKey.PublicKey(), deploy.WithTimestamp(testTimestamp.Add(time.Millisecond))),
		"ttl":          makeTestDeploy(t, edKey.PublicKey(), deploy.WithTTL(time.Hour)),
		"gas price":    makeTestDeploy(t, edKey.PublicKey(), deploy.WithGasPrice(2)),
		"dependencies": makeTestDeploy(t, edKey.PublicKey(), deploy.WithDependencies(base.Hash)),
	}
	otherChain, err := deploy.MakeDeploy(
		deploy.NewParams(edKey.PublicKey(), "casper", deploy.WithTimestamp(testTimestamp)),
		testSession(t, "alice"),
		testPayment(),
	)
	require.NoError(t, err)
	variants["chain name"] = otherChain
	otherSession, err := deploy.MakeDeploy(
		deploy.NewParams(edKey.PublicKey(), testChainName, deploy.WithTimestamp(testTimestamp)),
		testSession(t, "bob"),
		testPayment(),
	)
	require.NoError(t, err)
	assert.NotEqual(t, base.Header.BodyHash, otherSession.Header.BodyHash)
	variants["session"] = otherSession
	for name, variant := range variants {
		assert.NotEqual(t, base.Hash, variant.Hash, name)
	}
}

func TestMakeDeployErrors(t *testing.T) {
	edKey, _ := testKeys(t)
	pk := edKey.PublicKey()
	testDefs := map[string]struct {
		params  deploy.Params
		session deploy.ExecutableDeployItem
	}{
		"missing account":  {deploy.NewParams(keys.PublicKey{}, testChainName), testSession(t, "a")},
		"missing chain":    {deploy.NewParams(pk, ""), testSession(t, "a")},
		"missing session":  {deploy.NewParams(pk, testChainName), nil},
		"negative ttl":     {deploy.NewParams(pk, testChainName, deploy.WithTTL(-time.Second)), testSession(t, "a")},
		"sub-ms ttl":       {deploy.NewParams(pk, testChainName, deploy.WithTTL(time.Microsecond)), testSession(t, "a")},
		"ttl out of range": {deploy.NewParams(pk, testChainName, deploy.WithTTL(50*24*time.Hour)), testSession(t, "a")},
	}
	for name, testDef := range testDefs {
		_, err := deploy.MakeDeploy(testDef.params, testDef.session, testPayment())
		assert.Error(t, err, name)
	}
}

func TestMakeDeployParamsLiteral(t *testing.T) {
	edKey, _ := testKeys(t)
	literal, err := deploy.MakeDeploy(
		deploy.Params{
			Account:   edKey.PublicKey(),
			ChainName: testChainName,
			Timestamp: testTimestamp,
		},
		testSession(t, "alice"),
		testPayment(),
	)
	require.NoError(t, err)
	assert.Equal(t, uint32(1_800_000), literal.Header.TTL)
	assert.Equal(t, uint64(deploy.DefaultGasPrice), literal.Header.GasPrice)
	assert.Equal(t, makeTestDeploy(t, edKey.PublicKey()).Hash, literal.Hash)

	withTTL, err := deploy.MakeDeploy(
		deploy.Params{
			Account:   edKey.PublicKey(),
			ChainName: testChainName,
			Timestamp: testTimestamp,
			TTL:       time.Hour,
		},
		testSession(t, "alice"),
		testPayment(),
	)
	require.NoError(t, err)
	assert.Equal(t, uint32(3_600_000), withTTL.Header.TTL)
	assert.Equal(t, uint64(1), withTTL.Header.GasPrice)
}

func TestHeaderBytesLayout(t *testing.T) {
	edKey, _ := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey(), deploy.WithDependencies(keys.Blake2b256{1}))
	data := d.Header.ToBytes()
	// account, timestamp, ttl, gas price, body hash, one dependency, chain name
	require.Len(t, data, 33+8+8+8+32+4+32+4+len(testChainName))
	assert.Equal(t, edKey.PublicKey().ToBytes(), data[:33])
	assert.Equal(t, uint64(1_600_000_000_123), binary.LittleEndian.Uint64(data[33:41]))
	assert.Equal(t, uint64(1_800_000), binary.LittleEndian.Uint64(data[41:49]))
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[49:57]))
	assert.Equal(t, d.Header.BodyHash.Bytes(), data[57:89])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[89:93]))
	assert.Equal(t, byte(1), data[93])
	decoded, err := deploy.FromBytes(d.ToBytes())
	require.NoError(t, err)
	assert.True(t, decoded.Header.Equal(d.Header))
}

func TestSignDeploy(t *testing.T) {
	edKey, secpKey := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey())
	signed, err := deploy.SignDeploy(d, edKey)
	require.NoError(t, err)
	// The input is not modified
	assert.Empty(t, d.Approvals)
	require.Len(t, signed.Approvals, 1)
	approval := signed.Approvals[0]
	assert.True(t, approval.Signer.Equal(edKey.PublicKey()))
	assert.True(t, keys.Verify(approval.Signature, d.Hash.Bytes(), edKey.PublicKey()))
	other := makeTestDeploy(t, edKey.PublicKey(), deploy.WithGasPrice(5))
	assert.False(t, keys.Verify(approval.Signature, other.Hash.Bytes(), edKey.PublicKey()))
	assert.False(t, keys.Verify(approval.Signature, d.Hash.Bytes(), secpKey.PublicKey()))
	// A second signer adds a second approval
	signed2, err := deploy.SignDeploy(signed, secpKey)
	require.NoError(t, err)
	require.Len(t, signed2.Approvals, 2)
	assert.Len(t, signed.Approvals, 1)
	assert.True(t, signed2.Approvals[1].Verify(d.Hash))
	// Signing again with the same key is a no-op
	signed3, err := deploy.SignDeploy(signed2, edKey)
	require.NoError(t, err)
	assert.Len(t, signed3.Approvals, 2)
	assert.True(t, signed3.IsSignedBy(edKey.PublicKey()))
	assert.True(t, signed3.IsSignedBy(secpKey.PublicKey()))
	require.NoError(t, signed3.Validate())
	// Hash and header never change
	assert.Equal(t, d.Hash, signed3.Hash)
}

func TestSignDeployConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)
	edKey, secpKey := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey())
	signers := []keys.AsymmetricKey{edKey, secpKey}
	results := make([]*deploy.Deploy, len(signers))
	errs := make([]error, len(signers))
	var wg sync.WaitGroup
	for idx, signer := range signers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[idx], errs[idx] = deploy.SignDeploy(d, signer)
		}()
	}
	wg.Wait()
	merged := d
	for idx := range signers {
		require.NoError(t, errs[idx])
		var err error
		merged, err = merged.MergeApprovals(results[idx].Approvals...)
		require.NoError(t, err)
	}
	assert.Len(t, merged.Approvals, 2)
	assert.Empty(t, d.Approvals)
	require.NoError(t, merged.Validate())
}

func TestMergeApprovals(t *testing.T) {
	edKey, secpKey := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey())
	byEd, err := deploy.SignDeploy(d, edKey)
	require.NoError(t, err)
	bySecp, err := deploy.SignDeploy(d, secpKey)
	require.NoError(t, err)
	merged, err := byEd.MergeApprovals(bySecp.Approvals...)
	require.NoError(t, err)
	assert.Len(t, merged.Approvals, 2)
	// Merging the same approvals again changes nothing
	again, err := merged.MergeApprovals(byEd.Approvals...)
	require.NoError(t, err)
	assert.Len(t, again.Approvals, 2)
	// Approvals for another deploy are rejected
	other, err := deploy.SignDeploy(makeTestDeploy(t, edKey.PublicKey(), deploy.WithGasPrice(3)), secpKey)
	require.NoError(t, err)
	_, err = byEd.MergeApprovals(other.Approvals...)
	assert.ErrorIs(t, err, deploy.ErrValidation)
}

func TestSignRejectsEditedDeploy(t *testing.T) {
	edKey, secpKey := testKeys(t)
	signed, err := deploy.SignDeploy(makeTestDeploy(t, edKey.PublicKey()), edKey)
	require.NoError(t, err)
	data, err := json.Marshal(signed)
	require.NoError(t, err)
	edited := bytes.Replace(
		data,
		[]byte(`"chain_name":"`+testChainName+`"`),
		[]byte(`"chain_name":"casper-evil"`),
		1,
	)
	require.NotEqual(t, data, edited)

	var d deploy.Deploy
	require.NoError(t, json.Unmarshal(edited, &d))
	assert.Equal(t, "casper-evil", d.Header.ChainName)
	var validationErr *deploy.ValidationError
	err = d.ValidateHashes()
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "hash", validationErr.Field)

	_, err = deploy.SignDeploy(&d, secpKey)
	assert.ErrorIs(t, err, deploy.ErrValidation)
	bySecp, err := deploy.SignDeploy(signed, secpKey)
	require.NoError(t, err)
	_, err = d.MergeApprovals(bySecp.Approvals...)
	assert.ErrorIs(t, err, deploy.ErrValidation)
	_, err = d.ApplyApprovalSet(deploy.NewApprovalSet(bySecp))
	assert.ErrorIs(t, err, deploy.ErrValidation)

	_, err = deploy.SignDeploy(signed, nil)
	assert.ErrorIs(t, err, keys.ErrSigning)
}

func TestValidate(t *testing.T) {
	edKey, secpKey := testKeys(t)
	signed, err := deploy.SignDeploy(makeTestDeploy(t, edKey.PublicKey()), edKey)
	require.NoError(t, err)
	require.NoError(t, signed.Validate())

	tamperedHeader := *signed
	tamperedHeader.Header.GasPrice = 10
	var validationErr *deploy.ValidationError
	err = tamperedHeader.Validate()
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "hash", validationErr.Field)

	tamperedBody := *signed
	tamperedBody.Session = testSession(t, "mallory")
	err = tamperedBody.Validate()
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "header.body_hash", validationErr.Field)

	badSig := *signed
	badSig.Approvals = []deploy.Approval{{
		Signer:    secpKey.PublicKey(),
		Signature: signed.Approvals[0].Signature,
	}}
	err = badSig.Validate()
	assert.ErrorIs(t, err, deploy.ErrValidation)
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "approvals[0].signature", validationErr.Field)
}

func TestDeployBytesRoundTrip(t *testing.T) {
	edKey, secpKey := testKeys(t)
	d, err := deploy.SignDeploy(makeTestDeploy(t, edKey.PublicKey()), edKey)
	require.NoError(t, err)
	d, err = deploy.SignDeploy(d, secpKey)
	require.NoError(t, err)
	data := d.ToBytes()
	decoded, err := deploy.FromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, d.Hash, decoded.Hash)
	assert.Equal(t, data, decoded.ToBytes())
	require.NoError(t, decoded.Validate())
	_, err = deploy.FromBytes(data[:len(data)-1])
	assert.ErrorIs(t, err, bytesrepr.ErrInsufficientBytes)
	_, err = deploy.FromBytes(append(data, 0))
	assert.ErrorIs(t, err, bytesrepr.ErrLeftoverBytes)
}

func TestApprovalAlgorithmMismatch(t *testing.T) {
	edKey, _ := testKeys(t)
	w := bytesrepr.NewWriter(0)
	edKey.PublicKey().Append(w)
	w.PackU8(uint8(keys.AlgorithmSecp256k1))
	w.PackFixedBytes(make([]byte, keys.SignatureLen))
	r := bytesrepr.NewReader(w.Bytes())
	deploy.UnpackApproval(r)
	assert.ErrorIs(t, r.Err(), bytesrepr.ErrInvalidTag)
}

func TestDeployJSON(t *testing.T) {
	edKey, secpKey := testKeys(t)
	d, err := deploy.SignDeploy(makeTestDeploy(t, edKey.PublicKey()), edKey)
	require.NoError(t, err)
	d, err = deploy.SignDeploy(d, secpKey)
	require.NoError(t, err)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	var tmp struct {
		Hash   string `json:"hash"`
		Header struct {
			Timestamp string `json:"timestamp"`
			TTL       string `json:"ttl"`
			GasPrice  uint64 `json:"gas_price"`
		} `json:"header"`
		Approvals []struct {
			Signer    string `json:"signer"`
			Signature string `json:"signature"`
		} `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(data, &tmp))
	assert.Equal(t, d.Hash.String(), tmp.Hash)
	assert.Equal(t, "2020-09-13T12:26:40.123Z", tmp.Header.Timestamp)
	assert.Equal(t, "30m", tmp.Header.TTL)
	assert.Equal(t, uint64(1), tmp.Header.GasPrice)
	require.Len(t, tmp.Approvals, 2)
	assert.Equal(t, edKey.PublicKey().Hex(), tmp.Approvals[0].Signer)
	assert.Equal(t, "01", tmp.Approvals[0].Signature[:2])
	assert.Equal(t, "02", tmp.Approvals[1].Signature[:2])
	var decoded deploy.Deploy
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d.ToBytes(), decoded.ToBytes())
	require.NoError(t, decoded.Validate())
}

func TestApprovalSetCbor(t *testing.T) {
	edKey, secpKey := testKeys(t)
	d := makeTestDeploy(t, edKey.PublicKey())
	byEd, err := deploy.SignDeploy(d, edKey)
	require.NoError(t, err)
	bySecp, err := deploy.SignDeploy(d, secpKey)
	require.NoError(t, err)
	cborData, err := cbor.Encode(deploy.NewApprovalSet(bySecp))
	require.NoError(t, err)
	id, err := cbor.DecodeIdFromList(cborData)
	require.NoError(t, err)
	assert.Equal(t, deploy.ApprovalSetVersion, id)
	set, err := deploy.ApprovalSetFromCbor(cborData)
	require.NoError(t, err)
	assert.Equal(t, cborData, set.Cbor())
	reencoded, err := cbor.Encode(set)
	require.NoError(t, err)
	assert.Equal(t, cborData, reencoded)
	merged, err := byEd.ApplyApprovalSet(set)
	require.NoError(t, err)
	assert.Len(t, merged.Approvals, 2)
	require.NoError(t, merged.Validate())
	// A set for another deploy is rejected
	other := makeTestDeploy(t, edKey.PublicKey(), deploy.WithGasPrice(7))
	_, err = other.ApplyApprovalSet(set)
	assert.ErrorIs(t, err, deploy.ErrValidation)
}

func TestApprovalSetVersion(t *testing.T) {
	edKey, _ := testKeys(t)
	set := deploy.NewApprovalSet(makeTestDeploy(t, edKey.PublicKey()))
	set.Version = 2
	cborData, err := cbor.Encode(set)
	require.NoError(t, err)
	_, err = deploy.ApprovalSetFromCbor(cborData)
	assert.ErrorContains(t, err, "unknown ID")
	// Decoding straight into the type also checks the version
	var direct deploy.ApprovalSet
	_, err = cbor.Decode(cborData, &direct)
	assert.ErrorContains(t, err, "unsupported approval set version")
}
