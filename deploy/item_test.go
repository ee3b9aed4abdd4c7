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
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardPaymentBytes(t *testing.T) {
	item := deploy.StandardPayment(clvalue.U512FromUint64(1000))
	assert.True(t, item.IsStandardPayment())
	expected := test.DecodeHexString(
		"00" + "00000000" + "01000000" + "06000000616d6f756e74" + "0300000002e803" + "08",
	)
	assert.Equal(t, expected, deploy.ItemToBytes(item))
}

func testItems(t *testing.T) []deploy.ExecutableDeployItem {
	t.Helper()
	args, err := deploy.NewRuntimeArgs(
		deploy.NewArg("target", clvalue.ByteArray(bytes.Repeat([]byte{7}, 32))),
		deploy.NewArg("amount", clvalue.U512FromUint64(2500000000)),
	)
	require.NoError(t, err)
	var hash [deploy.ContractHashLen]byte
	hash[31] = 0x11
	version := uint32(2)
	return []deploy.ExecutableDeployItem{
		deploy.ModuleBytes{Module: []byte{0x00, 0x61, 0x73, 0x6d}, Args: args},
		deploy.StoredContractByHash{Hash: hash, EntryPoint: "transfer", Args: args},
		deploy.StoredContractByName{Name: "faucet", EntryPoint: "call_faucet", Args: args},
		deploy.StoredVersionedContractByHash{Hash: hash, Version: &version, EntryPoint: "call", Args: args},
		deploy.StoredVersionedContractByName{Name: "pkg", EntryPoint: "call", Args: args},
		deploy.Transfer{Args: args},
	}
}

func TestItemRoundTrip(t *testing.T) {
	for idx, item := range testItems(t) {
		data := deploy.ItemToBytes(item)
		assert.Equal(t, byte(idx), data[0])
		decoded, err := deploy.ItemFromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, item.Tag(), decoded.Tag())
		assert.True(t, deploy.ItemsEqual(item, decoded), item.Tag().String())
		assert.True(t, decoded.RuntimeArgs().Equal(item.RuntimeArgs()))
	}
}

func TestItemJSONRoundTrip(t *testing.T) {
	for _, item := range testItems(t) {
		data, err := deploy.MarshalItemJSON(item)
		require.NoError(t, err)
		var tmp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &tmp))
		assert.Contains(t, tmp, item.Tag().String())
		decoded, err := deploy.UnmarshalItemJSON(data)
		require.NoError(t, err)
		assert.True(t, deploy.ItemsEqual(item, decoded), item.Tag().String())
	}
}

func TestVersionedItemBytes(t *testing.T) {
	version := uint32(2)
	item := deploy.StoredVersionedContractByName{Name: "a", Version: &version, EntryPoint: "b"}
	expected := test.DecodeHexString(
		"04" + "0100000061" + "0102000000" + "0100000062" + "00000000",
	)
	assert.Equal(t, expected, deploy.ItemToBytes(item))
	item.Version = nil
	expected = test.DecodeHexString(
		"04" + "0100000061" + "00" + "0100000062" + "00000000",
	)
	assert.Equal(t, expected, deploy.ItemToBytes(item))
	data, err := deploy.MarshalItemJSON(item)
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`{"StoredVersionedContractByName":{"name":"a","version":null,"entry_point":"b","args":[]}}`,
		string(data),
	)
}

func TestItemDecodeErrors(t *testing.T) {
	_, err := deploy.ItemFromBytes([]byte{6})
	assert.ErrorIs(t, err, bytesrepr.ErrInvalidTag)
	// Bad option tag for the version
	_, err = deploy.ItemFromBytes(test.DecodeHexString("04" + "0100000061" + "02"))
	assert.ErrorIs(t, err, bytesrepr.ErrInvalidTag)
	_, err = deploy.ItemFromBytes([]byte{1, 0, 0})
	assert.ErrorIs(t, err, bytesrepr.ErrInsufficientBytes)
	_, err = deploy.ItemFromBytes([]byte{5, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, bytesrepr.ErrLeftoverBytes)
	_, err = deploy.UnmarshalItemJSON([]byte(`{"Unknown":{}}`))
	assert.Error(t, err)
	_, err = deploy.UnmarshalItemJSON([]byte(`{"StoredContractByHash":{"hash":"00","entry_point":"a","args":[]}}`))
	assert.Error(t, err)
}

func TestFormatTTL(t *testing.T) {
	testDefs := []struct {
		ms       uint64
		expected string
	}{
		{0, "0s"},
		{1500, "1s 500ms"},
		{60_000, "1m"},
		{1_800_000, "30m"},
		{5_400_000, "1h 30m"},
		{86_400_000, "1day"},
		{172_800_000, "2days"},
		{90_061_001, "1day 1h 1m 1s 1ms"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, deploy.FormatTTL(testDef.ms))
		ms, err := deploy.ParseTTL(testDef.expected)
		require.NoError(t, err)
		assert.Equal(t, testDef.ms, ms)
	}
}

func TestParseTTL(t *testing.T) {
	ms, err := deploy.ParseTTL("1h30m")
	require.NoError(t, err)
	assert.Equal(t, uint64(5_400_000), ms)
	ms, err = deploy.ParseTTL(" 2 hours ")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_200_000), ms)
	for _, bad := range []string{"", "5", "h", "5x", "1h -5m", "99999999999999999999ms"} {
		_, err := deploy.ParseTTL(bad)
		assert.Error(t, err, bad)
	}
}
