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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArg(t *testing.T) {
	cases := []struct {
		def      string
		name     string
		typ      clvalue.CLType
		bytesHex string
	}{
		{"flag:bool=true", "flag", clvalue.TypeBool, "01"},
		{"n:i32=-1", "n", clvalue.TypeI32, "ffffffff"},
		{"n:I64=2", "n", clvalue.TypeI64, "0200000000000000"},
		{"n:u8=255", "n", clvalue.TypeU8, "ff"},
		{"n:u32=7", "n", clvalue.TypeU32, "07000000"},
		{"n:u64=1", "n", clvalue.TypeU64, "0100000000000000"},
		{"amount:u512=1000", "amount", clvalue.TypeU512, "02e803"},
		{"amount:U256=0", "amount", clvalue.TypeU256, "00"},
		{"u:unit=", "u", clvalue.TypeUnit, ""},
		{"msg:string=a=b", "msg", clvalue.TypeString, "03000000613d62"},
		{
			"target:key=hash-2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a",
			"target",
			clvalue.TypeKey,
			"01" + strings.Repeat("2a", 32),
		},
		{
			"purse:uref=uref-" + strings.Repeat("2a", 32) + "-007",
			"purse",
			clvalue.TypeURef,
			strings.Repeat("2a", 32) + "07",
		},
		{
			"who:public_key=01d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
			"who",
			clvalue.TypePublicKey,
			"01d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.def, func(t *testing.T) {
			arg, err := parseArg(tc.def)
			require.NoError(t, err)
			assert.Equal(t, tc.name, arg.Name)
			assert.True(t, clvalue.TypesEqual(tc.typ, arg.Value.Type))
			assert.Equal(t, test.DecodeHexString(tc.bytesHex), arg.Value.Bytes)
		})
	}
}

func TestParseArgErrors(t *testing.T) {
	for _, def := range []string{
		"novalue",
		"notype=1",
		":u8=1",
		"n:float=1.5",
		"n:u8=256",
		"n:i32=2147483648",
		"n:bool=maybe",
		"n:u512=-1",
		"n:unit=x",
		"n:key=account-1234",
		"n:public_key=zz",
	} {
		t.Run(def, func(t *testing.T) {
			_, err := parseArg(def)
			assert.Error(t, err)
		})
	}
}

func TestParseRuntimeArgs(t *testing.T) {
	args, err := parseRuntimeArgs([]string{"b:u8=1", "a:string=x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, args.Names())

	_, err = parseRuntimeArgs([]string{"a:u8=1", "a:u8=2"})
	require.Error(t, err)
}

func TestDeployWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := func(name string) string { return filepath.Join(dir, name) }
	f := newGlobalFlags()

	session := test.WriteTempFile(t, "session.wasm", []byte{0x00, 0x61, 0x73, 0x6d})
	require.NoError(t, runKeygen(f, []string{"-algorithm", "ed25519", "-out", path("a.key")}))
	require.NoError(t, runKeygen(f, []string{"-algorithm", "secp256k1", "-out", path("b.key")}))
	require.NoError(t, runAccountHash(f, []string{"-key", path("b.key")}))

	require.NoError(t, runMake(f, []string{
		"-key", path("a.key"),
		"-chain", "casper-test",
		"-session", session,
		"-amount", "1000000000",
		"-ttl", "1h",
		"-arg", "target:u64=5",
		"-arg", "memo:string=hello",
		"-out", path("deploy.json"),
	}))
	made, err := readDeploy(path("deploy.json"))
	require.NoError(t, err)
	require.NoError(t, made.Validate())
	assert.Len(t, made.Approvals, 1)
	assert.Equal(t, uint32(3_600_000), made.Header.TTL)
	assert.Equal(t, []string{"target", "memo"}, made.Session.RuntimeArgs().Names())

	require.NoError(t, runSign(f, []string{
		"-key", path("b.key"),
		"-in", path("deploy.json"),
		"-out", path("signed-b.json"),
		"-approvals-out", path("b.cbor"),
	}))
	require.NoError(t, runMerge(f, []string{
		"-in", path("deploy.json"),
		"-approvals", path("b.cbor"),
		"-out", path("merged.json"),
	}))
	require.NoError(t, runVerify(f, []string{"-in", path("merged.json")}))
	merged, err := readDeploy(path("merged.json"))
	require.NoError(t, err)
	assert.Len(t, merged.Approvals, 2)
	assert.Equal(t, made.Hash, merged.Hash)

	data, err := os.ReadFile(path("merged.json"))
	require.NoError(t, err)
	tampered := strings.Replace(string(data), "casper-test", "casper-main", 1)
	require.NoError(t, os.WriteFile(path("tampered.json"), []byte(tampered), 0o600))
	require.Error(t, runVerify(f, []string{"-in", path("tampered.json")}))
	err = runSign(f, []string{
		"-key", path("b.key"),
		"-in", path("tampered.json"),
		"-out", path("tampered-signed.json"),
	})
	require.ErrorIs(t, err, deploy.ErrValidation)
	assert.NoFileExists(t, path("tampered-signed.json"))
	err = runMerge(f, []string{
		"-in", path("tampered.json"),
		"-approvals", path("b.cbor"),
		"-out", path("tampered-merged.json"),
	})
	require.ErrorIs(t, err, deploy.ErrValidation)

	require.Error(t, runMerge(f, []string{
		"-in", path("deploy.json"),
		"-approvals", path("missing.cbor"),
	}))
	require.Error(t, runMake(f, []string{"-key", path("a.key")}))
}
