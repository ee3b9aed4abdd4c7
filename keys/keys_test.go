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

package keys_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/internal/test"
	"github.com/blinklabs-io/gocasper/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyEd25519Bytes(t *testing.T) {
	raw := bytes.Repeat([]byte{42}, 32)
	pk, err := keys.NewEd25519PublicKey(raw)
	require.NoError(t, err)
	expected := append([]byte{1}, raw...)
	assert.Equal(t, expected, pk.ToBytes())

	decoded, err := keys.PublicKeyFromBytes(expected)
	require.NoError(t, err)
	assert.True(t, pk.Equal(decoded))
	assert.Equal(t, "01"+hex.EncodeToString(raw), pk.Hex())
}

func TestPublicKeySecp256k1Bytes(t *testing.T) {
	raw := append([]byte{0x02}, bytes.Repeat([]byte{7}, 32)...)
	pk, err := keys.NewSecp256k1PublicKey(raw)
	require.NoError(t, err)
	data := pk.ToBytes()
	require.Len(t, data, 34)
	assert.Equal(t, byte(2), data[0])
	decoded, err := keys.ParsePublicKeyHex(pk.Hex())
	require.NoError(t, err)
	assert.True(t, pk.Equal(decoded))
}

func TestPublicKeyErrors(t *testing.T) {
	_, err := keys.NewEd25519PublicKey(make([]byte, 31))
	require.Error(t, err)
	_, err = keys.NewPublicKey(keys.Algorithm(9), make([]byte, 32))
	require.Error(t, err)

	_, err = keys.PublicKeyFromBytes(append([]byte{3}, make([]byte, 32)...))
	assert.ErrorIs(t, err, bytesrepr.ErrInvalidTag)
	_, err = keys.PublicKeyFromBytes(append([]byte{1}, make([]byte, 31)...))
	assert.ErrorIs(t, err, bytesrepr.ErrInsufficientBytes)
	_, err = keys.PublicKeyFromBytes(append([]byte{1}, make([]byte, 33)...))
	assert.ErrorIs(t, err, bytesrepr.ErrLeftoverBytes)
}

func TestPublicKeyEquality(t *testing.T) {
	a, err := keys.NewEd25519PublicKey(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	b, err := keys.NewEd25519PublicKey(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	c, err := keys.NewEd25519PublicKey(bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestPublicKeyJSON(t *testing.T) {
	key, err := keys.GenerateSecp256k1Key()
	require.NoError(t, err)
	data, err := json.Marshal(key.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, `"`+key.PublicKey().Hex()+`"`, string(data))
	var decoded keys.PublicKey
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, key.PublicKey().Equal(decoded))
}

func TestAccountHash(t *testing.T) {
	raw := bytes.Repeat([]byte{42}, 32)
	pk, err := keys.NewEd25519PublicKey(raw)
	require.NoError(t, err)
	preimage := append([]byte("ed25519\x00"), raw...)
	expected := keys.Blake2b256Hash(preimage)
	accountHash := pk.AccountHash()
	assert.Equal(t, expected[:], accountHash.Bytes())

	// Same raw bytes under a different algorithm must derive a different hash
	other := keys.PublicKey{Algorithm: keys.AlgorithmSecp256k1, Raw: raw}
	assert.NotEqual(t, accountHash, other.AccountHash())

	parsed, err := keys.ParseAccountHash(accountHash.String())
	require.NoError(t, err)
	assert.Equal(t, accountHash, parsed)
	_, err = keys.ParseAccountHash("hash-" + accountHash.Hex())
	require.Error(t, err)
}

func TestBlake2b256(t *testing.T) {
	// Blake2b-256 of the empty input
	expected := "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	assert.Equal(t, expected, keys.Blake2b256Hash(nil).String())
	parsed, err := keys.ParseBlake2b256(expected)
	require.NoError(t, err)
	assert.Equal(t, keys.Blake2b256Hash(nil), parsed)
	_, err = keys.ParseBlake2b256("abcd")
	require.Error(t, err)
}

func TestEd25519KnownVector(t *testing.T) {
	// RFC 8032 test 1
	seed := test.DecodeHexString("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	key, err := keys.NewEd25519Key(seed)
	require.NoError(t, err)
	assert.Equal(
		t,
		"01d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
		key.PublicKey().Hex(),
	)
	sig, err := key.Sign(nil)
	require.NoError(t, err)
	assert.Equal(
		t,
		"e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b",
		hex.EncodeToString(sig),
	)
	assert.True(t, keys.Verify(sig, nil, key.PublicKey()))
	assert.Equal(t, seed, key.PrivateKey())
	require.NoError(t, key.PublicKey().Validate())
}

func TestSignVerify(t *testing.T) {
	for _, alg := range []keys.Algorithm{keys.AlgorithmEd25519, keys.AlgorithmSecp256k1} {
		t.Run(alg.String(), func(t *testing.T) {
			key, err := keys.GenerateKey(alg)
			require.NoError(t, err)
			other, err := keys.GenerateKey(alg)
			require.NoError(t, err)
			require.NoError(t, key.PublicKey().Validate())

			msg := keys.Blake2b256Hash([]byte("deploy")).Bytes()
			sig, err := key.Sign(msg)
			require.NoError(t, err)
			require.Len(t, sig, keys.SignatureLen)

			assert.True(t, keys.Verify(sig, msg, key.PublicKey()))
			assert.False(t, keys.Verify(sig, keys.Blake2b256Hash([]byte("other")).Bytes(), key.PublicKey()))
			assert.False(t, keys.Verify(sig, msg, other.PublicKey()))

			tampered := bytes.Clone(sig)
			tampered[10] ^= 0xff
			assert.False(t, keys.Verify(tampered, msg, key.PublicKey()))
			assert.False(t, keys.Verify(sig[:63], msg, key.PublicKey()))

			restored, err := keys.NewKey(alg, key.PrivateKey())
			require.NoError(t, err)
			assert.True(t, key.PublicKey().Equal(restored.PublicKey()))
		})
	}
}

func TestVerifyUnknownAlgorithm(t *testing.T) {
	assert.False(t, keys.Verify(make([]byte, 64), []byte("msg"), keys.PublicKey{}))
}

func TestSigningErrors(t *testing.T) {
	_, err := keys.NewEd25519Key(make([]byte, 16))
	assert.ErrorIs(t, err, keys.ErrSigning)
	_, err = keys.NewSecp256k1Key(make([]byte, 32))
	assert.ErrorIs(t, err, keys.ErrSigning)
	_, err = keys.NewSecp256k1Key(bytes.Repeat([]byte{0xff}, 32))
	assert.ErrorIs(t, err, keys.ErrSigning)
	_, err = keys.GenerateKey(keys.Algorithm(5))
	assert.ErrorIs(t, err, keys.ErrSigning)

	// Failed constructors must not hide a nil pointer in the interface
	for _, tc := range []string{
		"01" + strings.Repeat("00", 16),
		"02" + strings.Repeat("00", 32),
		"02" + strings.Repeat("ff", 32),
	} {
		key, err := keys.ParsePrivateKeyHex(tc)
		assert.ErrorIs(t, err, keys.ErrSigning)
		assert.True(t, key == nil, "key for %s should be untyped nil", tc)
	}
	key, err := keys.NewKey(keys.AlgorithmEd25519, nil)
	assert.ErrorIs(t, err, keys.ErrSigning)
	assert.True(t, key == nil)

	var ed keys.Ed25519Key
	_, err = ed.Sign([]byte("msg"))
	assert.ErrorIs(t, err, keys.ErrSigning)
	var secp keys.Secp256k1Key
	_, err = secp.Sign([]byte("msg"))
	assert.ErrorIs(t, err, keys.ErrSigning)
}

func TestPublicKeyValidate(t *testing.T) {
	bad := keys.PublicKey{
		Algorithm: keys.AlgorithmSecp256k1,
		Raw:       bytes.Repeat([]byte{42}, 33),
	}
	require.Error(t, bad.Validate())
	require.Error(t, keys.PublicKey{}.Validate())
}

func TestKeyFile(t *testing.T) {
	for _, alg := range []keys.Algorithm{keys.AlgorithmEd25519, keys.AlgorithmSecp256k1} {
		key, err := keys.GenerateKey(alg)
		require.NoError(t, err)
		filename := filepath.Join(t.TempDir(), "secret.key")
		require.NoError(t, keys.SaveKey(filename, key))
		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		loaded, err := keys.LoadKey(filename)
		require.NoError(t, err)
		assert.Equal(t, alg, loaded.Algorithm())
		assert.True(t, key.PublicKey().Equal(loaded.PublicKey()))
	}
	_, err := keys.LoadKey(filepath.Join(t.TempDir(), "missing.key"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = keys.ParsePrivateKeyHex("")
	assert.ErrorIs(t, err, keys.ErrSigning)
}
