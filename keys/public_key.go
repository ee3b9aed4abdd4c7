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

package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Algorithm is the signature scheme discriminant carried by a public key
type Algorithm uint8

const (
	AlgorithmEd25519   Algorithm = 1
	AlgorithmSecp256k1 Algorithm = 2
)

const (
	Ed25519PublicKeyLen   = ed25519.PublicKeySize
	Secp256k1PublicKeyLen = secp256k1.PubKeyBytesLenCompressed
	SignatureLen          = 64
)

func (a Algorithm) Valid() bool {
	return a == AlgorithmEd25519 || a == AlgorithmSecp256k1
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "ed25519"
	case AlgorithmSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// PublicKeyLen returns the raw key length implied by the algorithm, or 0 if unknown
func (a Algorithm) PublicKeyLen() int {
	switch a {
	case AlgorithmEd25519:
		return Ed25519PublicKeyLen
	case AlgorithmSecp256k1:
		return Secp256k1PublicKeyLen
	default:
		return 0
	}
}

// ParseAlgorithm accepts the lowercase algorithm names returned by String()
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "ed25519":
		return AlgorithmEd25519, nil
	case "secp256k1":
		return AlgorithmSecp256k1, nil
	default:
		return 0, fmt.Errorf("unknown key algorithm: %s", name)
	}
}

// PublicKey is a tagged public key. Two keys are equal when both the algorithm and the
// raw key bytes match.
type PublicKey struct {
	Algorithm Algorithm
	Raw       []byte
}

func NewPublicKey(alg Algorithm, raw []byte) (PublicKey, error) {
	if !alg.Valid() {
		return PublicKey{}, fmt.Errorf("unknown key algorithm: %d", uint8(alg))
	}
	if len(raw) != alg.PublicKeyLen() {
		return PublicKey{}, fmt.Errorf(
			"invalid %s public key length: expected %d bytes, got %d",
			alg,
			alg.PublicKeyLen(),
			len(raw),
		)
	}
	return PublicKey{
		Algorithm: alg,
		Raw:       bytes.Clone(raw),
	}, nil
}

func NewEd25519PublicKey(raw []byte) (PublicKey, error) {
	return NewPublicKey(AlgorithmEd25519, raw)
}

func NewSecp256k1PublicKey(raw []byte) (PublicKey, error) {
	return NewPublicKey(AlgorithmSecp256k1, raw)
}

// IsZero reports whether p is the zero value
func (p PublicKey) IsZero() bool {
	return p.Algorithm == 0 && len(p.Raw) == 0
}

func (p PublicKey) Equal(other PublicKey) bool {
	return p.Algorithm == other.Algorithm && bytes.Equal(p.Raw, other.Raw)
}

func (p PublicKey) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(p.Algorithm))
	w.PackFixedBytes(p.Raw)
}

// ToBytes returns the algorithm tag followed by the raw key bytes
func (p PublicKey) ToBytes() []byte {
	w := bytesrepr.NewWriter(1 + len(p.Raw))
	p.Append(w)
	return w.Bytes()
}

func UnpackPublicKey(r *bytesrepr.Reader) PublicKey {
	tag := r.UnpackU8()
	if r.Err() != nil {
		return PublicKey{}
	}
	alg := Algorithm(tag)
	if !alg.Valid() {
		r.InvalidTag("public key", tag)
		return PublicKey{}
	}
	raw := r.UnpackFixedBytes(alg.PublicKeyLen())
	if r.Err() != nil {
		return PublicKey{}
	}
	return PublicKey{
		Algorithm: alg,
		Raw:       raw,
	}
}

func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	r := bytesrepr.NewReader(data)
	p := UnpackPublicKey(r)
	if err := r.Done(); err != nil {
		return PublicKey{}, err
	}
	return p, nil
}

// Hex returns the tagged hex form, e.g. "01" followed by 64 hex characters for Ed25519
func (p PublicKey) Hex() string {
	return hex.EncodeToString(p.ToBytes())
}

func (p PublicKey) String() string {
	return p.Hex()
}

func ParsePublicKeyHex(s string) (PublicKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key hex: %w", err)
	}
	return PublicKeyFromBytes(data)
}

// AccountHash derives the account hash: Blake2b-256 over the lowercase algorithm name,
// a zero separator byte, and the raw key bytes
func (p PublicKey) AccountHash() AccountHash {
	name := p.Algorithm.String()
	buf := make([]byte, 0, len(name)+1+len(p.Raw))
	buf = append(buf, name...)
	buf = append(buf, 0)
	buf = append(buf, p.Raw...)
	return AccountHash(Blake2b256Hash(buf))
}

// Validate checks that the raw key bytes decode to a point on the algorithm's curve
func (p PublicKey) Validate() error {
	switch p.Algorithm {
	case AlgorithmEd25519:
		if len(p.Raw) != Ed25519PublicKeyLen {
			return fmt.Errorf("invalid ed25519 public key length: %d", len(p.Raw))
		}
		if _, err := new(edwards25519.Point).SetBytes(p.Raw); err != nil {
			return fmt.Errorf("invalid ed25519 public key: %w", err)
		}
		return nil
	case AlgorithmSecp256k1:
		if _, err := secp256k1.ParsePubKey(p.Raw); err != nil {
			return fmt.Errorf("invalid secp256k1 public key: %w", err)
		}
		return nil
	default:
		return errors.New("public key has no algorithm")
	}
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Hex())
}

func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	parsed, err := ParsePublicKeyHex(tmp)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
