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
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var ErrSigning = errors.New("signing error")

// SigningError indicates invalid or malformed key material
type SigningError struct {
	Algorithm Algorithm
	Reason    string
	Err       error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s signing error: %s: %v", e.Algorithm, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s signing error: %s", e.Algorithm, e.Reason)
}

func (e *SigningError) Unwrap() error { return e.Err }

func (e *SigningError) Is(target error) bool {
	return target == ErrSigning
}

// AsymmetricKey is a key pair able to authorize deploys
type AsymmetricKey interface {
	Algorithm() Algorithm
	PublicKey() PublicKey
	// PrivateKey returns the raw secret key material: the 32-byte seed for Ed25519 and
	// the 32-byte scalar for secp256k1
	PrivateKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// GenerateKey returns a new random key pair for the algorithm
func GenerateKey(alg Algorithm) (AsymmetricKey, error) {
	switch alg {
	case AlgorithmEd25519:
		k, err := GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		return k, nil
	case AlgorithmSecp256k1:
		k, err := GenerateSecp256k1Key()
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, &SigningError{Algorithm: alg, Reason: "unsupported algorithm"}
	}
}

// NewKey builds a key pair from raw secret key material. On error the returned key is
// an untyped nil.
func NewKey(alg Algorithm, privateKey []byte) (AsymmetricKey, error) {
	switch alg {
	case AlgorithmEd25519:
		k, err := NewEd25519Key(privateKey)
		if err != nil {
			return nil, err
		}
		return k, nil
	case AlgorithmSecp256k1:
		k, err := NewSecp256k1Key(privateKey)
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, &SigningError{Algorithm: alg, Reason: "unsupported algorithm"}
	}
}

type Ed25519Key struct {
	privateKey ed25519.PrivateKey
	publicKey  PublicKey
}

func GenerateEd25519Key() (*Ed25519Key, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, &SigningError{
			Algorithm: AlgorithmEd25519,
			Reason:    "failed to read random seed",
			Err:       err,
		}
	}
	return NewEd25519Key(seed)
}

// NewEd25519Key builds an Ed25519 key pair from its 32-byte seed
func NewEd25519Key(seed []byte) (*Ed25519Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, &SigningError{
			Algorithm: AlgorithmEd25519,
			Reason: fmt.Sprintf(
				"invalid seed length: expected %d bytes, got %d",
				ed25519.SeedSize,
				len(seed),
			),
		}
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	// ed25519.PrivateKey is seed|publicKey
	pub := PublicKey{
		Algorithm: AlgorithmEd25519,
		Raw:       bytes.Clone(privateKey[ed25519.SeedSize:]),
	}
	return &Ed25519Key{
		privateKey: privateKey,
		publicKey:  pub,
	}, nil
}

func (k *Ed25519Key) Algorithm() Algorithm {
	return AlgorithmEd25519
}

func (k *Ed25519Key) PublicKey() PublicKey {
	return k.publicKey
}

func (k *Ed25519Key) PrivateKey() []byte {
	return bytes.Clone(k.privateKey.Seed())
}

func (k *Ed25519Key) Sign(msg []byte) ([]byte, error) {
	if k == nil || len(k.privateKey) != ed25519.PrivateKeySize {
		return nil, &SigningError{Algorithm: AlgorithmEd25519, Reason: "key not initialized"}
	}
	return ed25519.Sign(k.privateKey, msg), nil
}

type Secp256k1Key struct {
	privateKey *secp256k1.PrivateKey
	publicKey  PublicKey
}

func GenerateSecp256k1Key() (*Secp256k1Key, error) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, &SigningError{
			Algorithm: AlgorithmSecp256k1,
			Reason:    "failed to generate private key",
			Err:       err,
		}
	}
	return newSecp256k1Key(privateKey), nil
}

// NewSecp256k1Key builds a secp256k1 key pair from its 32-byte big-endian scalar
func NewSecp256k1Key(scalar []byte) (*Secp256k1Key, error) {
	if len(scalar) != secp256k1.PrivKeyBytesLen {
		return nil, &SigningError{
			Algorithm: AlgorithmSecp256k1,
			Reason: fmt.Sprintf(
				"invalid private key length: expected %d bytes, got %d",
				secp256k1.PrivKeyBytesLen,
				len(scalar),
			),
		}
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
		return nil, &SigningError{
			Algorithm: AlgorithmSecp256k1,
			Reason:    "private key scalar out of range",
		}
	}
	return newSecp256k1Key(secp256k1.NewPrivateKey(&s)), nil
}

func newSecp256k1Key(privateKey *secp256k1.PrivateKey) *Secp256k1Key {
	return &Secp256k1Key{
		privateKey: privateKey,
		publicKey: PublicKey{
			Algorithm: AlgorithmSecp256k1,
			Raw:       privateKey.PubKey().SerializeCompressed(),
		},
	}
}

func (k *Secp256k1Key) Algorithm() Algorithm {
	return AlgorithmSecp256k1
}

func (k *Secp256k1Key) PublicKey() PublicKey {
	return k.publicKey
}

func (k *Secp256k1Key) PrivateKey() []byte {
	return k.privateKey.Serialize()
}

// Sign returns the 64-byte r|s ECDSA signature over the SHA-256 digest of msg
func (k *Secp256k1Key) Sign(msg []byte) ([]byte, error) {
	if k == nil || k.privateKey == nil {
		return nil, &SigningError{Algorithm: AlgorithmSecp256k1, Reason: "key not initialized"}
	}
	digest := sha256.Sum256(msg)
	// The compact form is a recovery byte followed by r and s
	compact := ecdsa.SignCompact(k.privateKey, digest[:], true)
	return compact[1:], nil
}

// Verify reports whether signature is a valid signature of message by publicKey. The
// scheme is selected by the public key's algorithm. A false result is an expected
// outcome, not an error.
func Verify(signature, message []byte, publicKey PublicKey) bool {
	switch publicKey.Algorithm {
	case AlgorithmEd25519:
		if len(publicKey.Raw) != ed25519.PublicKeySize ||
			len(signature) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey.Raw), message, signature)
	case AlgorithmSecp256k1:
		if len(signature) != SignatureLen {
			return false
		}
		pub, err := secp256k1.ParsePubKey(publicKey.Raw)
		if err != nil {
			return false
		}
		var r, s secp256k1.ModNScalar
		if overflow := r.SetByteSlice(signature[:32]); overflow {
			return false
		}
		if overflow := s.SetByteSlice(signature[32:]); overflow {
			return false
		}
		digest := sha256.Sum256(message)
		return ecdsa.NewSignature(&r, &s).Verify(digest[:], pub)
	default:
		return false
	}
}
