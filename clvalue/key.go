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

package clvalue

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// KeyTag is the discriminant of a Key
type KeyTag uint8

const (
	KeyTagAccount KeyTag = 0
	KeyTagHash    KeyTag = 1
	KeyTagURef    KeyTag = 2
)

const (
	KeyHashLen    = 32
	hashKeyPrefix = "hash-"
)

// Key is a global state key. Only the field selected by Tag is meaningful.
type Key struct {
	Tag     KeyTag
	Account keys.AccountHash
	Hash    [KeyHashLen]byte
	URef    URef
}

func NewAccountKey(accountHash keys.AccountHash) Key {
	return Key{
		Tag:     KeyTagAccount,
		Account: accountHash,
	}
}

func NewHashKey(hash [KeyHashLen]byte) Key {
	return Key{
		Tag:  KeyTagHash,
		Hash: hash,
	}
}

func NewURefKey(uref URef) Key {
	return Key{
		Tag:  KeyTagURef,
		URef: uref,
	}
}

func (k Key) Type() CLType {
	return TypeKey
}

func (k Key) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(k.Tag))
	switch k.Tag {
	case KeyTagAccount:
		w.PackFixedBytes(k.Account[:])
	case KeyTagHash:
		w.PackFixedBytes(k.Hash[:])
	case KeyTagURef:
		k.URef.Append(w)
	}
}

func (k Key) ToBytes() []byte {
	w := bytesrepr.NewWriter(1 + urefSerialized)
	k.Append(w)
	return w.Bytes()
}

func UnpackKey(r *bytesrepr.Reader) Key {
	tag := r.UnpackU8()
	if r.Err() != nil {
		return Key{}
	}
	switch KeyTag(tag) {
	case KeyTagAccount:
		data := r.UnpackFixedBytes(keys.AccountHashLen)
		if r.Err() != nil {
			return Key{}
		}
		return NewAccountKey(keys.AccountHash(data))
	case KeyTagHash:
		data := r.UnpackFixedBytes(KeyHashLen)
		if r.Err() != nil {
			return Key{}
		}
		return NewHashKey([KeyHashLen]byte(data))
	case KeyTagURef:
		uref := UnpackURef(r)
		if r.Err() != nil {
			return Key{}
		}
		return NewURefKey(uref)
	default:
		r.InvalidTag("key", tag)
		return Key{}
	}
}

func KeyFromBytes(data []byte) (Key, error) {
	r := bytesrepr.NewReader(data)
	k := UnpackKey(r)
	if err := r.Done(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// String returns the formatted form: "account-hash-<hex>", "hash-<hex>" or "uref-<hex>-<ddd>"
func (k Key) String() string {
	switch k.Tag {
	case KeyTagAccount:
		return k.Account.String()
	case KeyTagHash:
		return hashKeyPrefix + hex.EncodeToString(k.Hash[:])
	case KeyTagURef:
		return k.URef.String()
	default:
		return fmt.Sprintf("invalid-key-%d", uint8(k.Tag))
	}
}

// ParseKey parses any of the formatted forms produced by String
func ParseKey(s string) (Key, error) {
	switch {
	case strings.HasPrefix(s, "account-hash-"):
		accountHash, err := keys.ParseAccountHash(s)
		if err != nil {
			return Key{}, err
		}
		return NewAccountKey(accountHash), nil
	case strings.HasPrefix(s, hashKeyPrefix):
		data, err := keys.DecodeLowerHex(s[len(hashKeyPrefix):])
		if err != nil {
			return Key{}, fmt.Errorf("invalid hash key hex: %w", err)
		}
		if len(data) != KeyHashLen {
			return Key{}, fmt.Errorf("invalid hash key length: %d", len(data))
		}
		return NewHashKey([KeyHashLen]byte(data)), nil
	case strings.HasPrefix(s, urefPrefix):
		uref, err := ParseURef(s)
		if err != nil {
			return Key{}, err
		}
		return NewURefKey(uref), nil
	default:
		return Key{}, fmt.Errorf("unrecognized key format: %s", s)
	}
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
