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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

const Blake2b256Size = 32

var ErrNotLowerHex = errors.New("hex string must be lowercase")

// DecodeLowerHex decodes hex in the lowercase form produced by hex.EncodeToString. The
// formatted key and hash strings only accept this form.
func DecodeLowerHex(s string) ([]byte, error) {
	if strings.IndexFunc(s, unicode.IsUpper) >= 0 {
		return nil, ErrNotLowerHex
	}
	return hex.DecodeString(s)
}

// Blake2b256 is a 32-byte Blake2b digest. Deploy hashes, body hashes and account hashes
// all use it.
type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	tmpHash, err := blake2b.New(Blake2b256Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b256(tmpHash.Sum(nil))
}

// ParseBlake2b256 decodes a 64-character hex string
func ParseBlake2b256(s string) (Blake2b256, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Blake2b256{}, err
	}
	if len(data) != Blake2b256Size {
		return Blake2b256{}, fmt.Errorf(
			"invalid hash length: expected %d bytes, got %d",
			Blake2b256Size,
			len(data),
		)
	}
	return NewBlake2b256(data), nil
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Blake2b256) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	parsed, err := ParseBlake2b256(tmp)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
