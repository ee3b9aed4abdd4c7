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
	"fmt"
	"strings"
)

const (
	AccountHashLen    = 32
	accountHashPrefix = "account-hash-"
)

// AccountHash is the 32-byte identifier of an account, derived from its public key
type AccountHash [AccountHashLen]byte

func NewAccountHash(data []byte) (AccountHash, error) {
	if len(data) != AccountHashLen {
		return AccountHash{}, fmt.Errorf(
			"invalid account hash length: expected %d bytes, got %d",
			AccountHashLen,
			len(data),
		)
	}
	return AccountHash(data), nil
}

// ParseAccountHash parses the "account-hash-<hex>" formatted string
func ParseAccountHash(s string) (AccountHash, error) {
	hexStr, ok := strings.CutPrefix(s, accountHashPrefix)
	if !ok {
		return AccountHash{}, fmt.Errorf("account hash missing %q prefix: %s", accountHashPrefix, s)
	}
	data, err := DecodeLowerHex(hexStr)
	if err != nil {
		return AccountHash{}, fmt.Errorf("invalid account hash hex: %w", err)
	}
	return NewAccountHash(data)
}

func (a AccountHash) Bytes() []byte {
	return a[:]
}

func (a AccountHash) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the "account-hash-<hex>" formatted string
func (a AccountHash) String() string {
	return accountHashPrefix + a.Hex()
}

func (a AccountHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AccountHash) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	parsed, err := ParseAccountHash(tmp)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
