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
	"fmt"
	"os"
	"strings"
)

// PrivateKeyHex returns the algorithm tag followed by the secret key material, hex encoded
func PrivateKeyHex(k AsymmetricKey) string {
	return fmt.Sprintf("%02x%s", uint8(k.Algorithm()), hex.EncodeToString(k.PrivateKey()))
}

// ParsePrivateKeyHex is the inverse of PrivateKeyHex
func ParsePrivateKeyHex(s string) (AsymmetricKey, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(data) < 1 {
		return nil, &SigningError{Reason: "empty private key"}
	}
	return NewKey(Algorithm(data[0]), data[1:])
}

// SaveKey writes k to filename in the PrivateKeyHex format. If filename does not exist,
// it is created with 0600 permissions.
func SaveKey(filename string, k AsymmetricKey) error {
	return os.WriteFile(filename, []byte(PrivateKeyHex(k)+"\n"), 0o600)
}

// LoadKey reads a key written by SaveKey
func LoadKey(filename string) (AsymmetricKey, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyHex(string(data))
}
