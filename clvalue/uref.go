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
	"strconv"
	"strings"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// AccessRights are the permission bits attached to a URef. The numeric codes are fixed
// by the network.
type AccessRights uint8

const (
	AccessRightsNone         AccessRights = 0
	AccessRightsRead         AccessRights = 1
	AccessRightsWrite        AccessRights = 2
	AccessRightsReadWrite    AccessRights = 3
	AccessRightsAdd          AccessRights = 4
	AccessRightsReadAdd      AccessRights = 5
	AccessRightsAddWrite     AccessRights = 6
	AccessRightsReadAddWrite AccessRights = 7
)

func (a AccessRights) Valid() bool {
	return a <= AccessRightsReadAddWrite
}

func (a AccessRights) CanRead() bool {
	return a&AccessRightsRead != 0
}

func (a AccessRights) CanWrite() bool {
	return a&AccessRightsWrite != 0
}

func (a AccessRights) CanAdd() bool {
	return a&AccessRightsAdd != 0
}

func (a AccessRights) String() string {
	switch a {
	case AccessRightsNone:
		return "NONE"
	case AccessRightsRead:
		return "READ"
	case AccessRightsWrite:
		return "WRITE"
	case AccessRightsReadWrite:
		return "READ_WRITE"
	case AccessRightsAdd:
		return "ADD"
	case AccessRightsReadAdd:
		return "READ_ADD"
	case AccessRightsAddWrite:
		return "ADD_WRITE"
	case AccessRightsReadAddWrite:
		return "READ_ADD_WRITE"
	default:
		return fmt.Sprintf("INVALID(%d)", uint8(a))
	}
}

const (
	URefAddrLen    = 32
	urefPrefix     = "uref-"
	urefSerialized = URefAddrLen + 1
)

// URef is an addressable storage reference
type URef struct {
	Address      [URefAddrLen]byte
	AccessRights AccessRights
}

func NewURef(address []byte, rights AccessRights) (URef, error) {
	if len(address) != URefAddrLen {
		return URef{}, fmt.Errorf(
			"invalid uref address length: expected %d bytes, got %d",
			URefAddrLen,
			len(address),
		)
	}
	if !rights.Valid() {
		return URef{}, fmt.Errorf("invalid access rights: %d", uint8(rights))
	}
	return URef{
		Address:      [URefAddrLen]byte(address),
		AccessRights: rights,
	}, nil
}

// ParseURef parses the "uref-<64 hex chars>-<3 decimal digits>" formatted string
func ParseURef(s string) (URef, error) {
	body, ok := strings.CutPrefix(s, urefPrefix)
	if !ok {
		return URef{}, fmt.Errorf("uref missing %q prefix: %s", urefPrefix, s)
	}
	addrHex, rightsStr, ok := strings.Cut(body, "-")
	if !ok || len(rightsStr) != 3 {
		return URef{}, fmt.Errorf("malformed uref: %s", s)
	}
	addr, err := keys.DecodeLowerHex(addrHex)
	if err != nil {
		return URef{}, fmt.Errorf("invalid uref address hex: %w", err)
	}
	rights, err := strconv.ParseUint(rightsStr, 10, 8)
	if err != nil {
		return URef{}, fmt.Errorf("invalid uref access rights: %w", err)
	}
	return NewURef(addr, AccessRights(rights))
}

// String returns the "uref-<hex>-<ddd>" formatted string
func (u URef) String() string {
	return fmt.Sprintf("%s%s-%03d", urefPrefix, hex.EncodeToString(u.Address[:]), uint8(u.AccessRights))
}

func (u URef) Type() CLType {
	return TypeURef
}

func (u URef) Append(w *bytesrepr.Writer) {
	w.PackFixedBytes(u.Address[:])
	w.PackU8(uint8(u.AccessRights))
}

func (u URef) ToBytes() []byte {
	w := bytesrepr.NewWriter(urefSerialized)
	u.Append(w)
	return w.Bytes()
}

func UnpackURef(r *bytesrepr.Reader) URef {
	addr := r.UnpackFixedBytes(URefAddrLen)
	rights := r.UnpackU8()
	if r.Err() != nil {
		return URef{}
	}
	if !AccessRights(rights).Valid() {
		r.InvalidTag("access rights", rights)
		return URef{}
	}
	return URef{
		Address:      [URefAddrLen]byte(addr),
		AccessRights: AccessRights(rights),
	}
}

func (u URef) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *URef) UnmarshalText(text []byte) error {
	parsed, err := ParseURef(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
