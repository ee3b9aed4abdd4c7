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

package deploy

import (
	"math"
	"slices"
	"time"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// Header holds the metadata of a deploy. Its serialized form is the input of the
// deploy hash.
type Header struct {
	Account keys.PublicKey
	// Milliseconds since the Unix epoch
	Timestamp uint64
	// Milliseconds
	TTL          uint32
	GasPrice     uint64
	BodyHash     keys.Blake2b256
	Dependencies []keys.Blake2b256
	ChainName    string
}

func (h Header) Time() time.Time {
	return time.UnixMilli(int64(h.Timestamp)).UTC() // #nosec G115
}

func (h Header) TTLDuration() time.Duration {
	return time.Duration(h.TTL) * time.Millisecond
}

// Expired reports whether the deploy can no longer be accepted at now
func (h Header) Expired(now time.Time) bool {
	return now.After(h.Time().Add(h.TTLDuration()))
}

func (h Header) Append(w *bytesrepr.Writer) {
	h.Account.Append(w)
	w.PackU64(h.Timestamp)
	// The ttl is a u64 on the wire
	w.PackU64(uint64(h.TTL))
	w.PackU64(h.GasPrice)
	w.PackFixedBytes(h.BodyHash.Bytes())
	w.PackLen(len(h.Dependencies))
	for _, dep := range h.Dependencies {
		w.PackFixedBytes(dep.Bytes())
	}
	w.PackString(h.ChainName)
}

func (h Header) ToBytes() []byte {
	w := bytesrepr.NewWriter(0)
	h.Append(w)
	return w.Bytes()
}

// Hash returns the deploy hash for this header
func (h Header) Hash() keys.Blake2b256 {
	return keys.Blake2b256Hash(h.ToBytes())
}

func (h Header) Equal(other Header) bool {
	return h.Account.Equal(other.Account) &&
		h.Timestamp == other.Timestamp &&
		h.TTL == other.TTL &&
		h.GasPrice == other.GasPrice &&
		h.BodyHash == other.BodyHash &&
		slices.Equal(h.Dependencies, other.Dependencies) &&
		h.ChainName == other.ChainName
}

func UnpackHeader(r *bytesrepr.Reader) Header {
	var ret Header
	ret.Account = keys.UnpackPublicKey(r)
	ret.Timestamp = r.UnpackU64()
	ttlOffset := r.Offset()
	ttl := r.UnpackU64()
	if r.Err() == nil && ttl > math.MaxUint32 {
		r.AddError(&bytesrepr.DecodingError{
			Offset: ttlOffset,
			Reason: "ttl does not fit in 32 bits",
			Err:    bytesrepr.ErrEncodingRange,
		})
	}
	ret.TTL = uint32(ttl) // #nosec G115
	ret.GasPrice = r.UnpackU64()
	ret.BodyHash = unpackHash(r)
	n := r.UnpackLen(keys.Blake2b256Size)
	ret.Dependencies = make([]keys.Blake2b256, 0, n)
	for range n {
		ret.Dependencies = append(ret.Dependencies, unpackHash(r))
	}
	ret.ChainName = r.UnpackString()
	if r.Err() != nil {
		return Header{}
	}
	return ret
}

func unpackHash(r *bytesrepr.Reader) keys.Blake2b256 {
	return keys.NewBlake2b256(r.UnpackFixedBytes(keys.Blake2b256Size))
}
