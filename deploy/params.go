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
	"slices"
	"time"

	"github.com/blinklabs-io/gocasper/keys"
)

const (
	DefaultTTL      = 30 * time.Minute
	DefaultGasPrice = 1
)

// Params holds the caller-supplied header fields of a deploy
type Params struct {
	Account   keys.PublicKey
	ChainName string
	// Zero means the time of MakeDeploy
	Timestamp    time.Time
	// Zero means DefaultTTL
	TTL          time.Duration
	// Zero means DefaultGasPrice
	GasPrice     uint64
	Dependencies []keys.Blake2b256
	clock        func() time.Time
}

// ParamsOptionFunc is a type that represents functions that modify the deploy params
type ParamsOptionFunc func(*Params)

// NewParams returns deploy params with the default ttl and gas price and no dependencies
func NewParams(account keys.PublicKey, chainName string, opts ...ParamsOptionFunc) Params {
	p := Params{
		Account:   account,
		ChainName: chainName,
		TTL:       DefaultTTL,
		GasPrice:  DefaultGasPrice,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithTimestamp fixes the deploy timestamp. It is truncated to milliseconds.
func WithTimestamp(ts time.Time) ParamsOptionFunc {
	return func(p *Params) {
		p.Timestamp = ts
	}
}

func WithTTL(ttl time.Duration) ParamsOptionFunc {
	return func(p *Params) {
		p.TTL = ttl
	}
}

func WithGasPrice(gasPrice uint64) ParamsOptionFunc {
	return func(p *Params) {
		p.GasPrice = gasPrice
	}
}

// WithDependencies specifies deploys that must be executed before this one
func WithDependencies(deps ...keys.Blake2b256) ParamsOptionFunc {
	return func(p *Params) {
		p.Dependencies = slices.Clone(deps)
	}
}

// WithClock specifies the time source used when no timestamp is given
func WithClock(clock func() time.Time) ParamsOptionFunc {
	return func(p *Params) {
		p.clock = clock
	}
}

func (p Params) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock()
}
