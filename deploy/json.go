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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blinklabs-io/gocasper/keys"
)

// RFC3339 with milliseconds, always in UTC
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (a RuntimeArgs) MarshalJSON() ([]byte, error) {
	tmp := make([][2]any, len(a.args))
	for i, arg := range a.args {
		tmp[i] = [2]any{arg.Name, arg.Value}
	}
	return json.Marshal(tmp)
}

func (a *RuntimeArgs) UnmarshalJSON(data []byte) error {
	var tmp [][]json.RawMessage
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	args := make([]NamedArg, 0, len(tmp))
	for idx, pair := range tmp {
		if len(pair) != 2 {
			return fmt.Errorf("argument %d: expected [name, value] pair", idx)
		}
		var arg NamedArg
		if err := json.Unmarshal(pair[0], &arg.Name); err != nil {
			return fmt.Errorf("argument %d name: %w", idx, err)
		}
		if err := json.Unmarshal(pair[1], &arg.Value); err != nil {
			return fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		args = append(args, arg)
	}
	ret, err := NewRuntimeArgs(args...)
	if err != nil {
		return err
	}
	*a = ret
	return nil
}

type headerJSON struct {
	Account      keys.PublicKey    `json:"account"`
	Timestamp    string            `json:"timestamp"`
	TTL          string            `json:"ttl"`
	GasPrice     uint64            `json:"gas_price"`
	BodyHash     keys.Blake2b256   `json:"body_hash"`
	Dependencies []keys.Blake2b256 `json:"dependencies"`
	ChainName    string            `json:"chain_name"`
}

func (h Header) MarshalJSON() ([]byte, error) {
	deps := h.Dependencies
	if deps == nil {
		deps = []keys.Blake2b256{}
	}
	return json.Marshal(headerJSON{
		Account:      h.Account,
		Timestamp:    h.Time().Format(timestampLayout),
		TTL:          FormatTTL(uint64(h.TTL)),
		GasPrice:     h.GasPrice,
		BodyHash:     h.BodyHash,
		Dependencies: deps,
		ChainName:    h.ChainName,
	})
}

func (h *Header) UnmarshalJSON(data []byte) error {
	var tmp headerJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, tmp.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid header timestamp: %w", err)
	}
	if ts.UnixMilli() < 0 {
		return fmt.Errorf("invalid header timestamp: %s before epoch", tmp.Timestamp)
	}
	ttl, err := ParseTTL(tmp.TTL)
	if err != nil {
		return err
	}
	if ttl > math.MaxUint32 {
		return fmt.Errorf("header ttl %s does not fit in 32 bits", tmp.TTL)
	}
	if tmp.Dependencies == nil {
		tmp.Dependencies = []keys.Blake2b256{}
	}
	*h = Header{
		Account:      tmp.Account,
		Timestamp:    uint64(ts.UnixMilli()), // #nosec G115
		TTL:          uint32(ttl),
		GasPrice:     tmp.GasPrice,
		BodyHash:     tmp.BodyHash,
		Dependencies: tmp.Dependencies,
		ChainName:    tmp.ChainName,
	}
	return nil
}

type approvalJSON struct {
	Signer    keys.PublicKey `json:"signer"`
	Signature string         `json:"signature"`
}

// MarshalJSON renders the signature prefixed with its algorithm tag, like public keys
func (a Approval) MarshalJSON() ([]byte, error) {
	return json.Marshal(approvalJSON{
		Signer:    a.Signer,
		Signature: fmt.Sprintf("%02x%s", uint8(a.Signer.Algorithm), hex.EncodeToString(a.Signature)),
	})
}

func (a *Approval) UnmarshalJSON(data []byte) error {
	var tmp approvalJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	sig, err := hex.DecodeString(tmp.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sig) != 1+keys.SignatureLen {
		return fmt.Errorf("invalid signature length: %d", len(sig))
	}
	if keys.Algorithm(sig[0]) != tmp.Signer.Algorithm {
		return fmt.Errorf(
			"signature algorithm %d does not match signer algorithm %d",
			sig[0],
			uint8(tmp.Signer.Algorithm),
		)
	}
	*a = Approval{
		Signer:    tmp.Signer,
		Signature: sig[1:],
	}
	return nil
}

type moduleBytesJSON struct {
	ModuleBytes string      `json:"module_bytes"`
	Args        RuntimeArgs `json:"args"`
}

type storedByHashJSON struct {
	Hash       string      `json:"hash"`
	Version    *uint32     `json:"version,omitempty"`
	EntryPoint string      `json:"entry_point"`
	Args       RuntimeArgs `json:"args"`
}

type storedByNameJSON struct {
	Name       string      `json:"name"`
	Version    *uint32     `json:"version,omitempty"`
	EntryPoint string      `json:"entry_point"`
	Args       RuntimeArgs `json:"args"`
}

// Versioned variants always carry a version field, null for the latest version
type versionedByHashJSON struct {
	Hash       string      `json:"hash"`
	Version    *uint32     `json:"version"`
	EntryPoint string      `json:"entry_point"`
	Args       RuntimeArgs `json:"args"`
}

type versionedByNameJSON struct {
	Name       string      `json:"name"`
	Version    *uint32     `json:"version"`
	EntryPoint string      `json:"entry_point"`
	Args       RuntimeArgs `json:"args"`
}

type transferJSON struct {
	Args RuntimeArgs `json:"args"`
}

// MarshalItemJSON renders an item as a single-key object named after its variant
func MarshalItemJSON(item ExecutableDeployItem) ([]byte, error) {
	var body any
	switch i := item.(type) {
	case ModuleBytes:
		body = moduleBytesJSON{ModuleBytes: hex.EncodeToString(i.Module), Args: i.Args}
	case StoredContractByHash:
		body = storedByHashJSON{Hash: hex.EncodeToString(i.Hash[:]), EntryPoint: i.EntryPoint, Args: i.Args}
	case StoredContractByName:
		body = storedByNameJSON{Name: i.Name, EntryPoint: i.EntryPoint, Args: i.Args}
	case StoredVersionedContractByHash:
		body = versionedByHashJSON{
			Hash:       hex.EncodeToString(i.Hash[:]),
			Version:    i.Version,
			EntryPoint: i.EntryPoint,
			Args:       i.Args,
		}
	case StoredVersionedContractByName:
		body = versionedByNameJSON{Name: i.Name, Version: i.Version, EntryPoint: i.EntryPoint, Args: i.Args}
	case Transfer:
		body = transferJSON{Args: i.Args}
	default:
		return nil, fmt.Errorf("unsupported executable deploy item %T", item)
	}
	return json.Marshal(map[string]any{item.Tag().String(): body})
}

func UnmarshalItemJSON(data []byte) (ExecutableDeployItem, error) {
	var tmp map[string]json.RawMessage
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, err
	}
	if len(tmp) != 1 {
		return nil, errors.New("executable deploy item must have exactly one variant")
	}
	for name, body := range tmp {
		return itemFromJSON(name, body)
	}
	return nil, nil
}

func itemFromJSON(name string, body json.RawMessage) (ExecutableDeployItem, error) {
	switch name {
	case ItemTagModuleBytes.String():
		var tmp moduleBytesJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		module, err := hex.DecodeString(tmp.ModuleBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid module bytes: %w", err)
		}
		return ModuleBytes{Module: module, Args: tmp.Args}, nil
	case ItemTagStoredContractByHash.String():
		var tmp storedByHashJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		hash, err := parseContractHash(tmp.Hash)
		if err != nil {
			return nil, err
		}
		return StoredContractByHash{Hash: hash, EntryPoint: tmp.EntryPoint, Args: tmp.Args}, nil
	case ItemTagStoredContractByName.String():
		var tmp storedByNameJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		return StoredContractByName{Name: tmp.Name, EntryPoint: tmp.EntryPoint, Args: tmp.Args}, nil
	case ItemTagStoredVersionedContractByHash.String():
		var tmp versionedByHashJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		hash, err := parseContractHash(tmp.Hash)
		if err != nil {
			return nil, err
		}
		return StoredVersionedContractByHash{
			Hash:       hash,
			Version:    tmp.Version,
			EntryPoint: tmp.EntryPoint,
			Args:       tmp.Args,
		}, nil
	case ItemTagStoredVersionedContractByName.String():
		var tmp versionedByNameJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		return StoredVersionedContractByName{
			Name:       tmp.Name,
			Version:    tmp.Version,
			EntryPoint: tmp.EntryPoint,
			Args:       tmp.Args,
		}, nil
	case ItemTagTransfer.String():
		var tmp transferJSON
		if err := json.Unmarshal(body, &tmp); err != nil {
			return nil, err
		}
		return Transfer{Args: tmp.Args}, nil
	}
	return nil, fmt.Errorf("unknown executable deploy item %q", name)
}

func parseContractHash(s string) ([ContractHashLen]byte, error) {
	var ret [ContractHashLen]byte
	data, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("invalid contract hash: %w", err)
	}
	if len(data) != ContractHashLen {
		return ret, fmt.Errorf("invalid contract hash length: %d", len(data))
	}
	copy(ret[:], data)
	return ret, nil
}

type deployJSON struct {
	Hash      keys.Blake2b256 `json:"hash"`
	Header    Header          `json:"header"`
	Payment   json.RawMessage `json:"payment"`
	Session   json.RawMessage `json:"session"`
	Approvals []Approval      `json:"approvals"`
}

func (d Deploy) MarshalJSON() ([]byte, error) {
	payment, err := MarshalItemJSON(d.Payment)
	if err != nil {
		return nil, fmt.Errorf("payment: %w", err)
	}
	session, err := MarshalItemJSON(d.Session)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	approvals := d.Approvals
	if approvals == nil {
		approvals = []Approval{}
	}
	return json.Marshal(deployJSON{
		Hash:      d.Hash,
		Header:    d.Header,
		Payment:   payment,
		Session:   session,
		Approvals: approvals,
	})
}

func (d *Deploy) UnmarshalJSON(data []byte) error {
	var tmp deployJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	payment, err := UnmarshalItemJSON(tmp.Payment)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	session, err := UnmarshalItemJSON(tmp.Session)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if tmp.Approvals == nil {
		tmp.Approvals = []Approval{}
	}
	*d = Deploy{
		Hash:      tmp.Hash,
		Header:    tmp.Header,
		Payment:   payment,
		Session:   session,
		Approvals: tmp.Approvals,
	}
	return nil
}
