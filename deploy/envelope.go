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
	"bytes"
	"fmt"

	"github.com/blinklabs-io/gocasper/cbor"
	"github.com/blinklabs-io/gocasper/keys"
)

const ApprovalSetVersion = 1

type ApprovalSetEntry struct {
	cbor.StructAsArray
	Signer    []byte
	Signature []byte
}

// ApprovalSet carries the approvals of one deploy between independent signers. It is
// exchanged as a CBOR array: [version, deploy hash, [[signer, signature], ...]].
type ApprovalSet struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	Version    uint
	DeployHash []byte
	Entries    []ApprovalSetEntry
}

// NewApprovalSet collects the current approvals of d
func NewApprovalSet(d *Deploy) *ApprovalSet {
	ret := &ApprovalSet{
		Version:    ApprovalSetVersion,
		DeployHash: d.Hash.Bytes(),
		Entries:    make([]ApprovalSetEntry, 0, len(d.Approvals)),
	}
	for _, approval := range d.Approvals {
		ret.Entries = append(ret.Entries, ApprovalSetEntry{
			Signer:    approval.Signer.ToBytes(),
			Signature: bytes.Clone(approval.Signature),
		})
	}
	return ret
}

// ApprovalSetFromCbor decodes an approval set, selecting the layout by its leading version
func ApprovalSetFromCbor(data []byte) (*ApprovalSet, error) {
	ret, err := cbor.DecodeById(
		data,
		map[int]any{
			ApprovalSetVersion: &ApprovalSet{},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("decode approval set: %w", err)
	}
	return ret.(*ApprovalSet), nil
}

func (s *ApprovalSet) UnmarshalCBOR(data []byte) error {
	version, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	if version != ApprovalSetVersion {
		return fmt.Errorf("unsupported approval set version: %d", version)
	}
	return s.UnmarshalCborGeneric(data, s)
}

// MarshalCBOR returns the original CBOR for a decoded set
func (s *ApprovalSet) MarshalCBOR() ([]byte, error) {
	if cborData := s.Cbor(); cborData != nil {
		return cborData, nil
	}
	return cbor.EncodeGeneric(s)
}

func (s *ApprovalSet) Hash() (keys.Blake2b256, error) {
	if len(s.DeployHash) != keys.Blake2b256Size {
		return keys.Blake2b256{}, fmt.Errorf("invalid deploy hash length: %d", len(s.DeployHash))
	}
	return keys.NewBlake2b256(s.DeployHash), nil
}

// Approvals decodes the entries. Signatures are not verified.
func (s *ApprovalSet) Approvals() ([]Approval, error) {
	ret := make([]Approval, 0, len(s.Entries))
	for idx, entry := range s.Entries {
		signer, err := keys.PublicKeyFromBytes(entry.Signer)
		if err != nil {
			return nil, fmt.Errorf("approval %d signer: %w", idx, err)
		}
		if len(entry.Signature) != keys.SignatureLen {
			return nil, fmt.Errorf("approval %d: invalid signature length %d", idx, len(entry.Signature))
		}
		ret = append(ret, Approval{
			Signer:    signer,
			Signature: bytes.Clone(entry.Signature),
		})
	}
	return ret, nil
}

// ApplyApprovalSet merges the approvals of a set made for this deploy
func (d *Deploy) ApplyApprovalSet(s *ApprovalSet) (*Deploy, error) {
	hash, err := s.Hash()
	if err != nil {
		return nil, err
	}
	if hash != d.Hash {
		return nil, &ValidationError{
			Field:  "hash",
			Reason: fmt.Sprintf("approval set is for deploy %s, not %s", hash, d.Hash),
		}
	}
	approvals, err := s.Approvals()
	if err != nil {
		return nil, err
	}
	return d.MergeApprovals(approvals...)
}
