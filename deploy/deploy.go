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
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// Approval is a signature over a deploy hash
type Approval struct {
	Signer    keys.PublicKey
	Signature []byte
}

// Append writes the signer key followed by the signature with the signer's algorithm tag
func (a Approval) Append(w *bytesrepr.Writer) {
	a.Signer.Append(w)
	w.PackU8(uint8(a.Signer.Algorithm))
	w.PackFixedBytes(a.Signature)
}

func (a Approval) Equal(other Approval) bool {
	return a.Signer.Equal(other.Signer) && bytes.Equal(a.Signature, other.Signature)
}

// Verify checks the signature against a deploy hash
func (a Approval) Verify(hash keys.Blake2b256) bool {
	return keys.Verify(a.Signature, hash.Bytes(), a.Signer)
}

func UnpackApproval(r *bytesrepr.Reader) Approval {
	signer := keys.UnpackPublicKey(r)
	alg := r.UnpackU8()
	if r.Err() != nil {
		return Approval{}
	}
	if keys.Algorithm(alg) != signer.Algorithm {
		r.InvalidTag("signature algorithm", alg)
		return Approval{}
	}
	sig := r.UnpackFixedBytes(keys.SignatureLen)
	if r.Err() != nil {
		return Approval{}
	}
	return Approval{Signer: signer, Signature: sig}
}

// Deploy is a unit of work for the network. The hash and header are derived from the
// payment and session items at construction and never change. Approvals only grow.
type Deploy struct {
	Hash      keys.Blake2b256
	Header    Header
	Payment   ExecutableDeployItem
	Session   ExecutableDeployItem
	Approvals []Approval
}

// BodyHash returns the hash of the serialized payment followed by the serialized session
func BodyHash(payment, session ExecutableDeployItem) keys.Blake2b256 {
	w := bytesrepr.NewWriter(0)
	AppendItem(w, payment)
	AppendItem(w, session)
	return keys.Blake2b256Hash(w.Bytes())
}

// MakeDeploy builds an unsigned deploy. A zero TTL or gas price in params takes the default.
func MakeDeploy(params Params, session, payment ExecutableDeployItem) (*Deploy, error) {
	if params.Account.IsZero() {
		return nil, errors.New("deploy params: missing account")
	}
	if params.ChainName == "" {
		return nil, errors.New("deploy params: missing chain name")
	}
	if session == nil || payment == nil {
		return nil, errors.New("deploy requires both session and payment items")
	}
	ttlDuration := params.TTL
	if ttlDuration == 0 {
		ttlDuration = DefaultTTL
	}
	ttl := ttlDuration.Milliseconds()
	if ttl <= 0 || ttl > math.MaxUint32 {
		return nil, fmt.Errorf("deploy params: ttl %s out of range", ttlDuration)
	}
	gasPrice := params.GasPrice
	if gasPrice == 0 {
		gasPrice = DefaultGasPrice
	}
	ts := params.Timestamp
	if ts.IsZero() {
		ts = params.now()
	}
	if ts.UnixMilli() < 0 {
		return nil, fmt.Errorf("deploy params: timestamp %s before epoch", ts)
	}
	header := Header{
		Account:      params.Account,
		Timestamp:    uint64(ts.UnixMilli()), // #nosec G115
		TTL:          uint32(ttl),            // #nosec G115
		GasPrice:     gasPrice,
		BodyHash:     BodyHash(payment, session),
		Dependencies: slices.Clone(params.Dependencies),
		ChainName:    params.ChainName,
	}
	if header.Dependencies == nil {
		header.Dependencies = []keys.Blake2b256{}
	}
	return &Deploy{
		Hash:      header.Hash(),
		Header:    header,
		Payment:   payment,
		Session:   session,
		Approvals: []Approval{},
	}, nil
}

// SignDeploy signs the deploy hash with key and returns a new deploy with the approval
// appended. If the signer already approved, the returned deploy has the same approvals.
// The input deploy is never modified.
// The deploy hashes must match its header and body.
func SignDeploy(d *Deploy, key keys.AsymmetricKey) (*Deploy, error) {
	if key == nil {
		return nil, &keys.SigningError{Reason: "no signing key"}
	}
	if err := d.ValidateHashes(); err != nil {
		return nil, err
	}
	ret := d.withApprovals()
	signer := key.PublicKey()
	if ret.IsSignedBy(signer) {
		return ret, nil
	}
	sig, err := key.Sign(d.Hash.Bytes())
	if err != nil {
		return nil, err
	}
	ret.Approvals = append(ret.Approvals, Approval{Signer: signer, Signature: sig})
	return ret, nil
}

// MergeApprovals returns a new deploy with the approvals from independent signers added.
// Every approval must verify against the deploy hash. Signers that already approved
// are skipped.
func (d *Deploy) MergeApprovals(approvals ...Approval) (*Deploy, error) {
	if err := d.ValidateHashes(); err != nil {
		return nil, err
	}
	ret := d.withApprovals()
	for idx, approval := range approvals {
		if !approval.Verify(d.Hash) {
			return nil, &ValidationError{
				Field:  "approvals",
				Reason: fmt.Sprintf("approval %d from %s does not verify", idx, approval.Signer),
			}
		}
		if ret.IsSignedBy(approval.Signer) {
			continue
		}
		ret.Approvals = append(ret.Approvals, Approval{
			Signer:    approval.Signer,
			Signature: bytes.Clone(approval.Signature),
		})
	}
	return ret, nil
}

func (d *Deploy) withApprovals() *Deploy {
	ret := *d
	ret.Approvals = make([]Approval, len(d.Approvals), len(d.Approvals)+1)
	copy(ret.Approvals, d.Approvals)
	return &ret
}

func (d *Deploy) IsSignedBy(signer keys.PublicKey) bool {
	return slices.ContainsFunc(d.Approvals, func(a Approval) bool {
		return a.Signer.Equal(signer)
	})
}

// Validate recomputes the body and deploy hashes and verifies every approval
func (d *Deploy) Validate() error {
	if err := d.ValidateHashes(); err != nil {
		return err
	}
	for idx, approval := range d.Approvals {
		if err := approval.Signer.Validate(); err != nil {
			return &ValidationError{
				Field:  fmt.Sprintf("approvals[%d].signer", idx),
				Reason: "invalid public key",
				Err:    err,
			}
		}
		if !approval.Verify(d.Hash) {
			return &ValidationError{
				Field:  fmt.Sprintf("approvals[%d].signature", idx),
				Reason: "signature does not verify",
			}
		}
	}
	return nil
}

// ValidateHashes checks that the body hash commits to the payment and session and the
// deploy hash commits to the header. Approvals are not checked.
func (d *Deploy) ValidateHashes() error {
	if d.Payment == nil || d.Session == nil {
		return &ValidationError{Field: "body", Reason: "missing payment or session"}
	}
	if d.Header.ChainName == "" {
		return &ValidationError{Field: "header.chain_name", Reason: "empty"}
	}
	if bodyHash := BodyHash(d.Payment, d.Session); bodyHash != d.Header.BodyHash {
		return &ValidationError{
			Field:  "header.body_hash",
			Reason: fmt.Sprintf("expected %s, computed %s", d.Header.BodyHash, bodyHash),
		}
	}
	if hash := d.Header.Hash(); hash != d.Hash {
		return &ValidationError{
			Field:  "hash",
			Reason: fmt.Sprintf("expected %s, computed %s", d.Hash, hash),
		}
	}
	return nil
}

// Append writes the header, hash, payment, session and approvals
func (d *Deploy) Append(w *bytesrepr.Writer) {
	d.Header.Append(w)
	w.PackFixedBytes(d.Hash.Bytes())
	AppendItem(w, d.Payment)
	AppendItem(w, d.Session)
	w.PackLen(len(d.Approvals))
	for _, approval := range d.Approvals {
		approval.Append(w)
	}
}

func (d *Deploy) ToBytes() []byte {
	w := bytesrepr.NewWriter(0)
	d.Append(w)
	return w.Bytes()
}

// Smallest approval: ed25519 key with tag, signature tag and signature
const minApprovalLen = 1 + keys.Ed25519PublicKeyLen + 1 + keys.SignatureLen

func UnpackDeploy(r *bytesrepr.Reader) *Deploy {
	ret := &Deploy{}
	ret.Header = UnpackHeader(r)
	ret.Hash = unpackHash(r)
	ret.Payment = UnpackItem(r)
	ret.Session = UnpackItem(r)
	n := r.UnpackLen(minApprovalLen)
	ret.Approvals = make([]Approval, 0, n)
	for range n {
		ret.Approvals = append(ret.Approvals, UnpackApproval(r))
	}
	if r.Err() != nil {
		return nil
	}
	return ret
}

// FromBytes decodes a deploy. The hashes and approvals are not checked; use Validate.
func FromBytes(data []byte) (*Deploy, error) {
	r := bytesrepr.NewReader(data)
	ret := UnpackDeploy(r)
	if err := r.Done(); err != nil {
		return nil, err
	}
	return ret, nil
}
