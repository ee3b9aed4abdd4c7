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

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/clvalue"
)

// ItemTag is the discriminant of an ExecutableDeployItem
type ItemTag uint8

const (
	ItemTagModuleBytes                   ItemTag = 0
	ItemTagStoredContractByHash          ItemTag = 1
	ItemTagStoredContractByName          ItemTag = 2
	ItemTagStoredVersionedContractByHash ItemTag = 3
	ItemTagStoredVersionedContractByName ItemTag = 4
	ItemTagTransfer                      ItemTag = 5
)

const ContractHashLen = 32

// ExecutableDeployItem describes the code run as the payment or session of a deploy
type ExecutableDeployItem interface {
	Tag() ItemTag
	RuntimeArgs() RuntimeArgs
	// Append writes the item fields after the tag
	Append(w *bytesrepr.Writer)
}

// ModuleBytes carries wasm inline
type ModuleBytes struct {
	Module []byte
	Args   RuntimeArgs
}

// StandardPayment is a ModuleBytes item with empty wasm and an "amount" argument. The
// network runs its built-in payment logic for it.
func StandardPayment(amount clvalue.U512) ModuleBytes {
	args, _ := NewRuntimeArgs(NewArg("amount", amount))
	return ModuleBytes{
		Module: []byte{},
		Args:   args,
	}
}

func (i ModuleBytes) Tag() ItemTag            { return ItemTagModuleBytes }
func (i ModuleBytes) RuntimeArgs() RuntimeArgs { return i.Args }

func (i ModuleBytes) Append(w *bytesrepr.Writer) {
	w.PackBytes(i.Module)
	i.Args.Append(w)
}

// IsStandardPayment reports whether the item carries no wasm
func (i ModuleBytes) IsStandardPayment() bool {
	return len(i.Module) == 0
}

type StoredContractByHash struct {
	Hash       [ContractHashLen]byte
	EntryPoint string
	Args       RuntimeArgs
}

func (i StoredContractByHash) Tag() ItemTag            { return ItemTagStoredContractByHash }
func (i StoredContractByHash) RuntimeArgs() RuntimeArgs { return i.Args }

func (i StoredContractByHash) Append(w *bytesrepr.Writer) {
	w.PackFixedBytes(i.Hash[:])
	w.PackString(i.EntryPoint)
	i.Args.Append(w)
}

type StoredContractByName struct {
	Name       string
	EntryPoint string
	Args       RuntimeArgs
}

func (i StoredContractByName) Tag() ItemTag            { return ItemTagStoredContractByName }
func (i StoredContractByName) RuntimeArgs() RuntimeArgs { return i.Args }

func (i StoredContractByName) Append(w *bytesrepr.Writer) {
	w.PackString(i.Name)
	w.PackString(i.EntryPoint)
	i.Args.Append(w)
}

// StoredVersionedContractByHash calls a contract package. A nil Version selects the
// latest enabled version.
type StoredVersionedContractByHash struct {
	Hash       [ContractHashLen]byte
	Version    *uint32
	EntryPoint string
	Args       RuntimeArgs
}

func (i StoredVersionedContractByHash) Tag() ItemTag {
	return ItemTagStoredVersionedContractByHash
}
func (i StoredVersionedContractByHash) RuntimeArgs() RuntimeArgs { return i.Args }

func (i StoredVersionedContractByHash) Append(w *bytesrepr.Writer) {
	w.PackFixedBytes(i.Hash[:])
	packVersion(w, i.Version)
	w.PackString(i.EntryPoint)
	i.Args.Append(w)
}

type StoredVersionedContractByName struct {
	Name       string
	Version    *uint32
	EntryPoint string
	Args       RuntimeArgs
}

func (i StoredVersionedContractByName) Tag() ItemTag {
	return ItemTagStoredVersionedContractByName
}
func (i StoredVersionedContractByName) RuntimeArgs() RuntimeArgs { return i.Args }

func (i StoredVersionedContractByName) Append(w *bytesrepr.Writer) {
	w.PackString(i.Name)
	packVersion(w, i.Version)
	w.PackString(i.EntryPoint)
	i.Args.Append(w)
}

// Transfer moves motes between purses using only runtime arguments
type Transfer struct {
	Args RuntimeArgs
}

func (i Transfer) Tag() ItemTag            { return ItemTagTransfer }
func (i Transfer) RuntimeArgs() RuntimeArgs { return i.Args }

func (i Transfer) Append(w *bytesrepr.Writer) {
	i.Args.Append(w)
}

func packVersion(w *bytesrepr.Writer, version *uint32) {
	if version == nil {
		w.PackU8(0)
		return
	}
	w.PackU8(1)
	w.PackU32(*version)
}

func unpackVersion(r *bytesrepr.Reader) *uint32 {
	switch tag := r.UnpackU8(); tag {
	case 0:
		return nil
	case 1:
		version := r.UnpackU32()
		return &version
	default:
		r.InvalidTag("option", tag)
		return nil
	}
}

// AppendItem writes the tag followed by the item fields
func AppendItem(w *bytesrepr.Writer, item ExecutableDeployItem) {
	w.PackU8(uint8(item.Tag()))
	item.Append(w)
}

func ItemToBytes(item ExecutableDeployItem) []byte {
	w := bytesrepr.NewWriter(0)
	AppendItem(w, item)
	return w.Bytes()
}

// ItemsEqual compares two items by their serialized form
func ItemsEqual(a, b ExecutableDeployItem) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(ItemToBytes(a), ItemToBytes(b))
}

func UnpackItem(r *bytesrepr.Reader) ExecutableDeployItem {
	tag := r.UnpackU8()
	if r.Err() != nil {
		return nil
	}
	var ret ExecutableDeployItem
	switch ItemTag(tag) {
	case ItemTagModuleBytes:
		module := r.UnpackBytes()
		ret = ModuleBytes{Module: module, Args: UnpackRuntimeArgs(r)}
	case ItemTagStoredContractByHash:
		hash := unpackContractHash(r)
		entryPoint := r.UnpackString()
		ret = StoredContractByHash{Hash: hash, EntryPoint: entryPoint, Args: UnpackRuntimeArgs(r)}
	case ItemTagStoredContractByName:
		name := r.UnpackString()
		entryPoint := r.UnpackString()
		ret = StoredContractByName{Name: name, EntryPoint: entryPoint, Args: UnpackRuntimeArgs(r)}
	case ItemTagStoredVersionedContractByHash:
		hash := unpackContractHash(r)
		version := unpackVersion(r)
		entryPoint := r.UnpackString()
		ret = StoredVersionedContractByHash{
			Hash:       hash,
			Version:    version,
			EntryPoint: entryPoint,
			Args:       UnpackRuntimeArgs(r),
		}
	case ItemTagStoredVersionedContractByName:
		name := r.UnpackString()
		version := unpackVersion(r)
		entryPoint := r.UnpackString()
		ret = StoredVersionedContractByName{
			Name:       name,
			Version:    version,
			EntryPoint: entryPoint,
			Args:       UnpackRuntimeArgs(r),
		}
	case ItemTagTransfer:
		ret = Transfer{Args: UnpackRuntimeArgs(r)}
	default:
		r.InvalidTag("executable deploy item", tag)
		return nil
	}
	if r.Err() != nil {
		return nil
	}
	return ret
}

func unpackContractHash(r *bytesrepr.Reader) [ContractHashLen]byte {
	var ret [ContractHashLen]byte
	copy(ret[:], r.UnpackFixedBytes(ContractHashLen))
	return ret
}

func ItemFromBytes(data []byte) (ExecutableDeployItem, error) {
	r := bytesrepr.NewReader(data)
	ret := UnpackItem(r)
	if err := r.Done(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (t ItemTag) String() string {
	switch t {
	case ItemTagModuleBytes:
		return "ModuleBytes"
	case ItemTagStoredContractByHash:
		return "StoredContractByHash"
	case ItemTagStoredContractByName:
		return "StoredContractByName"
	case ItemTagStoredVersionedContractByHash:
		return "StoredVersionedContractByHash"
	case ItemTagStoredVersionedContractByName:
		return "StoredVersionedContractByName"
	case ItemTagTransfer:
		return "Transfer"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}
