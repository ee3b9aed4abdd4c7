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
	"fmt"
	"slices"
	"strings"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/clvalue"
)

type NamedArg struct {
	Name  string
	Value clvalue.CLValue
}

// NewArg serializes v as the named argument
func NewArg(name string, v clvalue.Value) NamedArg {
	return NamedArg{
		Name:  name,
		Value: clvalue.New(v),
	}
}

// RuntimeArgs is an ordered set of uniquely named arguments. The order of the
// arguments is part of the serialized form.
type RuntimeArgs struct {
	args []NamedArg
}

// NewRuntimeArgs builds RuntimeArgs preserving the given order
func NewRuntimeArgs(args ...NamedArg) (RuntimeArgs, error) {
	seen := make(map[string]struct{}, len(args))
	for _, arg := range args {
		if _, ok := seen[arg.Name]; ok {
			return RuntimeArgs{}, fmt.Errorf("%w: %s", ErrDuplicateArg, arg.Name)
		}
		if arg.Value.Type == nil {
			return RuntimeArgs{}, fmt.Errorf("argument %s has no cl type", arg.Name)
		}
		seen[arg.Name] = struct{}{}
	}
	return RuntimeArgs{args: slices.Clone(args)}, nil
}

// RuntimeArgsFromMap builds RuntimeArgs from an association, ordered by name
func RuntimeArgsFromMap(m map[string]clvalue.CLValue) (RuntimeArgs, error) {
	args := make([]NamedArg, 0, len(m))
	for name, value := range m {
		args = append(args, NamedArg{Name: name, Value: value})
	}
	slices.SortFunc(args, func(a, b NamedArg) int {
		return strings.Compare(a.Name, b.Name)
	})
	return NewRuntimeArgs(args...)
}

func (a RuntimeArgs) Len() int {
	return len(a.args)
}

// Args returns a copy of the arguments in order
func (a RuntimeArgs) Args() []NamedArg {
	return slices.Clone(a.args)
}

func (a RuntimeArgs) Names() []string {
	ret := make([]string, len(a.args))
	for i, arg := range a.args {
		ret[i] = arg.Name
	}
	return ret
}

func (a RuntimeArgs) Get(name string) (clvalue.CLValue, bool) {
	for _, arg := range a.args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return clvalue.CLValue{}, false
}

// With returns a copy of the arguments with arg appended
func (a RuntimeArgs) With(arg NamedArg) (RuntimeArgs, error) {
	return NewRuntimeArgs(append(a.Args(), arg)...)
}

func (a RuntimeArgs) Equal(other RuntimeArgs) bool {
	return slices.EqualFunc(a.args, other.args, func(x, y NamedArg) bool {
		return x.Name == y.Name && x.Value.Equal(y.Value)
	})
}

func (a RuntimeArgs) Append(w *bytesrepr.Writer) {
	w.PackLen(len(a.args))
	for _, arg := range a.args {
		w.PackString(arg.Name)
		arg.Value.Append(w)
	}
}

func (a RuntimeArgs) ToBytes() []byte {
	w := bytesrepr.NewWriter(0)
	a.Append(w)
	return w.Bytes()
}

// Smallest named argument: empty name, empty value bytes and a one-byte type tag
const minNamedArgLen = 2*bytesrepr.U32Len + 1

func UnpackRuntimeArgs(r *bytesrepr.Reader) RuntimeArgs {
	start := r.Offset()
	n := r.UnpackLen(minNamedArgLen)
	args := make([]NamedArg, 0, n)
	for range n {
		name := r.UnpackString()
		value := clvalue.UnpackCLValue(r)
		if r.Err() != nil {
			return RuntimeArgs{}
		}
		args = append(args, NamedArg{Name: name, Value: value})
	}
	ret, err := NewRuntimeArgs(args...)
	if err != nil {
		r.AddError(&bytesrepr.DecodingError{
			Offset: start,
			Reason: "runtime args",
			Err:    err,
		})
		return RuntimeArgs{}
	}
	return ret
}

func RuntimeArgsFromBytes(data []byte) (RuntimeArgs, error) {
	r := bytesrepr.NewReader(data)
	ret := UnpackRuntimeArgs(r)
	if err := r.Done(); err != nil {
		return RuntimeArgs{}, err
	}
	return ret, nil
}
