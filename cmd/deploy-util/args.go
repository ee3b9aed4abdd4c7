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

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/keys"
)

// argList collects repeated -arg flags
type argList []string

func (a *argList) String() string {
	return strings.Join(*a, ",")
}

func (a *argList) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// parseRuntimeArgs builds runtime args from "name:type=value" strings
func parseRuntimeArgs(defs []string) (deploy.RuntimeArgs, error) {
	args := make([]deploy.NamedArg, 0, len(defs))
	for _, def := range defs {
		arg, err := parseArg(def)
		if err != nil {
			return deploy.RuntimeArgs{}, err
		}
		args = append(args, arg)
	}
	return deploy.NewRuntimeArgs(args...)
}

func parseArg(def string) (deploy.NamedArg, error) {
	nameType, value, ok := strings.Cut(def, "=")
	if !ok {
		return deploy.NamedArg{}, fmt.Errorf("invalid arg %q: expected name:type=value", def)
	}
	name, typeName, ok := strings.Cut(nameType, ":")
	if !ok || name == "" {
		return deploy.NamedArg{}, fmt.Errorf("invalid arg %q: expected name:type=value", def)
	}
	t, err := clvalue.TypeFromName(typeName)
	if err != nil {
		return deploy.NamedArg{}, fmt.Errorf("invalid arg %q: %w", def, err)
	}
	v, err := parseArgValue(t, value)
	if err != nil {
		return deploy.NamedArg{}, fmt.Errorf("invalid arg %q: %w", def, err)
	}
	return deploy.NewArg(name, v), nil
}

func parseArgValue(t clvalue.CLType, s string) (clvalue.Value, error) {
	switch t {
	case clvalue.TypeBool:
		v, err := strconv.ParseBool(s)
		return clvalue.Bool(v), err
	case clvalue.TypeI32:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return clvalue.NewI32(v)
	case clvalue.TypeI64:
		v, err := strconv.ParseInt(s, 10, 64)
		return clvalue.I64(v), err
	case clvalue.TypeU8:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return clvalue.NewU8(v)
	case clvalue.TypeU32:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return clvalue.NewU32(v)
	case clvalue.TypeU64:
		v, err := strconv.ParseUint(s, 10, 64)
		return clvalue.U64(v), err
	case clvalue.TypeU128:
		return clvalue.ParseU128(s)
	case clvalue.TypeU256:
		return clvalue.ParseU256(s)
	case clvalue.TypeU512:
		return clvalue.ParseU512(s)
	case clvalue.TypeUnit:
		if s != "" {
			return nil, errors.New("unit takes no value")
		}
		return clvalue.Unit{}, nil
	case clvalue.TypeString:
		return clvalue.String(s), nil
	case clvalue.TypeKey:
		return clvalue.ParseKey(s)
	case clvalue.TypeURef:
		return clvalue.ParseURef(s)
	case clvalue.TypePublicKey:
		pk, err := keys.ParsePublicKeyHex(s)
		if err != nil {
			return nil, err
		}
		return clvalue.NewPublicKey(pk), nil
	}
	return nil, fmt.Errorf("unsupported arg type %s", t)
}
