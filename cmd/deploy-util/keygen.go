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
	"flag"
	"fmt"

	"github.com/blinklabs-io/gocasper/keys"
)

type keygenFlags struct {
	flagset   *flag.FlagSet
	algorithm string
	out       string
}

func newKeygenFlags() *keygenFlags {
	f := &keygenFlags{
		flagset: flag.NewFlagSet("keygen", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.algorithm,
		"algorithm",
		"ed25519",
		"key algorithm (ed25519 or secp256k1)",
	)
	f.flagset.StringVar(&f.out, "out", "", "path to write the private key file")
	return f
}

func runKeygen(f *globalFlags, args []string) error {
	keygenFlags := newKeygenFlags()
	if err := keygenFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if keygenFlags.out == "" {
		return errors.New("you must specify -out")
	}
	alg, err := keys.ParseAlgorithm(keygenFlags.algorithm)
	if err != nil {
		return err
	}
	key, err := keys.GenerateKey(alg)
	if err != nil {
		return err
	}
	if err := keys.SaveKey(keygenFlags.out, key); err != nil {
		return err
	}
	f.logger().Debug(
		"generated key",
		"algorithm", alg.String(),
		"path", keygenFlags.out,
	)
	fmt.Printf("public key:   %s\n", key.PublicKey().Hex())
	fmt.Printf("account hash: %s\n", key.PublicKey().AccountHash().String())
	return nil
}

type accountHashFlags struct {
	flagset *flag.FlagSet
	keyFile string
}

func newAccountHashFlags() *accountHashFlags {
	f := &accountHashFlags{
		flagset: flag.NewFlagSet("account-hash", flag.ExitOnError),
	}
	f.flagset.StringVar(&f.keyFile, "key", "", "path to the private key file")
	return f
}

func runAccountHash(_ *globalFlags, args []string) error {
	accountHashFlags := newAccountHashFlags()
	if err := accountHashFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if accountHashFlags.keyFile == "" {
		return errors.New("you must specify -key")
	}
	key, err := keys.LoadKey(accountHashFlags.keyFile)
	if err != nil {
		return err
	}
	fmt.Println(key.PublicKey().AccountHash().String())
	return nil
}
