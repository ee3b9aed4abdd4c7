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
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/contract"
	"github.com/blinklabs-io/gocasper/deploy"
	"github.com/blinklabs-io/gocasper/keys"
)

type makeFlags struct {
	flagset     *flag.FlagSet
	keyFile     string
	chainName   string
	sessionFile string
	paymentFile string
	amount      string
	ttl         string
	gasPrice    uint64
	args        argList
	out         string
}

func newMakeFlags() *makeFlags {
	f := &makeFlags{
		flagset: flag.NewFlagSet("make", flag.ExitOnError),
	}
	f.flagset.StringVar(&f.keyFile, "key", "", "path to the private key file of the deploy account")
	f.flagset.StringVar(&f.chainName, "chain", "", "name of the target chain")
	f.flagset.StringVar(&f.sessionFile, "session", "", "path to the session wasm")
	f.flagset.StringVar(
		&f.paymentFile,
		"payment",
		"",
		"path to the payment wasm (defaults to standard payment)",
	)
	f.flagset.StringVar(&f.amount, "amount", "", "payment amount in motes")
	f.flagset.StringVar(&f.ttl, "ttl", deploy.FormatTTL(uint64(deploy.DefaultTTL.Milliseconds())), "deploy time to live")
	f.flagset.Uint64Var(&f.gasPrice, "gas-price", deploy.DefaultGasPrice, "gas price")
	f.flagset.Var(&f.args, "arg", "session argument in name:type=value form (repeatable)")
	f.flagset.StringVar(&f.out, "out", "", "path to write the deploy JSON (defaults to stdout)")
	return f
}

func runMake(f *globalFlags, args []string) error {
	makeFlags := newMakeFlags()
	if err := makeFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if makeFlags.keyFile == "" || makeFlags.chainName == "" ||
		makeFlags.sessionFile == "" || makeFlags.amount == "" {
		return errors.New("you must specify -key, -chain, -session and -amount")
	}
	key, err := keys.LoadKey(makeFlags.keyFile)
	if err != nil {
		return err
	}
	amount, err := clvalue.ParseU512(makeFlags.amount)
	if err != nil {
		return err
	}
	ttl, err := deploy.ParseTTL(makeFlags.ttl)
	if err != nil {
		return err
	}
	sessionArgs, err := parseRuntimeArgs(makeFlags.args)
	if err != nil {
		return err
	}
	opts := []contract.ContractOptionFunc{
		contract.WithLogger(f.logger()),
		contract.WithParams(
			deploy.WithTTL(time.Duration(ttl)*time.Millisecond), // #nosec G115
			deploy.WithGasPrice(makeFlags.gasPrice),
		),
	}
	if makeFlags.paymentFile != "" {
		opts = append(opts, contract.WithPaymentPath(makeFlags.paymentFile))
	}
	c, err := contract.NewContract(makeFlags.sessionFile, opts...)
	if err != nil {
		return err
	}
	d, err := contract.NewBoundContract(c, key).Deploy(sessionArgs, amount, makeFlags.chainName)
	if err != nil {
		return err
	}
	return writeDeploy(makeFlags.out, d)
}

type signFlags struct {
	flagset      *flag.FlagSet
	keyFile      string
	in           string
	out          string
	approvalsOut string
}

func newSignFlags() *signFlags {
	f := &signFlags{
		flagset: flag.NewFlagSet("sign", flag.ExitOnError),
	}
	f.flagset.StringVar(&f.keyFile, "key", "", "path to the private key file")
	f.flagset.StringVar(&f.in, "in", "", "path to the deploy JSON")
	f.flagset.StringVar(&f.out, "out", "", "path to write the signed deploy JSON (defaults to -in)")
	f.flagset.StringVar(
		&f.approvalsOut,
		"approvals-out",
		"",
		"also write the approvals as a CBOR envelope to this path",
	)
	return f
}

func runSign(f *globalFlags, args []string) error {
	signFlags := newSignFlags()
	if err := signFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if signFlags.keyFile == "" || signFlags.in == "" {
		return errors.New("you must specify -key and -in")
	}
	key, err := keys.LoadKey(signFlags.keyFile)
	if err != nil {
		return err
	}
	d, err := readDeploy(signFlags.in)
	if err != nil {
		return err
	}
	signed, err := deploy.SignDeploy(d, key)
	if err != nil {
		return err
	}
	f.logger().Debug(
		"signed deploy",
		"deploy_hash", signed.Hash.String(),
		"signer", key.PublicKey().Hex(),
		"approvals", len(signed.Approvals),
	)
	if signFlags.approvalsOut != "" {
		data, err := deploy.NewApprovalSet(signed).MarshalCBOR()
		if err != nil {
			return err
		}
		if err := os.WriteFile(signFlags.approvalsOut, data, 0o600); err != nil {
			return err
		}
	}
	out := signFlags.out
	if out == "" {
		out = signFlags.in
	}
	return writeDeploy(out, signed)
}

type mergeFlags struct {
	flagset   *flag.FlagSet
	in        string
	out       string
	approvals argList
}

func newMergeFlags() *mergeFlags {
	f := &mergeFlags{
		flagset: flag.NewFlagSet("merge", flag.ExitOnError),
	}
	f.flagset.StringVar(&f.in, "in", "", "path to the deploy JSON")
	f.flagset.StringVar(&f.out, "out", "", "path to write the merged deploy JSON (defaults to -in)")
	f.flagset.Var(&f.approvals, "approvals", "path to a CBOR approvals envelope (repeatable)")
	return f
}

func runMerge(f *globalFlags, args []string) error {
	mergeFlags := newMergeFlags()
	if err := mergeFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if mergeFlags.in == "" || len(mergeFlags.approvals) == 0 {
		return errors.New("you must specify -in and at least one -approvals")
	}
	d, err := readDeploy(mergeFlags.in)
	if err != nil {
		return err
	}
	d, err = mergeApprovalFiles(d, mergeFlags.approvals)
	if err != nil {
		return err
	}
	f.logger().Debug(
		"merged approvals",
		"deploy_hash", d.Hash.String(),
		"approvals", len(d.Approvals),
	)
	out := mergeFlags.out
	if out == "" {
		out = mergeFlags.in
	}
	return writeDeploy(out, d)
}

func mergeApprovalFiles(d *deploy.Deploy, paths []string) (*deploy.Deploy, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		set, err := deploy.ApprovalSetFromCbor(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		d, err = d.ApplyApprovalSet(set)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return d, nil
}

type verifyFlags struct {
	flagset *flag.FlagSet
	in      string
}

func newVerifyFlags() *verifyFlags {
	f := &verifyFlags{
		flagset: flag.NewFlagSet("verify", flag.ExitOnError),
	}
	f.flagset.StringVar(&f.in, "in", "", "path to the deploy JSON")
	return f
}

func runVerify(_ *globalFlags, args []string) error {
	verifyFlags := newVerifyFlags()
	if err := verifyFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if verifyFlags.in == "" {
		return errors.New("you must specify -in")
	}
	d, err := readDeploy(verifyFlags.in)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	fmt.Printf("deploy %s is valid (%d approvals)\n", d.Hash.String(), len(d.Approvals))
	return nil
}

func readDeploy(path string) (*deploy.Deploy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d deploy.Deploy
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// The hash must commit to the header and body that are shown and signed
	if err := d.ValidateHashes(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

func writeDeploy(path string, d *deploy.Deploy) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
