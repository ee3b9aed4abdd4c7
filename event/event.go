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

// Package event decodes the deploy and block events published by a node and projects
// them to the summaries kept by an indexer.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/gocasper/clvalue"
	"github.com/blinklabs-io/gocasper/keys"
)

const (
	TypeDeployProcessed = "DeployProcessed"
	TypeBlockAdded      = "BlockAdded"
)

type DeployProcessed struct {
	DeployHash      keys.Blake2b256 `json:"deploy_hash"`
	Account         keys.PublicKey  `json:"account"`
	BlockHash       keys.Blake2b256 `json:"block_hash"`
	ExecutionResult ExecutionResult `json:"execution_result"`
}

// ExecutionResult has exactly one of Success or Failure set
type ExecutionResult struct {
	Success *ExecutionSuccess `json:"Success,omitempty"`
	Failure *ExecutionFailure `json:"Failure,omitempty"`
}

type ExecutionSuccess struct {
	Effect    ExecutionEffect `json:"effect"`
	Transfers []string        `json:"transfers"`
	Cost      string          `json:"cost"`
}

type ExecutionFailure struct {
	Effect       ExecutionEffect `json:"effect"`
	Transfers    []string        `json:"transfers"`
	Cost         string          `json:"cost"`
	ErrorMessage string          `json:"error_message"`
}

type ExecutionEffect struct {
	Transforms []TransformEntry `json:"transforms"`
}

type TransformEntry struct {
	Key       string          `json:"key"`
	Transform json.RawMessage `json:"transform"`
}

// WriteTransfer returns the transfer written by this transform, if it is one
func (t TransformEntry) WriteTransfer() (*WriteTransfer, bool) {
	var tmp struct {
		WriteTransfer *WriteTransfer `json:"WriteTransfer"`
	}
	if err := json.Unmarshal(t.Transform, &tmp); err != nil || tmp.WriteTransfer == nil {
		return nil, false
	}
	return tmp.WriteTransfer, true
}

type WriteTransfer struct {
	DeployHash keys.Blake2b256   `json:"deploy_hash"`
	From       keys.AccountHash  `json:"from"`
	To         *keys.AccountHash `json:"to"`
	Source     clvalue.URef      `json:"source"`
	Target     clvalue.URef      `json:"target"`
	Amount     string            `json:"amount"`
	Gas        string            `json:"gas"`
	ID         *uint64           `json:"id"`
}

type BlockAdded struct {
	BlockHash   keys.Blake2b256 `json:"block_hash"`
	BlockHeader BlockHeader     `json:"block_header"`
}

type BlockHeader struct {
	ParentHash   keys.Blake2b256   `json:"parent_hash"`
	Timestamp    time.Time         `json:"timestamp"`
	EraID        uint64            `json:"era_id"`
	Height       uint64            `json:"height"`
	Proposer     keys.PublicKey    `json:"proposer"`
	DeployHashes []keys.Blake2b256 `json:"deploy_hashes"`
}

// DeploySummary is the indexed projection of a processed deploy. Block fields stay
// empty until the block containing the deploy is seen.
type DeploySummary struct {
	DeployHash   keys.Blake2b256  `json:"deployHash"`
	Account      keys.PublicKey   `json:"account"`
	Cost         clvalue.U512     `json:"cost"`
	ErrorMessage *string          `json:"errorMessage"`
	BlockHash    *keys.Blake2b256 `json:"blockHash"`
	Timestamp    *time.Time       `json:"timestamp"`
}

// Succeeded reports whether the deploy executed without error
func (s DeploySummary) Succeeded() bool {
	return s.ErrorMessage == nil
}

// WithBlock returns the summary updated with the block that included the deploy
func (s DeploySummary) WithBlock(block BlockSummary) DeploySummary {
	hash := block.BlockHash
	ts := block.Timestamp
	s.BlockHash = &hash
	s.Timestamp = &ts
	return s
}

type TransferSummary struct {
	TransferHash string           `json:"transferHash"`
	DeployHash   keys.Blake2b256  `json:"deployHash"`
	FromAccount  keys.AccountHash `json:"fromAccount"`
	SourcePurse  clvalue.URef     `json:"sourcePurse"`
	TargetPurse  clvalue.URef     `json:"targetPurse"`
	Amount       clvalue.U512     `json:"amount"`
	ID           *uint64          `json:"id"`
}

type BlockSummary struct {
	BlockHash   keys.Blake2b256 `json:"blockHash"`
	BlockHeight uint64          `json:"blockHeight"`
	ParentHash  keys.Blake2b256 `json:"parentHash"`
	Timestamp   time.Time       `json:"timestamp"`
	EraID       uint64          `json:"eraId"`
	Proposer    keys.PublicKey  `json:"proposer"`
}

func (e DeployProcessed) Validate() error {
	if (e.ExecutionResult.Success == nil) == (e.ExecutionResult.Failure == nil) {
		return errors.New("execution result must be exactly one of Success or Failure")
	}
	return nil
}

// Summary projects the event to a deploy summary and the transfers it performed
func (e DeployProcessed) Summary() (DeploySummary, []TransferSummary, error) {
	if err := e.Validate(); err != nil {
		return DeploySummary{}, nil, err
	}
	ret := DeploySummary{
		DeployHash: e.DeployHash,
		Account:    e.Account,
	}
	var costStr string
	if failure := e.ExecutionResult.Failure; failure != nil {
		costStr = failure.Cost
		msg := failure.ErrorMessage
		ret.ErrorMessage = &msg
	} else {
		costStr = e.ExecutionResult.Success.Cost
	}
	cost, err := clvalue.ParseU512(costStr)
	if err != nil {
		return DeploySummary{}, nil, fmt.Errorf("deploy %s cost: %w", e.DeployHash, err)
	}
	ret.Cost = cost
	// Only successful deploys move funds
	success := e.ExecutionResult.Success
	if success == nil {
		return ret, nil, nil
	}
	transfers := make([]TransferSummary, 0, len(success.Transfers))
	for _, transferHash := range success.Transfers {
		for _, transform := range success.Effect.Transforms {
			if transform.Key != transferHash {
				continue
			}
			wt, ok := transform.WriteTransfer()
			if !ok {
				continue
			}
			amount, err := clvalue.ParseU512(wt.Amount)
			if err != nil {
				return DeploySummary{}, nil, fmt.Errorf("transfer %s amount: %w", transferHash, err)
			}
			transfers = append(transfers, TransferSummary{
				TransferHash: strings.TrimPrefix(transferHash, "transfer-"),
				DeployHash:   e.DeployHash,
				FromAccount:  wt.From,
				SourcePurse:  wt.Source,
				TargetPurse:  wt.Target,
				Amount:       amount,
				ID:           wt.ID,
			})
		}
	}
	return ret, transfers, nil
}

func (e BlockAdded) Summary() BlockSummary {
	return BlockSummary{
		BlockHash:   e.BlockHash,
		BlockHeight: e.BlockHeader.Height,
		ParentHash:  e.BlockHeader.ParentHash,
		Timestamp:   e.BlockHeader.Timestamp,
		EraID:       e.BlockHeader.EraID,
		Proposer:    e.BlockHeader.Proposer,
	}
}

// Contains reports whether the block includes the deploy
func (e BlockAdded) Contains(deployHash keys.Blake2b256) bool {
	for _, hash := range e.BlockHeader.DeployHashes {
		if hash == deployHash {
			return true
		}
	}
	return false
}
