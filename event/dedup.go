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

package event

import (
	"context"
	"sync"

	"github.com/blinklabs-io/gocasper/keys"
)

// Deduplicator wraps a Handler and drops deploys and blocks it has already passed on.
// It is safe for concurrent use.
type Deduplicator struct {
	next    Handler
	mu      sync.Mutex
	deploys map[keys.Blake2b256]struct{}
	blocks  map[keys.Blake2b256]struct{}
}

func NewDeduplicator(next Handler) *Deduplicator {
	return &Deduplicator{
		next:    next,
		deploys: make(map[keys.Blake2b256]struct{}),
		blocks:  make(map[keys.Blake2b256]struct{}),
	}
}

func (d *Deduplicator) OnDeployProcessed(ctx context.Context, evt DeployProcessed) error {
	if !d.markSeen(d.deploys, evt.DeployHash) {
		return nil
	}
	if err := d.next.OnDeployProcessed(ctx, evt); err != nil {
		d.forget(d.deploys, evt.DeployHash)
		return err
	}
	return nil
}

func (d *Deduplicator) OnBlockAdded(ctx context.Context, evt BlockAdded) error {
	if !d.markSeen(d.blocks, evt.BlockHash) {
		return nil
	}
	if err := d.next.OnBlockAdded(ctx, evt); err != nil {
		d.forget(d.blocks, evt.BlockHash)
		return err
	}
	return nil
}

// markSeen records the hash and reports whether it was new
func (d *Deduplicator) markSeen(seen map[keys.Blake2b256]struct{}, hash keys.Blake2b256) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := seen[hash]; ok {
		return false
	}
	seen[hash] = struct{}{}
	return true
}

func (d *Deduplicator) forget(seen map[keys.Blake2b256]struct{}, hash keys.Blake2b256) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(seen, hash)
}
