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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Handler receives decoded events
type Handler interface {
	OnDeployProcessed(context.Context, DeployProcessed) error
	OnBlockAdded(context.Context, BlockAdded) error
}

// Dispatcher decodes raw event payloads and passes them to a Handler
type Dispatcher struct {
	handler       Handler
	logger        *slog.Logger
	strictUnknown bool
}

type DispatcherOptionFunc func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOptionFunc {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithStrictUnknown makes Dispatch return ErrUnknownEvent for event types other than
// DeployProcessed and BlockAdded instead of ignoring them
func WithStrictUnknown(strict bool) DispatcherOptionFunc {
	return func(d *Dispatcher) {
		d.strictUnknown = strict
	}
}

func NewDispatcher(handler Handler, opts ...DispatcherOptionFunc) *Dispatcher {
	d := &Dispatcher{
		handler: handler,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Dispatch decodes a single event envelope of the form {"<EventType>": {...}}. A
// leading "data:" stream prefix is stripped.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	data = bytes.TrimSpace(data)
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("data:")))
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}
	if len(envelope) != 1 {
		return fmt.Errorf("event envelope has %d keys, expected 1", len(envelope))
	}
	for eventType, payload := range envelope {
		switch eventType {
		case TypeDeployProcessed:
			var evt DeployProcessed
			if err := json.Unmarshal(payload, &evt); err != nil {
				return fmt.Errorf("decode %s: %w", eventType, err)
			}
			if err := evt.Validate(); err != nil {
				return fmt.Errorf("decode %s: %w", eventType, err)
			}
			d.logger.Info(
				"processing DeployProcessed event",
				"component", "event",
				"deploy_hash", evt.DeployHash.String(),
			)
			return d.handler.OnDeployProcessed(ctx, evt)
		case TypeBlockAdded:
			var evt BlockAdded
			if err := json.Unmarshal(payload, &evt); err != nil {
				return fmt.Errorf("decode %s: %w", eventType, err)
			}
			d.logger.Info(
				"processing BlockAdded event",
				"component", "event",
				"block_hash", evt.BlockHash.String(),
				"height", evt.BlockHeader.Height,
			)
			return d.handler.OnBlockAdded(ctx, evt)
		default:
			if d.strictUnknown {
				return fmt.Errorf("%w: %s", ErrUnknownEvent, eventType)
			}
			d.logger.Debug(
				"ignoring event",
				"component", "event",
				"type", eventType,
			)
		}
	}
	return nil
}

// Run dispatches events from the channel until it is closed or the context is done.
// Dispatch errors are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, events <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.Dispatch(ctx, data); err != nil {
				d.logger.Error(
					"failed to dispatch event",
					"component", "event",
					"error", err,
				)
			}
		}
	}
}
