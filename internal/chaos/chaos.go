// Copyright 2023 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package chaos injects faults at configurable probability into the
// extractor's consumers and the loader's Loader, so the driver's retry
// and halt policies can be exercised under conditions a live source or
// target rarely produces on its own. Adapted from the teacher's
// logical.WithChaos (internal/source/logical/chaos.go): the same
// "wrap the delegate, roll the dice before forwarding the call" shape,
// retargeted at this pipeline's own interfaces and taxonomy of faults.
package chaos

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/extract"
	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// ErrChaos is the error wrapped and injected by every function in this
// package.
var ErrChaos = errors.New("chaos")

func doChaos(call string) error {
	return errors.WithMessage(ErrChaos, call)
}

// WithOpsConsumer wraps delegate so that each PollOps call fails with a
// TransientConsumerFault with probability prob, exercising the
// extractor's retry.Do backoff path. delegate is returned unwrapped if
// prob <= 0.
func WithOpsConsumer(delegate extract.OpsConsumer, prob float32) extract.OpsConsumer {
	if prob <= 0 {
		return delegate
	}
	return &chaosOpsConsumer{delegate: delegate, prob: prob}
}

type chaosOpsConsumer struct {
	delegate extract.OpsConsumer
	prob     float32
}

func (c *chaosOpsConsumer) PollOps(ctx context.Context) ([]types.Operation, bool, error) {
	if rand.Float32() < c.prob {
		return nil, false, faults.TransientConsumer(doChaos("PollOps"))
	}
	return c.delegate.PollOps(ctx)
}

// WithTxConsumer is WithOpsConsumer's counterpart for the transaction
// boundary stream.
func WithTxConsumer(delegate extract.TxConsumer, prob float32) extract.TxConsumer {
	if prob <= 0 {
		return delegate
	}
	return &chaosTxConsumer{delegate: delegate, prob: prob}
}

type chaosTxConsumer struct {
	delegate extract.TxConsumer
	prob     float32
}

func (c *chaosTxConsumer) PollTxInfo(ctx context.Context) ([]types.TxInfo, bool, error) {
	if rand.Float32() < c.prob {
		return nil, false, faults.TransientConsumer(doChaos("PollTxInfo"))
	}
	return c.delegate.PollTxInfo(ctx)
}

// WithLoader wraps delegate so that each Run call fails with a
// transient TargetTransactionFault with probability prob, exercising
// the driver's retry path around load.Applier.Run (whose own
// classifyLoaderError marks an unrecognized error as non-transient, so
// the injected fault must already carry transient=true to be retried).
func WithLoader(delegate actions.Loader, prob float32) actions.Loader {
	if prob <= 0 {
		return delegate
	}
	return &chaosLoader{delegate: delegate, prob: prob}
}

type chaosLoader struct {
	delegate actions.Loader
	prob     float32
}

func (c *chaosLoader) Run(ctx context.Context, q target.Tx, state types.StateScope, payload actions.Payload) error {
	if rand.Float32() < c.prob {
		return faults.TargetTransaction(doChaos("Loader.Run"), true)
	}
	return c.delegate.Run(ctx, q, state, payload)
}
