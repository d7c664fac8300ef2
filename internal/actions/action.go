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

// Package actions implements the ActionRouter of spec §4.2: a fixed,
// ordered registry of (predicate, transform, loader) triples, the first
// match winning.
package actions

import (
	"context"

	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// Payload is the strongly-typed, action-specific record an ActionTransform
// produces (spec §4.3). Every concrete payload type names the action that
// produced it, for logging and metrics.
type Payload interface {
	ActionName() string
}

// Action recognizes a class of transactions by fingerprint (shape plus
// content predicate, spec §4.2) and projects a matching Tx into a Payload
// (spec §4.3). Matches and Transform must be pure: no I/O, no StateStore
// access, no mutation of tx.
type Action interface {
	// Name identifies the action for logging, metrics, and payload
	// tagging.
	Name() string

	// Matches reports whether tx's shape and content satisfy this
	// action's fingerprint.
	Matches(tx *types.Tx) bool

	// Transform projects tx into this action's Payload. Only called
	// after Matches has returned true for the same Tx.
	Transform(tx *types.Tx) (Payload, error)
}

// Loader applies a Payload to the target database within a single
// transaction (spec §4.4). q is the open target transaction; state is
// the StateStore scope bound to the same transaction.
type Loader interface {
	Run(ctx context.Context, q target.Tx, state types.StateScope, payload Payload) error
}

// Registration pairs an Action with the Loader that applies its Payload.
type Registration struct {
	Action Action
	Loader Loader
}
