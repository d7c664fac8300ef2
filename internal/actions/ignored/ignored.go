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

// Package ignored implements the family of recognized-but-inert
// transactions (spec §4.2, the "ignored action" family): ones that
// must be classified so they don't fall through to UnclassifiedTransaction,
// but carry nothing worth writing to the target.
package ignored

import (
	"context"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// Payload is produced by every action in this package. It carries no
// data; its only job is to name which recognized-noop action matched.
type Payload struct {
	Action string
}

// ActionName implements actions.Payload.
func (p Payload) ActionName() string { return p.Action }

// Loader is the shared no-op Loader for every action in this package:
// a recognized transaction that intentionally writes nothing.
type Loader struct{}

// Run implements actions.Loader.
func (Loader) Run(context.Context, target.Tx, types.StateScope, actions.Payload) error {
	return nil
}
