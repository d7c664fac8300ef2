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

package ignored

import (
	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// SyncAction is GitHubSyncAction: a background GitHub repository sync,
// one remote-account refresh plus any number of repo updates it touched.
type SyncAction struct{}

// Name implements actions.Action.
func (SyncAction) Name() string { return "gh-sync" }

// Matches implements actions.Action.
func (SyncAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples()
	raUpdates := tx.OpsTuples(types.WithInclude("oauthclient_remoteaccount"), types.WithKinds(types.OpUpdate))
	repoUpdates := tx.OpsTuples(types.WithInclude("github_repositories"), types.WithKinds(types.OpUpdate))
	return len(raUpdates) == 1 && len(ops) == len(raUpdates)+len(repoUpdates)
}

// Transform implements actions.Action.
func (SyncAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "gh-sync"}, nil
}

var pingShape = []types.OpTuple{{Table: "github_repositories", Kind: types.OpUpdate}}

var pingExactColumns = map[string]struct{}{"ping": {}, "updated": {}}

// PingAction is GitHubPingAction: a lone repo heartbeat touching only
// its ping and updated columns.
type PingAction struct{}

// Name implements actions.Action.
func (PingAction) Name() string { return "gh-ping" }

// Matches implements actions.Action.
func (PingAction) Matches(tx *types.Tx) bool {
	if !actions.ShapeEquals(tx.OpsTuples(), pingShape) {
		return false
	}
	op, ok := soleOp(tx, "github_repositories")
	if !ok {
		return false
	}
	changed := op.ChangedColumns()
	delete(changed, "id")
	if len(changed) != len(pingExactColumns) {
		return false
	}
	for col := range changed {
		if _, ok := pingExactColumns[col]; !ok {
			return false
		}
	}
	return true
}

// Transform implements actions.Action.
func (PingAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "gh-ping"}, nil
}
