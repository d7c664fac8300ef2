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

// SessionAction is UserSessionAction: a login recording session
// activity, with at most one incidental accounts_user touch.
type SessionAction struct{}

// Name implements actions.Action.
func (SessionAction) Name() string { return "user-session" }

// Matches implements actions.Action.
func (SessionAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples()
	userUpdateOps := tx.OpsTuples(types.WithInclude("accounts_user"), types.WithKinds(types.OpUpdate))
	sessionOps := tx.OpsTuples(
		types.WithInclude("accounts_user_session_activity"),
		types.WithKinds(types.OpInsert, types.OpUpdate),
	)

	if len(userUpdateOps) == 1 {
		if _, user, ok := tx.OpsBy("accounts_user").Pop(); ok {
			if v, ok := user.Get("active"); ok && v == false {
				return false
			}
		}
	}

	return len(userUpdateOps) <= 1 && len(ops) == len(userUpdateOps)+len(sessionOps) && len(sessionOps) >= 1
}

// Transform implements actions.Action.
func (SessionAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "user-session"}, nil
}
