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

var reloginShape = []types.OpTuple{
	{Table: "accounts_user", Kind: types.OpUpdate},
	{Table: "oauthclient_remotetoken", Kind: types.OpUpdate},
}

// ReloginAction is OAuthReLoginAction: a returning OAuth session refresh.
type ReloginAction struct{}

// Name implements actions.Action.
func (ReloginAction) Name() string { return "oauth-relogin" }

// Matches implements actions.Action.
func (ReloginAction) Matches(tx *types.Tx) bool {
	return actions.ShapeEquals(tx.OpsTuples(), reloginShape)
}

// Transform implements actions.Action.
func (ReloginAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "oauth-relogin"}, nil
}
