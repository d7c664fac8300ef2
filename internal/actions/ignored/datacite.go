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
	"strings"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// zenodoDataciteDOIPrefixes are the DOI prefixes Zenodo registers through
// DataCite. Not present in the retrieved reference sources (Design Note);
// these are Zenodo's published prefixes.
var zenodoDataciteDOIPrefixes = []string{"10.5281", "10.5072"}

var newVersionShape = []types.OpTuple{
	{Table: "pidstore_pid", Kind: types.OpUpdate},
}

var firstPublishShape = []types.OpTuple{
	{Table: "pidstore_pid", Kind: types.OpUpdate},
	{Table: "pidstore_pid", Kind: types.OpUpdate},
}

// DataciteAction is DataCiteDOIRegistration: a DOI transitioning to
// registered status, either on first publish or a new version.
type DataciteAction struct{}

// Name implements actions.Action.
func (DataciteAction) Name() string { return "doi-registration" }

// Matches implements actions.Action.
func (DataciteAction) Matches(tx *types.Tx) bool {
	if !actions.ShapeEquals(tx.OpsTuples(), newVersionShape, firstPublishShape) {
		return false
	}
	pids := tx.OpsBy("pidstore_pid", types.WithGroupBy("pid_type", "pid_value"))
	for _, key := range pids.Keys() {
		pid, _ := pids.Get(key)
		if pid.String("pid_type") != "doi" || pid.String("status") != "R" || !hasAnyPrefix(pid.String("pid_value"), zenodoDataciteDOIPrefixes) {
			return false
		}
	}
	return true
}

// Transform implements actions.Action.
func (DataciteAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "doi-registration"}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
