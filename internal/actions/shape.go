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

package actions

import "github.com/slint/rdm-migrator-go/internal/types"

// ShapeEquals reports whether got exactly matches one of templates, in
// order (spec §4.2's "templates are literal sequences; equality is
// order-sensitive"). Exported so that per-action subpackages (files,
// drafts, ignored) can express their fingerprints against it
// without re-declaring the comparison.
func ShapeEquals(got []types.OpTuple, templates ...[]types.OpTuple) bool {
	for _, tmpl := range templates {
		if shapeEqual(got, tmpl) {
			return true
		}
	}
	return false
}

func shapeEqual(a, b []types.OpTuple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
