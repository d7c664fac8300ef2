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

// Package transform holds the shared content-projection helpers used by
// ActionTransform implementations (spec §4.3) that do more than pick
// columns off a RowImage.
package transform

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pkg/errors"
)

// JSONPatch is a normalized RFC 7396 merge-patch document describing how
// a JSON column changed between a Before and After row image. It is the
// Go analogue of the reference implementation's JSONTransformMixin,
// which hands callers a ready-to-apply diff rather than two full
// documents to reconcile themselves.
type JSONPatch json.RawMessage

// DiffJSON computes the merge patch that turns before into after.
// before and after may each be nil, representing an absent column (e.g.
// an INSERT with no prior row).
func DiffJSON(before, after []byte) (JSONPatch, error) {
	if before == nil {
		before = []byte("null")
	}
	if after == nil {
		after = []byte("null")
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, errors.Wrap(err, "create merge patch")
	}
	return JSONPatch(patch), nil
}

// Apply reconstructs the after document by applying p to original.
func (p JSONPatch) Apply(original []byte) ([]byte, error) {
	out, err := jsonpatch.MergePatch(original, []byte(p))
	if err != nil {
		return nil, errors.Wrap(err, "apply merge patch")
	}
	return out, nil
}

// IsEmpty reports whether the patch carries no changes ("{}").
func (p JSONPatch) IsEmpty() bool {
	return len(p) == 0 || string(p) == "{}" || string(p) == "null"
}
