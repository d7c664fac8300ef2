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

// Package drafts implements the draft/record metadata edit action: a
// records_metadata update (optionally paired with the bucket/PID rows
// created on first publish) normalized into a JSON merge patch against the
// draft's stored metadata document (spec §4.3, supplemented).
package drafts

import "github.com/slint/rdm-migrator-go/internal/transform"

// Payload is produced by DraftEditAction.
type Payload struct {
	DraftID   string
	JSONPatch transform.JSONPatch
	ParentID  string // the owning record id from a records_buckets companion row, set only on first publish
	BucketID  string // the linked bucket's id from the same records_buckets row, set only on first publish
	PIDValue  string // set only when a pidstore_pid row is present
}

// ActionName implements actions.Payload.
func (Payload) ActionName() string { return "draft-edit" }
