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

package drafts

import (
	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/transform"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// DraftEditAction is a records_metadata content edit: a user saving a
// draft, optionally bundled with the records_buckets/pidstore_pid rows
// created the first time that draft is published.
type DraftEditAction struct{}

// Name implements actions.Action.
func (DraftEditAction) Name() string { return "draft-edit" }

// Matches implements actions.Action.
func (DraftEditAction) Matches(tx *types.Tx) bool {
	recordOps := tx.OpsTuples(types.WithInclude("records_metadata"), types.WithKinds(types.OpUpdate))
	if len(recordOps) != 1 {
		return false
	}
	// Everything else in the transaction must be the optional
	// first-publish companions; anything beyond that belongs to a more
	// specific action (files) that must have already been tried.
	allowed := tx.OpsTuples(types.WithInclude("records_metadata", "records_buckets", "pidstore_pid"))
	return len(allowed) == len(tx.Operations)
}

// Transform implements actions.Action.
func (DraftEditAction) Transform(tx *types.Tx) (actions.Payload, error) {
	op, ok := soleOp(tx, "records_metadata")
	if !ok {
		return nil, errors.New("draft-edit: missing records_metadata row")
	}

	beforeJSON, err := op.Before.RawJSON("json")
	if err != nil {
		return nil, errors.Wrap(err, "draft-edit: decode before image")
	}
	afterJSON, err := op.After.RawJSON("json")
	if err != nil {
		return nil, errors.Wrap(err, "draft-edit: decode after image")
	}
	patch, err := transform.DiffJSON(beforeJSON, afterJSON)
	if err != nil {
		return nil, errors.Wrap(err, "draft-edit: diff metadata json")
	}

	payload := Payload{
		DraftID:   op.After.String("id"),
		JSONPatch: patch,
	}

	if _, bucket, ok := tx.OpsBy("records_buckets").Pop(); ok {
		payload.ParentID = bucket.String("record_id")
		payload.BucketID = bucket.String("bucket_id")
	}
	if _, pid, ok := tx.OpsBy("pidstore_pid").Pop(); ok {
		payload.PIDValue = pid.String("pid_value")
	}

	return payload, nil
}

func soleOp(tx *types.Tx, table string) (types.Operation, bool) {
	for _, op := range tx.Operations {
		if op.SourceTable == table {
			return op, true
		}
	}
	return types.Operation{}, false
}
