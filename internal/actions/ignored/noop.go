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

// bucketNoopShape is a proper (table, kind) tuple list. The reference
// source compares as_ops_tuples() against a bare ["files_bucket", UPDATE]
// list, which as written could never equal a list of 2-tuples; this is
// the shape it evidently intended (Design Note).
var bucketNoopShape = []types.OpTuple{{Table: "files_bucket", Kind: types.OpUpdate}}

// BucketNoopAction is BucketNoop: a lone bucket row touched without any
// accompanying object change, observed from unrelated bucket bookkeeping.
type BucketNoopAction struct{}

// Name implements actions.Action.
func (BucketNoopAction) Name() string { return "bucket-noop" }

// Matches implements actions.Action.
func (BucketNoopAction) Matches(tx *types.Tx) bool {
	return actions.ShapeEquals(tx.OpsTuples(), bucketNoopShape)
}

// Transform implements actions.Action.
func (BucketNoopAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "bucket-noop"}, nil
}

// MultiRecordNoopAction is MultiRecordNoOpUpdates: a batch job (e.g. an
// OAI set recompute) touching several unrelated records' metadata with
// no other side effects.
type MultiRecordNoopAction struct{}

// Name implements actions.Action.
func (MultiRecordNoopAction) Name() string { return "multi-record-noop-updates" }

// Matches implements actions.Action.
func (MultiRecordNoopAction) Matches(tx *types.Tx) bool {
	recordOps := tx.OpsTuples(types.WithInclude("records_metadata"), types.WithKinds(types.OpUpdate))
	if len(recordOps) != len(tx.Operations) {
		return false
	}
	records := tx.OpsBy("records_metadata", types.WithGroupBy("id"))
	// A single transaction touches at most one draft and one record; more
	// than two distinct records_metadata rows means an unrelated batch job.
	return records.Len() > 2
}

// Transform implements actions.Action.
func (MultiRecordNoopAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "multi-record-noop-updates"}, nil
}
