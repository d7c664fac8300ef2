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

var checksumShape = []types.OpTuple{{Table: "files_files", Kind: types.OpUpdate}}

var checksumAllowedColumns = map[string]struct{}{
	"last_check":    {},
	"last_check_at": {},
	"updated":       {},
}

// ChecksumAction is FileChecksumAction: a background fixity check that
// only touched checksum bookkeeping columns.
type ChecksumAction struct{}

// Name implements actions.Action.
func (ChecksumAction) Name() string { return "file-checksum" }

// Matches implements actions.Action.
func (ChecksumAction) Matches(tx *types.Tx) bool {
	if !actions.ShapeEquals(tx.OpsTuples(), checksumShape) {
		return false
	}
	op, ok := soleOp(tx, "files_files")
	if !ok {
		return false
	}
	for col := range op.ChangedColumns() {
		if col == "id" {
			continue
		}
		if _, ok := checksumAllowedColumns[col]; !ok {
			return false
		}
	}
	return true
}

// Transform implements actions.Action.
func (ChecksumAction) Transform(*types.Tx) (actions.Payload, error) {
	return Payload{Action: "file-checksum"}, nil
}

// soleOp returns the single Operation against table, assuming the caller
// has already confirmed tx's shape contains exactly one.
func soleOp(tx *types.Tx, table string) (types.Operation, bool) {
	for _, op := range tx.Operations {
		if op.SourceTable == table {
			return op, true
		}
	}
	return types.Operation{}, false
}
