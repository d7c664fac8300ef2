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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/types"
)

func upd(table string, before, after types.RowImage) types.Operation {
	return types.Operation{SourceSchema: "public", SourceTable: table, Kind: types.OpUpdate, Before: before, After: after}
}

func ins(table string, after types.RowImage) types.Operation {
	return types.Operation{SourceSchema: "public", SourceTable: table, Kind: types.OpInsert, After: after}
}

func TestDraftEditActionPlainMetadataChange(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata",
			types.RowImage{"id": "d1", "json": json.RawMessage(`{"title":"old"}`)},
			types.RowImage{"id": "d1", "json": json.RawMessage(`{"title":"new"}`)},
		),
	}}
	require.True(t, DraftEditAction{}.Matches(tx))

	payload, err := DraftEditAction{}.Transform(tx)
	require.NoError(t, err)
	p := payload.(Payload)
	require.Equal(t, "d1", p.DraftID)
	require.False(t, p.JSONPatch.IsEmpty())
	require.Empty(t, p.ParentID)
}

func TestDraftEditActionFirstPublishCompanions(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata",
			types.RowImage{"id": "d1", "json": json.RawMessage(`{"title":"old"}`)},
			types.RowImage{"id": "d1", "json": json.RawMessage(`{"title":"old","version":2}`)},
		),
		ins("records_buckets", types.RowImage{"record_id": "d1", "bucket_id": "b1"}),
		upd("pidstore_pid",
			types.RowImage{"pid_type": "recid", "pid_value": "123", "status": "N"},
			types.RowImage{"pid_type": "recid", "pid_value": "123", "status": "R"},
		),
	}}
	require.True(t, DraftEditAction{}.Matches(tx))

	payload, err := DraftEditAction{}.Transform(tx)
	require.NoError(t, err)
	p := payload.(Payload)
	require.Equal(t, "d1", p.ParentID)
	require.Equal(t, "b1", p.BucketID)
	require.Equal(t, "123", p.PIDValue)
}

func TestDraftEditActionRejectsUnrelatedTable(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata",
			types.RowImage{"id": "d1", "json": json.RawMessage(`{}`)},
			types.RowImage{"id": "d1", "json": json.RawMessage(`{"title":"new"}`)},
		),
		ins("files_bucket", types.RowImage{"id": "b1"}),
	}}
	require.False(t, DraftEditAction{}.Matches(tx))
}

func TestDraftEditActionRejectsMultipleRecords(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata", types.RowImage{"id": "d1", "json": json.RawMessage(`{}`)}, types.RowImage{"id": "d1", "json": json.RawMessage(`{"a":1}`)}),
		upd("records_metadata", types.RowImage{"id": "d2", "json": json.RawMessage(`{}`)}, types.RowImage{"id": "d2", "json": json.RawMessage(`{"a":1}`)}),
	}}
	require.False(t, DraftEditAction{}.Matches(tx))
}
