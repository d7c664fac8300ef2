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

package files

import (
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

func del(table string, before types.RowImage) types.Operation {
	return types.Operation{SourceSchema: "public", SourceTable: table, Kind: types.OpDelete, Before: before}
}

func addFileTx(key string) *types.Tx {
	return &types.Tx{Operations: []types.Operation{
		upd("files_bucket", types.RowImage{"id": "b1", "size": 0}, types.RowImage{"id": "b1", "size": 10}),
		ins("files_object", types.RowImage{"bucket_id": "b1", "key": key, "version_id": 1, "file_id": "f1", "is_head": true}),
		ins("files_files", types.RowImage{"id": "f1", "uri": "/x", "size": 10, "checksum": "md5:x"}),
		upd("files_object",
			types.RowImage{"bucket_id": "b1", "key": key, "version_id": 1, "file_id": "f1", "is_head": true, "created": "t0", "updated": "t0"},
			types.RowImage{"bucket_id": "b1", "key": key, "version_id": 1, "file_id": "f1", "is_head": true, "created": "t0", "updated": "t1"},
		),
		upd("files_files", types.RowImage{"id": "f1"}, types.RowImage{"id": "f1", "readable": false}),
		upd("files_bucket", types.RowImage{"id": "b1", "size": 10}, types.RowImage{"id": "b1", "size": 10, "quota_left": 90}),
	}}
}

func TestUploadActionMatchesPlainAdd(t *testing.T) {
	tx := addFileTx("data.csv")
	require.True(t, UploadAction{}.Matches(tx))
	require.False(t, MediaUploadAction{}.Matches(tx))

	payload, err := UploadAction{}.Transform(tx)
	require.NoError(t, err)
	up, ok := payload.(UploadPayload)
	require.True(t, ok)
	require.Equal(t, "file-upload", up.ActionName())
	require.Equal(t, "data.csv", up.FileRecord.Key)
	require.Nil(t, up.ReplacedObjectVersion)
}

func TestMediaUploadActionMatchesExtraFormat(t *testing.T) {
	tx := addFileTx(extraFormatMIME)
	tx.Operations = append([]types.Operation{
		upd("oauth2server_token", types.RowImage{"id": 1, "access_token": "a"}, types.RowImage{"id": 1, "access_token": "a", "used": true}),
	}, tx.Operations...)

	require.False(t, UploadAction{}.Matches(tx))
	require.True(t, MediaUploadAction{}.Matches(tx))

	payload, err := MediaUploadAction{}.Transform(tx)
	require.NoError(t, err)
	up := payload.(UploadPayload)
	require.Equal(t, "media-file-upload", up.ActionName())
}

func TestDeleteActionHardDelete(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_bucket", types.RowImage{"id": "b1", "size": 10}, types.RowImage{"id": "b1", "size": 0}),
		del("files_object", types.RowImage{"bucket_id": "b1", "key": "data.csv", "version_id": 1, "file_id": "f1"}),
	}}
	require.True(t, DeleteAction{}.Matches(tx))
	payload, err := DeleteAction{}.Transform(tx)
	require.NoError(t, err)
	dp := payload.(DeletePayload)
	require.Equal(t, "file-delete", dp.ActionName())
	require.Nil(t, dp.DeleteMarkerObjectVersion)
}

func TestDeleteActionSoftDeleteWithMarker(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_bucket", types.RowImage{"id": "b1", "size": 10}, types.RowImage{"id": "b1", "size": 9}),
		upd("files_object",
			types.RowImage{"bucket_id": "b1", "key": "data.csv", "version_id": 1, "file_id": "f1", "is_head": true},
			types.RowImage{"bucket_id": "b1", "key": "data.csv", "version_id": 1, "file_id": "f1", "is_head": false},
		),
		ins("files_object", types.RowImage{"bucket_id": "b1", "key": "data.csv", "version_id": 2, "file_id": nil, "is_head": true}),
	}}
	require.True(t, DeleteAction{}.Matches(tx))
	payload, err := DeleteAction{}.Transform(tx)
	require.NoError(t, err)
	dp := payload.(DeletePayload)
	require.NotNil(t, dp.DeleteMarkerObjectVersion)
}

func TestMediaDeleteActionRequiresExtraFormatKey(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("oauth2server_token", types.RowImage{"id": 1}, types.RowImage{"id": 1, "used": true}),
		upd("files_bucket", types.RowImage{"id": "b1", "size": 10}, types.RowImage{"id": "b1", "size": 0}),
		del("files_object", types.RowImage{"bucket_id": "b1", "key": "data.csv", "version_id": 1, "file_id": "f1"}),
	}}
	require.False(t, MediaDeleteAction{}.Matches(tx), "plain key must not satisfy the media fingerprint")

	tx.Operations[2] = del("files_object", types.RowImage{"bucket_id": "b1", "key": extraFormatMIME, "version_id": 1, "file_id": "f1"})
	require.True(t, MediaDeleteAction{}.Matches(tx))
}
