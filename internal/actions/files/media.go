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
	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// Extra formats (media files) are only reachable via the REST API using
// an auth token, so the presence of an oauth2server_token update is part
// of every media-file shape's fingerprint (spec §4.2).

var mediaAddFileShape = []types.OpTuple{
	{Table: "oauth2server_token", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpInsert},
	{Table: "files_files", Kind: types.OpInsert},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_files", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
}

var mediaReplaceFileShape = []types.OpTuple{
	{Table: "oauth2server_token", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpInsert},
	{Table: "files_files", Kind: types.OpInsert},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_files", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
}

// mediaCreateBucketShape additionally covers the extra-formats bucket's
// own creation, the first time a record receives a media file.
var mediaCreateBucketShape = []types.OpTuple{
	{Table: "oauth2server_token", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpInsert},
	{Table: "records_metadata", Kind: types.OpUpdate},
	{Table: "records_buckets", Kind: types.OpInsert},
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpInsert},
	{Table: "files_files", Kind: types.OpInsert},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_files", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
}

// MediaUploadAction is MediaFileUploadAction (spec §8 S6).
type MediaUploadAction struct{}

// Name implements actions.Action.
func (MediaUploadAction) Name() string { return "media-file-upload" }

// Matches implements actions.Action.
func (MediaUploadAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples()
	if actions.ShapeEquals(ops, mediaCreateBucketShape) {
		return true
	}
	if !actions.ShapeEquals(ops, mediaAddFileShape, mediaReplaceFileShape) {
		return false
	}
	_, ov, ok := tx.OpsBy("files_object", types.WithFilterUnchanged(false)).Pop()
	if !ok {
		return false
	}
	return ov.String("key") == extraFormatMIME
}

// Transform implements actions.Action.
func (MediaUploadAction) Transform(tx *types.Tx) (actions.Payload, error) {
	var pidValue string
	if records := tx.OpsBy("records_metadata"); records.Len() > 0 {
		_, rec, _ := records.Pop()
		var doc struct {
			ID string `json:"id"`
		}
		if err := rec.JSON("json", &doc); err == nil {
			pidValue = doc.ID
		}
	}

	uv, err := buildUpload(tx, pidValue)
	if err != nil {
		return nil, err
	}
	uv.Action = "media-file-upload"
	return uv, nil
}

// MediaDeleteAction is MediaFileDeleteAction.
type MediaDeleteAction struct{}

// Name implements actions.Action.
func (MediaDeleteAction) Name() string { return "media-file-delete" }

// Matches implements actions.Action.
func (MediaDeleteAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples()
	mediaHardDeleteShape := prepend(types.OpTuple{Table: "oauth2server_token", Kind: types.OpUpdate}, hardDeleteShape)
	mediaSoftDeleteShape := prepend(types.OpTuple{Table: "oauth2server_token", Kind: types.OpUpdate}, softDeleteShape)
	if !actions.ShapeEquals(ops, mediaHardDeleteShape, mediaSoftDeleteShape) {
		return false
	}
	_, ov, ok := tx.OpsBy("files_object",
		types.WithOpKinds(types.OpUpdate, types.OpDelete),
		types.WithFilterUnchanged(false),
	).Pop()
	if !ok {
		return false
	}
	return ov.String("key") == extraFormatMIME
}

// Transform implements actions.Action.
func (MediaDeleteAction) Transform(tx *types.Tx) (actions.Payload, error) {
	dv, err := buildDelete(tx)
	if err != nil {
		return nil, err
	}
	dv.Action = "media-file-delete"
	return dv, nil
}

func prepend(head types.OpTuple, rest []types.OpTuple) []types.OpTuple {
	out := make([]types.OpTuple, 0, len(rest)+1)
	out = append(out, head)
	out = append(out, rest...)
	return out
}
