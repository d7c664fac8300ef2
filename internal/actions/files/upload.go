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
	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// extraFormatMIME is the reserved files_object.key value that marks an
// "extra format" (media) upload/delete rather than the primary file.
const extraFormatMIME = "application/vnd.plazi.v1+xml"

var addFileShape = []types.OpTuple{
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpInsert},
	{Table: "files_files", Kind: types.OpInsert},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_files", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
}

var replaceFileShape = []types.OpTuple{
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpUpdate}, // old OV's is_head = false
	{Table: "files_object", Kind: types.OpInsert},
	{Table: "files_files", Kind: types.OpInsert},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_files", Kind: types.OpUpdate},
	{Table: "files_bucket", Kind: types.OpUpdate},
}

// UploadAction is FileUploadAction (spec §4.2 worked example, §8 S5).
type UploadAction struct{}

// Name implements actions.Action.
func (UploadAction) Name() string { return "file-upload" }

// Matches implements actions.Action.
func (UploadAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples(types.WithExclude("oauth2server_token"))
	if !actions.ShapeEquals(ops, addFileShape, replaceFileShape) {
		return false
	}
	// Disambiguate from the extra-format (media) variant.
	_, ov, ok := tx.OpsBy("files_object", types.WithFilterUnchanged(false)).Pop()
	if !ok {
		return false
	}
	return ov.String("key") != extraFormatMIME
}

// Transform implements actions.Action.
func (UploadAction) Transform(tx *types.Tx) (actions.Payload, error) {
	uv, err := buildUpload(tx, "")
	if err != nil {
		return nil, err
	}
	uv.Action = "file-upload"
	return uv, nil
}

// buildUpload is shared between UploadAction and MediaUploadAction: both
// project the same bucket/object-version/file-instance shape, differing
// only in how pidValue is resolved.
func buildUpload(tx *types.Tx, pidValue string) (UploadPayload, error) {
	_, bucket, ok := tx.OpsBy("files_bucket").Pop()
	if !ok {
		return UploadPayload{}, errors.New("file-upload: missing files_bucket row")
	}
	_, fileInstance, ok := tx.OpsBy("files_files").Pop()
	if !ok {
		return UploadPayload{}, errors.New("file-upload: missing files_files row")
	}

	objectVersions := tx.OpsBy("files_object", types.WithGroupBy("bucket_id", "key", "version_id"))
	var objectVersion, replaced types.RowImage
	for _, key := range objectVersions.Keys() {
		ov, _ := objectVersions.Get(key)
		if v, ok := ov.Get("is_head"); ok && v == false {
			replaced = ov
		} else {
			objectVersion = ov
		}
	}
	if objectVersions.Len() == 2 && replaced == nil {
		return UploadPayload{}, errors.New("file-upload: expected a replaced object version")
	}
	if objectVersion == nil {
		return UploadPayload{}, errors.New("file-upload: missing head object version")
	}

	return UploadPayload{
		Bucket:                bucket,
		ObjectVersion:         objectVersion,
		ReplacedObjectVersion: replaced,
		FileInstance:          fileInstance,
		FileRecord: FileRecord{
			Key:             objectVersion.String("key"),
			Created:         objectVersion.String("created"),
			Updated:         objectVersion.String("updated"),
			VersionID:       1,
			ObjectVersionID: mustInt64(objectVersion, "version_id"),
		},
		PIDValue: pidValue,
	}, nil
}

func mustInt64(row types.RowImage, col string) int64 {
	v, _ := row.Int64(col)
	return v
}
