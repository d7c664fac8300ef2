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

var hardDeleteShape = []types.OpTuple{
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpDelete},
}

var softDeleteShape = []types.OpTuple{
	{Table: "files_bucket", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpUpdate},
	{Table: "files_object", Kind: types.OpInsert}, // delete marker
}

// DeleteAction is FileDeleteAction.
type DeleteAction struct{}

// Name implements actions.Action.
func (DeleteAction) Name() string { return "file-delete" }

// Matches implements actions.Action.
func (DeleteAction) Matches(tx *types.Tx) bool {
	ops := tx.OpsTuples(types.WithExclude("oauth2server_token"))
	if !actions.ShapeEquals(ops, hardDeleteShape, softDeleteShape) {
		return false
	}
	_, ov, ok := tx.OpsBy("files_object",
		types.WithOpKinds(types.OpUpdate, types.OpDelete),
		types.WithFilterUnchanged(false),
	).Pop()
	if !ok {
		return false
	}
	return ov.String("key") != extraFormatMIME
}

// Transform implements actions.Action.
func (DeleteAction) Transform(tx *types.Tx) (actions.Payload, error) {
	dv, err := buildDelete(tx)
	if err != nil {
		return nil, err
	}
	dv.Action = "file-delete"
	return dv, nil
}

func buildDelete(tx *types.Tx) (DeletePayload, error) {
	_, bucket, ok := tx.OpsBy("files_bucket").Pop()
	if !ok {
		return DeletePayload{}, errors.New("file-delete: missing files_bucket row")
	}

	objectVersions := tx.OpsBy("files_object",
		types.WithOpKinds(types.OpInsert, types.OpUpdate, types.OpDelete),
		types.WithGroupBy("bucket_id", "key", "version_id"),
	)

	var marker, deleted types.RowImage
	if objectVersions.Len() == 2 {
		for _, key := range objectVersions.Keys() {
			ov, _ := objectVersions.Get(key)
			if ov.IsNull("file_id") {
				marker = ov
			} else {
				deleted = ov
			}
		}
		if marker == nil {
			return DeletePayload{}, errors.New("file-delete: expected a delete-marker object version")
		}
	} else {
		_, deleted, _ = objectVersions.Pop()
	}

	return DeletePayload{
		Bucket:                    bucket,
		DeletedObjectVersion:      deleted,
		DeleteMarkerObjectVersion: marker,
	}, nil
}
