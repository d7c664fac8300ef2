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

// Package files implements the file-upload and file-delete action
// family (spec §4.2/§4.3), including the media-file (extra-formats)
// variants that are only reachable via a REST API auth token.
package files

import "github.com/slint/rdm-migrator-go/internal/types"

// FileRecord is the normalized target-side file-record-instance link.
// It carries no id fields: the loader mints the link's id and resolves
// the owning record via the StateStore.
type FileRecord struct {
	Key             string
	Created         string
	Updated         string
	VersionID       int64
	ObjectVersionID int64
}

// UploadPayload is produced by FileUploadAction and MediaFileUploadAction.
type UploadPayload struct {
	Action                string
	Bucket                types.RowImage
	ObjectVersion         types.RowImage
	ReplacedObjectVersion types.RowImage // nil unless this upload replaces a prior head
	FileInstance          types.RowImage
	FileRecord            FileRecord
	PIDValue              string // set only for MediaFileUploadAction, when the owning record is known
}

// ActionName implements actions.Payload.
func (p UploadPayload) ActionName() string { return p.Action }

// DeletePayload is produced by FileDeleteAction and MediaFileDeleteAction.
type DeletePayload struct {
	Action                    string
	Bucket                    types.RowImage
	DeletedObjectVersion      types.RowImage
	DeleteMarkerObjectVersion types.RowImage // nil unless this is a soft delete
}

// ActionName implements actions.Payload.
func (p DeletePayload) ActionName() string { return p.Action }
