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

// Package registry wires the concrete action families into the fixed,
// ordered registration list the router dispatches against (spec §4.2).
// It is kept separate from package actions itself so that the action
// subpackages (files, drafts, ignored) can depend on actions.Action/
// actions.Payload without creating an import cycle back into their own
// registrations.
package registry

import (
	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/actions/drafts"
	"github.com/slint/rdm-migrator-go/internal/actions/files"
	"github.com/slint/rdm-migrator-go/internal/actions/ignored"
	"github.com/slint/rdm-migrator-go/internal/target"
)

// Default returns the fixed, ordered action set (spec §4.2): the most
// specific fingerprints first (media-file variants before their generic
// counterparts, since a media upload also satisfies the generic shape
// once the oauth2server_token row is excluded), and the inert "ignored"
// family last. product selects the dialect-specific IDGenerator the
// file loaders mint new file-instance ids with.
func Default(product target.Product) []actions.Registration {
	upload := files.NewUploadLoader(product)
	return []actions.Registration{
		{Action: files.MediaUploadAction{}, Loader: upload},
		{Action: files.MediaDeleteAction{}, Loader: files.DeleteLoader{}},
		{Action: files.UploadAction{}, Loader: upload},
		{Action: files.DeleteAction{}, Loader: files.DeleteLoader{}},
		{Action: drafts.DraftEditAction{}, Loader: drafts.Loader{}},
		{Action: ignored.SyncAction{}, Loader: ignored.Loader{}},
		{Action: ignored.PingAction{}, Loader: ignored.Loader{}},
		{Action: ignored.ChecksumAction{}, Loader: ignored.Loader{}},
		{Action: ignored.SessionAction{}, Loader: ignored.Loader{}},
		{Action: ignored.ReloginAction{}, Loader: ignored.Loader{}},
		{Action: ignored.DataciteAction{}, Loader: ignored.Loader{}},
		{Action: ignored.MultiRecordNoopAction{}, Loader: ignored.Loader{}},
		{Action: ignored.BucketNoopAction{}, Loader: ignored.Loader{}},
	}
}
