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

func TestChecksumActionMatches(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_files",
			types.RowImage{"id": 1, "last_check": "ok", "last_check_at": "t0", "updated": "t0"},
			types.RowImage{"id": 1, "last_check": "ok", "last_check_at": "t1", "updated": "t1"},
		),
	}}
	require.True(t, ChecksumAction{}.Matches(tx))
}

func TestChecksumActionRejectsOtherColumns(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_files",
			types.RowImage{"id": 1, "uri": "a"},
			types.RowImage{"id": 1, "uri": "b"},
		),
	}}
	require.False(t, ChecksumAction{}.Matches(tx))
}

func TestSessionActionAllowsOptionalUserUpdate(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("accounts_user",
			types.RowImage{"id": 1, "active": true, "last_login_at": "t0"},
			types.RowImage{"id": 1, "active": true, "last_login_at": "t1"},
		),
		ins("accounts_user_session_activity", types.RowImage{"id": 9, "user_id": 1}),
	}}
	require.True(t, SessionAction{}.Matches(tx))
}

func TestSessionActionRejectsDeactivation(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("accounts_user",
			types.RowImage{"id": 1, "active": true},
			types.RowImage{"id": 1, "active": false},
		),
		ins("accounts_user_session_activity", types.RowImage{"id": 9, "user_id": 1}),
	}}
	require.False(t, SessionAction{}.Matches(tx))
}

func TestSessionActionRequiresAtLeastOneSessionOp(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("accounts_user",
			types.RowImage{"id": 1, "active": true, "last_login_at": "t0"},
			types.RowImage{"id": 1, "active": true, "last_login_at": "t1"},
		),
	}}
	require.False(t, SessionAction{}.Matches(tx))
}

func TestSyncActionAllowsMultipleRepoUpdates(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("oauthclient_remoteaccount", types.RowImage{"id": 1}, types.RowImage{"id": 1, "extra_data": "a"}),
		upd("github_repositories", types.RowImage{"id": 1}, types.RowImage{"id": 1, "name": "x"}),
		upd("github_repositories", types.RowImage{"id": 2}, types.RowImage{"id": 2, "name": "y"}),
	}}
	require.True(t, SyncAction{}.Matches(tx))
}

func TestSyncActionRequiresExactlyOneRemoteAccountUpdate(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("github_repositories", types.RowImage{"id": 1}, types.RowImage{"id": 1, "name": "x"}),
	}}
	require.False(t, SyncAction{}.Matches(tx))
}

func TestPingActionExactColumnSet(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("github_repositories",
			types.RowImage{"id": 1, "ping": "t0", "updated": "t0"},
			types.RowImage{"id": 1, "ping": "t1", "updated": "t1"},
		),
	}}
	require.True(t, PingAction{}.Matches(tx))
}

func TestPingActionRejectsExtraColumn(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("github_repositories",
			types.RowImage{"id": 1, "ping": "t0", "updated": "t0", "name": "x"},
			types.RowImage{"id": 1, "ping": "t1", "updated": "t1", "name": "y"},
		),
	}}
	require.False(t, PingAction{}.Matches(tx))
}

func TestReloginActionShape(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("accounts_user", types.RowImage{"id": 1}, types.RowImage{"id": 1, "last_login_at": "t1"}),
		upd("oauthclient_remotetoken", types.RowImage{"id": 2}, types.RowImage{"id": 2, "access_token": "y"}),
	}}
	require.True(t, ReloginAction{}.Matches(tx))
}

func TestDataciteActionRejectsFirstPublishWithRecidPID(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("pidstore_pid",
			types.RowImage{"pid_type": "doi", "pid_value": "10.5281/zenodo.1", "status": "N"},
			types.RowImage{"pid_type": "doi", "pid_value": "10.5281/zenodo.1", "status": "R"},
		),
		upd("pidstore_pid",
			types.RowImage{"pid_type": "recid", "pid_value": "1", "status": "N"},
			types.RowImage{"pid_type": "recid", "pid_value": "1", "status": "R"},
		),
	}}
	require.False(t, DataciteAction{}.Matches(tx), "recid pid must not satisfy the doi/prefix/registered predicate")
}

func TestDataciteActionNewVersion(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("pidstore_pid",
			types.RowImage{"pid_type": "doi", "pid_value": "10.5281/zenodo.2", "status": "N"},
			types.RowImage{"pid_type": "doi", "pid_value": "10.5281/zenodo.2", "status": "R"},
		),
	}}
	require.True(t, DataciteAction{}.Matches(tx))
}

func TestDataciteActionRejectsNonDataciteDOI(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("pidstore_pid",
			types.RowImage{"pid_type": "doi", "pid_value": "10.1234/other.1", "status": "N"},
			types.RowImage{"pid_type": "doi", "pid_value": "10.1234/other.1", "status": "R"},
		),
	}}
	require.False(t, DataciteAction{}.Matches(tx))
}

func TestDataciteActionReturnsExplicitBoolOnShapeMismatch(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		ins("files_bucket", types.RowImage{"id": 1}),
	}}
	matched := DataciteAction{}.Matches(tx)
	require.False(t, matched)
}

func TestBucketNoopActionShape(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_bucket", types.RowImage{"id": 1, "size": 10}, types.RowImage{"id": 1, "size": 20}),
	}}
	require.True(t, BucketNoopAction{}.Matches(tx))
}

func TestBucketNoopActionRejectsAccompanyingObjectChange(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("files_bucket", types.RowImage{"id": 1, "size": 10}, types.RowImage{"id": 1, "size": 20}),
		ins("files_object", types.RowImage{"id": 1, "key": "a"}),
	}}
	require.False(t, BucketNoopAction{}.Matches(tx))
}

func TestMultiRecordNoopActionRequiresMoreThanTwoRecords(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata", types.RowImage{"id": 1}, types.RowImage{"id": 1, "json": "a"}),
		upd("records_metadata", types.RowImage{"id": 2}, types.RowImage{"id": 2, "json": "b"}),
		upd("records_metadata", types.RowImage{"id": 3}, types.RowImage{"id": 3, "json": "c"}),
	}}
	require.True(t, MultiRecordNoopAction{}.Matches(tx))
}

func TestMultiRecordNoopActionRejectsTwoRecords(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata", types.RowImage{"id": 1}, types.RowImage{"id": 1, "json": "a"}),
		upd("records_metadata", types.RowImage{"id": 2}, types.RowImage{"id": 2, "json": "b"}),
	}}
	require.False(t, MultiRecordNoopAction{}.Matches(tx))
}

func TestMultiRecordNoopActionRejectsOtherTableTouch(t *testing.T) {
	tx := &types.Tx{Operations: []types.Operation{
		upd("records_metadata", types.RowImage{"id": 1}, types.RowImage{"id": 1, "json": "a"}),
		upd("records_metadata", types.RowImage{"id": 2}, types.RowImage{"id": 2, "json": "b"}),
		upd("records_metadata", types.RowImage{"id": 3}, types.RowImage{"id": 3, "json": "c"}),
		ins("files_bucket", types.RowImage{"id": 1}),
	}}
	require.False(t, MultiRecordNoopAction{}.Matches(tx))
}
