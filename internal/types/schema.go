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

package types

// TableSchema declares the columns a source table is expected to carry.
// Validation against it is advisory: UnknownColumns reports a column
// outside this set, and nothing rejects it, since the migrator must
// tolerate source schemas that evolve independently of the action
// registry. The ingest path does not call UnknownColumns.
type TableSchema struct {
	Table   string
	Columns map[string]bool
}

// Schemas is the registry of known source tables, keyed by bare table
// name (without schema qualifier). It covers the tables touched by the
// bundled action set (SPEC_FULL §3).
var Schemas = map[string]TableSchema{
	"files_bucket":                    newSchema("files_bucket", "id", "created", "updated", "default_location", "default_storage_class", "size", "quota_size", "max_file_size", "locked", "deleted"),
	"files_object":                    newSchema("files_object", "version_id", "bucket_id", "key", "file_id", "_mimetype", "is_head", "created", "updated"),
	"files_files":                     newSchema("files_files", "id", "uri", "storage_class", "size", "checksum", "last_check_at", "last_check", "created", "updated"),
	"records_metadata":                newSchema("records_metadata", "id", "json", "created", "updated", "version_id"),
	"records_buckets":                 newSchema("records_buckets", "record_id", "bucket_id"),
	"pidstore_pid":                    newSchema("pidstore_pid", "id", "pid_type", "pid_value", "status", "object_type", "object_uuid", "created", "updated"),
	"pidstore_redirect":               newSchema("pidstore_redirect", "pid_id", "pid_value"),
	"pidrelations_pidrelation":        newSchema("pidrelations_pidrelation", "id", "parent_pid_id", "child_pid_id", "relation_type", "index"),
	"communities_community_record":    newSchema("communities_community_record", "id", "community_id", "record_id"),
	"accounts_user":                   newSchema("accounts_user", "id", "email", "active", "updated"),
	"accounts_user_session_activity":  newSchema("accounts_user_session_activity", "sid_s", "user_id", "ip", "created"),
	"oauthclient_remoteaccount":       newSchema("oauthclient_remoteaccount", "id", "user_id", "client_id", "extra_data"),
	"oauthclient_remotetoken":         newSchema("oauthclient_remotetoken", "id", "remote_account_id", "token_type", "access_token"),
	"oauth2server_token":              newSchema("oauth2server_token", "id", "client_id", "user_id", "token_type", "access_token", "refresh_token", "expires", "is_personal", "is_internal"),
	"github_repositories":             newSchema("github_repositories", "id", "github_id", "name", "ping", "updated"),
}

func newSchema(table string, cols ...string) TableSchema {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return TableSchema{Table: table, Columns: m}
}

// UnknownColumns returns the columns of row that are not declared in the
// table's schema, or nil if the table is unregistered (nothing to check
// against).
func UnknownColumns(table string, row RowImage) []string {
	schema, ok := Schemas[table]
	if !ok {
		return nil
	}
	var unknown []string
	for col := range row {
		if !schema.Columns[col] {
			unknown = append(unknown, col)
		}
	}
	return unknown
}
