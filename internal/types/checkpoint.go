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

// Checkpoint is the pair (last_applied_commit_lsn, oldest_active_xid)
// described in spec §3. It is updated atomically with the target
// transaction that applied the corresponding Tx.
type Checkpoint struct {
	LastAppliedCommitLSN int64
	OldestActiveXID      int64
}
