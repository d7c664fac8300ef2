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

// Package checkpoint persists the (last_applied_commit_lsn,
// oldest_active_xid) pair a resumed run needs (spec §3, §6). It follows
// the teacher's resolver metadata-table pattern
// (internal/source/cdc/resolver.go's Mark/Record: a dedicated table,
// conditionally advanced so a stale write can never move the checkpoint
// backwards) rather than the staging-timestamp scheme it was lifted
// from.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
	"github.com/slint/rdm-migrator-go/internal/util/ident"
)

// schemaTemplate creates the single-row-per-pipeline metadata table.
// pipeline lets multiple independent migrations share a target database
// without colliding on progress.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
  pipeline                STRING NOT NULL PRIMARY KEY,
  last_applied_commit_lsn INT8   NOT NULL,
  oldest_active_xid       INT8   NOT NULL,
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const advanceTemplate = `
UPSERT INTO %[1]s (pipeline, last_applied_commit_lsn, oldest_active_xid, updated_at)
SELECT $1, $2, $3, now()
WHERE NOT EXISTS (
  SELECT 1 FROM %[1]s WHERE pipeline = $1 AND last_applied_commit_lsn >= $2
)`

const loadTemplate = `
SELECT last_applied_commit_lsn, oldest_active_xid FROM %[1]s WHERE pipeline = $1
`

// Store persists a single pipeline's Checkpoint to a target-side table.
type Store struct {
	pool     *target.Pool
	table    string
	pipeline string

	sql struct {
		advance string
		load    string
	}
}

// Open ensures the metadata table exists and returns a Store scoped to
// pipeline (so multiple migrations can share one target database). table
// is parsed through ident.Table so a "schema.table" or bare "table"
// flag value is normalized the same way everywhere this table name is
// rendered into SQL.
func Open(ctx context.Context, pool *target.Pool, table, pipeline string) (*Store, error) {
	tbl, err := ident.ParseTable(table)
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint table name")
	}
	qualified := tbl.String()

	if _, err := pool.ExecContext(ctx, fmt.Sprintf(schemaTemplate, qualified)); err != nil {
		return nil, errors.Wrap(err, "create checkpoint table")
	}
	s := &Store{pool: pool, table: qualified, pipeline: pipeline}
	s.sql.advance = fmt.Sprintf(advanceTemplate, qualified)
	s.sql.load = fmt.Sprintf(loadTemplate, qualified)
	return s, nil
}

// Load returns the pipeline's last-persisted Checkpoint, or the zero
// value if none has been recorded yet (a cold start).
func (s *Store) Load(ctx context.Context) (types.Checkpoint, error) {
	var cp types.Checkpoint
	err := s.pool.QueryRowContext(ctx, s.sql.load, s.pipeline).Scan(&cp.LastAppliedCommitLSN, &cp.OldestActiveXID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Checkpoint{}, nil
	}
	if err != nil {
		return types.Checkpoint{}, errors.Wrap(err, "load checkpoint")
	}
	return cp, nil
}

// Advance conditionally writes cp within tx, the same target transaction
// that applied the Tx that produced it: a write only takes effect if cp
// is not behind the already-persisted checkpoint, so a retried or
// out-of-order Advance can never move progress backwards.
func (s *Store) Advance(ctx context.Context, tx target.Tx, cp types.Checkpoint) error {
	_, err := tx.ExecContext(ctx, s.sql.advance, s.pipeline, cp.LastAppliedCommitLSN, cp.OldestActiveXID)
	return errors.Wrap(err, "advance checkpoint")
}
