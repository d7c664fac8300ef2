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

package checkpoint

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/types"
)

// fakeTx is a minimal target.Tx recording the exact statement/args pair
// Advance issues, so the guarded-upsert SQL shape can be asserted
// without a live database connection.
type fakeTx struct {
	query string
	args  []any
}

func (f *fakeTx) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.query = query
	f.args = args
	return nil, nil
}
func (f *fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }
func (f *fakeTx) Commit() error                                                  { return nil }
func (f *fakeTx) Rollback() error                                                { return nil }

func newTestStore(table, pipeline string) *Store {
	s := &Store{table: table, pipeline: pipeline}
	s.sql.advance = "UPSERT INTO " + table + " ... WHERE NOT EXISTS (...)"
	s.sql.load = "SELECT ... FROM " + table + " WHERE pipeline = $1"
	return s
}

func TestAdvancePassesPipelineScopedArgs(t *testing.T) {
	s := newTestStore("_rdm_migrator_checkpoint", "zenodo")
	tx := &fakeTx{}

	err := s.Advance(context.Background(), tx, types.Checkpoint{
		LastAppliedCommitLSN: 42,
		OldestActiveXID:      7,
	})
	require.NoError(t, err)
	require.Equal(t, []any{"zenodo", int64(42), int64(7)}, tx.args)
}

func TestAdvanceWrapsExecFailure(t *testing.T) {
	s := newTestStore("_rdm_migrator_checkpoint", "zenodo")
	tx := &failingTx{}

	err := s.Advance(context.Background(), tx, types.Checkpoint{})
	require.Error(t, err)
}

type failingTx struct{ fakeTx }

func (f *failingTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, sql.ErrConnDone
}
