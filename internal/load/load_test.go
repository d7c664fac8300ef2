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

package load_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/load"
	"github.com/slint/rdm-migrator-go/internal/load/checkpoint"
	"github.com/slint/rdm-migrator-go/internal/load/state"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

var errBoom = errors.New("commit boom")

type fakePayload struct{}

func (fakePayload) ActionName() string { return "fake" }

type fakeAction struct{}

func (fakeAction) Name() string                                { return "fake" }
func (fakeAction) Matches(*types.Tx) bool                      { return true }
func (fakeAction) Transform(*types.Tx) (actions.Payload, error) { return fakePayload{}, nil }

// noopLoader applies nothing: it exercises the commit-ordering path in
// Applier.Run without needing a real table to write to.
type noopLoader struct{}

func (noopLoader) Run(context.Context, target.Tx, types.StateScope, actions.Payload) error {
	return nil
}

func newApplier(t *testing.T) (*load.Applier, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	pool := &target.Pool{DB: db}

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	ckpt, err := checkpoint.Open(context.Background(), pool, "rdm_migrator_checkpoint", "test")
	require.NoError(t, err)

	st, err := state.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })

	return load.New(pool, st, ckpt), mock
}

func applyTx() *types.Tx {
	return &types.Tx{XID: 1, CommitLSN: 100}
}

func TestApplierCommitsTargetBeforeState(t *testing.T) {
	applier, mock := newApplier(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPSERT INTO").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reg := actions.Registration{Action: fakeAction{}, Loader: noopLoader{}}
	err := applier.Run(context.Background(), applyTx(), reg, fakePayload{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestApplierReportsTargetFaultWhenTargetCommitFails covers the failed
// dbTx.Commit path: the failure surfaces as a TargetTransactionFault.
// noopLoader writes no state, so this test does not observe whether
// state.Commit runs.
func TestApplierReportsTargetFaultWhenTargetCommitFails(t *testing.T) {
	applier, mock := newApplier(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPSERT INTO").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errBoom)

	reg := actions.Registration{Action: fakeAction{}, Loader: noopLoader{}}
	err := applier.Run(context.Background(), applyTx(), reg, fakePayload{})
	require.Error(t, err)

	f, ok := faults.As(err)
	require.True(t, ok)
	require.Equal(t, faults.KindTargetTransactionFault, f.Kind())
	require.NoError(t, mock.ExpectationsWereMet())
}
