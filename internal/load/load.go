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

// Package load implements the ActionLoader stage of spec §4.4: open a
// target transaction, run the matched action's Loader, persist the
// checkpoint, and commit — all as one atomic unit per Tx, mirroring the
// teacher's serialEvents OnBegin/OnData/OnCommit/OnRollback envelope
// (internal/source/logical/serial_events.go) generalized from a
// mutation-batch model to a Tx-per-action model.
package load

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/load/checkpoint"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// Applier opens one target transaction per Tx, runs the matched action's
// Loader inside it, advances the checkpoint, and commits. Any error
// before the target commit rolls the whole transaction back, leaving the
// checkpoint untouched so the Tx is retried (or surfaced) on the next
// pass; a state-scope commit failure after the target commit has
// already advanced the checkpoint and is reported as a checkpoint fault.
type Applier struct {
	pool  *target.Pool
	state types.StateStore
	ckpt  *checkpoint.Store
	log   *log.Entry
}

// New returns an Applier writing through pool, reading/writing domain
// state through state, and persisting progress through ckpt.
func New(pool *target.Pool, state types.StateStore, ckpt *checkpoint.Store) *Applier {
	return &Applier{
		pool:  pool,
		state: state,
		ckpt:  ckpt,
		log:   log.WithField("component", "load.Applier"),
	}
}

// Run applies tx's matched registration within a single target
// transaction and advances the checkpoint past tx.CommitLSN.
func (a *Applier) Run(ctx context.Context, tx *types.Tx, reg actions.Registration, payload actions.Payload) error {
	dbTx, err := a.pool.BeginTx(ctx, nil)
	if err != nil {
		return faults.TargetTransaction(errors.Wrap(err, "begin target transaction"), true)
	}

	state, err := a.state.Begin(ctx)
	if err != nil {
		_ = dbTx.Rollback()
		return faults.TargetTransaction(errors.Wrap(err, "begin state scope"), true)
	}

	if err := reg.Loader.Run(ctx, dbTx, state, payload); err != nil {
		_ = dbTx.Rollback()
		_ = state.Rollback()
		return a.classifyLoaderError(err)
	}

	if err := a.ckpt.Advance(ctx, dbTx, types.Checkpoint{
		LastAppliedCommitLSN: tx.CommitLSN,
		OldestActiveXID:      tx.XID,
	}); err != nil {
		_ = dbTx.Rollback()
		_ = state.Rollback()
		return faults.Checkpoint(errors.Wrap(err, "advance checkpoint"))
	}

	// dbTx must commit before state: state.Commit syncs to disk and can
	// never be undone, so it may only run once the target commit is
	// known to have succeeded. Committing in the other order would let a
	// failed dbTx.Commit leave durable StateStore writes for a Tx the
	// target never applied.
	if err := dbTx.Commit(); err != nil {
		_ = state.Rollback()
		return faults.TargetTransaction(errors.Wrap(err, "commit target transaction"), false)
	}
	if err := state.Commit(); err != nil {
		// The target transaction is already durably committed and
		// cannot be undone here; this is a StateStore-local failure
		// that must be surfaced so the operator knows the checkpoint
		// and state store have diverged, not silently swallowed.
		return faults.Checkpoint(errors.Wrap(err, "commit state scope after target commit"))
	}

	a.log.WithFields(log.Fields{
		"xid":        tx.XID,
		"commit_lsn": tx.CommitLSN,
		"action":     reg.Action.Name(),
	}).Debug("applied transaction")
	return nil
}

// classifyLoaderError preserves an already-typed fault from a Loader
// (e.g. faults.StateLookupMiss surfaced through lookupBucketDraft) and
// otherwise wraps the failure as a non-transient target transaction
// fault, since a Loader's SQL is assumed deterministic: re-running it
// against the same rows would fail again.
func (a *Applier) classifyLoaderError(err error) error {
	if _, ok := faults.As(err); ok {
		return err
	}
	return faults.TargetTransaction(errors.Wrap(err, "action loader failed"), false)
}
