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

package extract

import (
	"context"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/types"
	"github.com/slint/rdm-migrator-go/internal/util/retry"
)

// DefaultSlack is tx_buffer_slack (spec §4.1), in commit_lsn units: the
// distance that must separate a candidate head's commit_lsn from the
// highest commit_lsn seen before it is considered safe to emit.
const DefaultSlack = 10

var (
	discardedOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extract_discarded_operations_total",
		Help: "operations discarded because their transaction never completed before end of stream or predates the resume point's oldest active xid",
	})
	emittedTx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "extract_emitted_transactions_total",
		Help: "transactions emitted by the extractor in commit order",
	})
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithResume seeds the extractor with a checkpoint: every Tx with
// commit_lsn <= lastAppliedCommitLSN is dropped, and operations
// belonging to any xid older than oldestActiveXID are dropped even if
// they reappear.
func WithResume(lastAppliedCommitLSN, oldestActiveXID int64) Option {
	return func(e *Extractor) {
		e.lastAppliedCommitLSN = lastAppliedCommitLSN
		e.oldestActiveXID = oldestActiveXID
	}
}

// WithSlack overrides DefaultSlack.
func WithSlack(n int64) Option {
	return func(e *Extractor) { e.slack = n }
}

// WithRetryPolicy overrides the backoff policy used to retry transient
// consumer faults.
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Extractor) { e.retryPolicy = p }
}

// Extractor implements the LogExtractor of spec §4.1.
type Extractor struct {
	ops OpsConsumer
	tx  TxConsumer

	lastAppliedCommitLSN int64
	oldestActiveXID      int64
	slack                int64
	retryPolicy          retry.Policy

	pendingOps map[int64][]types.Operation
	pendingTx  map[int64]types.TxInfo
	ready      readyHeap

	opsEOS        bool
	txEOS         bool
	maxCommitSeen int64
}

// New returns an Extractor reading from ops and tx.
func New(ops OpsConsumer, tx TxConsumer, opts ...Option) *Extractor {
	e := &Extractor{
		ops:         ops,
		tx:          tx,
		slack:       DefaultSlack,
		retryPolicy: retry.DefaultPolicy,
		pendingOps:  make(map[int64][]types.Operation),
		pendingTx:   make(map[int64]types.TxInfo),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Next blocks until the next Tx is ready to emit, or returns io.EOF once
// both streams are exhausted and no more Tx can ever become ready. Tx
// are returned in strictly increasing commit_lsn order, and each Tx's
// Operations are in strictly increasing lsn order.
func (e *Extractor) Next(ctx context.Context) (*types.Tx, error) {
	for {
		if tx := e.drain(false); tx != nil {
			emittedTx.Inc()
			return tx, nil
		}

		if e.opsEOS && e.txEOS {
			if tx := e.drain(true); tx != nil {
				emittedTx.Inc()
				return tx, nil
			}
			e.discardStale()
			return nil, io.EOF
		}

		if err := e.pullAndIngest(ctx); err != nil {
			return nil, err
		}
	}
}

// pullAndIngest pulls one batch from each consumer and folds it into
// pendingOps/pendingTx/ready per the steps of spec §4.1.
func (e *Extractor) pullAndIngest(ctx context.Context) error {
	var opsBatch []types.Operation
	var txBatch []types.TxInfo

	err := retry.Do(ctx, e.retryPolicy, isTransient, func(ctx context.Context) error {
		batch, eos, err := e.ops.PollOps(ctx)
		if err != nil {
			return faults.TransientConsumer(err)
		}
		opsBatch = batch
		e.opsEOS = e.opsEOS || eos
		return nil
	})
	if err != nil {
		return err
	}

	err = retry.Do(ctx, e.retryPolicy, isTransient, func(ctx context.Context) error {
		batch, eos, err := e.tx.PollTxInfo(ctx)
		if err != nil {
			return faults.TransientConsumer(err)
		}
		txBatch = batch
		e.txEOS = e.txEOS || eos
		return nil
	})
	if err != nil {
		return err
	}

	for _, op := range opsBatch {
		e.ingestOp(op)
	}
	for _, info := range txBatch {
		e.ingestTxInfo(info)
	}
	return nil
}

func (e *Extractor) ingestOp(op types.Operation) {
	if op.XID < e.oldestActiveXID {
		discardedOps.Inc()
		return
	}
	e.pendingOps[op.XID] = append(e.pendingOps[op.XID], op)
	if info, ok := e.pendingTx[op.XID]; ok && len(e.pendingOps[op.XID]) == info.EventCount {
		e.promote(info)
	}
}

func (e *Extractor) ingestTxInfo(info types.TxInfo) {
	if info.CommitLSN <= e.lastAppliedCommitLSN {
		delete(e.pendingOps, info.XID)
		return
	}
	e.pendingTx[info.XID] = info
	if len(e.pendingOps[info.XID]) == info.EventCount {
		e.promote(info)
	}
	if info.CommitLSN > e.maxCommitSeen {
		e.maxCommitSeen = info.CommitLSN
	}
}

// promote builds a Tx from the matched TxInfo/pendingOps pair, sorts its
// operations by lsn, and pushes it onto ready.
func (e *Extractor) promote(info types.TxInfo) {
	ops := e.pendingOps[info.XID]
	sort.Slice(ops, func(i, j int) bool { return ops[i].LSN < ops[j].LSN })

	e.ready.push(&types.Tx{
		XID:        info.XID,
		CommitLSN:  info.CommitLSN,
		Operations: ops,
	})
	delete(e.pendingOps, info.XID)
	delete(e.pendingTx, info.XID)
}

// drain pops the ready head if it is safe to emit. If force is true,
// the slack-window check is skipped — used once both streams are known
// exhausted, since nothing earlier can ever arrive.
func (e *Extractor) drain(force bool) *types.Tx {
	head := e.ready.peek()
	if head == nil {
		return nil
	}
	if force || (e.opsEOS && e.txEOS) || head.CommitLSN <= e.maxCommitSeen-e.slack {
		return e.ready.pop()
	}
	return nil
}

// discardStale logs and drops any pendingOps left when both streams hit
// end-of-stream: these belong to source transactions that never
// committed (rolled back, or still in flight past the scope of this
// run).
func (e *Extractor) discardStale() {
	for xid, ops := range e.pendingOps {
		log.WithFields(log.Fields{
			"xid":     xid,
			"op_count": len(ops),
		}).Warn("discarding incomplete transaction at end of stream")
		discardedOps.Add(float64(len(ops)))
	}
	e.pendingOps = make(map[int64][]types.Operation)
}

func isTransient(err error) bool {
	f, ok := faults.As(err)
	return ok && f.Transient()
}
