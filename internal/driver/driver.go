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

// Package driver owns the top-level loop tying LogExtractor, ActionRouter,
// ActionTransform, and ActionLoader together (spec §2, §5), corresponding
// to the teacher's logical.Loop / cdc.resolver processing loop.
package driver

import (
	"context"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/extract"
	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/load"
	"github.com/slint/rdm-migrator-go/internal/types"
	"github.com/slint/rdm-migrator-go/internal/util/diag"
	"github.com/slint/rdm-migrator-go/internal/util/retry"
	"github.com/slint/rdm-migrator-go/internal/util/stopper"
)

// UnclassifiedPolicy decides what happens when a Tx matches no
// registered action (spec §7: "halt in strict mode, skip-and-record in
// permissive mode").
type UnclassifiedPolicy int

const (
	// PolicyStrict halts the driver on the first unclassified Tx.
	PolicyStrict UnclassifiedPolicy = iota
	// PolicyPermissive logs and skips an unclassified Tx, advancing past
	// it as though it had been applied, so a handful of unrecognized
	// transaction shapes don't block the whole migration.
	PolicyPermissive
)

// Driver runs the extract/route/transform/load loop until the source is
// exhausted, the stopper requests a stop, or a non-transient fault halts
// it.
type Driver struct {
	extractor *extract.Extractor
	router    *actions.Router
	applier   *load.Applier

	unclassified UnclassifiedPolicy
	retryPolicy  retry.Policy
	dryRun       bool
	diagnostics  *diag.Diagnostics

	log *log.Entry
}

// New returns a Driver wiring extractor, router, and applier together.
func New(extractor *extract.Extractor, router *actions.Router, applier *load.Applier, opts ...Option) *Driver {
	d := &Driver{
		extractor:    extractor,
		router:       router,
		applier:      applier,
		unclassified: PolicyStrict,
		retryPolicy:  retry.DefaultPolicy,
		log:          log.WithField("component", "driver.Driver"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures a Driver.
type Option func(*Driver)

// WithUnclassifiedPolicy overrides the default strict-halt policy.
func WithUnclassifiedPolicy(p UnclassifiedPolicy) Option {
	return func(d *Driver) { d.unclassified = p }
}

// WithRetryPolicy overrides the backoff policy used to retry transient
// target-transaction faults.
func WithRetryPolicy(p retry.Policy) Option {
	return func(d *Driver) { d.retryPolicy = p }
}

// WithDryRun routes and transforms every Tx without ever calling the
// ActionLoader, for validating a source's fingerprint coverage against a
// target database that is never written to.
func WithDryRun(dryRun bool) Option {
	return func(d *Driver) { d.dryRun = dryRun }
}

// WithDiagnostics attaches a health-check registry that Diagnostics
// exposes to the rest of the process (e.g. an HTTP /healthz handler).
func WithDiagnostics(diags *diag.Diagnostics) Option {
	return func(d *Driver) { d.diagnostics = diags }
}

// Diagnostics returns the Driver's health-check registry, or nil if none
// was attached.
func (d *Driver) Diagnostics() *diag.Diagnostics {
	return d.diagnostics
}

// Run drives the loop to completion: it returns nil once the extractor
// reports io.EOF, or the first non-retryable error otherwise. Run checks
// ctx.Stopping() between Tx boundaries so an in-flight transaction is
// always finished (or cleanly rolled back) before returning.
func (d *Driver) Run(ctx *stopper.Context) error {
	for {
		select {
		case <-ctx.Stopping():
			d.log.Info("stop requested, exiting between transaction boundaries")
			return nil
		default:
		}

		tx, err := d.extractor.Next(ctx)
		if errors.Is(err, io.EOF) {
			d.log.Info("source exhausted")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "extract next transaction")
		}

		if err := d.applyOne(ctx, tx); err != nil {
			return err
		}
	}
}

func (d *Driver) applyOne(ctx context.Context, tx *types.Tx) error {
	reg, err := d.router.Route(tx)
	if err != nil {
		if faults.KindOf(err) == faults.KindUnclassifiedTransaction && d.unclassified == PolicyPermissive {
			d.log.WithField("xid", tx.XID).Warn("skipping unclassified transaction (permissive mode)")
			return nil
		}
		return err
	}

	payload, err := reg.Action.Transform(tx)
	if err != nil {
		return faults.Transform(errors.Wrapf(err, "transform %s", reg.Action.Name())).With("xid", tx.XID)
	}

	if d.dryRun {
		d.log.WithFields(log.Fields{"xid": tx.XID, "action": reg.Action.Name()}).Info("dry-run: skipping load")
		return nil
	}

	return retry.Do(ctx, d.retryPolicy, isRetryableTargetFault, func(ctx context.Context) error {
		return d.applier.Run(ctx, tx, reg, payload)
	})
}

func isRetryableTargetFault(err error) bool {
	f, ok := faults.As(err)
	return ok && f.Kind() == faults.KindTargetTransactionFault && f.Transient()
}
