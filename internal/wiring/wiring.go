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

// Package wiring hand-composes the Provide* constructors of every
// package into a runnable Driver, in the style the teacher reserves for
// wire_gen.go (Provide* functions chained by hand, propagating cleanup
// functions on every error path, mirroring the provider set declared in
// set.go's wire.NewSet). `go generate`/`wire build` are not invoked by
// this tree; ProvideDriver is the hand-written stand-in for what running
// them against that Set would produce.
package wiring

import (
	"context"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/driver"
	"github.com/slint/rdm-migrator-go/internal/extract"
	"github.com/slint/rdm-migrator-go/internal/extract/kafka"
	"github.com/slint/rdm-migrator-go/internal/load"
	"github.com/slint/rdm-migrator-go/internal/load/checkpoint"
	"github.com/slint/rdm-migrator-go/internal/load/state"
	"github.com/slint/rdm-migrator-go/internal/registry"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/util/diag"
	"github.com/slint/rdm-migrator-go/internal/util/stopper"
)

// ProvideTargetPool opens the configured target database and registers
// its close with ctx's stopper.
func ProvideTargetPool(ctx *stopper.Context, cfg *driver.Config) (*target.Pool, error) {
	opts := target.ConnectOptions{WaitForStartup: cfg.Resume}
	switch cfg.TargetProduct {
	case "mysql":
		return target.OpenMySQL(ctx, cfg.TargetDSN, opts)
	case "postgresql":
		return target.OpenPostgres(ctx, cfg.TargetDSN, target.ProductPostgreSQL, opts)
	default:
		return target.OpenPostgres(ctx, cfg.TargetDSN, target.ProductCockroachDB, opts)
	}
}

// ProvideStateStore opens the embedded StateStore rooted at cfg.StateDir.
func ProvideStateStore(cfg *driver.Config) (*state.Store, func(), error) {
	s, err := state.Open(cfg.StateDir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			// best-effort: the process is already tearing down
			_ = err
		}
	}, nil
}

// ProvideCheckpointStore opens the checkpoint table on pool, scoped to
// cfg.Pipeline.
func ProvideCheckpointStore(ctx *stopper.Context, pool *target.Pool, cfg *driver.Config) (*checkpoint.Store, error) {
	return checkpoint.Open(ctx, pool, cfg.CheckpointTable, cfg.Pipeline)
}

// ProvideExtractor dials the configured Kafka topics and, if cfg.Resume
// is set, seeds the extractor from the last persisted checkpoint.
func ProvideExtractor(ctx *stopper.Context, cfg *driver.Config, ckpt *checkpoint.Store) (*extract.Extractor, func(), error) {
	ops, err := kafka.NewOpsConsumer(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	tx, err := kafka.NewTxConsumer(cfg.Kafka)
	if err != nil {
		ops.Close()
		return nil, nil, err
	}
	cleanup := func() {
		ops.Close()
		tx.Close()
	}

	var extractOpts []extract.Option
	if cfg.Resume {
		resume, err := ckpt.Load(ctx)
		if err != nil {
			cleanup()
			return nil, nil, errors.Wrap(err, "load resume checkpoint")
		}
		extractOpts = append(extractOpts, extract.WithResume(resume.LastAppliedCommitLSN, resume.OldestActiveXID))
	}

	return extract.New(ops, tx, extractOpts...), cleanup, nil
}

// ProvideDiagnostics registers a health Check for each resource
// ProvideDriver opened: a ping against the target pool, a scratch
// Begin/Rollback against the state store, and a checkpoint read.
func ProvideDiagnostics(ctx *stopper.Context, pool *target.Pool, st *state.Store, ckpt *checkpoint.Store) (*diag.Diagnostics, error) {
	diags, _ := diag.New(ctx)

	if err := diags.Register("target_pool", func(ctx context.Context) error {
		return pool.PingContext(ctx)
	}); err != nil {
		return nil, err
	}

	if err := diags.Register("state_store", func(ctx context.Context) error {
		scope, err := st.Begin(ctx)
		if err != nil {
			return err
		}
		return scope.Rollback()
	}); err != nil {
		return nil, err
	}

	if err := diags.Register("checkpoint_store", func(ctx context.Context) error {
		_, err := ckpt.Load(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	return diags, nil
}

// ProvideRouter wires the fixed action registry into a Router, using
// pool's Product to select the dialect-specific id minting the file
// loaders need.
func ProvideRouter(pool *target.Pool) *actions.Router {
	return actions.NewRouter(registry.Default(pool.Product)...)
}

// ProvideApplier wires the target pool, state store, and checkpoint
// store into an ActionLoader.
func ProvideApplier(pool *target.Pool, st *state.Store, ckpt *checkpoint.Store) *load.Applier {
	return load.New(pool, st, ckpt)
}

// ProvideDriver assembles a runnable Driver from cfg. On success the
// returned cleanup function closes the Kafka clients and the pebble
// store; the target pool is closed by ctx's stopper. On error the
// resources opened so far are released before returning, and the
// returned cleanup is nil.
func ProvideDriver(ctx *stopper.Context, cfg *driver.Config) (*driver.Driver, func(), error) {
	pool, err := ProvideTargetPool(ctx, cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open target pool")
	}

	st, cleanupState, err := ProvideStateStore(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open state store")
	}

	ckpt, err := ProvideCheckpointStore(ctx, pool, cfg)
	if err != nil {
		cleanupState()
		return nil, nil, errors.Wrap(err, "open checkpoint store")
	}

	extractor, cleanupExtractor, err := ProvideExtractor(ctx, cfg, ckpt)
	if err != nil {
		cleanupState()
		return nil, nil, errors.Wrap(err, "open extractor")
	}

	router := ProvideRouter(pool)
	applier := ProvideApplier(pool, st, ckpt)

	diags, err := ProvideDiagnostics(ctx, pool, st, ckpt)
	if err != nil {
		cleanupExtractor()
		cleanupState()
		return nil, nil, errors.Wrap(err, "register diagnostics")
	}

	var opts []driver.Option
	opts = append(opts, driver.WithDiagnostics(diags))
	if cfg.Permissive {
		opts = append(opts, driver.WithUnclassifiedPolicy(driver.PolicyPermissive))
	}
	if cfg.DryRun {
		opts = append(opts, driver.WithDryRun(true))
	}

	d := driver.New(extractor, router, applier, opts...)
	cleanup := func() {
		cleanupExtractor()
		cleanupState()
	}
	return d, cleanup, nil
}
