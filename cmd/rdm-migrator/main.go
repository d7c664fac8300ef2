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

// Command rdm-migrator runs the CDC migration pipeline: extract, route,
// transform, and load transactions from a pair of Kafka topics into a
// target database, tracking progress in a resumable checkpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/slint/rdm-migrator-go/internal/driver"
	"github.com/slint/rdm-migrator-go/internal/util/stopper"
	"github.com/slint/rdm-migrator-go/internal/wiring"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("rdm-migrator exited with an error")
	}
}

func run() error {
	cfg := &driver.Config{}
	cfg.Bind(pflag.CommandLine)
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Preflight(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx := stopper.WithContext(context.Background())
	notifyStop(ctx)

	d, cleanup, err := wiring.ProvideDriver(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "assemble pipeline")
	}
	defer cleanup()

	if cfg.HealthAddr != "" {
		serveHealth(ctx, cfg.HealthAddr, d)
	}

	if err := d.Run(ctx); err != nil {
		return errors.Wrap(err, "pipeline run")
	}
	log.Info("rdm-migrator finished")
	return nil
}

// serveHealth starts a background HTTP server reporting d.Diagnostics()
// at /healthz, stopping when ctx's stopper fires. A probe failure never
// halts the migration itself; it only affects what /healthz reports.
func serveHealth(ctx *stopper.Context, addr string, d *driver.Driver) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		diags := d.Diagnostics()
		if diags == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, err := diags.MarshalReport(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !diags.Healthy(r.Context()) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx.Go(func(*stopper.Context) error {
		<-ctx.Stopping()
		return srv.Close()
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("healthz server exited")
		}
	}()
}

// notifyStop calls ctx.Stop on SIGINT/SIGTERM instead of canceling the
// underlying context directly, so an operator's Ctrl-C (or an
// orchestrator's termination signal) requests the stopper's graceful
// "finish the in-flight transaction, then stop" path rather than
// cutting off a blocking network call mid-request.
func notifyStop(ctx *stopper.Context) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutdown requested, finishing in-flight transaction")
		ctx.Stop()
	}()
}
