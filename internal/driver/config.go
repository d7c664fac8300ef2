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

package driver

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/slint/rdm-migrator-go/internal/extract/kafka"
)

// Config is the user-visible configuration for running one migration
// pass, in the teacher's server.Config Bind/Preflight idiom.
type Config struct {
	Kafka kafka.Config

	TargetDSN       string
	TargetProduct   string // "postgresql", "cockroachdb", or "mysql"
	StateDir        string
	CheckpointTable string
	Pipeline        string
	HealthAddr      string

	Permissive bool
	DryRun     bool
	Resume     bool
}

// Bind registers flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringSliceVar(&c.Kafka.Brokers, "brokers", nil, "Kafka broker addresses")
	flags.StringVar(&c.Kafka.OpsTopic, "ops-topic", "", "Kafka topic carrying row-level operation events")
	flags.StringVar(&c.Kafka.TxTopic, "tx-topic", "", "Kafka topic carrying transaction boundary events")
	flags.StringVar(&c.Kafka.GroupID, "group-id", "rdm-migrator", "Kafka consumer group id")

	flags.StringVar(&c.TargetDSN, "target-db", "", "target database connection string")
	flags.StringVar(&c.TargetProduct, "target-product", "cockroachdb", "target database product: postgresql, cockroachdb, or mysql")
	flags.StringVar(&c.StateDir, "state-dir", "", "directory for the embedded StateStore")
	flags.StringVar(&c.CheckpointTable, "checkpoint-table", "_rdm_migrator_checkpoint", "target table used to persist the resume checkpoint")
	flags.StringVar(&c.Pipeline, "pipeline", "default", "pipeline name, for sharing a target database across migrations")
	flags.StringVar(&c.HealthAddr, "health-addr", "", "address to serve /healthz diagnostics on, e.g. :8080 (disabled if empty)")

	flags.BoolVar(&c.Permissive, "permissive", false, "skip-and-record unclassified transactions instead of halting")
	flags.BoolVar(&c.DryRun, "dry-run", false, "route and transform every transaction but never write to the target")
	flags.BoolVar(&c.Resume, "resume", false, "resume from the last persisted checkpoint instead of starting from the beginning")
}

// Preflight validates the configuration.
func (c *Config) Preflight() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("brokers unset")
	}
	if c.Kafka.OpsTopic == "" {
		return errors.New("ops-topic unset")
	}
	if c.Kafka.TxTopic == "" {
		return errors.New("tx-topic unset")
	}
	if c.TargetDSN == "" {
		return errors.New("target-db unset")
	}
	switch c.TargetProduct {
	case "postgresql", "cockroachdb", "mysql":
	default:
		return errors.Errorf("target-product must be one of postgresql, cockroachdb, mysql, got %q", c.TargetProduct)
	}
	if c.StateDir == "" {
		return errors.New("state-dir unset")
	}
	if c.Pipeline == "" {
		return errors.New("pipeline unset")
	}
	return nil
}
