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

package kafka

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/slint/rdm-migrator-go/internal/types"
)

// Config configures a Kafka-backed consumer pair.
type Config struct {
	Brokers  []string
	OpsTopic string
	TxTopic  string
	GroupID  string
}

// OpsConsumer pulls from ops_topic and decodes each record into an
// Operation, implementing extract.OpsConsumer.
type OpsConsumer struct {
	client *kgo.Client
}

// NewOpsConsumer dials brokers and subscribes to cfg.OpsTopic.
func NewOpsConsumer(cfg Config) (*OpsConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.OpsTopic),
		kgo.ConsumerGroup(cfg.GroupID+"-ops"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "dial ops_topic")
	}
	return &OpsConsumer{client: cl}, nil
}

// PollOps implements extract.OpsConsumer.
func (c *OpsConsumer) PollOps(ctx context.Context) ([]types.Operation, bool, error) {
	fetches := c.client.PollFetches(ctx)
	if err := fetches.Err(); err != nil {
		return nil, false, errors.Wrap(err, "poll ops_topic")
	}

	var out []types.Operation
	fetches.EachRecord(func(r *kgo.Record) {
		op, err := decodeOperation(r.Key, r.Value)
		if err != nil {
			log.WithError(err).WithField("offset", r.Offset).Warn("malformed ops_topic record, skipping")
			return
		}
		out = append(out, op)
	})
	return out, false, nil
}

// Commit commits the offsets of every record polled so far that are not
// yet committed, advisory only (spec §6): the
// authoritative resume position is the checkpoint's last_applied_commit_lsn.
func (c *OpsConsumer) Commit(ctx context.Context) error {
	return c.client.CommitUncommittedOffsets(ctx)
}

// Close releases the underlying client.
func (c *OpsConsumer) Close() { c.client.Close() }

// TxConsumer pulls from tx_topic and decodes each record into a TxInfo,
// implementing extract.TxConsumer.
type TxConsumer struct {
	client *kgo.Client
}

// NewTxConsumer dials brokers and subscribes to cfg.TxTopic.
func NewTxConsumer(cfg Config) (*TxConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.TxTopic),
		kgo.ConsumerGroup(cfg.GroupID+"-tx"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "dial tx_topic")
	}
	return &TxConsumer{client: cl}, nil
}

// PollTxInfo implements extract.TxConsumer.
func (c *TxConsumer) PollTxInfo(ctx context.Context) ([]types.TxInfo, bool, error) {
	fetches := c.client.PollFetches(ctx)
	if err := fetches.Err(); err != nil {
		return nil, false, errors.Wrap(err, "poll tx_topic")
	}

	var out []types.TxInfo
	fetches.EachRecord(func(r *kgo.Record) {
		info, err := decodeTxInfo(r.Value)
		if err != nil {
			log.WithError(err).WithField("offset", r.Offset).Warn("malformed tx_topic record, skipping")
			return
		}
		out = append(out, info)
	})
	return out, false, nil
}

// Commit commits the offsets of every record polled so far that are not
// yet committed, advisory only (spec §6).
func (c *TxConsumer) Commit(ctx context.Context) error {
	return c.client.CommitUncommittedOffsets(ctx)
}

// Close releases the underlying client.
func (c *TxConsumer) Close() { c.client.Close() }
