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

// Package kafka implements the extract.OpsConsumer and extract.TxConsumer
// interfaces over ops_topic/tx_topic (spec §6), using franz-go.
package kafka

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/types"
)

// opsSource names the block of an ops_topic record payload.
type opsSource struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	TxID   int64  `json:"txId"`
	LSN    int64  `json:"lsn"`
}

// opsPayload is the decoded body of one ops_topic record (spec §6).
type opsPayload struct {
	Op        string          `json:"op"`
	Source    opsSource       `json:"source"`
	Before    json.RawMessage `json:"before"`
	After     json.RawMessage `json:"after"`
	CommitLSN int64           `json:"commit_lsn"`
}

// txPayload is the decoded body of one tx_topic record.
type txPayload struct {
	XID        int64 `json:"xid"`
	CommitLSN  int64 `json:"commit_lsn"`
	EventCount int   `json:"event_count"`
}

func decodeOperation(key, value []byte) (types.Operation, error) {
	var p opsPayload
	if err := json.Unmarshal(value, &p); err != nil {
		return types.Operation{}, errors.Wrap(err, "unmarshal ops_topic payload")
	}
	kind, err := types.ParseOperationKind(p.Op)
	if err != nil {
		return types.Operation{}, err
	}

	op := types.Operation{
		SourceSchema: p.Source.Schema,
		SourceTable:  p.Source.Table,
		Kind:         kind,
		PrimaryKey:   json.RawMessage(key),
		XID:          p.Source.TxID,
		CommitLSN:    p.CommitLSN,
		LSN:          p.Source.LSN,
	}
	if len(p.Before) > 0 && string(p.Before) != "null" {
		if err := json.Unmarshal(p.Before, &op.Before); err != nil {
			return types.Operation{}, errors.Wrap(err, "unmarshal before image")
		}
	}
	if len(p.After) > 0 && string(p.After) != "null" {
		if err := json.Unmarshal(p.After, &op.After); err != nil {
			return types.Operation{}, errors.Wrap(err, "unmarshal after image")
		}
	}
	return op, nil
}

func decodeTxInfo(value []byte) (types.TxInfo, error) {
	var p txPayload
	if err := json.Unmarshal(value, &p); err != nil {
		return types.TxInfo{}, errors.Wrap(err, "unmarshal tx_topic payload")
	}
	return types.TxInfo{XID: p.XID, CommitLSN: p.CommitLSN, EventCount: p.EventCount}, nil
}
