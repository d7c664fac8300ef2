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

// Package extract implements the LogExtractor described in spec §4.1: a
// two-stream consumer that reassembles whole transactions in commit
// order from an ops stream and a tx-boundary stream.
package extract

import (
	"context"

	"github.com/slint/rdm-migrator-go/internal/types"
)

// OpsConsumer yields batches of row-change Operations. A batch may be
// empty. eos is true once the source is exhausted (end of a bounded
// replay, or a backfill cursor catching up to head); for a live stream
// it may never become true.
type OpsConsumer interface {
	PollOps(ctx context.Context) (batch []types.Operation, eos bool, err error)
}

// TxConsumer yields batches of transaction-boundary records.
type TxConsumer interface {
	PollTxInfo(ctx context.Context) (batch []types.TxInfo, eos bool, err error)
}
