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
	"container/heap"

	"github.com/slint/rdm-migrator-go/internal/types"
)

// readyHeap is ready_buffer (spec §4.1): a min-heap of completed Tx
// keyed by commit_lsn. No example in the pack pulls in a third-party
// priority-queue library for this; container/heap over a small slice is
// the idiomatic stdlib shape.
type readyHeap []*types.Tx

func (h readyHeap) Len() int            { return len(h) }
func (h readyHeap) Less(i, j int) bool  { return h[i].CommitLSN < h[j].CommitLSN }
func (h readyHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *readyHeap) Push(x interface{}) { *h = append(*h, x.(*types.Tx)) }
func (h *readyHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func (h *readyHeap) push(tx *types.Tx) { heap.Push(h, tx) }

// peek returns the lowest commit_lsn Tx without removing it.
func (h readyHeap) peek() *types.Tx {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

func (h *readyHeap) pop() *types.Tx {
	return heap.Pop(h).(*types.Tx)
}
