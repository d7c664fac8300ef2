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

package types

import "context"

// StateStore is the persistent, namespaced key/value store of
// cross-transaction facts described in spec §4.5 (bucket→draft links,
// secret keys, id remappings, ...).
type StateStore interface {
	// Begin returns a handle scoped to one target transaction. Writes
	// made through the returned Scope become visible to other Begin()
	// callers only once Commit is called.
	Begin(ctx context.Context) (StateScope, error)

	// Close flushes and releases the underlying store.
	Close() error
}

// StateScope is a StateStore handle bound to the lifetime of one target
// transaction.
type StateScope interface {
	// Get reads a key from a namespace. ok is false if the key is absent;
	// this is how a StateLookupMiss fault is detected by callers.
	Get(namespace, key string) (value []byte, ok bool, err error)

	// Put buffers a write to a namespace. It is validated immediately
	// against the namespace's NamespaceValidator, if any, but is not
	// durable until Commit.
	Put(namespace, key string, value []byte) error

	// Commit makes all buffered writes durable and visible.
	Commit() error

	// Rollback discards all buffered writes.
	Rollback() error
}

// NamespaceValidator rejects a write that does not match a namespace's
// declared shape.
type NamespaceValidator func(key string, value []byte) error

// Well-known namespace names, grounded in the reference implementation's
// `STATE.BUCKETS` / `STATE.VALUES` fixtures (original_source conftest.py).
const (
	NamespaceBuckets     = "buckets"
	NamespaceParents     = "parents"
	NamespaceSecretKeys  = "secret_keys"
	NamespacePIDs        = "pids"
	NamespaceCommunities = "communities"
	NamespaceCheckpoint  = "__checkpoint__"
)
