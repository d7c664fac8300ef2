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

// Package faults implements the pipeline's error taxonomy (spec §7): a
// closed set of fault kinds, each carrying enough context to decide
// whether the driver retries, skips, or halts.
package faults

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the seven fault kinds named in the error-handling
// design.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransientConsumerFault: consumer read failed; retry with
	// backoff; no state change.
	KindTransientConsumerFault
	// KindMalformedEvent: event failed to parse; log and skip; counted.
	KindMalformedEvent
	// KindUnclassifiedTransaction: no action matches; halt in strict
	// mode, skip-and-record in permissive mode.
	KindUnclassifiedTransaction
	// KindTransformFault: action payload could not be constructed from
	// the Tx; halt; the offending Tx is dumped for post-mortem.
	KindTransformFault
	// KindStateLookupMiss: a required cross-Tx reference is absent;
	// treated as TransformFault.
	KindStateLookupMiss
	// KindTargetTransactionFault: target database rejected the
	// transaction; Transient() distinguishes deadlock/connection-loss
	// (retry) from constraint violation (halt).
	KindTargetTransactionFault
	// KindCheckpointFault: checkpoint write failed; always fatal.
	KindCheckpointFault
)

func (k Kind) String() string {
	switch k {
	case KindTransientConsumerFault:
		return "TransientConsumerFault"
	case KindMalformedEvent:
		return "MalformedEvent"
	case KindUnclassifiedTransaction:
		return "UnclassifiedTransaction"
	case KindTransformFault:
		return "TransformFault"
	case KindStateLookupMiss:
		return "StateLookupMiss"
	case KindTargetTransactionFault:
		return "TargetTransactionFault"
	case KindCheckpointFault:
		return "CheckpointFault"
	default:
		return "Unknown"
	}
}

// Fault is the common shape of every error in the taxonomy.
type Fault struct {
	kind      Kind
	transient bool
	cause     error
	context   map[string]any
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.kind, f.cause)
	}
	return f.kind.String()
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (f *Fault) Unwrap() error { return f.cause }

// Kind reports which of the seven taxonomy kinds this fault is.
func (f *Fault) Kind() Kind { return f.kind }

// Transient reports whether the driver should retry (true) or halt
// (false). Only KindTransientConsumerFault and a subset of
// KindTargetTransactionFault are ever transient.
func (f *Fault) Transient() bool { return f.transient }

// Context returns diagnostic key/value pairs attached at construction
// time (e.g. xid, table, action name) for post-mortem dumps.
func (f *Fault) Context() map[string]any { return f.context }

// With attaches a diagnostic key/value pair and returns f for chaining.
func (f *Fault) With(key string, value any) *Fault {
	if f.context == nil {
		f.context = make(map[string]any, 1)
	}
	f.context[key] = value
	return f
}

func newFault(kind Kind, transient bool, cause error) *Fault {
	return &Fault{kind: kind, transient: transient, cause: errors.WithStack(cause)}
}

// TransientConsumer wraps a consumer read error. Always transient.
func TransientConsumer(cause error) *Fault {
	return newFault(KindTransientConsumerFault, true, cause)
}

// Malformed wraps an event-parse error. Never transient; the driver
// logs and skips the single event, not the whole Tx.
func Malformed(cause error) *Fault {
	return newFault(KindMalformedEvent, false, cause)
}

// Unclassified reports a Tx matching no registered action.
func Unclassified(cause error) *Fault {
	return newFault(KindUnclassifiedTransaction, false, cause)
}

// Transform wraps a failure constructing an action's payload from a Tx.
func Transform(cause error) *Fault {
	return newFault(KindTransformFault, false, cause)
}

// StateLookupMiss wraps a missing required cross-Tx StateStore
// reference. Per §7 this is treated as a TransformFault.
func StateLookupMiss(cause error) *Fault {
	f := newFault(KindTransformFault, false, cause)
	f.kind = KindStateLookupMiss
	return f
}

// TargetTransaction wraps a target database rejection. transient
// selects whether the driver retries (deadlock, connection loss) or
// halts (constraint violation).
func TargetTransaction(cause error, transient bool) *Fault {
	return newFault(KindTargetTransactionFault, transient, cause)
}

// Checkpoint wraps a checkpoint-write failure. Always fatal.
func Checkpoint(cause error) *Fault {
	return newFault(KindCheckpointFault, false, cause)
}

// As extracts a *Fault from err, mirroring errors.As for convenience at
// call sites that only need the Kind/Transient accessors.
func As(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindUnknown if err is not a
// *Fault.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind()
	}
	return KindUnknown
}
