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

import (
	"fmt"
	"strings"

	"github.com/slint/rdm-migrator-go/internal/util/omap"
)

// Tx is a reassembled logical transaction (spec §3): an ordered sequence
// of Operations sharing an XID, emitted exactly once by the extractor.
type Tx struct {
	XID        int64
	CommitLSN  int64
	Operations []Operation
}

// OpTuple is the (table, kind) pair used to fingerprint a transaction's
// shape (spec §4.2).
type OpTuple struct {
	Table string
	Kind  OperationKind
}

type opsTuplesOpts struct {
	include map[string]bool
	exclude map[string]bool
	kinds   map[OperationKind]bool
}

// OpsTuplesOption configures OpsTuples.
type OpsTuplesOption func(*opsTuplesOpts)

// WithInclude restricts OpsTuples to the named tables.
func WithInclude(tables ...string) OpsTuplesOption {
	return func(o *opsTuplesOpts) {
		if o.include == nil {
			o.include = make(map[string]bool, len(tables))
		}
		for _, t := range tables {
			o.include[t] = true
		}
	}
}

// WithExclude drops the named tables from OpsTuples.
func WithExclude(tables ...string) OpsTuplesOption {
	return func(o *opsTuplesOpts) {
		if o.exclude == nil {
			o.exclude = make(map[string]bool, len(tables))
		}
		for _, t := range tables {
			o.exclude[t] = true
		}
	}
}

// WithKinds restricts OpsTuples to the given operation kinds.
func WithKinds(kinds ...OperationKind) OpsTuplesOption {
	return func(o *opsTuplesOpts) {
		if o.kinds == nil {
			o.kinds = make(map[OperationKind]bool, len(kinds))
		}
		for _, k := range kinds {
			o.kinds[k] = true
		}
	}
}

// OpsTuples returns the transaction's ordered (table, kind) shape,
// optionally filtered, mirroring the reference implementation's
// `Tx.as_ops_tuples()`. Table names here are the bare source_table, since
// shape templates are declared per-table without a schema qualifier.
func (t *Tx) OpsTuples(opts ...OpsTuplesOption) []OpTuple {
	var o opsTuplesOpts
	for _, fn := range opts {
		fn(&o)
	}
	out := make([]OpTuple, 0, len(t.Operations))
	for _, op := range t.Operations {
		if o.exclude != nil && o.exclude[op.SourceTable] {
			continue
		}
		if o.include != nil && !o.include[op.SourceTable] {
			continue
		}
		if o.kinds != nil && !o.kinds[op.Kind] {
			continue
		}
		out = append(out, OpTuple{Table: op.SourceTable, Kind: op.Kind})
	}
	return out
}

type opsByOpts struct {
	kinds           map[OperationKind]bool
	groupBy         []string
	filterUnchanged bool
}

// OpsByOption configures OpsBy.
type OpsByOption func(*opsByOpts)

// WithOpKinds restricts OpsBy to the given operation kinds.
func WithOpKinds(kinds ...OperationKind) OpsByOption {
	return func(o *opsByOpts) {
		if o.kinds == nil {
			o.kinds = make(map[OperationKind]bool, len(kinds))
		}
		for _, k := range kinds {
			o.kinds[k] = true
		}
	}
}

// WithGroupBy groups rows by the given columns (read from each
// operation's effective row image) instead of by primary key.
func WithGroupBy(cols ...string) OpsByOption {
	return func(o *opsByOpts) { o.groupBy = cols }
}

// WithFilterUnchanged controls whether UPDATE operations whose before and
// after images are identical are skipped. Default true.
func WithFilterUnchanged(v bool) OpsByOption {
	return func(o *opsByOpts) { o.filterUnchanged = v }
}

// OpsBy returns the rows touching table, keyed by primary key (or by
// WithGroupBy columns), last-writer-wins in original position — the Go
// analogue of the reference implementation's `Tx.ops_by()`.
func (t *Tx) OpsBy(table string, opts ...OpsByOption) *omap.OrderedMap[string, RowImage] {
	o := opsByOpts{filterUnchanged: true}
	for _, fn := range opts {
		fn(&o)
	}

	out := omap.New[string, RowImage]()
	for _, op := range t.Operations {
		if op.SourceTable != table {
			continue
		}
		if o.kinds != nil && !o.kinds[op.Kind] {
			continue
		}
		if o.filterUnchanged && op.unchanged() {
			continue
		}
		key := groupKey(op, o.groupBy)
		out.Put(key, op.Effective())
	}
	return out
}

func groupKey(op Operation, cols []string) string {
	if len(cols) == 0 {
		return string(op.PrimaryKey)
	}
	row := op.Effective()
	parts := make([]string, len(cols))
	for i, c := range cols {
		v, _ := row.Get(c)
		parts[i] = toKeyPart(v)
	}
	return strings.Join(parts, "\x1f")
}

func toKeyPart(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
