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

package target

import (
	"context"

	"github.com/pkg/errors"
)

// IDGenerator mints a target-side id for a newly-loaded row, freshly
// generated by the loader rather than carried over from the source
// system (spec §4.4).
type IDGenerator interface {
	NextID(ctx context.Context, q Querier, sequence string) (int64, error)
}

// PostgresIDGenerator mints ids via a Postgres/CockroachDB sequence.
type PostgresIDGenerator struct{}

// NextID implements IDGenerator.
func (PostgresIDGenerator) NextID(ctx context.Context, q Querier, sequence string) (int64, error) {
	var id int64
	row := q.QueryRowContext(ctx, "SELECT nextval($1)", sequence)
	if err := row.Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "mint id from sequence %q", sequence)
	}
	return id, nil
}

// MySQLIDGenerator mints ids from an AUTO_INCREMENT column via
// LAST_INSERT_ID(); NextID ignores its sequence argument.
type MySQLIDGenerator struct{}

// NextID implements IDGenerator. The caller must invoke this
// immediately after the INSERT it mints an id for, within the same
// connection/transaction, since LAST_INSERT_ID() is connection-scoped.
func (MySQLIDGenerator) NextID(ctx context.Context, q Querier, _ string) (int64, error) {
	var id int64
	row := q.QueryRowContext(ctx, "SELECT LAST_INSERT_ID()")
	if err := row.Scan(&id); err != nil {
		return 0, errors.Wrap(err, "mint id via LAST_INSERT_ID")
	}
	return id, nil
}

// IDGeneratorFor selects the IDGenerator matching product.
func IDGeneratorFor(product Product) IDGenerator {
	if product == ProductMySQL {
		return MySQLIDGenerator{}
	}
	return PostgresIDGenerator{}
}
