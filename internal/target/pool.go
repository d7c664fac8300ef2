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

// Package target holds the abstractions the loader uses to talk to the
// destination database, independent of which driver backs it.
package target

import (
	"context"
	"database/sql"
)

// Product identifies the destination database engine, so that the
// loader can select dialect-specific SQL (id sequences, upsert syntax).
type Product int

const (
	ProductUnknown Product = iota
	ProductPostgreSQL
	ProductCockroachDB
	ProductMySQL
)

func (p Product) String() string {
	switch p {
	case ProductPostgreSQL:
		return "postgresql"
	case ProductCockroachDB:
		return "cockroachdb"
	case ProductMySQL:
		return "mysql"
	default:
		return "unknown"
	}
}

// PoolInfo describes a connection pool and what it is connected to.
type PoolInfo struct {
	ConnectionString string
	Product          Product
	Version          string
}

// Info returns the PoolInfo when embedded.
func (i *PoolInfo) Info() *PoolInfo { return i }

// Pool is an injection point for a connection to the target database. It
// wraps database/sql so that the same loader code runs against pgx's
// stdlib driver (PostgreSQL/CockroachDB) and go-sql-driver/mysql.
type Pool struct {
	*sql.DB
	PoolInfo
}

// AnyPool is a generic type constraint for pool types exposing PoolInfo.
type AnyPool interface {
	*Pool
	Info() *PoolInfo
}

// Querier is implemented by [sql.DB] and [sql.Tx]. Loaders are written
// against this interface so they can run either against a bare
// connection (for id-minting reads) or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Tx is implemented by [sql.Tx]. The driver opens exactly one Tx per
// source transaction it applies.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

var _ Tx = (*sql.Tx)(nil)
