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
	"database/sql"
	sqldriver "database/sql/driver"
	"time"

	_ "github.com/go-sql-driver/mysql" // register driver
	_ "github.com/jackc/pgx/v5/stdlib" // register driver
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/slint/rdm-migrator-go/internal/util/stopper"
)

// ConnectOptions configures Open.
type ConnectOptions struct {
	// MaxOpenConns bounds the pool's connection count. Zero means no
	// limit, database/sql's own default.
	MaxOpenConns int
	// WaitForStartup retries a failed ping against a startup error
	// instead of failing Open outright, for use against a target that
	// may still be coming up (e.g. in a docker-compose test fixture).
	WaitForStartup bool
}

// OpenPostgres opens a Postgres- or CockroachDB-family target pool over
// pgx's database/sql driver. product distinguishes the two for
// dialect-specific SQL (id sequences, upsert syntax) even though both
// speak the same wire protocol.
func OpenPostgres(
	ctx *stopper.Context, connectString string, product Product, opts ConnectOptions,
) (*Pool, error) {
	if product != ProductPostgreSQL && product != ProductCockroachDB {
		return nil, errors.Errorf("target: %s is not a Postgres-family product", product)
	}

	db, err := sql.Open("pgx", connectString)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres target")
	}
	pool := &Pool{DB: db, PoolInfo: PoolInfo{ConnectionString: connectString, Product: product}}
	return finishOpen(ctx, pool, "SHOW server_version", opts)
}

// OpenMySQL opens a MySQL-family target pool, adapted from the same
// connect-ping-version sequence used for the Postgres path above, set
// ansi sql_mode so double-quoted identifiers behave the same as they do
// against Postgres/CRDB.
func OpenMySQL(ctx *stopper.Context, connectString string, opts ConnectOptions) (*Pool, error) {
	db, err := sql.Open("mysql", connectString+"?sql_mode=ansi")
	if err != nil {
		return nil, errors.Wrap(err, "open mysql target")
	}
	pool := &Pool{DB: db, PoolInfo: PoolInfo{ConnectionString: connectString, Product: ProductMySQL}}
	return finishOpen(ctx, pool, "SELECT VERSION()", opts)
}

func finishOpen(ctx *stopper.Context, pool *Pool, versionQuery string, opts ConnectOptions) (*Pool, error) {
	if opts.MaxOpenConns > 0 {
		pool.DB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	ctx.Go(func(*stopper.Context) error {
		<-ctx.Stopping()
		if err := pool.DB.Close(); err != nil {
			log.WithError(err).Warn("could not close target connection pool")
		}
		return nil
	})

ping:
	if err := pool.DB.PingContext(ctx); err != nil {
		if opts.WaitForStartup && isStartupError(err) {
			log.WithError(err).Info("waiting for target database to become ready")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(10 * time.Second):
				goto ping
			}
		}
		return nil, errors.Wrap(err, "could not ping target database")
	}

	if err := pool.DB.QueryRowContext(ctx, versionQuery).Scan(&pool.Version); err != nil {
		return nil, errors.Wrap(err, "could not query target version")
	}
	log.WithFields(log.Fields{
		"product": pool.Product.String(),
		"version": pool.Version,
	}).Info("connected to target database")

	return pool, nil
}

func isStartupError(err error) bool {
	return errors.Is(err, sqldriver.ErrBadConn)
}
