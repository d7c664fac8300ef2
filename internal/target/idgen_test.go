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

package target_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/target"
)

func TestIDGeneratorForSelectsByProduct(t *testing.T) {
	_, ok := target.IDGeneratorFor(target.ProductMySQL).(target.MySQLIDGenerator)
	require.True(t, ok)

	_, ok = target.IDGeneratorFor(target.ProductPostgreSQL).(target.PostgresIDGenerator)
	require.True(t, ok)

	_, ok = target.IDGeneratorFor(target.ProductCockroachDB).(target.PostgresIDGenerator)
	require.True(t, ok, "CockroachDB shares the Postgres sequence idiom")
}

func TestProductString(t *testing.T) {
	require.Equal(t, "postgresql", target.ProductPostgreSQL.String())
	require.Equal(t, "cockroachdb", target.ProductCockroachDB.String())
	require.Equal(t, "mysql", target.ProductMySQL.String())
	require.Equal(t, "unknown", target.ProductUnknown.String())
}
