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

package ident_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/util/ident"
)

func TestParseTableBareName(t *testing.T) {
	tbl, err := ident.ParseTable("_rdm_migrator_checkpoint")
	require.NoError(t, err)
	require.True(t, tbl.Schema().Empty())
	require.Equal(t, "_rdm_migrator_checkpoint", tbl.String())
}

func TestParseTableQualifiedName(t *testing.T) {
	tbl, err := ident.ParseTable("Public.Checkpoint")
	require.NoError(t, err)
	require.Equal(t, "public", tbl.Schema().String())
	require.Equal(t, "checkpoint", tbl.Table())
	require.Equal(t, "public.checkpoint", tbl.String())
}

func TestParseSchemaRejectsEmpty(t *testing.T) {
	_, err := ident.ParseSchema("")
	require.Error(t, err)
}

func TestTablesWithSameNameAreComparable(t *testing.T) {
	a, err := ident.ParseTable("app.widgets")
	require.NoError(t, err)
	b, err := ident.ParseTable("APP.WIDGETS")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
