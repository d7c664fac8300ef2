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

package state_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/load/state"
	"github.com/slint/rdm-migrator-go/internal/types"
)

func openMem(t *testing.T, opts ...state.Option) *state.Store {
	t.Helper()
	s, err := state.Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestScopeGetMissReturnsNotOK(t *testing.T) {
	s := openMem(t)
	scope, err := s.Begin(context.Background())
	require.NoError(t, err)

	_, ok, err := scope.Get(types.NamespaceBuckets, "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScopePutNotVisibleUntilCommit(t *testing.T) {
	s := openMem(t)

	writer, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, writer.Put(types.NamespaceBuckets, "b1", []byte(`{"draft_id":"d1"}`)))

	reader, err := s.Begin(context.Background())
	require.NoError(t, err)
	_, ok, err := reader.Get(types.NamespaceBuckets, "b1")
	require.NoError(t, err)
	require.False(t, ok, "uncommitted write must not be visible to a fresh scope")

	require.NoError(t, writer.Commit())

	after, err := s.Begin(context.Background())
	require.NoError(t, err)
	v, ok, err := after.Get(types.NamespaceBuckets, "b1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"draft_id":"d1"}`, string(v))
}

func TestScopeRollbackDiscardsWrites(t *testing.T) {
	s := openMem(t)

	scope, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, scope.Put(types.NamespaceSecretKeys, "k1", []byte("secret")))
	require.NoError(t, scope.Rollback())

	after, err := s.Begin(context.Background())
	require.NoError(t, err)
	_, ok, err := after.Get(types.NamespaceSecretKeys, "k1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNamespacesDoNotCollideOnKey(t *testing.T) {
	s := openMem(t)

	scope, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, scope.Put(types.NamespaceBuckets, "1", []byte("bucket-value")))
	require.NoError(t, scope.Put(types.NamespaceParents, "1", []byte("parent-value")))
	require.NoError(t, scope.Commit())

	after, err := s.Begin(context.Background())
	require.NoError(t, err)

	v, ok, err := after.Get(types.NamespaceBuckets, "1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bucket-value", string(v))

	v, ok, err = after.Get(types.NamespaceParents, "1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "parent-value", string(v))
}

func TestValidatorRejectsMalformedValue(t *testing.T) {
	reject := func(key string, value []byte) error {
		if len(value) == 0 {
			return pebble.ErrNotFound // stand-in validation error, any non-nil error suffices here
		}
		return nil
	}
	s := openMem(t, state.WithValidator(types.NamespaceSecretKeys, reject))

	scope, err := s.Begin(context.Background())
	require.NoError(t, err)
	err = scope.Put(types.NamespaceSecretKeys, "k1", nil)
	require.Error(t, err)
}

func TestCacheServesCommittedReadsWithoutConsultingBatch(t *testing.T) {
	s := openMem(t, state.WithCacheSize(8))

	writer, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, writer.Put(types.NamespacePIDs, "p1", []byte("doi:10.5281/x")))
	require.NoError(t, writer.Commit())

	reader, err := s.Begin(context.Background())
	require.NoError(t, err)
	v, ok, err := reader.Get(types.NamespacePIDs, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "doi:10.5281/x", string(v))
}
