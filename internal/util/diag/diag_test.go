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

package diag_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/slint/rdm-migrator-go/internal/util/diag"
)

func TestHealthyWhenNoChecksRegistered(t *testing.T) {
	d, cleanup := diag.New(context.Background())
	defer cleanup()
	require.True(t, d.Healthy(context.Background()))
}

func TestHealthyReflectsFailingCheck(t *testing.T) {
	d, cleanup := diag.New(context.Background())
	defer cleanup()

	require.NoError(t, d.Register("ok", func(context.Context) error { return nil }))
	require.NoError(t, d.Register("broken", func(context.Context) error {
		return errors.New("unreachable")
	}))

	require.False(t, d.Healthy(context.Background()))

	results, err := d.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := make(map[string]diag.Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	require.True(t, byName["ok"].OK)
	require.False(t, byName["broken"].OK)
	require.Equal(t, "unreachable", byName["broken"].Error)
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	d, cleanup := diag.New(context.Background())
	defer cleanup()
	require.Error(t, d.Register("", func(context.Context) error { return nil }))
}

func TestMarshalReportProducesJSON(t *testing.T) {
	d, cleanup := diag.New(context.Background())
	defer cleanup()
	require.NoError(t, d.Register("ok", func(context.Context) error { return nil }))

	body, err := d.MarshalReport(context.Background())
	require.NoError(t, err)
	require.Contains(t, string(body), `"name":"ok"`)
	require.Contains(t, string(body), `"ok":true`)
}
