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

// Package diag collects named health checks from each pipeline stage
// (the target pool, the loader's state store, the checkpoint table)
// behind a single reporting surface.
package diag

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Check is a named health probe. It returns nil if the component it
// reports on is healthy.
type Check func(ctx context.Context) error

// Diagnostics is a registry of named Checks.
type Diagnostics struct {
	mu     sync.Mutex
	checks map[string]Check
}

// New returns an empty Diagnostics registry and a no-op cleanup func,
// matching the constructor shape the driver's wiring composes other
// components with.
func New(_ context.Context) (*Diagnostics, func()) {
	d := &Diagnostics{checks: make(map[string]Check)}
	return d, func() {}
}

// Register adds a named Check. Registering the same name twice
// replaces the prior Check.
func (d *Diagnostics) Register(name string, check Check) error {
	if name == "" {
		return errors.New("diag: empty check name")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks[name] = check
	return nil
}

// Result is one Check's outcome.
type Result struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report runs every registered Check and returns their outcomes.
// MarshalReport serializes the same outcomes as JSON.
func (d *Diagnostics) Report(ctx context.Context) ([]Result, error) {
	d.mu.Lock()
	names := make([]string, 0, len(d.checks))
	checks := make(map[string]Check, len(d.checks))
	for name, check := range d.checks {
		names = append(names, name)
		checks[name] = check
	}
	d.mu.Unlock()

	results := make([]Result, 0, len(names))
	for _, name := range names {
		r := Result{Name: name}
		if err := checks[name](ctx); err != nil {
			r.Error = err.Error()
		} else {
			r.OK = true
		}
		results = append(results, r)
	}
	return results, nil
}

// Healthy reports whether every registered Check currently passes.
func (d *Diagnostics) Healthy(ctx context.Context) bool {
	results, err := d.Report(ctx)
	if err != nil {
		return false
	}
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// MarshalReport runs Report and serializes the outcome as JSON.
func (d *Diagnostics) MarshalReport(ctx context.Context) ([]byte, error) {
	results, err := d.Report(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(results)
}
