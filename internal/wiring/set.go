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

package wiring

import "github.com/google/wire"

// Set documents the provider graph ProvideDriver composes by hand, in
// the same shape `wire build` would consume to regenerate it. It is not
// fed to the wire binary by this tree (go generate is out of scope
// here), but it keeps the declared provider set and the hand-written
// composition in ProvideDriver from drifting apart silently: adding a
// Provide* function to one without the other is a visible diff.
var Set = wire.NewSet(
	ProvideTargetPool,
	ProvideStateStore,
	ProvideCheckpointStore,
	ProvideExtractor,
	ProvideDiagnostics,
	ProvideRouter,
	ProvideApplier,
)
