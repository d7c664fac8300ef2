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

// Package metrics holds shared Prometheus conventions so that the
// extract, transform, and load stages report latency and counts with
// consistent bucket boundaries and label names.
package metrics

// LatencyBuckets are the histogram bucket boundaries, in seconds, used
// by every duration metric in the pipeline.
var LatencyBuckets = []float64{
	.001, .002, .005, .01, .02, .05, .1, .2, .5, 1, 2, 5, 10, 30, 60,
}

// TableLabels is applied to metrics that are broken down per source
// table.
var TableLabels = []string{"table"}

// ActionLabels is applied to metrics that are broken down per action
// name (§4.2).
var ActionLabels = []string{"action"}

// FaultLabels is applied to metrics that are broken down per fault kind
// (§4.4).
var FaultLabels = []string{"kind"}
