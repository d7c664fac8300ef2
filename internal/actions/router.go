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

package actions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/types"
	"github.com/slint/rdm-migrator-go/internal/util/metrics"
)

var classifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "router_classified_transactions_total",
	Help: "transactions classified per action, including unclassified",
}, metrics.ActionLabels)

// Router holds the fixed, ordered action registry and dispatches each Tx
// to its first matching Registration (spec §4.2).
type Router struct {
	registrations []Registration
}

// NewRouter returns a Router that tries regs in the given order. Order
// matters: more specific actions (media-file variants) must precede the
// generic actions they could also satisfy, and ignored actions must be
// registered last among their peer set.
func NewRouter(regs ...Registration) *Router {
	return &Router{registrations: regs}
}

// Route returns the first Registration whose Action matches tx, or a
// faults.Unclassified error if none do.
func (r *Router) Route(tx *types.Tx) (Registration, error) {
	for _, reg := range r.registrations {
		if reg.Action.Matches(tx) {
			classifiedTotal.WithLabelValues(reg.Action.Name()).Inc()
			return reg, nil
		}
	}
	classifiedTotal.WithLabelValues("unclassified").Inc()
	return Registration{}, faults.Unclassified(unclassifiedError{xid: tx.XID}).With("xid", tx.XID)
}

type unclassifiedError struct{ xid int64 }

func (e unclassifiedError) Error() string {
	return "no registered action matches this transaction's fingerprint"
}
