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

// Package retry implements the exponential-backoff loop used to retry
// transient faults (§4.1): TransientConsumerFault from the extractor and
// transient TargetTransactionFault from the loader. It is deliberately a
// small, hand-rolled loop rather than a dependency: nothing else in the
// example pack reaches for a standalone backoff library, every observed
// retry (the MySQL pool's ping loop, CockroachDB's own purgatory) rolls
// its own.
package retry

import (
	"context"
	"time"
)

// Policy configures a backoff loop.
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	MaxAttempts int // 0 means unlimited
}

// DefaultPolicy mirrors the teacher's MySQL pool retry cadence: start
// small, cap at a few seconds, retry indefinitely until canceled.
var DefaultPolicy = Policy{
	Initial:    100 * time.Millisecond,
	Max:        10 * time.Second,
	Multiplier: 2,
}

// Do calls fn until it returns a nil error, ctx is done, or the policy's
// MaxAttempts is exhausted. shouldRetry decides whether a non-nil error
// is worth retrying; if nil, every error is retried.
func Do(ctx context.Context, p Policy, shouldRetry func(error) bool, fn func(ctx context.Context) error) error {
	delay := p.Initial
	if delay <= 0 {
		delay = DefaultPolicy.Initial
	}
	maxDelay := p.Max
	if maxDelay <= 0 {
		maxDelay = DefaultPolicy.Max
	}
	mult := p.Multiplier
	if mult <= 1 {
		mult = DefaultPolicy.Multiplier
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * mult)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
