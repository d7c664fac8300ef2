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

// Package stopper provides a context that distinguishes "please wind
// down" from "the outer context is already gone", so that the extractor
// and driver loops can finish applying the transaction they are
// currently holding instead of being cut off mid-write.
package stopper

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Context wraps a context.Context with a second cancellation signal,
// Stopping, that fires before Done. Code that holds an open target
// transaction should select on Stopping to know it's time to finish the
// current unit of work and exit; Done firing without a prior Stopping
// means the process is being cut off immediately.
type Context struct {
	context.Context

	mu struct {
		sync.Mutex
		stopping  chan struct{}
		stopped   bool
		firstErr  error
		wg        sync.WaitGroup
		numActive int
	}
}

// WithContext returns a new stopper.Context derived from parent.
func WithContext(parent context.Context) *Context {
	s := &Context{Context: parent}
	s.mu.stopping = make(chan struct{})
	return s
}

// Stopping returns a channel that is closed when Stop is called. It is
// distinct from Done(), which only fires when the underlying
// context.Context is canceled.
func (s *Context) Stopping() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.stopping
}

// Stop requests a graceful shutdown: Stopping's channel is closed, but
// Go goroutines are not forcibly canceled.
func (s *Context) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mu.stopped {
		s.mu.stopped = true
		close(s.mu.stopping)
	}
}

// Go runs fn in a tracked goroutine. The first non-nil error returned
// by any tracked goroutine is recorded and returned from Wait.
func (s *Context) Go(fn func(*Context) error) {
	s.mu.Lock()
	s.mu.numActive++
	s.mu.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.mu.wg.Done()
		err := fn(s)
		if err != nil {
			s.mu.Lock()
			if s.mu.firstErr == nil {
				s.mu.firstErr = err
			}
			s.mu.Unlock()
		}
	}()
}

// Wait blocks until every goroutine started with Go has returned, then
// returns the first error any of them reported.
func (s *Context) Wait() error {
	s.mu.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.firstErr
}

// ErrStopped is returned by callers that observe Stopping() having
// already fired.
var ErrStopped = errors.New("stopper: shutdown requested")
