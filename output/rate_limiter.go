/*
 * Copyright 2025 The StreamCEP Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package output

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/types"
)

// RateLimiter decides when completed results leave a query. Limiters are
// eternal holders: the engine starts and stops them with the app. A
// limiter whose emission path is timer-triggered must acquire the query
// lock before reading or emitting, so scheduled emissions never race with
// concurrent event processing.
type RateLimiter interface {
	types.Lifecycle
	// Init binds the limiter to its query's context, lock and name; the
	// lock may be nil when the query engages none
	Init(ctx *types.EngineContext, lockGroup *lock.Group, queryName string)
	Process(chunk *types.EventChunk)
	SetOutputCallback(cb Callback)
}

// AttributeSource names one projected output attribute. Snapshot-mode
// limiters receive the selector's full source list so they can recompute
// results from scratch each cycle.
type AttributeSource interface {
	AttributeName() string
}

// NewRateLimiter builds the limiter declared by the rate spec.
func NewRateLimiter(outputStreamID string, rate types.RateSpec, hasGroupBy, isWindow bool,
	clock clockz.Clock, queryName string) RateLimiter {
	switch rate.Mode {
	case types.RateEvery:
		return NewTimedRateLimiter(outputStreamID, rate.Interval, clock, queryName)
	case types.RateSnapshot:
		return NewSnapshotRateLimiter(outputStreamID, rate.Interval, hasGroupBy, isWindow, clock, queryName)
	default:
		return NewPassThroughRateLimiter(outputStreamID, queryName)
	}
}

// PassThroughRateLimiter forwards every completed result immediately.
type PassThroughRateLimiter struct {
	outputStreamID string
	queryName      string
	callback       Callback
}

var _ RateLimiter = (*PassThroughRateLimiter)(nil)

// NewPassThroughRateLimiter creates an unlimited output path.
func NewPassThroughRateLimiter(outputStreamID, queryName string) *PassThroughRateLimiter {
	return &PassThroughRateLimiter{outputStreamID: outputStreamID, queryName: queryName}
}

func (p *PassThroughRateLimiter) Init(ctx *types.EngineContext, lockGroup *lock.Group, queryName string) {
	p.queryName = queryName
}

func (p *PassThroughRateLimiter) SetOutputCallback(cb Callback) { p.callback = cb }

func (p *PassThroughRateLimiter) Process(chunk *types.EventChunk) {
	if p.callback != nil {
		p.callback.Send(chunk)
	}
}

func (p *PassThroughRateLimiter) Start() {}
func (p *PassThroughRateLimiter) Stop()  {}

// TimedRateLimiter accumulates completed results and emits them on a
// fixed interval. The ticker goroutine takes the query lock around
// draining and emission.
type TimedRateLimiter struct {
	outputStreamID string
	queryName      string
	interval       time.Duration

	clock     clockz.Clock
	callback  Callback
	lockGroup *lock.Group

	mu      sync.Mutex
	pending []*types.StreamEvent
	done    chan struct{}
	started bool
}

var _ RateLimiter = (*TimedRateLimiter)(nil)

// NewTimedRateLimiter creates an every-interval limiter.
func NewTimedRateLimiter(outputStreamID string, interval time.Duration, clock clockz.Clock, queryName string) *TimedRateLimiter {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &TimedRateLimiter{
		outputStreamID: outputStreamID,
		interval:       interval,
		clock:          clock,
		queryName:      queryName,
	}
}

func (t *TimedRateLimiter) Init(ctx *types.EngineContext, lockGroup *lock.Group, queryName string) {
	t.lockGroup = lockGroup
	t.queryName = queryName
	if ctx != nil && ctx.Clock != nil {
		t.clock = ctx.Clock
	}
}

func (t *TimedRateLimiter) SetOutputCallback(cb Callback) { t.callback = cb }

// Process buffers the chunk's results until the next emission tick.
func (t *TimedRateLimiter) Process(chunk *types.EventChunk) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ev := chunk.First(); ev != nil; ev = ev.Next {
		t.pending = append(t.pending, ev.Clone())
	}
}

// Start launches the emission ticker.
func (t *TimedRateLimiter) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.done = make(chan struct{})
	// The ticker is created before Start returns so ticks scheduled right
	// after startup are never lost.
	ticker := t.clock.NewTicker(t.interval)
	t.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				t.emit()
			case <-t.done:
				return
			}
		}
	}()
}

// Stop halts the ticker; buffered results remain until restarted.
func (t *TimedRateLimiter) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return
	}
	t.started = false
	close(t.done)
}

func (t *TimedRateLimiter) emit() {
	// The query lock comes first so timer-triggered emission never races
	// with event processing touching the same shared state.
	if t.lockGroup != nil {
		t.lockGroup.Lock()
		defer t.lockGroup.Unlock()
	}
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	if len(pending) == 0 || t.callback == nil {
		return
	}
	t.callback.Send(types.NewEventChunk(pending...))
}

// SnapshotRateLimiter recomputes and emits the full current result set on
// each cycle instead of applying deltas. Queries wired to it run with the
// selector's incremental batching disabled.
type SnapshotRateLimiter struct {
	outputStreamID string
	queryName      string
	interval       time.Duration
	hasGroupBy     bool
	isWindow       bool

	clock     clockz.Clock
	callback  Callback
	lockGroup *lock.Group

	sources []AttributeSource
	meta    types.MetaComplexEvent

	mu      sync.Mutex
	current map[string]*types.StreamEvent
	order   []string
	done    chan struct{}
	started bool
}

var _ RateLimiter = (*SnapshotRateLimiter)(nil)

// NewSnapshotRateLimiter creates a snapshot-consistent limiter.
func NewSnapshotRateLimiter(outputStreamID string, interval time.Duration, hasGroupBy, isWindow bool,
	clock clockz.Clock, queryName string) *SnapshotRateLimiter {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &SnapshotRateLimiter{
		outputStreamID: outputStreamID,
		interval:       interval,
		hasGroupBy:     hasGroupBy,
		isWindow:       isWindow,
		clock:          clock,
		queryName:      queryName,
		current:        make(map[string]*types.StreamEvent),
	}
}

func (s *SnapshotRateLimiter) Init(ctx *types.EngineContext, lockGroup *lock.Group, queryName string) {
	s.lockGroup = lockGroup
	s.queryName = queryName
	if ctx != nil && ctx.Clock != nil {
		s.clock = ctx.Clock
	}
}

func (s *SnapshotRateLimiter) SetOutputCallback(cb Callback) { s.callback = cb }

// SetSnapshotSources hands the limiter the selector's attribute sources
// and the frozen metadata so full results can be rebuilt each cycle.
func (s *SnapshotRateLimiter) SetSnapshotSources(sources []AttributeSource, meta types.MetaComplexEvent) {
	s.sources = sources
	s.meta = meta
}

// Process replaces the retained result set with the chunk's results.
// Without grouping the whole set is the latest batch; with grouping each
// result replaces its group's previous value.
func (s *SnapshotRateLimiter) Process(chunk *types.EventChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasGroupBy {
		s.current = make(map[string]*types.StreamEvent)
		s.order = s.order[:0]
	}
	for ev := chunk.First(); ev != nil; ev = ev.Next {
		key := groupKey(ev)
		if _, seen := s.current[key]; !seen {
			s.order = append(s.order, key)
		}
		s.current[key] = ev.Clone()
	}
}

func (s *SnapshotRateLimiter) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.done = make(chan struct{})
	ticker := s.clock.NewTicker(s.interval)
	s.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				s.emit()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *SnapshotRateLimiter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.done)
}

func (s *SnapshotRateLimiter) emit() {
	if s.lockGroup != nil {
		s.lockGroup.Lock()
		defer s.lockGroup.Unlock()
	}
	s.mu.Lock()
	events := make([]*types.StreamEvent, 0, len(s.current))
	for _, key := range s.order {
		if ev, ok := s.current[key]; ok {
			events = append(events, ev.Clone())
		}
	}
	s.mu.Unlock()
	if len(events) == 0 || s.callback == nil {
		return
	}
	s.callback.Send(types.NewEventChunk(events...))
}

func groupKey(ev *types.StreamEvent) string {
	var b strings.Builder
	for _, v := range ev.Data {
		b.WriteByte('|')
		b.WriteString(fmt.Sprint(v))
	}
	return b.String()
}
