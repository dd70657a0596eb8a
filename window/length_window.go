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

// Package window implements the sliding length window, the canonical
// stateful stream processor: it buffers the last C events of a stream,
// evicts on overflow, supports point lookups for joins and patterns, and
// checkpoints and restores its state.
package window

import (
	"github.com/spf13/cast"
	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/condition"
	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/types"
)

// Ensure LengthWindow implements the Processor interface
var _ types.Processor = (*LengthWindow)(nil)

// LengthWindow holds the last `length` events of a stream in a sliding
// manner. Each admission past capacity re-emits the evicted event, tagged
// EXPIRED and restamped to the current logical time, immediately before
// the event that displaced it.
//
// Process, Find, Snapshot and Restore all serialize on one lock group per
// window instance. The lock synchronizer may hand the same group to
// cooperating queries, so internal and cross-query consistency share
// exactly one lock.
type LengthWindow struct {
	length       int
	count        int
	expiredQueue *EventQueue

	definition *types.StreamDefinition
	clock      clockz.Clock
	lockGroup  *lock.Group
	next       types.Processor

	// externallySynced is set when an upstream stage (the query's
	// receiver) already holds this window's lock group around the whole
	// chunk traversal; Process must not re-acquire a non-reentrant mutex.
	externallySynced bool
}

// State is the checkpointable state of a length window: the admission
// count and the expired queue contents in order.
type State struct {
	Count  int
	Events []*types.StreamEvent
}

// NewLengthWindow creates a length window over the given stream shape.
// params must hold exactly one constant positive integer, the capacity.
func NewLengthWindow(params []interface{}, definition *types.StreamDefinition, clock clockz.Clock) (*LengthWindow, error) {
	if len(params) != 1 {
		return nil, types.NewValidationError(
			"length window should only have one parameter (<int> window.length), but found %d input parameters", len(params))
	}
	length, err := cast.ToIntE(params[0])
	if err != nil {
		return nil, types.NewValidationError("length window parameter %v is not a constant integer", params[0])
	}
	if length < 1 {
		return nil, types.NewValidationError("length window parameter must be positive, got %d", length)
	}
	if clock == nil {
		clock = clockz.RealClock
	}
	return &LengthWindow{
		length:       length,
		expiredQueue: NewEventQueue(length),
		definition:   definition,
		clock:        clock,
		lockGroup:    lock.NewGroup(""),
	}, nil
}

// Length returns the window capacity.
func (w *LengthWindow) Length() int {
	return w.length
}

// Definition returns the window's backing stream shape.
func (w *LengthWindow) Definition() *types.StreamDefinition {
	return w.definition
}

// LockGroup returns the lock group guarding this window.
func (w *LengthWindow) LockGroup() *lock.Group {
	return w.lockGroup
}

// SetLockGroup replaces the guarding lock group. Called once during
// assembly, before any event flows.
func (w *LengthWindow) SetLockGroup(g *lock.Group) {
	if g != nil {
		w.lockGroup = g
	}
}

// SetExternallySynchronized marks the window as running under a chain
// whose entry stage holds the window's lock group for it.
func (w *LengthWindow) SetExternallySynchronized(synced bool) {
	w.externallySynced = synced
}

// Next returns the downstream processor.
func (w *LengthWindow) Next() types.Processor {
	return w.next
}

// SetNext sets the downstream processor.
func (w *LengthWindow) SetNext(p types.Processor) {
	w.next = p
}

// Process admits each incoming event under one critical section, splicing
// eviction results into the chunk in place, then forwards the chunk.
//
// Per event E: a clone of E is tagged EXPIRED. Below capacity the clone is
// queued with no emission. At capacity the oldest queued clone is popped,
// restamped to the current logical time and inserted immediately before E.
// If the queue was externally drained while the count stayed at capacity,
// a RESET clone and an EXPIRED clone of E are inserted after E instead,
// telling downstream consumers to discard incremental state and rebase.
func (w *LengthWindow) Process(chunk *types.EventChunk) {
	if !w.externallySynced {
		w.lockGroup.Lock()
	}
	currentTime := w.clock.Now().UnixMilli()
	chunk.Reset()
	for chunk.HasNext() {
		ev := chunk.Next()
		cloned := ev.Clone()
		cloned.Type = types.EXPIRED
		if w.count < w.length {
			w.count++
			w.expiredQueue.Add(cloned)
			continue
		}
		first := w.expiredQueue.Poll()
		if first != nil {
			first.Timestamp = currentTime
			chunk.InsertBeforeCurrent(first)
			w.expiredQueue.Add(cloned)
			continue
		}
		resetEvent := ev.Clone()
		resetEvent.Type = types.RESET
		// Splice so the chunk reads E, RESET, EXPIRED, then step the
		// cursor past both inserted events so they are not reprocessed
		// this pass.
		chunk.InsertAfterCurrent(cloned)
		chunk.InsertAfterCurrent(resetEvent)
		chunk.Next()
		chunk.Next()
	}
	if !w.externallySynced {
		w.lockGroup.Unlock()
	}

	if w.next != nil {
		w.next.Process(chunk)
	}
}

// Find evaluates the compiled condition against the retained events
// matched against the probe and returns a clone of the first match, or
// nil. State is not mutated.
func (w *LengthWindow) Find(probe *types.StreamEvent, compiledCondition *condition.CompiledCondition) *types.StreamEvent {
	w.lockGroup.Lock()
	defer w.lockGroup.Unlock()
	for _, candidate := range w.expiredQueue.Events() {
		if compiledCondition.Matches(probe, candidate) {
			return candidate.Clone()
		}
	}
	return nil
}

// CompileCondition binds a predicate against this window's backing shape
// once, for repeated reuse by Find.
func (w *LengthWindow) CompileCondition(predicate string, probeDefinition *types.StreamDefinition) (*condition.CompiledCondition, error) {
	return condition.CompileMatch(predicate, w.definition, probeDefinition)
}

// Snapshot captures the window state under the lock.
func (w *LengthWindow) Snapshot() State {
	w.lockGroup.Lock()
	defer w.lockGroup.Unlock()
	return State{
		Count:  w.count,
		Events: w.expiredQueue.Snapshot(),
	}
}

// Restore clears the current state and replaces it verbatim with the
// snapshot's count and queue contents. Destructive and total.
func (w *LengthWindow) Restore(state State) {
	w.lockGroup.Lock()
	defer w.lockGroup.Unlock()
	w.count = state.Count
	w.expiredQueue.Clear()
	w.expiredQueue.Restore(state.Events)
}

// Count returns the current admission count, for diagnostics and tests.
func (w *LengthWindow) Count() int {
	w.lockGroup.Lock()
	defer w.lockGroup.Unlock()
	return w.count
}

// QueueLen returns the expired queue length, for diagnostics and tests.
func (w *LengthWindow) QueueLen() int {
	w.lockGroup.Lock()
	defer w.lockGroup.Unlock()
	return w.expiredQueue.Len()
}
