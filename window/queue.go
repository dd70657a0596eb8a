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

package window

import "github.com/streamcep/streamcep/types"

// EventQueue is the ordered bounded collection backing a window's expired
// events: append at the tail, pop at the head, snapshot and restore. It is
// not synchronized; the owning window serializes access on its lock group.
type EventQueue struct {
	capacity int
	events   []*types.StreamEvent
}

// NewEventQueue creates a queue sized for capacity events.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{
		capacity: capacity,
		events:   make([]*types.StreamEvent, 0, capacity),
	}
}

// Add appends an event at the tail.
func (q *EventQueue) Add(ev *types.StreamEvent) {
	q.events = append(q.events, ev)
}

// Poll removes and returns the oldest event, nil when empty.
func (q *EventQueue) Poll() *types.StreamEvent {
	if len(q.events) == 0 {
		return nil
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Events returns the queued events oldest first. The slice is shared;
// callers must not retain it past the owning critical section.
func (q *EventQueue) Events() []*types.StreamEvent {
	return q.events
}

// Snapshot returns clones of the queued events in order.
func (q *EventQueue) Snapshot() []*types.StreamEvent {
	snapshot := make([]*types.StreamEvent, 0, len(q.events))
	for _, ev := range q.events {
		snapshot = append(snapshot, ev.Clone())
	}
	return snapshot
}

// Restore discards the current contents and replaces them verbatim with
// clones of the given events.
func (q *EventQueue) Restore(events []*types.StreamEvent) {
	q.events = make([]*types.StreamEvent, 0, q.capacity)
	for _, ev := range events {
		q.events = append(q.events, ev.Clone())
	}
}

// Clear empties the queue.
func (q *EventQueue) Clear() {
	q.events = q.events[:0]
}
