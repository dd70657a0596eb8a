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

package types

// EventChunk is an ordered, mutable, singly-traversable sequence of
// StreamEvents. It is the unit processors exchange: a stage walks the chunk
// with HasNext/Next and may splice events in place around the cursor.
//
// The cursor starts before the first event. InsertBeforeCurrent places an
// event behind the cursor (it is not revisited this pass);
// InsertAfterCurrent places an event directly in front of the cursor (it is
// visited next unless the caller advances past it).
type EventChunk struct {
	first    *StreamEvent
	last     *StreamEvent
	previous *StreamEvent
	current  *StreamEvent
}

// NewEventChunk creates a chunk holding the given events in order.
func NewEventChunk(events ...*StreamEvent) *EventChunk {
	c := &EventChunk{}
	for _, ev := range events {
		c.Add(ev)
	}
	return c
}

// Add appends an event to the end of the chunk.
func (c *EventChunk) Add(ev *StreamEvent) {
	ev.Next = nil
	if c.first == nil {
		c.first = ev
		c.last = ev
		return
	}
	c.last.Next = ev
	c.last = ev
}

// HasNext reports whether another event remains ahead of the cursor.
func (c *EventChunk) HasNext() bool {
	if c.current == nil {
		return c.first != nil && c.previous == nil
	}
	return c.current.Next != nil
}

// Next advances the cursor and returns the event under it.
func (c *EventChunk) Next() *StreamEvent {
	if c.current == nil {
		c.current = c.first
	} else {
		c.previous = c.current
		c.current = c.current.Next
	}
	return c.current
}

// Current returns the event under the cursor, nil before the first Next.
func (c *EventChunk) Current() *StreamEvent {
	return c.current
}

// InsertBeforeCurrent splices ev immediately before the event under the
// cursor. The cursor does not move, so ev is not visited this pass.
func (c *EventChunk) InsertBeforeCurrent(ev *StreamEvent) {
	if c.current == nil {
		return
	}
	ev.Next = c.current
	if c.previous == nil {
		c.first = ev
	} else {
		c.previous.Next = ev
	}
	c.previous = ev
}

// InsertAfterCurrent splices ev immediately after the event under the
// cursor. ev is visited by the following Next unless the caller skips it.
func (c *EventChunk) InsertAfterCurrent(ev *StreamEvent) {
	if c.current == nil {
		return
	}
	ev.Next = c.current.Next
	c.current.Next = ev
	if c.last == c.current {
		c.last = ev
	}
}

// Detach unlinks the event under the cursor from the chunk and returns it,
// leaving the cursor on the previous event.
func (c *EventChunk) Detach() *StreamEvent {
	if c.current == nil {
		return nil
	}
	detached := c.current
	if c.previous == nil {
		c.first = detached.Next
	} else {
		c.previous.Next = detached.Next
	}
	if c.last == detached {
		c.last = c.previous
	}
	c.current = c.previous
	detached.Next = nil
	return detached
}

// Reset rewinds the cursor to before the first event.
func (c *EventChunk) Reset() {
	c.previous = nil
	c.current = nil
}

// First returns the first event of the chunk without moving the cursor.
func (c *EventChunk) First() *StreamEvent {
	return c.first
}

// Clear empties the chunk.
func (c *EventChunk) Clear() {
	c.first = nil
	c.last = nil
	c.previous = nil
	c.current = nil
}

// Len counts the events currently in the chunk.
func (c *EventChunk) Len() int {
	n := 0
	for ev := c.first; ev != nil; ev = ev.Next {
		n++
	}
	return n
}

// Events returns the chunk contents in order as a slice. The events stay
// linked into the chunk.
func (c *EventChunk) Events() []*StreamEvent {
	var events []*StreamEvent
	for ev := c.first; ev != nil; ev = ev.Next {
		events = append(events, ev)
	}
	return events
}
