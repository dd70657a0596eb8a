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

// EventType tags a StreamEvent with its role in the stream.
type EventType int

const (
	// CURRENT marks a newly arrived event
	CURRENT EventType = iota
	// EXPIRED marks a window-evicted event re-emitted for downstream accounting
	EXPIRED
	// TIMER marks a clock-driven event carrying only a timestamp
	TIMER
	// RESET signals downstream consumers to discard accumulated incremental state
	RESET
)

// String returns the string representation of an event type.
func (t EventType) String() string {
	switch t {
	case CURRENT:
		return "CURRENT"
	case EXPIRED:
		return "EXPIRED"
	case TIMER:
		return "TIMER"
	case RESET:
		return "RESET"
	default:
		return "UNKNOWN"
	}
}

// StreamEvent is a single event flowing through a stream-processing graph.
// It carries an ordered attribute vector matching the stream definition it
// was admitted under. Events are chained through Next when held in an
// EventChunk, so one event instance belongs to at most one chunk at a time.
type StreamEvent struct {
	Type      EventType
	Timestamp int64
	Data      []interface{}
	Next      *StreamEvent
}

// NewStreamEvent creates a CURRENT event with the given timestamp and
// attribute vector.
func NewStreamEvent(timestamp int64, data ...interface{}) *StreamEvent {
	return &StreamEvent{
		Type:      CURRENT,
		Timestamp: timestamp,
		Data:      data,
	}
}

// Clone returns a copy of the event with its own attribute vector and no
// chunk linkage. Callers may retag or restamp the clone freely.
func (e *StreamEvent) Clone() *StreamEvent {
	data := make([]interface{}, len(e.Data))
	copy(data, e.Data)
	return &StreamEvent{
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Data:      data,
	}
}

// StateEvent is the multi-branch event produced by join and pattern
// runtimes. StreamEvents holds one branch slot per participating stream;
// OutputData is filled by the selector's event populator.
type StateEvent struct {
	Type         EventType
	Timestamp    int64
	StreamEvents []*StreamEvent
	OutputData   []interface{}
	Next         *StateEvent
}

// NewStateEvent creates a CURRENT state event with branchCount empty slots.
func NewStateEvent(timestamp int64, branchCount int) *StateEvent {
	return &StateEvent{
		Type:         CURRENT,
		Timestamp:    timestamp,
		StreamEvents: make([]*StreamEvent, branchCount),
	}
}
