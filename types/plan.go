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

import "time"

// The query plan AST. Plans arrive validated from an external compiler;
// the planner package turns them into executable runtimes.

// InputStream is the variant over the supported input-stream kinds.
type InputStream interface {
	// StreamIDs lists the source stream identifiers, in declaration order
	StreamIDs() []string
	inputStream()
}

// StreamHandler is one per-event stage declared on a single input stream.
type StreamHandler interface {
	streamHandler()
}

// FilterHandler drops events whose boolean expression evaluates false.
type FilterHandler struct {
	Expression string
}

func (*FilterHandler) streamHandler() {}

// FunctionHandler computes an expression per event and appends the result
// as a new attribute named As.
type FunctionHandler struct {
	As         string
	Expression string
}

func (*FunctionHandler) streamHandler() {}

// WindowHandler attaches a sliding length window to the stream. Params
// must hold exactly one constant positive integer, the window capacity.
type WindowHandler struct {
	Params []interface{}
}

func (*WindowHandler) streamHandler() {}

// SingleInputStream reads one source stream through a handler chain.
type SingleInputStream struct {
	StreamID string
	Handlers []StreamHandler
}

func (s *SingleInputStream) StreamIDs() []string { return []string{s.StreamID} }
func (*SingleInputStream) inputStream()          {}

// JoinInputStream correlates exactly two single streams on a condition.
type JoinInputStream struct {
	Left      *SingleInputStream
	Right     *SingleInputStream
	Condition string
}

func (j *JoinInputStream) StreamIDs() []string {
	return append(j.Left.StreamIDs(), j.Right.StreamIDs()...)
}
func (*JoinInputStream) inputStream() {}

// StateStreamKind distinguishes pattern from sequence state streams.
type StateStreamKind int

const (
	// StateStreamPattern matches events with other events possibly in between
	StateStreamPattern StateStreamKind = iota
	// StateStreamSequence matches strictly consecutive events
	StateStreamSequence
)

// StateInputStream matches a pattern or sequence across several streams.
type StateInputStream struct {
	Kind    StateStreamKind
	Streams []*SingleInputStream
}

func (s *StateInputStream) StreamIDs() []string {
	ids := make([]string, 0, len(s.Streams))
	for _, st := range s.Streams {
		ids = append(ids, st.StreamID)
	}
	return ids
}
func (*StateInputStream) inputStream() {}

// SelectAttribute is one projected output attribute. Expression may be a
// bare attribute reference or a computed expression over the input shape.
type SelectAttribute struct {
	Name       string
	Expression string
}

// SelectorSpec declares the query's projection and grouping.
type SelectorSpec struct {
	Attributes []SelectAttribute
	GroupBy    []string
	Having     string
}

// OutputEventType declares which event kinds a query emits.
type OutputEventType int

const (
	// CurrentEvents emits only newly arrived results
	CurrentEvents OutputEventType = iota
	// ExpiredEvents emits only window-evicted results
	ExpiredEvents
	// AllEvents emits both
	AllEvents
)

// OutputStreamSpec declares the output stream and its event kinds.
type OutputStreamSpec struct {
	ID        string
	EventType OutputEventType
}

// RateMode selects the output rate-limiting policy.
type RateMode int

const (
	// RateNone emits every completed result immediately
	RateNone RateMode = iota
	// RateEvery accumulates results and emits them on a fixed interval
	RateEvery
	// RateSnapshot recomputes and emits the full result set each interval
	RateSnapshot
)

// RateSpec parameterizes the output rate limiter.
type RateSpec struct {
	Mode     RateMode
	Interval time.Duration
}

// SyncFalse is the literal false-indicator of the synchronized annotation:
// the caller asserts external safety and declines the query lock.
const SyncFalse = "false"

// Annotations carries the query's name and synchronization directives.
// Empty strings mean the annotation is absent.
type Annotations struct {
	Name string
	// Synchronized forces a private query lock when present and not equal
	// to SyncFalse (case-insensitive)
	Synchronized string
}

// Query is one validated, declarative query plan.
type Query struct {
	Input       InputStream
	Selector    SelectorSpec
	Output      OutputStreamSpec
	Rate        RateSpec
	Annotations Annotations
}
