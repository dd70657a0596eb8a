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

// Package output wires completed query results to the outside: rate
// limiters deciding when results leave, and callbacks converting result
// batches into emitted events.
package output

import "github.com/streamcep/streamcep/types"

// Sink consumes the events a query emits.
type Sink func(events []*types.StreamEvent)

// Callback converts completed result batches into emitted events.
type Callback interface {
	Send(chunk *types.EventChunk)
}

// InsertIntoStreamCallback emits results into the declared output stream.
// Single-stream results pass through as-is; multi-branch (join/state)
// results are rebuilt as fresh events so no branch linkage escapes the
// query graph.
type InsertIntoStreamCallback struct {
	outputDefinition *types.StreamDefinition
	multiBranch      bool
	queryName        string
	sink             Sink
}

var _ Callback = (*InsertIntoStreamCallback)(nil)

// NewInsertIntoStreamCallback creates the callback for one query.
func NewInsertIntoStreamCallback(outputDefinition *types.StreamDefinition, multiBranch bool,
	queryName string, sink Sink) *InsertIntoStreamCallback {
	return &InsertIntoStreamCallback{
		outputDefinition: outputDefinition,
		multiBranch:      multiBranch,
		queryName:        queryName,
		sink:             sink,
	}
}

// OutputDefinition returns the emitted stream's shape.
func (c *InsertIntoStreamCallback) OutputDefinition() *types.StreamDefinition {
	return c.outputDefinition
}

func (c *InsertIntoStreamCallback) Send(chunk *types.EventChunk) {
	if c.sink == nil {
		return
	}
	var events []*types.StreamEvent
	for ev := chunk.First(); ev != nil; ev = ev.Next {
		if c.multiBranch {
			out := &types.StreamEvent{Type: ev.Type, Timestamp: ev.Timestamp}
			out.Data = make([]interface{}, len(ev.Data))
			copy(out.Data, ev.Data)
			events = append(events, out)
		} else {
			events = append(events, ev.Clone())
		}
	}
	if len(events) > 0 {
		c.sink(events)
	}
}
