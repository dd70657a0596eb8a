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

// Package stream holds the executable stream-processing graphs the planner
// assembles: per-stream receivers, handler chains, the single/join/state
// runtime variants and the finalized QueryRuntime.
package stream

import (
	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/types"
)

// Ensure Receiver implements the Processor interface
var _ types.Processor = (*Receiver)(nil)

// Receiver is the entry stage of a single-stream chain. It owns the
// query's critical section: when a lock group is engaged, one Process call
// is one critical section over the whole chunk traversal.
//
// A batch-capable receiver passes chunks through whole; window-backed
// sources tolerate and benefit from batched delivery. A non-batch receiver
// splits the chunk and feeds events downstream one at a time.
type Receiver struct {
	streamID     string
	queryName    string
	batchCapable bool
	lockGroup    *lock.Group
	next         types.Processor
}

// NewReceiver creates a receiver for one source stream.
func NewReceiver(streamID, queryName string, batchCapable bool) *Receiver {
	return &Receiver{
		streamID:     streamID,
		queryName:    queryName,
		batchCapable: batchCapable,
	}
}

// StreamID returns the source stream identifier.
func (r *Receiver) StreamID() string {
	return r.streamID
}

// QueryName returns the owning query's diagnostic name.
func (r *Receiver) QueryName() string {
	return r.queryName
}

// BatchCapable reports whether the receiver accepts whole chunks.
func (r *Receiver) BatchCapable() bool {
	return r.batchCapable
}

// SetLockGroup engages the query lock around chunk processing. Set once
// during assembly.
func (r *Receiver) SetLockGroup(g *lock.Group) {
	r.lockGroup = g
}

// LockGroup returns the engaged lock group, nil when none.
func (r *Receiver) LockGroup() *lock.Group {
	return r.lockGroup
}

// Next returns the downstream processor.
func (r *Receiver) Next() types.Processor {
	return r.next
}

// SetNext sets the downstream processor.
func (r *Receiver) SetNext(p types.Processor) {
	r.next = p
}

// Process feeds arriving events into the chain, under the query lock when
// one is engaged.
func (r *Receiver) Process(chunk *types.EventChunk) {
	if r.lockGroup != nil {
		r.lockGroup.Lock()
		defer r.lockGroup.Unlock()
	}
	if r.next == nil {
		return
	}
	if r.batchCapable {
		r.next.Process(chunk)
		return
	}
	chunk.Reset()
	for chunk.HasNext() {
		ev := chunk.Next()
		single := types.NewEventChunk(ev.Clone())
		r.next.Process(single)
	}
}
