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

package stream

import (
	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/types"
	"github.com/streamcep/streamcep/window"
)

// StreamRuntime is an assembled input-stream graph: the receivers events
// enter through, the event-shape metadata the graph exposes, and the
// wiring points the query planner finalizes.
type StreamRuntime interface {
	// MetaComplexEvent returns the graph's event-shape metadata
	MetaComplexEvent() types.MetaComplexEvent
	// SingleRuntimes returns the graph's single-stream branches
	SingleRuntimes() []*SingleStreamRuntime
	// SetCommonProcessor attaches the stage all branches terminate at
	SetCommonProcessor(p types.Processor)
	// InitPlan propagates the resolved lock and query name through every
	// stage, making the graph executable
	InitPlan(lockGroup *lock.Group, queryName string)
}

// SingleStreamRuntime wraps one receiver-headed handler chain plus its
// metadata.
type SingleStreamRuntime struct {
	receiver *Receiver
	meta     *types.MetaStreamEvent
}

var _ StreamRuntime = (*SingleStreamRuntime)(nil)

// NewSingleStreamRuntime creates a single-stream runtime.
func NewSingleStreamRuntime(receiver *Receiver, meta *types.MetaStreamEvent) *SingleStreamRuntime {
	return &SingleStreamRuntime{receiver: receiver, meta: meta}
}

// Receiver returns the chain's entry stage.
func (s *SingleStreamRuntime) Receiver() *Receiver {
	return s.receiver
}

func (s *SingleStreamRuntime) MetaComplexEvent() types.MetaComplexEvent {
	return s.meta
}

// MetaStreamEvent returns the branch metadata in its concrete form.
func (s *SingleStreamRuntime) MetaStreamEvent() *types.MetaStreamEvent {
	return s.meta
}

func (s *SingleStreamRuntime) SingleRuntimes() []*SingleStreamRuntime {
	return []*SingleStreamRuntime{s}
}

func (s *SingleStreamRuntime) SetCommonProcessor(p types.Processor) {
	SetToLast(s.receiver, p)
}

// HasWindowStage reports whether any stage of the chain is a window
// attachment.
func (s *SingleStreamRuntime) HasWindowStage() bool {
	for cur := s.receiver.Next(); cur != nil; cur = cur.Next() {
		if _, ok := cur.(*window.LengthWindow); ok {
			return true
		}
	}
	return false
}

// WindowStages returns the window attachments of the chain in order.
func (s *SingleStreamRuntime) WindowStages() []*window.LengthWindow {
	var stages []*window.LengthWindow
	for cur := s.receiver.Next(); cur != nil; cur = cur.Next() {
		if w, ok := cur.(*window.LengthWindow); ok {
			stages = append(stages, w)
		}
	}
	return stages
}

func (s *SingleStreamRuntime) InitPlan(lockGroup *lock.Group, queryName string) {
	if lockGroup == nil {
		return
	}
	s.receiver.SetLockGroup(lockGroup)
	// The receiver holds the group for the whole traversal; window stages
	// on the same chain must not re-acquire it.
	for _, w := range s.WindowStages() {
		w.SetLockGroup(lockGroup)
		w.SetExternallySynchronized(true)
	}
}

// JoinStreamRuntime correlates exactly two single-stream branches. Its
// metadata is a MetaStateEvent with two branches, each flagged as
// window-backed or not; the lock resolver reads exactly that shape.
type JoinStreamRuntime struct {
	left  *SingleStreamRuntime
	right *SingleStreamRuntime
	meta  *types.MetaStateEvent
}

var _ StreamRuntime = (*JoinStreamRuntime)(nil)

// NewJoinStreamRuntime creates a join runtime over two assembled branches.
func NewJoinStreamRuntime(left, right *SingleStreamRuntime, meta *types.MetaStateEvent) *JoinStreamRuntime {
	return &JoinStreamRuntime{left: left, right: right, meta: meta}
}

// Left returns the left branch.
func (j *JoinStreamRuntime) Left() *SingleStreamRuntime { return j.left }

// Right returns the right branch.
func (j *JoinStreamRuntime) Right() *SingleStreamRuntime { return j.right }

func (j *JoinStreamRuntime) MetaComplexEvent() types.MetaComplexEvent {
	return j.meta
}

// MetaStateEvent returns the two-branch metadata in its concrete form.
func (j *JoinStreamRuntime) MetaStateEvent() *types.MetaStateEvent {
	return j.meta
}

func (j *JoinStreamRuntime) SingleRuntimes() []*SingleStreamRuntime {
	return []*SingleStreamRuntime{j.left, j.right}
}

func (j *JoinStreamRuntime) SetCommonProcessor(p types.Processor) {
	j.left.SetCommonProcessor(p)
	j.right.SetCommonProcessor(p)
}

func (j *JoinStreamRuntime) InitPlan(lockGroup *lock.Group, queryName string) {
	j.left.InitPlan(lockGroup, queryName)
	j.right.InitPlan(lockGroup, queryName)
}

// StateStreamRuntime matches a pattern or sequence across its branches.
type StateStreamRuntime struct {
	kind     types.StateStreamKind
	branches []*SingleStreamRuntime
	meta     *types.MetaStateEvent
}

var _ StreamRuntime = (*StateStreamRuntime)(nil)

// NewStateStreamRuntime creates a pattern/sequence runtime over assembled
// branches.
func NewStateStreamRuntime(kind types.StateStreamKind, branches []*SingleStreamRuntime, meta *types.MetaStateEvent) *StateStreamRuntime {
	return &StateStreamRuntime{kind: kind, branches: branches, meta: meta}
}

// Kind returns whether the runtime matches a pattern or a sequence.
func (s *StateStreamRuntime) Kind() types.StateStreamKind { return s.kind }

func (s *StateStreamRuntime) MetaComplexEvent() types.MetaComplexEvent {
	return s.meta
}

func (s *StateStreamRuntime) SingleRuntimes() []*SingleStreamRuntime {
	return s.branches
}

func (s *StateStreamRuntime) SetCommonProcessor(p types.Processor) {
	for _, branch := range s.branches {
		branch.SetCommonProcessor(p)
	}
}

func (s *StateStreamRuntime) InitPlan(lockGroup *lock.Group, queryName string) {
	for _, branch := range s.branches {
		branch.InitPlan(lockGroup, queryName)
	}
}
