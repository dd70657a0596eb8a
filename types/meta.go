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

import "fmt"

// Attribute is one named, loosely typed column of a stream definition.
type Attribute struct {
	Name string
	Type string
}

// StreamDefinition describes the shape of one stream: its identifier and
// its ordered attribute list.
type StreamDefinition struct {
	ID         string
	Attributes []Attribute
}

// NewStreamDefinition creates a stream definition.
func NewStreamDefinition(id string, attributes ...Attribute) *StreamDefinition {
	return &StreamDefinition{ID: id, Attributes: attributes}
}

// AttributeIndex returns the position of the named attribute, or -1.
func (d *StreamDefinition) AttributeIndex(name string) int {
	for i, attr := range d.Attributes {
		if attr.Name == name {
			return i
		}
	}
	return -1
}

// MetaComplexEvent is the event-shape metadata an assembled stream graph
// exposes: single-stream or multi-branch form. It is computed once at
// assembly time and then frozen via Reduce for runtime use.
type MetaComplexEvent interface {
	// OutputDefinition is the shape of the events the query emits
	OutputDefinition() *StreamDefinition
	SetOutputDefinition(def *StreamDefinition)
	// Reduce drops scratch-only attributes and freezes positional lookup.
	// Reducing twice is a no-op.
	Reduce()
}

// MetaStreamEvent is the single-branch event shape: the chain of input
// definitions the event passed through during assembly, scratch attributes
// added by intermediate handlers, and whether the branch is window-backed.
type MetaStreamEvent struct {
	inputDefinitions []*StreamDefinition
	outputDefinition *StreamDefinition
	scratch          []Attribute
	windowEvent      bool
	index            map[string]int
	reduced          bool
}

var _ MetaComplexEvent = (*MetaStreamEvent)(nil)

// NewMetaStreamEvent creates empty single-branch metadata.
func NewMetaStreamEvent() *MetaStreamEvent {
	return &MetaStreamEvent{}
}

// AddInputDefinition appends a definition to the chain. The last added
// definition is the effective runtime shape of the branch.
func (m *MetaStreamEvent) AddInputDefinition(def *StreamDefinition) {
	m.inputDefinitions = append(m.inputDefinitions, def)
}

// LastInputDefinition returns the effective shape of the branch.
func (m *MetaStreamEvent) LastInputDefinition() *StreamDefinition {
	if len(m.inputDefinitions) == 0 {
		return nil
	}
	return m.inputDefinitions[len(m.inputDefinitions)-1]
}

// AddScratchAttribute records an assembly-only attribute. Scratch
// attributes are visible to handlers during assembly and dropped by Reduce.
func (m *MetaStreamEvent) AddScratchAttribute(attr Attribute) {
	m.scratch = append(m.scratch, attr)
}

// ScratchAttributes returns the attributes Reduce will drop.
func (m *MetaStreamEvent) ScratchAttributes() []Attribute {
	return m.scratch
}

// SetWindowEvent flags the branch as window-backed.
func (m *MetaStreamEvent) SetWindowEvent(windowEvent bool) {
	m.windowEvent = windowEvent
}

// IsWindowEvent reports whether the branch is window-backed.
func (m *MetaStreamEvent) IsWindowEvent() bool {
	return m.windowEvent
}

func (m *MetaStreamEvent) OutputDefinition() *StreamDefinition {
	return m.outputDefinition
}

func (m *MetaStreamEvent) SetOutputDefinition(def *StreamDefinition) {
	m.outputDefinition = def
}

// Reduce freezes the metadata: scratch attributes are discarded and the
// attribute name to position index is built from the effective definition.
func (m *MetaStreamEvent) Reduce() {
	if m.reduced {
		return
	}
	m.scratch = nil
	m.index = make(map[string]int)
	if def := m.LastInputDefinition(); def != nil {
		for i, attr := range def.Attributes {
			m.index[attr.Name] = i
		}
	}
	m.reduced = true
}

// AttributePosition resolves an attribute name to its frozen positional
// slot. Valid only after Reduce.
func (m *MetaStreamEvent) AttributePosition(name string) (int, bool) {
	pos, ok := m.index[name]
	return pos, ok
}

// MetaStateEvent is the multi-branch event shape of join and pattern
// runtimes: a fixed-size array of MetaStreamEvent branches.
type MetaStateEvent struct {
	branches         []*MetaStreamEvent
	outputDefinition *StreamDefinition
	used             int
}

var _ MetaComplexEvent = (*MetaStateEvent)(nil)

// NewMetaStateEvent creates multi-branch metadata sized to the number of
// participating streams.
func NewMetaStateEvent(branchCount int) *MetaStateEvent {
	return &MetaStateEvent{branches: make([]*MetaStreamEvent, branchCount)}
}

// AddMetaStreamEvent fills the next free branch slot.
func (m *MetaStateEvent) AddMetaStreamEvent(meta *MetaStreamEvent) {
	m.branches[m.used] = meta
	m.used++
}

// MetaStreamEvents returns the branch array.
func (m *MetaStateEvent) MetaStreamEvents() []*MetaStreamEvent {
	return m.branches
}

// BranchCount returns the number of participating streams.
func (m *MetaStateEvent) BranchCount() int {
	return len(m.branches)
}

func (m *MetaStateEvent) OutputDefinition() *StreamDefinition {
	return m.outputDefinition
}

func (m *MetaStateEvent) SetOutputDefinition(def *StreamDefinition) {
	m.outputDefinition = def
}

func (m *MetaStateEvent) Reduce() {
	for _, branch := range m.branches {
		if branch != nil {
			branch.Reduce()
		}
	}
}

// VariableExecutor reads one attribute of one branch by direct index. Its
// positional slot is assigned once, after the owning metadata is reduced.
type VariableExecutor struct {
	Attribute string
	StreamID  string
	// assigned by UpdateVariablePositions
	BranchIndex int
	Position    int
	bound       bool
}

// NewVariableExecutor creates an unbound variable reference.
func NewVariableExecutor(streamID, attribute string) *VariableExecutor {
	return &VariableExecutor{StreamID: streamID, Attribute: attribute, Position: -1}
}

// Execute reads the bound attribute from a single-branch event.
func (v *VariableExecutor) Execute(ev *StreamEvent) interface{} {
	if !v.bound || v.Position < 0 || v.Position >= len(ev.Data) {
		return nil
	}
	return ev.Data[v.Position]
}

// ExecuteState reads the bound attribute from a multi-branch event.
func (v *VariableExecutor) ExecuteState(ev *StateEvent) interface{} {
	if !v.bound || v.BranchIndex >= len(ev.StreamEvents) {
		return nil
	}
	branch := ev.StreamEvents[v.BranchIndex]
	if branch == nil || v.Position < 0 || v.Position >= len(branch.Data) {
		return nil
	}
	return branch.Data[v.Position]
}

// UpdateVariablePositions assigns each variable executor its final branch
// and positional slot against reduced metadata.
func UpdateVariablePositions(meta MetaComplexEvent, executors []*VariableExecutor) error {
	for _, ex := range executors {
		switch m := meta.(type) {
		case *MetaStreamEvent:
			pos, ok := m.AttributePosition(ex.Attribute)
			if !ok {
				return fmt.Errorf("attribute %q not defined on stream %q", ex.Attribute, ex.StreamID)
			}
			ex.BranchIndex = 0
			ex.Position = pos
			ex.bound = true
		case *MetaStateEvent:
			bound := false
			for i, branch := range m.MetaStreamEvents() {
				if branch == nil {
					continue
				}
				def := branch.LastInputDefinition()
				if def == nil {
					continue
				}
				if ex.StreamID != "" && def.ID != ex.StreamID {
					continue
				}
				if pos, ok := branch.AttributePosition(ex.Attribute); ok {
					ex.BranchIndex = i
					ex.Position = pos
					ex.bound = true
					bound = true
					break
				}
			}
			if !bound {
				return fmt.Errorf("attribute %q not defined on any branch", ex.Attribute)
			}
		default:
			return fmt.Errorf("unknown meta complex event %T", meta)
		}
	}
	return nil
}
