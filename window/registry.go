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

import (
	"sort"
	"sync"

	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/types"
)

// NamedWindow is an externally defined window other queries read from. It
// owns a length window guarded by a lock group keyed to the window's
// stream id, and republishes processed chunks to its subscribers.
type NamedWindow struct {
	definition *types.StreamDefinition
	window     *LengthWindow

	mu          sync.RWMutex
	subscribers []types.Processor
}

// NewNamedWindow creates a named window of the given capacity.
func NewNamedWindow(definition *types.StreamDefinition, capacity int, clock clockz.Clock) (*NamedWindow, error) {
	w, err := NewLengthWindow([]interface{}{capacity}, definition, clock)
	if err != nil {
		return nil, err
	}
	w.SetLockGroup(lock.NewGroup(definition.ID))
	nw := &NamedWindow{definition: definition, window: w}
	w.SetNext(republisher{nw})
	return nw, nil
}

// Definition returns the window's stream definition.
func (nw *NamedWindow) Definition() *types.StreamDefinition {
	return nw.definition
}

// Window returns the backing length window.
func (nw *NamedWindow) Window() *LengthWindow {
	return nw.window
}

// LockGroup returns the lock group shared with queries reading from this
// window.
func (nw *NamedWindow) LockGroup() *lock.Group {
	return nw.window.LockGroup()
}

// Subscribe attaches a downstream processor. Each subscriber receives its
// own copy of every processed chunk.
func (nw *NamedWindow) Subscribe(p types.Processor) {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	nw.subscribers = append(nw.subscribers, p)
}

// Process feeds a chunk through the window and on to the subscribers.
func (nw *NamedWindow) Process(chunk *types.EventChunk) {
	nw.window.Process(chunk)
}

// republisher fans a processed chunk out to the named window's
// subscribers, cloning the events per subscriber so chains do not share
// chunk linkage.
type republisher struct {
	nw *NamedWindow
}

func (r republisher) Process(chunk *types.EventChunk) {
	r.nw.mu.RLock()
	subscribers := make([]types.Processor, len(r.nw.subscribers))
	copy(subscribers, r.nw.subscribers)
	r.nw.mu.RUnlock()

	for _, sub := range subscribers {
		copied := types.NewEventChunk()
		for ev := chunk.First(); ev != nil; ev = ev.Next {
			copied.Add(ev.Clone())
		}
		sub.Process(copied)
	}
}

func (r republisher) Next() types.Processor     { return nil }
func (r republisher) SetNext(p types.Processor) {}

// Registry maps stream identifiers to named windows. It is consulted
// read-only during assembly and is the checkpoint manager's enumeration
// source.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]*NamedWindow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[string]*NamedWindow)}
}

// Register defines a named window. Redefining an id fails with a
// DuplicateDefinitionError.
func (r *Registry) Register(definition *types.StreamDefinition, capacity int, clock clockz.Clock) (*NamedWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.windows[definition.ID]; exists {
		return nil, &types.DuplicateDefinitionError{
			Msg: "window " + definition.ID + " is already defined",
		}
	}
	nw, err := NewNamedWindow(definition, capacity, clock)
	if err != nil {
		return nil, err
	}
	r.windows[definition.ID] = nw
	return nw, nil
}

// Lookup returns the named window for a stream id, if any.
func (r *Registry) Lookup(streamID string) (*NamedWindow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nw, ok := r.windows[streamID]
	return nw, ok
}

// Names returns the registered window ids in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.windows))
	for name := range r.windows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
