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

// Package planner turns validated declarative query plans into executable
// runtimes: the stream plan assembler builds per-input-stream graphs, the
// query plan assembler orchestrates lock resolution, rate limiting and
// output wiring into one runnable QueryRuntime.
package planner

import (
	"sync"

	"github.com/streamcep/streamcep/types"
	"github.com/streamcep/streamcep/window"
)

// Catalog is the definition context assembly runs against: plain stream
// definitions plus the named-window registry. It is read-only during
// assembly apart from definition registration itself.
type Catalog struct {
	mu      sync.RWMutex
	streams map[string]*types.StreamDefinition
	windows *window.Registry
}

// NewCatalog creates a catalog over a window registry.
func NewCatalog(windows *window.Registry) *Catalog {
	if windows == nil {
		windows = window.NewRegistry()
	}
	return &Catalog{
		streams: make(map[string]*types.StreamDefinition),
		windows: windows,
	}
}

// DefineStream registers a plain stream definition. Redefining an id
// fails with a DuplicateDefinitionError.
func (c *Catalog) DefineStream(def *types.StreamDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.streams[def.ID]; exists {
		return &types.DuplicateDefinitionError{Msg: "stream " + def.ID + " is already defined"}
	}
	if _, exists := c.windows.Lookup(def.ID); exists {
		return &types.DuplicateDefinitionError{Msg: "window " + def.ID + " is already defined"}
	}
	c.streams[def.ID] = def
	return nil
}

// StreamDefinition resolves a stream id to its shape, looking through
// plain streams first and named windows second.
func (c *Catalog) StreamDefinition(id string) (*types.StreamDefinition, bool) {
	c.mu.RLock()
	def, ok := c.streams[id]
	c.mu.RUnlock()
	if ok {
		return def, true
	}
	if nw, ok := c.windows.Lookup(id); ok {
		return nw.Definition(), true
	}
	return nil, false
}

// Windows returns the named-window registry.
func (c *Catalog) Windows() *window.Registry {
	return c.windows
}
