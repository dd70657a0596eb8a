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

// Package lock provides the mergeable mutex indirection shared by
// cooperating queries and windows. A Group is a handle to one mutex; a
// Synchronizer unifies two Groups so every holder of either handle locks
// the same mutex from then on.
package lock

import (
	"sync"
	"sync/atomic"
)

// node is one union-find entry. A node with no parent owns the mutex its
// equivalence class locks; a merged node forwards to its representative.
type node struct {
	id     string
	mu     sync.Mutex
	parent atomic.Pointer[node]
}

func (n *node) root() *node {
	for {
		p := n.parent.Load()
		if p == nil {
			return n
		}
		n = p
	}
}

// Group is an identity-bearing indirection to one mutex. Handles are held
// by queries and windows for the lifetime of the owning app; merging two
// Groups redirects one class under the other in place, so every past and
// future holder observes the unified mutex without being revisited.
type Group struct {
	node *node
}

// NewGroup allocates a fresh Group backed by its own mutex. The id must be
// stable for Groups that can take part in merges (window stream ids);
// private query Groups pass an empty id and never merge.
func NewGroup(id string) *Group {
	n := &node{id: id}
	return &Group{node: n}
}

// ID returns the identifier the Group was created with.
func (g *Group) ID() string {
	return g.node.id
}

// Lock acquires the equivalence class's mutex.
func (g *Group) Lock() {
	g.node.root().mu.Lock()
}

// Unlock releases the equivalence class's mutex.
func (g *Group) Unlock() {
	g.node.root().mu.Unlock()
}

// SharesMutexWith reports whether both Groups resolve to the same mutex.
func (g *Group) SharesMutexWith(other *Group) bool {
	return g.node.root() == other.node.root()
}

// Synchronizer merges lock Groups at assembly time. All merges serialize
// on the Synchronizer's own mutex, so two racing merges of the same pair
// cannot deadlock regardless of argument order.
type Synchronizer struct {
	mu sync.Mutex
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Sync unifies the equivalence classes of a and b. The representative is
// chosen canonically, by the lexicographically smaller root id, so the
// outcome does not depend on argument order. Re-merging an already unified
// pair is a no-op.
func (s *Synchronizer) Sync(a, b *Group) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ra := a.node.root()
	rb := b.node.root()
	if ra == rb {
		return
	}
	if rb.id < ra.id {
		ra, rb = rb, ra
	}
	rb.parent.Store(ra)
}
