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

package planner

import (
	"strings"

	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/stream"
	"github.com/streamcep/streamcep/types"
)

// ResolveLock decides the query's lock group from its shape, or nil when
// the query runs lock-free.
//
// Decision order:
//  1. An explicit synchronized directive forces a fresh private group
//     regardless of shape, unless it is the literal false-indicator, in
//     which case the caller asserts external safety and gets no lock.
//  2. A single stream with no window attachment owns no shared mutable
//     state and gets no lock.
//  3. A join over two window-backed branches merges the windows' groups
//     into one equivalence class and uses it; over one window-backed
//     branch it reuses that window's group unmerged.
//  4. Everything else, a join with no window branches, a pattern or
//     sequence, or a single stream with a private window, gets a fresh
//     private group.
func ResolveLock(query *types.Query, streamRuntime stream.StreamRuntime, isWindow bool,
	catalog *Catalog, sync *lock.Synchronizer) *lock.Group {

	if directive := query.Annotations.Synchronized; directive != "" {
		if strings.EqualFold(directive, types.SyncFalse) {
			return nil
		}
		// Forced locking; a private group never reaches the synchronizer,
		// so it carries no id.
		return lock.NewGroup("")
	}

	if _, single := streamRuntime.(*stream.SingleStreamRuntime); single && !isWindow {
		return nil
	}

	if join, ok := streamRuntime.(*stream.JoinStreamRuntime); ok {
		branches := join.MetaStateEvent().MetaStreamEvents()
		left := windowGroup(catalog, branches[0])
		right := windowGroup(catalog, branches[1])
		switch {
		case left != nil && right != nil:
			// Join between two registered windows: unify both groups so
			// the query and both windows serialize on one mutex. Either
			// handle works afterwards; merging is idempotent and the
			// synchronizer picks the representative canonically.
			if !left.SharesMutexWith(right) {
				sync.Sync(left, right)
			}
			return left
		case left != nil:
			return left
		case right != nil:
			return right
		}
	}

	return lock.NewGroup("")
}

// windowGroup returns the registered window's lock group for a
// window-backed branch, nil otherwise.
func windowGroup(catalog *Catalog, branch *types.MetaStreamEvent) *lock.Group {
	if branch == nil || !branch.IsWindowEvent() {
		return nil
	}
	def := branch.LastInputDefinition()
	if def == nil {
		return nil
	}
	if nw, ok := catalog.Windows().Lookup(def.ID); ok {
		return nw.LockGroup()
	}
	return nil
}
