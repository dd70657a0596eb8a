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

package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLockUnlock(t *testing.T) {
	g := NewGroup("w1")
	assert.Equal(t, "w1", g.ID())

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Lock()
			counter++
			g.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestSynchronizerSync(t *testing.T) {
	t.Run("independent groups do not share a mutex", func(t *testing.T) {
		a := NewGroup("a")
		b := NewGroup("b")
		assert.False(t, a.SharesMutexWith(b))
	})

	t.Run("synced groups share one mutex", func(t *testing.T) {
		s := NewSynchronizer()
		a := NewGroup("a")
		b := NewGroup("b")
		s.Sync(a, b)
		assert.True(t, a.SharesMutexWith(b))
		assert.True(t, b.SharesMutexWith(a))
	})

	t.Run("representative is the lexicographically smaller root", func(t *testing.T) {
		s := NewSynchronizer()
		a := NewGroup("alpha")
		b := NewGroup("beta")
		s.Sync(b, a)
		// Locking through either group must resolve to the same root;
		// locking alpha while beta is held would deadlock if they did not
		// share the mutex, so the sequential pattern below is the proof.
		a.Lock()
		a.Unlock()
		b.Lock()
		b.Unlock()
		assert.True(t, a.SharesMutexWith(b))
	})

	t.Run("sync is idempotent", func(t *testing.T) {
		s := NewSynchronizer()
		a := NewGroup("a")
		b := NewGroup("b")
		s.Sync(a, b)
		s.Sync(a, b)
		s.Sync(b, a)
		assert.True(t, a.SharesMutexWith(b))
	})

	t.Run("self sync is a no-op", func(t *testing.T) {
		s := NewSynchronizer()
		a := NewGroup("a")
		s.Sync(a, a)
		a.Lock()
		a.Unlock()
	})

	t.Run("transitive merges collapse into one mutex", func(t *testing.T) {
		s := NewSynchronizer()
		a := NewGroup("a")
		b := NewGroup("b")
		c := NewGroup("c")
		s.Sync(a, b)
		s.Sync(b, c)
		assert.True(t, a.SharesMutexWith(c))

		// One holder excludes all members of the merged set.
		a.Lock()
		acquired := make(chan struct{})
		go func() {
			c.Lock()
			c.Unlock()
			close(acquired)
		}()
		select {
		case <-acquired:
			t.Fatal("c acquired while a held the merged mutex")
		default:
		}
		a.Unlock()
		<-acquired
	})

	t.Run("concurrent merges serialize", func(t *testing.T) {
		s := NewSynchronizer()
		groups := make([]*Group, 8)
		for i := range groups {
			groups[i] = NewGroup(string(rune('a' + i)))
		}
		var wg sync.WaitGroup
		for i := 1; i < len(groups); i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Sync(groups[0], groups[i])
			}()
		}
		wg.Wait()
		for i := 1; i < len(groups); i++ {
			require.True(t, groups[0].SharesMutexWith(groups[i]), "group %d not merged", i)
		}
	})
}
