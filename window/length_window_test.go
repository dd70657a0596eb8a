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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/types"
)

func tempDefinition() *types.StreamDefinition {
	return types.NewStreamDefinition("TempStream",
		types.Attribute{Name: "room", Type: "string"},
		types.Attribute{Name: "temp", Type: "float"},
	)
}

// capture records every chunk a window forwards downstream.
type capture struct {
	chunks []*types.EventChunk
}

func (c *capture) Process(chunk *types.EventChunk) { c.chunks = append(c.chunks, chunk) }
func (c *capture) Next() types.Processor           { return nil }
func (c *capture) SetNext(p types.Processor)       {}

func (c *capture) allEvents() []*types.StreamEvent {
	var events []*types.StreamEvent
	for _, chunk := range c.chunks {
		events = append(events, chunk.Events()...)
	}
	return events
}

func newTestWindow(t *testing.T, length int, clock clockz.Clock) (*LengthWindow, *capture) {
	t.Helper()
	w, err := NewLengthWindow([]interface{}{length}, tempDefinition(), clock)
	require.NoError(t, err)
	sink := &capture{}
	w.SetNext(sink)
	return w, sink
}

func emit(w *LengthWindow, ts int64, room string, temp float64) {
	w.Process(types.NewEventChunk(types.NewStreamEvent(ts, room, temp)))
}

func TestNewLengthWindowValidation(t *testing.T) {
	def := tempDefinition()

	t.Run("accepts one constant positive integer", func(t *testing.T) {
		w, err := NewLengthWindow([]interface{}{3}, def, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, w.Length())
	})

	t.Run("coerces numeric strings", func(t *testing.T) {
		w, err := NewLengthWindow([]interface{}{"4"}, def, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, w.Length())
	})

	t.Run("rejects wrong parameter count", func(t *testing.T) {
		_, err := NewLengthWindow(nil, def, nil)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)

		_, err = NewLengthWindow([]interface{}{1, 2}, def, nil)
		require.ErrorAs(t, err, &verr)
	})

	t.Run("rejects non-integer parameter", func(t *testing.T) {
		_, err := NewLengthWindow([]interface{}{"five"}, def, nil)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := NewLengthWindow([]interface{}{0}, def, nil)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)

		_, err = NewLengthWindow([]interface{}{-2}, def, nil)
		require.ErrorAs(t, err, &verr)
	})
}

func TestLengthWindowFillPhase(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 3, clk)

	for i := 0; i < 3; i++ {
		emit(w, int64(i), "kitchen", 20.0+float64(i))
	}

	// Below capacity every event passes through alone and a clone is
	// retained, so count and queue length track arrivals exactly.
	assert.Equal(t, 3, w.Count())
	assert.Equal(t, 3, w.QueueLen())
	events := sink.allEvents()
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, types.CURRENT, ev.Type)
	}
}

func TestLengthWindowEviction(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 3, clk)

	for i := 1; i <= 5; i++ {
		emit(w, int64(i), "kitchen", float64(i))
	}

	// Count saturates at capacity while the queue slides.
	assert.Equal(t, 3, w.Count())
	assert.Equal(t, 3, w.QueueLen())

	events := sink.allEvents()
	require.Len(t, events, 7)

	// Chunks 4 and 5 each carry the evicted event immediately before the
	// event that displaced it: e1 expires with e4, e2 with e5.
	fourth := sink.chunks[3].Events()
	require.Len(t, fourth, 2)
	assert.Equal(t, types.EXPIRED, fourth[0].Type)
	assert.Equal(t, 1.0, fourth[0].Data[1])
	assert.Equal(t, types.CURRENT, fourth[1].Type)
	assert.Equal(t, 4.0, fourth[1].Data[1])

	fifth := sink.chunks[4].Events()
	require.Len(t, fifth, 2)
	assert.Equal(t, types.EXPIRED, fifth[0].Type)
	assert.Equal(t, 2.0, fifth[0].Data[1])
	assert.Equal(t, types.CURRENT, fifth[1].Type)
	assert.Equal(t, 5.0, fifth[1].Data[1])
}

func TestLengthWindowEvictionRestamp(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 1, clk)

	emit(w, 100, "kitchen", 1.0)
	clk.Advance(5 * time.Second)
	emit(w, 200, "kitchen", 2.0)

	second := sink.chunks[1].Events()
	require.Len(t, second, 2)
	expired := second[0]
	assert.Equal(t, types.EXPIRED, expired.Type)
	// The evicted event carries the eviction time, not its admission time.
	assert.Equal(t, clk.Now().UnixMilli(), expired.Timestamp)
	assert.Equal(t, 1.0, expired.Data[1])
}

func TestLengthWindowBatchedChunk(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 2, clk)

	chunk := types.NewEventChunk(
		types.NewStreamEvent(1, "a", 1.0),
		types.NewStreamEvent(2, "b", 2.0),
		types.NewStreamEvent(3, "c", 3.0),
	)
	w.Process(chunk)

	require.Len(t, sink.chunks, 1)
	events := sink.chunks[0].Events()
	require.Len(t, events, 4)
	assert.Equal(t, types.CURRENT, events[0].Type)
	assert.Equal(t, types.CURRENT, events[1].Type)
	assert.Equal(t, types.EXPIRED, events[2].Type)
	assert.Equal(t, "a", events[2].Data[0])
	assert.Equal(t, types.CURRENT, events[3].Type)
	assert.Equal(t, "c", events[3].Data[0])
}

func TestLengthWindowDegenerateReset(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 2, clk)

	emit(w, 1, "a", 1.0)
	emit(w, 2, "b", 2.0)

	// Restoring a full count with an empty queue models state where every
	// retained clone was drained externally.
	w.Restore(State{Count: 2, Events: nil})
	require.Equal(t, 2, w.Count())
	require.Equal(t, 0, w.QueueLen())

	emit(w, 3, "c", 3.0)

	last := sink.chunks[2].Events()
	require.Len(t, last, 3)
	assert.Equal(t, types.CURRENT, last[0].Type)
	assert.Equal(t, "c", last[0].Data[0])
	assert.Equal(t, types.RESET, last[1].Type)
	assert.Equal(t, types.EXPIRED, last[2].Type)
	assert.Equal(t, "c", last[2].Data[0])

	// The degenerate pass retains nothing; the next admission at capacity
	// takes the same path again.
	assert.Equal(t, 0, w.QueueLen())
	assert.Equal(t, 2, w.Count())
}

func TestLengthWindowSnapshotRestore(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, _ := newTestWindow(t, 3, clk)

	for i := 1; i <= 5; i++ {
		emit(w, int64(i), "kitchen", float64(i))
	}
	state := w.Snapshot()
	assert.Equal(t, 3, state.Count)
	require.Len(t, state.Events, 3)
	assert.Equal(t, 3.0, state.Events[0].Data[1])
	assert.Equal(t, 5.0, state.Events[2].Data[1])

	// Snapshot events are decoupled from live state.
	state.Events[0].Data[1] = -1.0
	fresh := w.Snapshot()
	assert.Equal(t, 3.0, fresh.Events[0].Data[1])

	restored, sink := newTestWindow(t, 3, clk)
	restored.Restore(state)
	assert.Equal(t, 3, restored.Count())
	assert.Equal(t, 3, restored.QueueLen())

	// The restored window resumes the slide exactly where the snapshot
	// left off: next admission evicts e3.
	emit(restored, 6, "kitchen", 6.0)
	events := sink.chunks[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, types.EXPIRED, events[0].Type)
	assert.Equal(t, -1.0, events[0].Data[1])
}

func TestLengthWindowFind(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, _ := newTestWindow(t, 3, clk)

	emit(w, 1, "kitchen", 21.0)
	emit(w, 2, "cellar", 12.0)
	emit(w, 3, "attic", 28.0)

	probeDef := types.NewStreamDefinition("Probe", types.Attribute{Name: "room", Type: "string"})
	cc, err := w.CompileCondition("room == probe.room", probeDef)
	require.NoError(t, err)

	t.Run("returns a clone of the first match", func(t *testing.T) {
		found := w.Find(types.NewStreamEvent(0, "cellar"), cc)
		require.NotNil(t, found)
		assert.Equal(t, 12.0, found.Data[1])

		found.Data[1] = -5.0
		again := w.Find(types.NewStreamEvent(0, "cellar"), cc)
		require.NotNil(t, again)
		assert.Equal(t, 12.0, again.Data[1], "retained state must not be mutated through Find results")
	})

	t.Run("no match returns nil", func(t *testing.T) {
		assert.Nil(t, w.Find(types.NewStreamEvent(0, "garage"), cc))
	})

	t.Run("find does not consume state", func(t *testing.T) {
		assert.Equal(t, 3, w.QueueLen())
	})
}

func TestLengthWindowCapacityOne(t *testing.T) {
	clk := clockz.NewFakeClock()
	w, sink := newTestWindow(t, 1, clk)

	emit(w, 1, "a", 1.0)
	emit(w, 2, "b", 2.0)
	emit(w, 3, "c", 3.0)

	assert.Equal(t, 1, w.Count())
	assert.Equal(t, 1, w.QueueLen())

	events := sink.allEvents()
	require.Len(t, events, 5)
	// Every admission past the first pairs the previous event's
	// expiration with the new arrival.
	assert.Equal(t, types.CURRENT, events[0].Type)
	assert.Equal(t, types.EXPIRED, events[1].Type)
	assert.Equal(t, "a", events[1].Data[0])
	assert.Equal(t, types.CURRENT, events[2].Type)
	assert.Equal(t, types.EXPIRED, events[3].Type)
	assert.Equal(t, "b", events[3].Data[0])
	assert.Equal(t, types.CURRENT, events[4].Type)
}
