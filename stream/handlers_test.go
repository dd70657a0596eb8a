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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcep/streamcep/types"
)

// chunkRecorder collects every chunk it receives.
type chunkRecorder struct {
	chunks []*types.EventChunk
}

func (r *chunkRecorder) Process(chunk *types.EventChunk) { r.chunks = append(r.chunks, chunk) }
func (r *chunkRecorder) Next() types.Processor           { return nil }
func (r *chunkRecorder) SetNext(p types.Processor)       {}

func sensorDefinition() *types.StreamDefinition {
	return types.NewStreamDefinition("Sensors",
		types.Attribute{Name: "id", Type: "string"},
		types.Attribute{Name: "value", Type: "float"},
	)
}

func TestFilterProcessor(t *testing.T) {
	t.Run("detaches non-matching events in place", func(t *testing.T) {
		fp, err := NewFilterProcessor("value > 10.0", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		fp.Process(types.NewEventChunk(
			types.NewStreamEvent(1, "a", 5.0),
			types.NewStreamEvent(2, "b", 15.0),
			types.NewStreamEvent(3, "c", 25.0),
		))

		require.Len(t, rec.chunks, 1)
		events := rec.chunks[0].Events()
		require.Len(t, events, 2)
		assert.Equal(t, "b", events[0].Data[0])
		assert.Equal(t, "c", events[1].Data[0])
	})

	t.Run("reset and timer events pass through", func(t *testing.T) {
		fp, err := NewFilterProcessor("value > 100.0", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		reset := types.NewStreamEvent(1, "a", 1.0)
		reset.Type = types.RESET
		timer := &types.StreamEvent{Type: types.TIMER, Timestamp: 2}
		fp.Process(types.NewEventChunk(reset, timer))

		events := rec.chunks[0].Events()
		require.Len(t, events, 2)
		assert.Equal(t, types.RESET, events[0].Type)
		assert.Equal(t, types.TIMER, events[1].Type)
	})

	t.Run("expired events are filtered like current ones", func(t *testing.T) {
		fp, err := NewFilterProcessor("value > 10.0", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		expired := types.NewStreamEvent(1, "a", 5.0)
		expired.Type = types.EXPIRED
		fp.Process(types.NewEventChunk(expired))
		assert.Equal(t, 0, rec.chunks[0].Len())
	})

	t.Run("bad expression fails at construction", func(t *testing.T) {
		_, err := NewFilterProcessor("value >", sensorDefinition())
		assert.Error(t, err)
	})
}

func TestFunctionProcessor(t *testing.T) {
	t.Run("appends the computed attribute", func(t *testing.T) {
		fp, err := NewFunctionProcessor("doubled", "value * 2", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		fp.Process(types.NewEventChunk(types.NewStreamEvent(1, "a", 5.0)))

		ev := rec.chunks[0].First()
		require.Len(t, ev.Data, 3)
		assert.Equal(t, 10.0, ev.Data[2])
	})

	t.Run("reset events get a nil slot to keep the shape aligned", func(t *testing.T) {
		fp, err := NewFunctionProcessor("doubled", "value * 2", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		reset := types.NewStreamEvent(1, "a", 5.0)
		reset.Type = types.RESET
		fp.Process(types.NewEventChunk(reset))

		ev := rec.chunks[0].First()
		require.Len(t, ev.Data, 3)
		assert.Nil(t, ev.Data[2])
	})

	t.Run("evaluation fault yields nil", func(t *testing.T) {
		fp, err := NewFunctionProcessor("bad", "value / zero", sensorDefinition())
		require.NoError(t, err)
		rec := &chunkRecorder{}
		fp.SetNext(rec)

		fp.Process(types.NewEventChunk(types.NewStreamEvent(1, "a", 5.0)))
		ev := rec.chunks[0].First()
		require.Len(t, ev.Data, 3)
		assert.Nil(t, ev.Data[2])
	})
}

func TestReceiver(t *testing.T) {
	t.Run("non-batch receiver splits chunks per event", func(t *testing.T) {
		r := NewReceiver("Sensors", "q1", false)
		rec := &chunkRecorder{}
		r.SetNext(rec)

		r.Process(types.NewEventChunk(
			types.NewStreamEvent(1, "a", 1.0),
			types.NewStreamEvent(2, "b", 2.0),
		))

		require.Len(t, rec.chunks, 2)
		assert.Equal(t, 1, rec.chunks[0].Len())
		assert.Equal(t, 1, rec.chunks[1].Len())
		assert.Equal(t, "a", rec.chunks[0].First().Data[0])
		assert.Equal(t, "b", rec.chunks[1].First().Data[0])
	})

	t.Run("batch-capable receiver passes chunks whole", func(t *testing.T) {
		r := NewReceiver("Sensors", "q1", true)
		rec := &chunkRecorder{}
		r.SetNext(rec)

		chunk := types.NewEventChunk(
			types.NewStreamEvent(1, "a", 1.0),
			types.NewStreamEvent(2, "b", 2.0),
		)
		r.Process(chunk)

		require.Len(t, rec.chunks, 1)
		assert.Same(t, chunk, rec.chunks[0])
	})

	t.Run("no downstream is a no-op", func(t *testing.T) {
		r := NewReceiver("Sensors", "q1", false)
		r.Process(types.NewEventChunk(types.NewStreamEvent(1, "a", 1.0)))
	})
}

func TestSetToLast(t *testing.T) {
	head := NewReceiver("Sensors", "q1", false)
	mid, err := NewFilterProcessor("value > 0.0", sensorDefinition())
	require.NoError(t, err)
	head.SetNext(mid)

	tail := &chunkRecorder{}
	SetToLast(head, tail)
	assert.Same(t, types.Processor(tail), mid.Next())
}
