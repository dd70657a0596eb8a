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

package streamcep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/types"
)

func defineTempStream(t *testing.T, eng *Engine) {
	t.Helper()
	require.NoError(t, eng.DefineStream("TempStream",
		types.Attribute{Name: "room", Type: "string"},
		types.Attribute{Name: "temp", Type: "float"},
	))
}

func collectSink(results *[][]interface{}) func([]*types.StreamEvent) {
	return func(events []*types.StreamEvent) {
		for _, ev := range events {
			*results = append(*results, ev.Data)
		}
	}
}

func TestEngineFilterQuery(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	defineTempStream(t, eng)

	var results [][]interface{}
	_, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{
			StreamID: "TempStream",
			Handlers: []types.StreamHandler{
				&types.FilterHandler{Expression: "temp > 30.0"},
			},
		},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{
				{Name: "room", Expression: "room"},
				{Name: "temp", Expression: "temp"},
			},
		},
		Output:      types.OutputStreamSpec{ID: "HotRooms"},
		Annotations: types.Annotations{Name: "hot"},
	}, collectSink(&results))
	require.NoError(t, err)

	require.NoError(t, eng.Emit("TempStream", "kitchen", 34.5))
	require.NoError(t, eng.Emit("TempStream", "cellar", 12.0))
	require.NoError(t, eng.Emit("TempStream", "sauna", 80.0))

	require.Len(t, results, 2)
	assert.Equal(t, []interface{}{"kitchen", 34.5}, results[0])
	assert.Equal(t, []interface{}{"sauna", 80.0}, results[1])
}

func TestEngineWindowQueryEmitsExpired(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	defineTempStream(t, eng)

	var types_ []types.EventType
	var rooms []interface{}
	_, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{
			StreamID: "TempStream",
			Handlers: []types.StreamHandler{
				&types.WindowHandler{Params: []interface{}{2}},
			},
		},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output:      types.OutputStreamSpec{ID: "Windowed", EventType: types.AllEvents},
		Annotations: types.Annotations{Name: "sliding"},
	}, func(events []*types.StreamEvent) {
		for _, ev := range events {
			types_ = append(types_, ev.Type)
			rooms = append(rooms, ev.Data[0])
		}
	})
	require.NoError(t, err)

	require.NoError(t, eng.EmitAt("TempStream", 1, "a", 1.0))
	require.NoError(t, eng.EmitAt("TempStream", 2, "b", 2.0))
	require.NoError(t, eng.EmitAt("TempStream", 3, "c", 3.0))

	// The third admission evicts the first: its expiration precedes the
	// displacing event in the same batch.
	require.Equal(t, []interface{}{"a", "b", "a", "c"}, rooms)
	assert.Equal(t, []types.EventType{
		types.CURRENT, types.CURRENT, types.EXPIRED, types.CURRENT,
	}, types_)
}

func TestEngineNamedWindow(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	require.NoError(t, eng.DefineWindow("RecentTemps", 2,
		types.Attribute{Name: "room", Type: "string"},
		types.Attribute{Name: "temp", Type: "float"},
	))

	var results [][]interface{}
	_, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{StreamID: "RecentTemps"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output:      types.OutputStreamSpec{ID: "FromWindow"},
		Annotations: types.Annotations{Name: "reader"},
	}, collectSink(&results))
	require.NoError(t, err)

	require.NoError(t, eng.Emit("RecentTemps", "kitchen", 20.0))
	require.NoError(t, eng.Emit("RecentTemps", "cellar", 10.0))

	require.Len(t, results, 2)
	assert.Equal(t, "kitchen", results[0][0])
	assert.Equal(t, "cellar", results[1][0])
}

func TestEngineDuplicateDefinitions(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	defineTempStream(t, eng)

	t.Run("stream over stream", func(t *testing.T) {
		err := eng.DefineStream("TempStream")
		var dup *types.DuplicateDefinitionError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("window over stream", func(t *testing.T) {
		err := eng.DefineWindow("TempStream", 2)
		var dup *types.DuplicateDefinitionError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("stream over window", func(t *testing.T) {
		require.NoError(t, eng.DefineWindow("W", 2, types.Attribute{Name: "a", Type: "int"}))
		err := eng.DefineStream("W")
		var dup *types.DuplicateDefinitionError
		require.ErrorAs(t, err, &dup)
	})
}

func TestEngineDuplicateQueryName(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	defineTempStream(t, eng)

	query := &types.Query{
		Input: &types.SingleInputStream{StreamID: "TempStream"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output:      types.OutputStreamSpec{ID: "Out"},
		Annotations: types.Annotations{Name: "same"},
	}
	_, err := eng.AddQuery(query, nil)
	require.NoError(t, err)

	_, err = eng.AddQuery(query, nil)
	var dup *types.DuplicateDefinitionError
	require.ErrorAs(t, err, &dup)
	assert.Contains(t, err.Error(), "same")
}

func TestEngineAddQueryError(t *testing.T) {
	eng := New("plant", WithDiscardLog())

	_, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{StreamID: "Undefined"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "x", Expression: "x"}},
		},
		Output:      types.OutputStreamSpec{ID: "Out"},
		Annotations: types.Annotations{Name: "broken"},
	}, nil)
	var qerr *types.QueryCreationError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "broken", qerr.QueryName)
}

func TestEngineEmitUndefinedStream(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	err := eng.Emit("Nowhere", 1)
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEngineQueryLookup(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	defineTempStream(t, eng)

	rt, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{StreamID: "TempStream"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output:      types.OutputStreamSpec{ID: "Out"},
		Annotations: types.Annotations{Name: "lookup"},
	}, nil)
	require.NoError(t, err)

	got, ok := eng.Query("lookup")
	require.True(t, ok)
	assert.Same(t, rt, got)

	_, ok = eng.Query("missing")
	assert.False(t, ok)
}

func TestEngineSnapshotRestore(t *testing.T) {
	clk := clockz.NewFakeClock()
	build := func() *Engine {
		eng := New("plant", WithDiscardLog(), WithClock(clk))
		require.NoError(t, eng.DefineWindow("RecentTemps", 2,
			types.Attribute{Name: "room", Type: "string"},
			types.Attribute{Name: "temp", Type: "float"},
		))
		return eng
	}

	source := build()
	require.NoError(t, source.EmitAt("RecentTemps", 1, "a", 1.0))
	require.NoError(t, source.EmitAt("RecentTemps", 2, "b", 2.0))
	require.NoError(t, source.EmitAt("RecentTemps", 3, "c", 3.0))

	data, err := source.SnapshotState()
	require.NoError(t, err)

	restored := build()
	require.NoError(t, restored.RestoreState(data))

	// The restored window is full with b and c; the next admission must
	// evict b.
	var evicted []interface{}
	_, err = restored.AddQuery(&types.Query{
		Input: &types.SingleInputStream{StreamID: "RecentTemps"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output:      types.OutputStreamSpec{ID: "Evictions", EventType: types.ExpiredEvents},
		Annotations: types.Annotations{Name: "evictions"},
	}, func(events []*types.StreamEvent) {
		for _, ev := range events {
			if ev.Type == types.EXPIRED {
				evicted = append(evicted, ev.Data[0])
			}
		}
	})
	require.NoError(t, err)

	require.NoError(t, restored.EmitAt("RecentTemps", 4, "d", 4.0))
	assert.Equal(t, []interface{}{"b"}, evicted)

	t.Run("restore into unshaped engine fails", func(t *testing.T) {
		empty := New("other", WithDiscardLog())
		assert.Error(t, empty.RestoreState(data))
	})
}

func TestEngineStartStop(t *testing.T) {
	eng := New("plant", WithDiscardLog())
	eng.Start()
	eng.Start()
	eng.Stop()
	eng.Stop()
}

func TestEngineOptions(t *testing.T) {
	clk := clockz.NewFakeClock()
	minted := 0
	eng := New("plant",
		WithDiscardLog(),
		WithClock(clk),
		WithIDGenerator(func() string { minted++; return "id" }),
	)
	assert.Same(t, clockz.Clock(clk), eng.Context().Clock)

	defineTempStream(t, eng)
	rt, err := eng.AddQuery(&types.Query{
		Input: &types.SingleInputStream{StreamID: "TempStream"},
		Selector: types.SelectorSpec{
			Attributes: []types.SelectAttribute{{Name: "room", Expression: "room"}},
		},
		Output: types.OutputStreamSpec{ID: "Out"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "query_id", rt.Name())
	assert.Equal(t, 1, minted)
}
