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

// Package streamcep is a lightweight continuous-query engine. Queries
// are declared as plans over defined streams, assembled into processor
// chains and fed events one at a time; results stream out through
// per-query sinks.
//
// The engine supports filtered and projected single-stream queries,
// sliding length windows with expiration, joins and pattern streams over
// multiple inputs, named windows shared across queries, output rate
// limiting, and snapshot checkpoints of window state.
//
// A minimal session:
//
//	eng := streamcep.New("plant")
//	eng.DefineStream("TempStream",
//	    types.Attribute{Name: "room", Type: "string"},
//	    types.Attribute{Name: "temp", Type: "float"})
//
//	query := &types.Query{
//	    Input: &types.SingleInputStream{
//	        StreamID: "TempStream",
//	        Handlers: []types.StreamHandler{
//	            &types.FilterHandler{Expression: "temp > 30.0"},
//	            &types.WindowHandler{Params: []interface{}{5}},
//	        },
//	    },
//	    Selector: types.SelectorSpec{Attributes: []types.SelectAttribute{
//	        {Name: "room", Expression: "room"},
//	        {Name: "temp", Expression: "temp"},
//	    }},
//	    Output: types.OutputStreamSpec{ID: "HotRooms", EventType: types.CurrentEvents},
//	}
//	_, err := eng.AddQuery(query, func(events []*types.StreamEvent) {
//	    for _, ev := range events {
//	        fmt.Println(ev.Data)
//	    }
//	})
//	eng.Start()
//	eng.Emit("TempStream", "kitchen", 34.2)
package streamcep
