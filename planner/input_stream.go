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
	"fmt"

	"github.com/streamcep/streamcep/stream"
	"github.com/streamcep/streamcep/types"
	"github.com/streamcep/streamcep/window"
)

// AssembleInput builds the executable stream graph for one input-stream
// variant.
//
// Single streams become a receiver-headed handler chain; the receiver is
// batch-capable when the source is a registered window, since
// window-backed queries tolerate and benefit from batched delivery. Joins
// produce a two-branch runtime, patterns and sequences an n-branch one.
// An unhandled variant is a programming error.
func AssembleInput(input types.InputStream, ctx *types.EngineContext, catalog *Catalog,
	outputExpectsExpired bool, queryName string) (stream.StreamRuntime, error) {
	switch in := input.(type) {
	case *types.SingleInputStream:
		return assembleSingle(in, ctx, catalog, queryName)
	case *types.JoinInputStream:
		return assembleJoin(in, ctx, catalog, queryName)
	case *types.StateInputStream:
		return assembleState(in, ctx, catalog, queryName)
	default:
		return nil, &types.UnsupportedVariantError{Variant: fmt.Sprintf("%T", input)}
	}
}

func assembleSingle(in *types.SingleInputStream, ctx *types.EngineContext, catalog *Catalog,
	queryName string) (*stream.SingleStreamRuntime, error) {

	def, ok := catalog.StreamDefinition(in.StreamID)
	if !ok {
		return nil, types.NewValidationError("stream %s is not defined", in.StreamID)
	}
	_, windowBacked := catalog.Windows().Lookup(in.StreamID)

	meta := types.NewMetaStreamEvent()
	meta.AddInputDefinition(def)
	meta.SetWindowEvent(windowBacked)

	// A window-backed source may deliver several events as one chunk.
	receiver := stream.NewReceiver(in.StreamID, queryName, windowBacked)

	var tail types.Processor = receiver
	currentDef := def
	for _, handler := range in.Handlers {
		var p types.Processor
		switch h := handler.(type) {
		case *types.FilterHandler:
			fp, err := stream.NewFilterProcessor(h.Expression, currentDef)
			if err != nil {
				return nil, fmt.Errorf("compile filter for stream %s: %w", in.StreamID, err)
			}
			p = fp
		case *types.FunctionHandler:
			fp, err := stream.NewFunctionProcessor(h.As, h.Expression, currentDef)
			if err != nil {
				return nil, fmt.Errorf("compile function %s for stream %s: %w", h.As, in.StreamID, err)
			}
			extended := &types.StreamDefinition{ID: currentDef.ID}
			extended.Attributes = append(extended.Attributes, currentDef.Attributes...)
			extended.Attributes = append(extended.Attributes, types.Attribute{Name: h.As, Type: "any"})
			meta.AddInputDefinition(extended)
			currentDef = extended
			p = fp
		case *types.WindowHandler:
			w, err := window.NewLengthWindow(h.Params, currentDef, ctx.Clock)
			if err != nil {
				return nil, err
			}
			p = w
		default:
			return nil, types.NewValidationError("unknown stream handler %T on stream %s", handler, in.StreamID)
		}
		tail.SetNext(p)
		tail = p
	}
	return stream.NewSingleStreamRuntime(receiver, meta), nil
}

// assembleJoin builds the two-branch join runtime. The returned runtime
// exposes a MetaStateEvent with exactly two branches, each flagged as
// window-backed or not; the lock resolver depends on that contract.
func assembleJoin(in *types.JoinInputStream, ctx *types.EngineContext, catalog *Catalog,
	queryName string) (*stream.JoinStreamRuntime, error) {

	left, err := assembleSingle(in.Left, ctx, catalog, queryName)
	if err != nil {
		return nil, err
	}
	right, err := assembleSingle(in.Right, ctx, catalog, queryName)
	if err != nil {
		return nil, err
	}
	meta := types.NewMetaStateEvent(2)
	meta.AddMetaStreamEvent(left.MetaStreamEvent())
	meta.AddMetaStreamEvent(right.MetaStreamEvent())
	return stream.NewJoinStreamRuntime(left, right, meta), nil
}

func assembleState(in *types.StateInputStream, ctx *types.EngineContext, catalog *Catalog,
	queryName string) (*stream.StateStreamRuntime, error) {

	meta := types.NewMetaStateEvent(len(in.Streams))
	branches := make([]*stream.SingleStreamRuntime, 0, len(in.Streams))
	for _, s := range in.Streams {
		branch, err := assembleSingle(s, ctx, catalog, queryName)
		if err != nil {
			return nil, err
		}
		meta.AddMetaStreamEvent(branch.MetaStreamEvent())
		branches = append(branches, branch)
	}
	return stream.NewStateStreamRuntime(in.Kind, branches, meta), nil
}
