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
	"errors"

	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/output"
	"github.com/streamcep/streamcep/selector"
	"github.com/streamcep/streamcep/stream"
	"github.com/streamcep/streamcep/types"
)

// AssembleQuery turns one validated query plan into a runnable
// QueryRuntime.
//
// Only two error kinds escape: a DuplicateDefinitionError from any nested
// step is re-raised annotated with the resolved query name; any other
// assembly fault is wrapped into a QueryCreationError carrying the query
// name and the original cause.
func AssembleQuery(query *types.Query, ctx *types.EngineContext, catalog *Catalog,
	sync *lock.Synchronizer, sink output.Sink) (*stream.QueryRuntime, error) {

	queryName := query.Annotations.Name
	if queryName == "" {
		// Diagnostic identity only; uniqueness is best-effort.
		queryName = "query_" + ctx.NewID()
	}

	runtime, err := assemble(query, ctx, catalog, sync, sink, queryName)
	if err != nil {
		var dup *types.DuplicateDefinitionError
		if errors.As(err, &dup) {
			return nil, &types.DuplicateDefinitionError{Msg: dup.Msg, QueryName: queryName, Cause: err}
		}
		return nil, &types.QueryCreationError{QueryName: queryName, Cause: err}
	}
	ctx.Logger.Debug("assembled query %s reading %v", queryName, query.Input.StreamIDs())
	return runtime, nil
}

func assemble(query *types.Query, ctx *types.EngineContext, catalog *Catalog,
	sync *lock.Synchronizer, sink output.Sink, queryName string) (*stream.QueryRuntime, error) {

	// Downstream stages propagate EXPIRED events only when the declared
	// output kind asks for more than plain current events.
	outputExpectsExpired := query.Output.EventType != types.CurrentEvents

	streamRuntime, err := AssembleInput(query.Input, ctx, catalog, outputExpectsExpired, queryName)
	if err != nil {
		return nil, err
	}
	meta := streamRuntime.MetaComplexEvent()

	sel, executors, err := selector.Parse(query.Selector, query.Output, meta, outputExpectsExpired, queryName)
	if err != nil {
		return nil, err
	}

	isWindow := isWindowQuery(query)
	lockGroup := ResolveLock(query, streamRuntime, isWindow, catalog, sync)

	limiter := output.NewRateLimiter(query.Output.ID, query.Rate, sel.HasGroupBy(), isWindow,
		ctx.Clock, queryName)
	snapshotLimiter, snapshotMode := limiter.(*output.SnapshotRateLimiter)
	if snapshotMode {
		// Snapshot-consistent emission recomputes full results each
		// cycle; incremental batching assumes no such external pass.
		sel.SetBatchingEnabled(false)
	}
	ctx.AddEternalHolder(limiter)

	_, singleStream := streamRuntime.(*stream.SingleStreamRuntime)
	callback := output.NewInsertIntoStreamCallback(meta.OutputDefinition(), !singleStream, queryName, sink)

	meta.Reduce()
	if err := types.UpdateVariablePositions(meta, executors); err != nil {
		return nil, err
	}
	streamRuntime.InitPlan(lockGroup, queryName)
	sel.SetEventPopulator(selector.NewEventPopulator(meta))
	streamRuntime.SetCommonProcessor(sel)
	sel.SetResultSink(limiter)
	limiter.SetOutputCallback(callback)

	runtime := stream.NewQueryRuntime(queryName, query, streamRuntime, sel, limiter, callback,
		meta, lockGroup != nil, isWindow)

	if snapshotMode {
		sources := make([]output.AttributeSource, 0, len(sel.AttributeProcessors()))
		for _, ap := range sel.AttributeProcessors() {
			sources = append(sources, ap)
		}
		snapshotLimiter.SetSnapshotSources(sources, meta)
	}
	limiter.Init(ctx, lockGroup, queryName)

	return runtime, nil
}

// isWindowQuery reports whether the query involves window state: a join,
// or a single stream with a window attachment among its handlers.
func isWindowQuery(query *types.Query) bool {
	if _, ok := query.Input.(*types.JoinInputStream); ok {
		return true
	}
	single, ok := query.Input.(*types.SingleInputStream)
	if !ok {
		return false
	}
	for _, handler := range single.Handlers {
		if _, ok := handler.(*types.WindowHandler); ok {
			return true
		}
	}
	return false
}
