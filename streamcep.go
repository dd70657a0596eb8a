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
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/streamcep/streamcep/checkpoint"
	"github.com/streamcep/streamcep/lock"
	"github.com/streamcep/streamcep/output"
	"github.com/streamcep/streamcep/planner"
	"github.com/streamcep/streamcep/stream"
	"github.com/streamcep/streamcep/types"
	"github.com/streamcep/streamcep/window"
)

// Engine is the main entry point of the StreamCEP runtime. It owns the
// definition catalog, assembles continuous queries into runnable plans
// and routes emitted events into them.
//
// Usage:
//
//	eng := streamcep.New("sensors")
//	eng.DefineStream("TempStream",
//	    types.Attribute{Name: "room", Type: "string"},
//	    types.Attribute{Name: "temp", Type: "float"})
//	rt, err := eng.AddQuery(query, func(events []*types.StreamEvent) {
//	    // consume results
//	})
//	eng.Start()
//	eng.Emit("TempStream", "kitchen", 24.5)
type Engine struct {
	ctx     *types.EngineContext
	catalog *planner.Catalog
	sync    *lock.Synchronizer
	ckpt    *checkpoint.Manager

	mu        sync.RWMutex
	queries   map[string]*stream.QueryRuntime
	junctions map[string][]*stream.Receiver
	started   bool
}

// New creates an engine with the given diagnostic name. Options adjust
// the clock, logger and id generator before anything is assembled.
func New(name string, options ...Option) *Engine {
	registry := window.NewRegistry()
	e := &Engine{
		ctx:       types.NewEngineContext(name),
		catalog:   planner.NewCatalog(registry),
		sync:      lock.NewSynchronizer(),
		ckpt:      checkpoint.NewManager(name, registry),
		queries:   make(map[string]*stream.QueryRuntime),
		junctions: make(map[string][]*stream.Receiver),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Context returns the engine's shared context.
func (e *Engine) Context() *types.EngineContext {
	return e.ctx
}

// DefineStream registers a plain input stream. Redefining an id used by
// a stream or a named window fails with a DuplicateDefinitionError.
func (e *Engine) DefineStream(id string, attributes ...types.Attribute) error {
	return e.catalog.DefineStream(&types.StreamDefinition{ID: id, Attributes: attributes})
}

// DefineWindow registers a named length window holding up to capacity
// events. Named windows keep state across the queries that read them and
// are included in engine checkpoints.
func (e *Engine) DefineWindow(id string, capacity int, attributes ...types.Attribute) error {
	if _, exists := e.catalog.StreamDefinition(id); exists {
		return &types.DuplicateDefinitionError{Msg: "stream " + id + " is already defined"}
	}
	def := &types.StreamDefinition{ID: id, Attributes: attributes}
	_, err := e.catalog.Windows().Register(def, capacity, e.ctx.Clock)
	return err
}

// AddQuery assembles the query into a runnable plan and wires its
// receivers into the engine's routing. The sink receives every result
// batch the query emits. The returned runtime carries the resolved query
// name; duplicate names are rejected.
func (e *Engine) AddQuery(query *types.Query, sink output.Sink) (*stream.QueryRuntime, error) {
	runtime, err := planner.AssembleQuery(query, e.ctx, e.catalog, e.sync, sink)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.queries[runtime.Name()]; exists {
		return nil, &types.DuplicateDefinitionError{
			Msg:       "query " + runtime.Name() + " is already defined",
			QueryName: runtime.Name(),
		}
	}
	for _, sr := range runtime.StreamRuntime().SingleRuntimes() {
		receiver := sr.Receiver()
		if nw, ok := e.catalog.Windows().Lookup(receiver.StreamID()); ok {
			nw.Subscribe(receiver)
			continue
		}
		e.junctions[receiver.StreamID()] = append(e.junctions[receiver.StreamID()], receiver)
	}
	e.queries[runtime.Name()] = runtime
	e.ctx.Logger.Info("engine %s added query %s", e.ctx.Name, runtime.Name())
	return runtime, nil
}

// Query returns a previously added query runtime by name.
func (e *Engine) Query(name string) (*stream.QueryRuntime, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rt, ok := e.queries[name]
	return rt, ok
}

// Emit injects one event into the named stream or window, stamped with
// the engine clock's current time.
func (e *Engine) Emit(streamID string, data ...interface{}) error {
	return e.EmitAt(streamID, e.ctx.CurrentTime(), data...)
}

// EmitAt injects one event with an explicit timestamp. Events bound for
// a named window pass through the window's state before reaching
// subscribed queries; plain stream events fan out to every query reading
// the stream, each on its own copy.
func (e *Engine) EmitAt(streamID string, timestamp int64, data ...interface{}) error {
	ev := types.NewStreamEvent(timestamp, data...)

	if nw, ok := e.catalog.Windows().Lookup(streamID); ok {
		nw.Process(types.NewEventChunk(ev))
		return nil
	}

	e.mu.RLock()
	receivers := e.junctions[streamID]
	e.mu.RUnlock()
	if len(receivers) == 0 {
		if _, defined := e.catalog.StreamDefinition(streamID); !defined {
			return types.NewValidationError("stream %s is not defined", streamID)
		}
		return nil
	}
	for _, receiver := range receivers {
		receiver.Process(types.NewEventChunk(ev.Clone()))
	}
	return nil
}

// Start brings up every runtime collaborator with its own lifecycle,
// such as timed output rate limiters. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	var g errgroup.Group
	for _, holder := range e.ctx.EternalHolders() {
		g.Go(func() error {
			holder.Start()
			return nil
		})
	}
	_ = g.Wait()
	e.ctx.Logger.Info("engine %s started", e.ctx.Name)
}

// Stop shuts down every started collaborator. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	e.mu.Unlock()

	var g errgroup.Group
	for _, holder := range e.ctx.EternalHolders() {
		g.Go(func() error {
			holder.Stop()
			return nil
		})
	}
	_ = g.Wait()
	e.ctx.Logger.Info("engine %s stopped", e.ctx.Name)
}

// SnapshotState captures the state of every named window into a
// compressed checkpoint.
func (e *Engine) SnapshotState() ([]byte, error) {
	data, err := e.ckpt.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot engine %s: %w", e.ctx.Name, err)
	}
	return data, nil
}

// RestoreState loads a checkpoint produced by SnapshotState. All windows
// named in the checkpoint must be defined before restoring.
func (e *Engine) RestoreState(data []byte) error {
	return e.ckpt.Restore(data)
}
