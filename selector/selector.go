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

// Package selector implements the projection executor: it turns matched
// input events into output events per the query's declared projection.
package selector

import (
	"regexp"

	"github.com/streamcep/streamcep/condition"
	"github.com/streamcep/streamcep/types"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AttributeProcessor produces one output attribute value per matched
// event: either a direct-index variable read or a compiled expression.
type AttributeProcessor struct {
	Name     string
	Variable *types.VariableExecutor
	Program  *condition.ValueProgram
}

// AttributeName returns the projected output attribute's name.
func (ap *AttributeProcessor) AttributeName() string {
	return ap.Name
}

// Execute computes the attribute value for one single-branch event.
func (ap *AttributeProcessor) Execute(ev *types.StreamEvent, def *types.StreamDefinition) interface{} {
	if ap.Variable != nil {
		return ap.Variable.Execute(ev)
	}
	value, err := ap.Program.Evaluate(condition.EventEnv(ev, def))
	if err != nil {
		return nil
	}
	return value
}

// QuerySelector binds the declared projection to the assembled graph's
// metadata and emits output events downstream to the rate limiter.
type QuerySelector struct {
	queryName            string
	meta                 types.MetaComplexEvent
	processors           []*AttributeProcessor
	groupBy              bool
	having               condition.Condition
	batchingEnabled      bool
	outputType           types.OutputEventType
	outputExpectsExpired bool
	populator            EventPopulator
	sink                 ResultSink
	next                 types.Processor
}

// ResultSink consumes completed result batches; in an assembled query it
// is the output rate limiter.
type ResultSink interface {
	Process(chunk *types.EventChunk)
}

var _ types.Processor = (*QuerySelector)(nil)

// Parse builds a QuerySelector from the declared projection, bound to the
// assembled graph's metadata. Bare attribute references become variable
// executors, returned so the planner can assign their positional slots
// once the metadata is frozen; anything else compiles to a program.
func Parse(spec types.SelectorSpec, output types.OutputStreamSpec, meta types.MetaComplexEvent,
	outputExpectsExpired bool, queryName string) (*QuerySelector, []*types.VariableExecutor, error) {

	sel := &QuerySelector{
		queryName:            queryName,
		meta:                 meta,
		groupBy:              len(spec.GroupBy) > 0,
		batchingEnabled:      true,
		outputType:           output.EventType,
		outputExpectsExpired: outputExpectsExpired,
	}
	var executors []*types.VariableExecutor
	outputDef := &types.StreamDefinition{ID: output.ID}
	for _, attr := range spec.Attributes {
		ap := &AttributeProcessor{Name: attr.Name}
		if identifierPattern.MatchString(attr.Expression) {
			variable := types.NewVariableExecutor("", attr.Expression)
			ap.Variable = variable
			executors = append(executors, variable)
		} else {
			program, err := condition.CompileValue(attr.Expression)
			if err != nil {
				return nil, nil, err
			}
			ap.Program = program
		}
		sel.processors = append(sel.processors, ap)
		outputDef.Attributes = append(outputDef.Attributes, types.Attribute{Name: attr.Name, Type: "any"})
	}
	if spec.Having != "" {
		having, err := condition.Compile(spec.Having)
		if err != nil {
			return nil, nil, err
		}
		sel.having = having
	}
	meta.SetOutputDefinition(outputDef)
	return sel, executors, nil
}

// QueryName returns the owning query's diagnostic name.
func (s *QuerySelector) QueryName() string {
	return s.queryName
}

// AttributeProcessors returns the ordered projection processors, for
// snapshot-mode rate limiters that recompute results from scratch.
func (s *QuerySelector) AttributeProcessors() []*AttributeProcessor {
	return s.processors
}

// HasGroupBy reports whether the projection declares grouping.
func (s *QuerySelector) HasGroupBy() bool {
	return s.groupBy
}

// BatchingEnabled reports whether incremental batching is on.
func (s *QuerySelector) BatchingEnabled() bool {
	return s.batchingEnabled
}

// SetBatchingEnabled configures incremental batching. Disabled when the
// rate limiter operates in snapshot-consistent mode: incremental batching
// assumes no external recomputation pass, so the two are mutually
// exclusive. Idempotent.
func (s *QuerySelector) SetBatchingEnabled(enabled bool) {
	s.batchingEnabled = enabled
}

// SetEventPopulator wires the result-to-output-event populator built from
// the frozen metadata.
func (s *QuerySelector) SetEventPopulator(p EventPopulator) {
	s.populator = p
}

// SetResultSink wires the stage completed results flow to.
func (s *QuerySelector) SetResultSink(sink ResultSink) {
	s.sink = sink
}

func (s *QuerySelector) Next() types.Processor     { return s.next }
func (s *QuerySelector) SetNext(p types.Processor) { s.next = p }

func (s *QuerySelector) inputDefinition() *types.StreamDefinition {
	if m, ok := s.meta.(*types.MetaStreamEvent); ok {
		return m.LastInputDefinition()
	}
	return nil
}

// Process projects the chunk's events and forwards the results. With
// batching enabled the whole chunk becomes one result batch; otherwise
// each result is forwarded on its own.
func (s *QuerySelector) Process(chunk *types.EventChunk) {
	inputDef := s.inputDefinition()
	batch := types.NewEventChunk()
	chunk.Reset()
	for chunk.HasNext() {
		ev := chunk.Next()
		switch ev.Type {
		case types.TIMER:
			continue
		case types.RESET:
			// Incremental state rebases here; the signal itself is not
			// projected.
			continue
		case types.EXPIRED:
			if s.outputType == types.CurrentEvents {
				continue
			}
		case types.CURRENT:
			if s.outputType == types.ExpiredEvents {
				continue
			}
		}
		if s.having != nil && !s.having.Evaluate(condition.EventEnv(ev, inputDef)) {
			continue
		}
		values := make([]interface{}, len(s.processors))
		for i, ap := range s.processors {
			values[i] = ap.Execute(ev, inputDef)
		}
		out := &types.StreamEvent{Type: ev.Type, Timestamp: ev.Timestamp}
		if s.populator != nil {
			s.populator.Populate(out, values)
		} else {
			out.Data = values
		}
		if s.batchingEnabled {
			batch.Add(out)
		} else if s.sink != nil {
			s.sink.Process(types.NewEventChunk(out))
		}
	}
	if s.batchingEnabled && batch.First() != nil && s.sink != nil {
		s.sink.Process(batch)
	}
}
