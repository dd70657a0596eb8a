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
	"github.com/streamcep/streamcep/condition"
	"github.com/streamcep/streamcep/logger"
	"github.com/streamcep/streamcep/types"
)

var (
	_ types.Processor = (*FilterProcessor)(nil)
	_ types.Processor = (*FunctionProcessor)(nil)
)

// FilterProcessor drops CURRENT and EXPIRED events whose compiled
// predicate evaluates false. RESET and TIMER events pass through.
type FilterProcessor struct {
	condition  condition.Condition
	definition *types.StreamDefinition
	next       types.Processor
}

// NewFilterProcessor compiles a filter expression against the effective
// stream shape at this point of the chain.
func NewFilterProcessor(expression string, definition *types.StreamDefinition) (*FilterProcessor, error) {
	cond, err := condition.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &FilterProcessor{condition: cond, definition: definition}, nil
}

func (f *FilterProcessor) Next() types.Processor     { return f.next }
func (f *FilterProcessor) SetNext(p types.Processor) { f.next = p }

// Process detaches non-matching events from the chunk in place.
func (f *FilterProcessor) Process(chunk *types.EventChunk) {
	chunk.Reset()
	for chunk.HasNext() {
		ev := chunk.Next()
		if ev.Type == types.RESET || ev.Type == types.TIMER {
			continue
		}
		if !f.condition.Evaluate(condition.EventEnv(ev, f.definition)) {
			chunk.Detach()
		}
	}
	if f.next != nil {
		f.next.Process(chunk)
	}
}

// FunctionProcessor computes an expression per event and appends the
// result to the event's attribute vector, extending the stream shape for
// downstream stages.
type FunctionProcessor struct {
	name       string
	program    *condition.ValueProgram
	definition *types.StreamDefinition
	next       types.Processor
}

// NewFunctionProcessor compiles a function expression against the
// effective stream shape at this point of the chain. definition is the
// shape before the appended attribute.
func NewFunctionProcessor(name, expression string, definition *types.StreamDefinition) (*FunctionProcessor, error) {
	program, err := condition.CompileValue(expression)
	if err != nil {
		return nil, err
	}
	return &FunctionProcessor{name: name, program: program, definition: definition}, nil
}

func (f *FunctionProcessor) Next() types.Processor     { return f.next }
func (f *FunctionProcessor) SetNext(p types.Processor) { f.next = p }

func (f *FunctionProcessor) Process(chunk *types.EventChunk) {
	chunk.Reset()
	for chunk.HasNext() {
		ev := chunk.Next()
		if ev.Type == types.RESET || ev.Type == types.TIMER {
			ev.Data = append(ev.Data, nil)
			continue
		}
		value, err := f.program.Evaluate(condition.EventEnv(ev, f.definition))
		if err != nil {
			logger.Warn("function %s failed: %v", f.name, err)
			value = nil
		}
		ev.Data = append(ev.Data, value)
	}
	if f.next != nil {
		f.next.Process(chunk)
	}
}

// SetToLast walks a chain from its head and attaches p after the final
// stage.
func SetToLast(head types.Processor, p types.Processor) {
	cur := head
	for cur.Next() != nil {
		cur = cur.Next()
	}
	cur.SetNext(p)
}
