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

// Package condition compiles query-plan expressions into reusable programs
// evaluated against stream events: boolean filters, value expressions and
// window match conditions.
package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/streamcep/streamcep/types"
)

// Condition is a compiled boolean predicate over one event environment.
type Condition interface {
	Evaluate(env interface{}) bool
}

// ExprCondition is a Condition backed by a compiled expr program.
type ExprCondition struct {
	program *vm.Program
}

var _ Condition = (*ExprCondition)(nil)

func compileOptions() []expr.Option {
	return []expr.Option{
		expr.Function("like_match", func(params ...interface{}) (interface{}, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, fmt.Errorf("like_match requires string parameters")
			}
			return likeMatch(text, pattern, 0, 0), nil
		}),
		expr.AllowUndefinedVariables(),
	}
}

// Compile compiles a boolean expression. Attribute names of the stream the
// condition runs against are free variables.
func Compile(expression string) (Condition, error) {
	options := append(compileOptions(), expr.AsBool())
	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, err
	}
	return &ExprCondition{program: program}, nil
}

// Evaluate runs the program. Evaluation faults count as non-matches.
func (ec *ExprCondition) Evaluate(env interface{}) bool {
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

// ValueProgram is a compiled value expression over one event environment.
type ValueProgram struct {
	program *vm.Program
}

// CompileValue compiles an expression producing an attribute value.
func CompileValue(expression string) (*ValueProgram, error) {
	program, err := expr.Compile(expression, compileOptions()...)
	if err != nil {
		return nil, err
	}
	return &ValueProgram{program: program}, nil
}

// Evaluate runs the program and returns the produced value.
func (vp *ValueProgram) Evaluate(env interface{}) (interface{}, error) {
	return expr.Run(vp.program, env)
}

// EventEnv builds the evaluation environment of one event: its attributes
// keyed by name per the stream definition, plus the event timestamp under
// "timestamp".
func EventEnv(ev *types.StreamEvent, def *types.StreamDefinition) map[string]interface{} {
	if def == nil {
		return map[string]interface{}{"timestamp": ev.Timestamp}
	}
	env := make(map[string]interface{}, len(def.Attributes)+1)
	for i, attr := range def.Attributes {
		if i < len(ev.Data) {
			env[attr.Name] = ev.Data[i]
		}
	}
	env["timestamp"] = ev.Timestamp
	return env
}

// CompiledCondition is a window match condition bound once against the
// window's backing shape and a probe shape, then reused for point lookups.
// Candidate attributes are free variables; probe attributes are reachable
// under "probe".
type CompiledCondition struct {
	condition Condition
	windowDef *types.StreamDefinition
	probeDef  *types.StreamDefinition
}

// CompileMatch binds a predicate against the window shape and probe shape.
func CompileMatch(expression string, windowDef, probeDef *types.StreamDefinition) (*CompiledCondition, error) {
	if windowDef == nil {
		return nil, fmt.Errorf("window shape metadata is required")
	}
	cond, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return &CompiledCondition{condition: cond, windowDef: windowDef, probeDef: probeDef}, nil
}

// Matches evaluates the bound predicate for one candidate against the
// probe event. probe may be nil for unconditional scans.
func (cc *CompiledCondition) Matches(probe, candidate *types.StreamEvent) bool {
	env := EventEnv(candidate, cc.windowDef)
	if probe != nil && cc.probeDef != nil {
		env["probe"] = EventEnv(probe, cc.probeDef)
	}
	return cc.condition.Evaluate(env)
}

// likeMatch implements SQL LIKE semantics: % matches any run of
// characters, _ matches exactly one.
func likeMatch(text, pattern string, textIndex, patternIndex int) bool {
	if patternIndex >= len(pattern) {
		return textIndex >= len(text)
	}
	if textIndex >= len(text) {
		for i := patternIndex; i < len(pattern); i++ {
			if pattern[i] != '%' {
				return false
			}
		}
		return true
	}
	switch pattern[patternIndex] {
	case '%':
		if likeMatch(text, pattern, textIndex, patternIndex+1) {
			return true
		}
		for i := textIndex; i < len(text); i++ {
			if likeMatch(text, pattern, i+1, patternIndex+1) {
				return true
			}
		}
		return false
	case '_':
		return likeMatch(text, pattern, textIndex+1, patternIndex+1)
	default:
		if text[textIndex] == pattern[patternIndex] {
			return likeMatch(text, pattern, textIndex+1, patternIndex+1)
		}
		return false
	}
}
