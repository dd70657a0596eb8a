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

package types

import "fmt"

// ValidationError reports a bad or missing construction parameter. It is
// fatal: the plan cannot be built.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedVariantError reports an unhandled input-stream kind. This is a
// programming error, not a user error.
type UnsupportedVariantError struct {
	Variant string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported input stream variant %s", e.Variant)
}

// DuplicateDefinitionError reports a clashing stream or window definition.
// The query planner re-raises it annotated with the resolved query name.
type DuplicateDefinitionError struct {
	Msg       string
	QueryName string
	Cause     error
}

func (e *DuplicateDefinitionError) Error() string {
	if e.QueryName != "" {
		return fmt.Sprintf("%s, when creating query %s", e.Msg, e.QueryName)
	}
	return e.Msg
}

func (e *DuplicateDefinitionError) Unwrap() error {
	return e.Cause
}

// QueryCreationError wraps any other assembly-time fault, carrying the
// query name and the original cause. Exactly this and
// DuplicateDefinitionError escape query assembly.
type QueryCreationError struct {
	QueryName string
	Cause     error
}

func (e *QueryCreationError) Error() string {
	if e.QueryName != "" {
		return fmt.Sprintf("%v, when creating query %s", e.Cause, e.QueryName)
	}
	return e.Cause.Error()
}

func (e *QueryCreationError) Unwrap() error {
	return e.Cause
}
