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

package selector

import "github.com/streamcep/streamcep/types"

// EventPopulator copies a projected value vector into an output event.
// The concrete populator depends on the frozen metadata's form: single
// stream or multi-branch.
type EventPopulator interface {
	Populate(out *types.StreamEvent, values []interface{})
}

// NewEventPopulator builds the populator matching the frozen metadata.
func NewEventPopulator(meta types.MetaComplexEvent) EventPopulator {
	switch meta.(type) {
	case *types.MetaStateEvent:
		return &stateEventPopulator{}
	default:
		return &streamEventPopulator{}
	}
}

// streamEventPopulator fills single-stream results positionally.
type streamEventPopulator struct{}

func (p *streamEventPopulator) Populate(out *types.StreamEvent, values []interface{}) {
	out.Data = values
}

// stateEventPopulator fills multi-branch results. Branch provenance is
// already resolved by the variable executors' positional slots, so the
// output vector is positional here too; the populator exists so the
// conversion point stays swappable per metadata form.
type stateEventPopulator struct{}

func (p *stateEventPopulator) Populate(out *types.StreamEvent, values []interface{}) {
	out.Data = make([]interface{}, len(values))
	copy(out.Data, values)
}
