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
	"github.com/streamcep/streamcep/output"
	"github.com/streamcep/streamcep/selector"
	"github.com/streamcep/streamcep/types"
)

// QueryRuntime is one fully assembled, runnable continuous query. It is
// immutable once built: it binds the query identity, the assembled stream
// graph, the selector, the output rate limiter, the output callback, the
// frozen event-shape metadata and whether a lock is engaged.
type QueryRuntime struct {
	name          string
	query         *types.Query
	streamRuntime StreamRuntime
	selector      *selector.QuerySelector
	rateLimiter   output.RateLimiter
	callback      output.Callback
	meta          types.MetaComplexEvent
	synchronized  bool
	isWindow      bool
}

// NewQueryRuntime constructs the immutable runtime record.
func NewQueryRuntime(name string, query *types.Query, streamRuntime StreamRuntime,
	sel *selector.QuerySelector, rateLimiter output.RateLimiter, callback output.Callback,
	meta types.MetaComplexEvent, synchronized, isWindow bool) *QueryRuntime {
	return &QueryRuntime{
		name:          name,
		query:         query,
		streamRuntime: streamRuntime,
		selector:      sel,
		rateLimiter:   rateLimiter,
		callback:      callback,
		meta:          meta,
		synchronized:  synchronized,
		isWindow:      isWindow,
	}
}

// Name returns the query's diagnostic name.
func (qr *QueryRuntime) Name() string { return qr.name }

// Query returns the declarative plan the runtime was assembled from.
func (qr *QueryRuntime) Query() *types.Query { return qr.query }

// StreamRuntime returns the assembled input graph.
func (qr *QueryRuntime) StreamRuntime() StreamRuntime { return qr.streamRuntime }

// Selector returns the projection executor.
func (qr *QueryRuntime) Selector() *selector.QuerySelector { return qr.selector }

// RateLimiter returns the output rate limiter.
func (qr *QueryRuntime) RateLimiter() output.RateLimiter { return qr.rateLimiter }

// Callback returns the output callback.
func (qr *QueryRuntime) Callback() output.Callback { return qr.callback }

// MetaComplexEvent returns the frozen event-shape metadata.
func (qr *QueryRuntime) MetaComplexEvent() types.MetaComplexEvent { return qr.meta }

// Synchronized reports whether a lock is engaged for this query.
func (qr *QueryRuntime) Synchronized() bool { return qr.synchronized }

// IsWindow reports whether the query involves window state: a join, or a
// single stream with a window attachment.
func (qr *QueryRuntime) IsWindow() bool { return qr.isWindow }
