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

import (
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/logger"
)

// Processor is one stage of an assembled stream-processing chain. A stage
// consumes a chunk, possibly splices events in place, and hands the chunk
// to the next stage.
type Processor interface {
	Process(chunk *EventChunk)
	Next() Processor
	SetNext(p Processor)
}

// Lifecycle is implemented by runtime collaborators the engine starts and
// stops with the app, such as output rate limiters.
type Lifecycle interface {
	Start()
	Stop()
}

// EngineContext carries the app-wide collaborators every assembled runtime
// shares: the clock, the logger and the diagnostic id generator. It also
// tracks eternal holders, runtime objects that live until the app stops.
type EngineContext struct {
	Name   string
	Clock  clockz.Clock
	Logger logger.Logger
	// NewID mints engine-wide unique-enough diagnostic identifiers. It is
	// injectable so tests can pin names deterministically.
	NewID func() string

	mu      sync.Mutex
	holders []Lifecycle
}

// NewEngineContext creates a context with the real clock, the default
// logger and uuid-minted identifiers.
func NewEngineContext(name string) *EngineContext {
	return &EngineContext{
		Name:   name,
		Clock:  clockz.RealClock,
		Logger: logger.GetDefault(),
		NewID:  func() string { return uuid.NewString() },
	}
}

// CurrentTime returns the engine's logical time in unix milliseconds.
func (c *EngineContext) CurrentTime() int64 {
	return c.Clock.Now().UnixMilli()
}

// AddEternalHolder registers a holder for process-wide shutdown
// notification.
func (c *EngineContext) AddEternalHolder(h Lifecycle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holders = append(c.holders, h)
}

// EternalHolders snapshots the registered holders.
func (c *EngineContext) EternalHolders() []Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	holders := make([]Lifecycle, len(c.holders))
	copy(holders, c.holders)
	return holders
}
