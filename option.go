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
	"github.com/zoobzio/clockz"

	"github.com/streamcep/streamcep/logger"
)

// Option adjusts an engine's shared context before assembly starts.
type Option func(*Engine)

// WithLogger installs a custom logger on the engine and as the package
// default.
//
// Example:
//
//	log := logger.NewLogger(logger.DEBUG, os.Stderr)
//	eng := streamcep.New("sensors", streamcep.WithLogger(log))
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.ctx.Logger = log
		logger.SetDefault(log)
	}
}

// WithLogLevel sets the level of the engine's logger. Levels are DEBUG,
// INFO, WARN, ERROR and OFF.
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) {
		e.ctx.Logger.SetLevel(level)
	}
}

// WithDiscardLog silences all engine logging.
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.ctx.Logger = logger.NewDiscardLogger()
	}
}

// WithClock replaces the engine clock. Windows stamp expirations and
// rate limiters schedule emissions off this clock, so a fake clock makes
// time-dependent behavior deterministic in tests.
//
// Example:
//
//	clk := clockz.NewFakeClock()
//	eng := streamcep.New("sensors", streamcep.WithClock(clk))
func WithClock(clock clockz.Clock) Option {
	return func(e *Engine) {
		e.ctx.Clock = clock
	}
}

// WithIDGenerator replaces the generator used to mint names for unnamed
// queries. Tests pin it to get stable names.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.ctx.NewID = newID
	}
}
