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

// Package checkpoint serializes and restores the durable state of an
// engine's named windows. Checkpoints are JSON encoded and snappy
// compressed; the format carries a version so older checkpoints can be
// rejected explicitly rather than misread.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/streamcep/streamcep/types"
	"github.com/streamcep/streamcep/window"
)

// formatVersion identifies the checkpoint layout.
const formatVersion = 1

type eventState struct {
	Type      types.EventType `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      []interface{}   `json:"data"`
}

type windowState struct {
	Count  int          `json:"count"`
	Events []eventState `json:"events"`
}

type checkpointState struct {
	Version int                    `json:"version"`
	Engine  string                 `json:"engine"`
	Windows map[string]windowState `json:"windows"`
}

// Manager captures and restores named-window state for one engine.
type Manager struct {
	engineName string
	windows    *window.Registry
}

// NewManager creates a manager bound to the engine's window registry.
func NewManager(engineName string, windows *window.Registry) *Manager {
	return &Manager{engineName: engineName, windows: windows}
}

// Snapshot serializes the state of every registered named window. Each
// window is snapshotted under its own lock, so the checkpoint is
// per-window consistent but not a global point in time.
func (m *Manager) Snapshot() ([]byte, error) {
	state := checkpointState{
		Version: formatVersion,
		Engine:  m.engineName,
		Windows: make(map[string]windowState),
	}
	for _, name := range m.windows.Names() {
		nw, ok := m.windows.Lookup(name)
		if !ok {
			continue
		}
		ws := nw.Window().Snapshot()
		events := make([]eventState, 0, len(ws.Events))
		for _, ev := range ws.Events {
			events = append(events, eventState{Type: ev.Type, Timestamp: ev.Timestamp, Data: ev.Data})
		}
		state.Windows[name] = windowState{Count: ws.Count, Events: events}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint for engine %s: %w", m.engineName, err)
	}
	return snappy.Encode(nil, raw), nil
}

// Restore loads a checkpoint produced by Snapshot into the registry's
// windows. Every window named in the checkpoint must already be
// registered; restoring into a differently shaped engine is an error,
// not a silent partial load.
func (m *Manager) Restore(data []byte) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("decompress checkpoint for engine %s: %w", m.engineName, err)
	}
	var state checkpointState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode checkpoint for engine %s: %w", m.engineName, err)
	}
	if state.Version != formatVersion {
		return fmt.Errorf("checkpoint version %d not supported, want %d", state.Version, formatVersion)
	}
	for name, ws := range state.Windows {
		nw, ok := m.windows.Lookup(name)
		if !ok {
			return fmt.Errorf("checkpoint names unknown window %s", name)
		}
		events := make([]*types.StreamEvent, 0, len(ws.Events))
		for _, es := range ws.Events {
			ev := types.NewStreamEvent(es.Timestamp, es.Data...)
			ev.Type = es.Type
			events = append(events, ev)
		}
		nw.Window().Restore(window.State{Count: ws.Count, Events: events})
	}
	return nil
}
