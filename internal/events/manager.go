package events

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// EventData is implemented by every typed payload
type EventData interface {
	EventType() EventType
}

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Bus returns the underlying bus for subscribers
func (m *Manager) Bus() *Bus {
	return m.bus
}

// EmitTyped emits an event with typed data to the bus and logs it
func (m *Manager) EmitTyped(module string, data EventData) {
	if m == nil {
		return
	}
	eventType := data.EventType()
	m.bus.Emit(eventType, module, toMap(data))

	m.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Msg("Event emitted")
}

// EmitError emits a RunFailed event
func (m *Manager) EmitError(module, runID string, err error) {
	m.EmitTyped(module, &RunFailedData{RunID: runID, Error: err.Error()})
}

func toMap(data EventData) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
