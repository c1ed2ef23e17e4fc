package messages

import (
	"fmt"
	"strings"
)

// Status values carried by Status messages.
const (
	StatusReady = "ready"
	StatusError = "error"
)

// InitializationEpoch is the epoch number of the ready status a component
// sends once after the simulation enters the running state.
const InitializationEpoch = 0

// Status reports component readiness or failure for an epoch.
type Status struct {
	Base
	EpochNumber          int64    `json:"EpochNumber"`
	TriggeringMessageIDs []string `json:"TriggeringMessageIds"`
	Value                string   `json:"Value"`
	Description          string   `json:"Description,omitempty"`
}

func init() {
	Register(TypeStatus, func() Message { return &Status{} })
}

// Validate checks the envelope, the status value, and the epoch number.
func (m *Status) Validate() error {
	if err := m.Base.validate(); err != nil {
		return err
	}
	if m.EpochNumber < InitializationEpoch {
		return fmt.Errorf("epoch number must not be negative, got %d", m.EpochNumber)
	}
	switch m.Value {
	case StatusReady:
		return nil
	case StatusError:
		if strings.TrimSpace(m.Description) == "" {
			return fmt.Errorf("error status requires a description")
		}
		return nil
	default:
		return fmt.Errorf("invalid status value %q", m.Value)
	}
}
