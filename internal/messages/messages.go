// Package messages defines the simulation platform message model.
//
// Messages travel as JSON documents over the platform's topic exchange.
// Every message carries a common envelope (type, simulation ID, source
// process, message ID, timestamp); concrete types add their own fields
// and register a decoder keyed on the wire type name.
package messages

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Wire type names for platform messages.
const (
	TypeSimState = "SimState"
	TypeEpoch    = "Epoch"
	TypeStatus   = "Status"
)

// Base is the envelope shared by every platform message.
type Base struct {
	Type            string    `json:"Type"`
	SimulationID    string    `json:"SimulationId"`
	SourceProcessID string    `json:"SourceProcessId"`
	MessageID       string    `json:"MessageId"`
	Timestamp       time.Time `json:"Timestamp"`
}

// Meta returns the message envelope.
func (b Base) Meta() Base { return b }

func (b Base) validate() error {
	if strings.TrimSpace(b.Type) == "" {
		return fmt.Errorf("message type is required")
	}
	if strings.TrimSpace(b.SimulationID) == "" {
		return fmt.Errorf("simulation id is required")
	}
	if strings.TrimSpace(b.SourceProcessID) == "" {
		return fmt.Errorf("source process id is required")
	}
	if strings.TrimSpace(b.MessageID) == "" {
		return fmt.Errorf("message id is required")
	}
	if b.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// Message is a decoded platform message.
type Message interface {
	Meta() Base
	Validate() error
}

// Unknown wraps a payload whose wire type has no registered decoder.
// Consumers log and drop these instead of failing the delivery loop.
type Unknown struct {
	Base
	Raw json.RawMessage
}

// Validate accepts any unknown payload; only the envelope was decoded.
func (u *Unknown) Validate() error { return nil }

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Message{}
)

// Register installs a decoder factory for a wire type name. Concrete
// message packages call Register from init.
func Register(wireType string, factory func() Message) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[wireType] = factory
}

// Parse decodes a wire payload into its registered message type. Payloads
// with an unregistered type decode into *Unknown; payloads that fail
// validation return an error.
func Parse(payload []byte) (Message, error) {
	var probe struct {
		Type string `json:"Type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}
	if strings.TrimSpace(probe.Type) == "" {
		return nil, fmt.Errorf("message type is required")
	}

	registryMu.RLock()
	factory, ok := registry[probe.Type]
	registryMu.RUnlock()
	if !ok {
		unknown := &Unknown{Raw: append([]byte(nil), payload...)}
		if err := json.Unmarshal(payload, &unknown.Base); err != nil {
			return nil, fmt.Errorf("decode unknown message envelope: %w", err)
		}
		return unknown, nil
	}

	msg := factory()
	if err := json.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", probe.Type, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s message: %w", probe.Type, err)
	}
	return msg, nil
}

// Encode marshals a message after validating it.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s message: %w", msg.Meta().Type, err)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.Meta().Type, err)
	}
	return body, nil
}
