package messages

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Generator stamps outgoing messages with the common envelope fields for
// one (simulation, source process) pair. Message IDs are sequential and
// unique for the lifetime of the generator.
type Generator struct {
	simulationID    string
	sourceProcessID string

	mu         sync.Mutex
	nextNumber int64
	now        func() time.Time
}

// NewGenerator creates a message generator for the given simulation and
// source process.
func NewGenerator(simulationID, sourceProcessID string) (*Generator, error) {
	if strings.TrimSpace(simulationID) == "" {
		return nil, fmt.Errorf("simulation id is required")
	}
	if strings.TrimSpace(sourceProcessID) == "" {
		return nil, fmt.Errorf("source process id is required")
	}
	return &Generator{
		simulationID:    simulationID,
		sourceProcessID: sourceProcessID,
		nextNumber:      1,
		now:             time.Now,
	}, nil
}

// NextBase returns a stamped envelope for a new message of wireType.
func (g *Generator) NextBase(wireType string) Base {
	g.mu.Lock()
	number := g.nextNumber
	g.nextNumber++
	g.mu.Unlock()

	return Base{
		Type:            wireType,
		SimulationID:    g.simulationID,
		SourceProcessID: g.sourceProcessID,
		MessageID:       fmt.Sprintf("%s-%d", g.sourceProcessID, number),
		Timestamp:       g.now().UTC(),
	}
}

// NewStatusReady builds a ready status message for an epoch.
func (g *Generator) NewStatusReady(epochNumber int64, triggering []string) *Status {
	return &Status{
		Base:                 g.NextBase(TypeStatus),
		EpochNumber:          epochNumber,
		TriggeringMessageIDs: normalizeIDs(triggering),
		Value:                StatusReady,
	}
}

// NewStatusError builds an error status message for an epoch.
func (g *Generator) NewStatusError(epochNumber int64, triggering []string, description string) *Status {
	return &Status{
		Base:                 g.NextBase(TypeStatus),
		EpochNumber:          epochNumber,
		TriggeringMessageIDs: normalizeIDs(triggering),
		Value:                StatusError,
		Description:          description,
	}
}

// NewResult builds a stamped result section for a domain result message.
func (g *Generator) NewResult(wireType string, epochNumber int64, triggering []string) Result {
	return Result{
		Base:                 g.NextBase(wireType),
		EpochNumber:          epochNumber,
		TriggeringMessageIDs: normalizeIDs(triggering),
	}
}

// normalizeIDs keeps triggering ids serializable as an empty JSON array
// rather than null.
func normalizeIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
