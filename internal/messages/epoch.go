package messages

import (
	"fmt"
	"time"
)

// Epoch opens one simulation epoch and bounds its simulated time range.
type Epoch struct {
	Base
	EpochNumber          int64     `json:"EpochNumber"`
	TriggeringMessageIDs []string  `json:"TriggeringMessageIds"`
	StartTime            time.Time `json:"StartTime"`
	EndTime              time.Time `json:"EndTime"`
}

func init() {
	Register(TypeEpoch, func() Message { return &Epoch{} })
}

// Validate checks the envelope, the epoch number, and the time range.
func (m *Epoch) Validate() error {
	if err := m.Base.validate(); err != nil {
		return err
	}
	if m.EpochNumber < 1 {
		return fmt.Errorf("epoch number must be at least 1, got %d", m.EpochNumber)
	}
	if m.StartTime.IsZero() || m.EndTime.IsZero() {
		return fmt.Errorf("epoch start and end times are required")
	}
	if !m.EndTime.After(m.StartTime) {
		return fmt.Errorf("epoch end time must be after start time")
	}
	return nil
}
