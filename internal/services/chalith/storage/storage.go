// Package storage defines the message archive contract for the Chalith
// component.
package storage

import (
	"context"
	"time"
)

// Message directions in the archive.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// MessageRecord is one archived bus message.
type MessageRecord struct {
	ID              int64
	Direction       string
	Topic           string
	WireType        string
	MessageID       string
	SourceProcessID string
	EpochNumber     int64
	Payload         []byte
	CreatedAt       time.Time
}

// MessageStore persists archived bus messages.
type MessageStore interface {
	RecordMessage(ctx context.Context, record MessageRecord) error
	ListMessages(ctx context.Context, limit int) ([]MessageRecord, error)
}
