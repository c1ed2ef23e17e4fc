package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/simcesplatform/chalith-component/internal/bus"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage"
)

// archivingBus records every published and delivered message in the
// message archive. Archive failures are logged and never interrupt the
// message flow.
type archivingBus struct {
	inner bus.Bus
	store storage.MessageStore
}

func newArchivingBus(inner bus.Bus, store storage.MessageStore) *archivingBus {
	return &archivingBus{inner: inner, store: store}
}

func (a *archivingBus) Publish(ctx context.Context, topic string, body []byte) error {
	a.archive(ctx, storage.DirectionSent, topic, body)
	return a.inner.Publish(ctx, topic, body)
}

func (a *archivingBus) Subscribe(ctx context.Context, bindings []string) (<-chan bus.Delivery, error) {
	deliveries, err := a.inner.Subscribe(ctx, bindings)
	if err != nil {
		return nil, err
	}

	out := make(chan bus.Delivery)
	go func() {
		defer close(out)
		for delivery := range deliveries {
			a.archive(ctx, storage.DirectionReceived, delivery.Topic, delivery.Body)
			select {
			case <-ctx.Done():
				return
			case out <- delivery:
			}
		}
	}()
	return out, nil
}

func (a *archivingBus) Close() error {
	return a.inner.Close()
}

func (a *archivingBus) archive(ctx context.Context, direction, topic string, body []byte) {
	var envelope struct {
		Type            string `json:"Type"`
		MessageID       string `json:"MessageId"`
		SourceProcessID string `json:"SourceProcessId"`
		EpochNumber     int64  `json:"EpochNumber"`
	}
	// Malformed payloads are archived with an empty envelope.
	_ = json.Unmarshal(body, &envelope)

	err := a.store.RecordMessage(ctx, storage.MessageRecord{
		Direction:       direction,
		Topic:           topic,
		WireType:        envelope.Type,
		MessageID:       envelope.MessageID,
		SourceProcessID: envelope.SourceProcessID,
		EpochNumber:     envelope.EpochNumber,
		Payload:         body,
	})
	if err != nil {
		log.Printf("archive %s message on %s: %v", direction, topic, err)
	}
}
