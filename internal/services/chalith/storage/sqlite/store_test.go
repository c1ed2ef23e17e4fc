package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestRecordAndListMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []storage.MessageRecord{
		{
			Direction:       storage.DirectionReceived,
			Topic:           "Epoch",
			WireType:        "Epoch",
			MessageID:       "manager-2",
			SourceProcessID: "manager",
			EpochNumber:     1,
			Payload:         []byte(`{"Type":"Epoch"}`),
		},
		{
			Direction:       storage.DirectionSent,
			Topic:           "ChalithTopic.chalith",
			WireType:        "Chalith",
			MessageID:       "chalith-2",
			SourceProcessID: "chalith",
			EpochNumber:     1,
			Payload:         []byte(`{"Type":"Chalith"}`),
			CreatedAt:       time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		},
	}
	for _, record := range records {
		if err := store.RecordMessage(ctx, record); err != nil {
			t.Fatalf("record message: %v", err)
		}
	}

	listed, err := store.ListMessages(ctx, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 records, got %d", len(listed))
	}
	// Newest first.
	if listed[0].MessageID != "chalith-2" {
		t.Fatalf("expected chalith-2 first, got %q", listed[0].MessageID)
	}
	if listed[0].CreatedAt != time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) {
		t.Fatalf("expected preserved created time, got %v", listed[0].CreatedAt)
	}
	if listed[1].Direction != storage.DirectionReceived {
		t.Fatalf("expected received direction, got %q", listed[1].Direction)
	}
	if string(listed[1].Payload) != `{"Type":"Epoch"}` {
		t.Fatalf("expected payload preserved, got %s", listed[1].Payload)
	}
}

func TestRecordMessageValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.RecordMessage(ctx, storage.MessageRecord{
		Direction: "forwarded",
		Topic:     "Epoch",
	})
	if err == nil {
		t.Fatal("expected invalid direction error")
	}

	err = store.RecordMessage(ctx, storage.MessageRecord{
		Direction: storage.DirectionSent,
	})
	if err == nil {
		t.Fatal("expected missing topic error")
	}
}

func TestListMessagesRequiresPositiveLimit(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.ListMessages(context.Background(), 0); err == nil {
		t.Fatal("expected limit error")
	}
}

func TestListMessagesHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.RecordMessage(ctx, storage.MessageRecord{
			Direction:       storage.DirectionReceived,
			Topic:           "SimState",
			WireType:        "SimState",
			MessageID:       "manager-1",
			SourceProcessID: "manager",
			Payload:         []byte("{}"),
		}); err != nil {
			t.Fatalf("record message %d: %v", i, err)
		}
	}

	listed, err := store.ListMessages(ctx, 3)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 records, got %d", len(listed))
	}
}
