package domain

import (
	"strings"
	"testing"

	"github.com/simcesplatform/chalith-component/internal/messages"
)

func TestParseChalithMessage(t *testing.T) {
	payload := `{"Type":"Chalith","SimulationId":"sim-1","SourceProcessId":"alpha","MessageId":"alpha-3","Timestamp":"2026-01-02T03:04:05Z","EpochNumber":2,"TriggeringMessageIds":["manager-4"],"ChalithValue":"ab"}`

	msg, err := messages.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse chalith message: %v", err)
	}
	chalith, ok := msg.(*ChalithMessage)
	if !ok {
		t.Fatalf("expected *ChalithMessage, got %T", msg)
	}
	if chalith.ChalithValue != "ab" {
		t.Fatalf("expected value ab, got %q", chalith.ChalithValue)
	}
	if chalith.EpochNumber != 2 {
		t.Fatalf("expected epoch 2, got %d", chalith.EpochNumber)
	}
}

func TestParseChalithMessageRejectsBadEpoch(t *testing.T) {
	payload := `{"Type":"Chalith","SimulationId":"sim-1","SourceProcessId":"alpha","MessageId":"alpha-3","Timestamp":"2026-01-02T03:04:05Z","EpochNumber":0,"TriggeringMessageIds":[],"ChalithValue":"ab"}`

	_, err := messages.Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected epoch validation error")
	}
	if !strings.Contains(err.Error(), "epoch number") {
		t.Fatalf("expected epoch number error, got %v", err)
	}
}
