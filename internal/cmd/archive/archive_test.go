package archive

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage"
	chalithsqlite "github.com/simcesplatform/chalith-component/internal/services/chalith/storage/sqlite"
)

func TestParseConfigDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-limit", "5"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/archive.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Limit != 5 {
		t.Fatalf("expected flag limit 5, got %d", cfg.Limit)
	}
}

func TestRunListsArchivedMessages(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.db")
	store, err := chalithsqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = store.RecordMessage(context.Background(), storage.MessageRecord{
		Direction:       storage.DirectionSent,
		Topic:           "ChalithTopic.chalith",
		WireType:        "Chalith",
		MessageID:       "chalith-3",
		SourceProcessID: "chalith",
		EpochNumber:     2,
		Payload:         []byte("{}"),
	})
	if err != nil {
		t.Fatalf("record message: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	var out strings.Builder
	if err := Run(context.Background(), Config{DBPath: dbPath, Limit: 10}, &out); err != nil {
		t.Fatalf("run archive listing: %v", err)
	}

	listing := out.String()
	if !strings.Contains(listing, "ChalithTopic.chalith") {
		t.Fatalf("expected topic in listing, got %q", listing)
	}
	if !strings.Contains(listing, "chalith-3") {
		t.Fatalf("expected message id in listing, got %q", listing)
	}
}

func TestRunFailsOnMissingArchive(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "missing", "archive.db"), Limit: 10}
	if err := Run(context.Background(), cfg, &strings.Builder{}); err == nil {
		t.Fatal("expected error for unreadable archive path")
	}
}
