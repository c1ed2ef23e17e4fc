// Package archive parses archive inspection flags and lists recent
// records from a component's message archive.
package archive

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/simcesplatform/chalith-component/internal/platform/cmd"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage"
	chalithsqlite "github.com/simcesplatform/chalith-component/internal/services/chalith/storage/sqlite"
)

// Config holds archive command configuration.
type Config struct {
	DBPath string `env:"CHALITH_ARCHIVE_DB_PATH" envDefault:"data/archive.db"`
	Limit  int    `env:"CHALITH_ARCHIVE_LIST_LIMIT" envDefault:"20"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The message archive SQLite path")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Maximum number of records to list")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run lists the newest archived messages to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := chalithsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open message archive: %w", err)
	}
	defer store.Close()

	records, err := store.ListMessages(ctx, cfg.Limit)
	if err != nil {
		return fmt.Errorf("list archived messages: %w", err)
	}

	for _, record := range records {
		if err := printRecord(out, record); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(out io.Writer, record storage.MessageRecord) error {
	_, err := fmt.Fprintf(out, "%s %-8s epoch=%-4d %-24s %-12s %s\n",
		record.CreatedAt.UTC().Format(time.RFC3339),
		record.Direction,
		record.EpochNumber,
		record.Topic,
		record.WireType,
		record.MessageID,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
