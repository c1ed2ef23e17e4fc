// Package sqlite provides SQLite-backed message archive persistence.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/simcesplatform/chalith-component/internal/platform/storage/sqlitemigrate"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/storage/sqlite/migrations"
)

// Store provides SQLite-backed message archive persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a message archive store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordMessage persists one archived bus message.
func (s *Store) RecordMessage(ctx context.Context, record storage.MessageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	record.Direction = strings.TrimSpace(record.Direction)
	record.Topic = strings.TrimSpace(record.Topic)
	record.WireType = strings.TrimSpace(record.WireType)
	if record.Direction != storage.DirectionSent && record.Direction != storage.DirectionReceived {
		return fmt.Errorf("invalid message direction %q", record.Direction)
	}
	if record.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO archived_messages (
	direction,
	topic,
	wire_type,
	message_id,
	source_process_id,
	epoch_number,
	payload,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.Direction,
		record.Topic,
		record.WireType,
		record.MessageID,
		record.SourceProcessID,
		record.EpochNumber,
		record.Payload,
		record.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// ListMessages lists newest-first archived messages.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]storage.MessageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, direction, topic, wire_type, message_id, source_process_id, epoch_number, payload, created_at
FROM archived_messages
ORDER BY id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var records []storage.MessageRecord
	for rows.Next() {
		var (
			record    storage.MessageRecord
			createdAt int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.Direction,
			&record.Topic,
			&record.WireType,
			&record.MessageID,
			&record.SourceProcessID,
			&record.EpochNumber,
			&record.Payload,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan message record: %w", err)
		}
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message records: %w", err)
	}
	return records, nil
}
