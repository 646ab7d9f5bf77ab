// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"planora/internal/core/id"
	"planora/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a stored
// changes payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// StoredAuditEntry is the persisted shape of an audit record. Large change
// payloads are stored zstd-compressed.
type StoredAuditEntry struct {
	ID                id.ID           `db:"id"`
	ActorID           id.ID           `db:"actor_id"`
	ActorRole         string          `db:"actor_role"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditStore persists audit entries in the sys_audit table, append-only.
// Implements audit.Recorder.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewAuditStore creates a new audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Record implements audit.Recorder. Runs on the querier from ctx, so a
// record written inside a transaction rolls back with it.
func (s *AuditStore) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	stored := StoredAuditEntry{
		ID:              entry.ID,
		ActorID:         entry.ActorID,
		ActorRole:       entry.ActorRole,
		EntityType:      entry.EntityType,
		EntityID:        entry.EntityID,
		Action:          entry.Action,
		Changes:         changesJSON,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.CreatedAt,
	}

	if len(changesJSON) > s.compressThreshold {
		stored.ChangesCompressed = s.encoder.EncodeAll(changesJSON, nil)
		stored.Changes = nil
		stored.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, actor_id, actor_role, entity_type, entity_id, action,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		stored.ID, nilIfZero(stored.ActorID), stored.ActorRole,
		stored.EntityType, stored.EntityID, stored.Action,
		stored.Changes, stored.ChangesCompressed, stored.CompressionAlgo,
		stored.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// EntityHistory retrieves audit history for an entity, newest first.
// Compressed payloads are transparently decompressed.
func (s *AuditStore) EntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]StoredAuditEntry, error) {
	sql := `
		SELECT id, COALESCE(actor_id, '00000000-0000-0000-0000-000000000000'), actor_role,
			   entity_type, entity_id, action,
			   changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []StoredAuditEntry
	for rows.Next() {
		var e StoredAuditEntry
		err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorRole,
			&e.EntityType, &e.EntityID, &e.Action,
			&e.Changes, &e.ChangesCompressed, &e.CompressionAlgo,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.ChangesCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.ChangesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			e.Changes = decompressed
			e.ChangesCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// nilIfZero maps the zero actor id (system actions) to SQL NULL.
func nilIfZero(actorID id.ID) any {
	if id.IsNil(actorID) {
		return nil
	}
	return actorID
}

// Ensure interface compliance
var _ audit.Recorder = (*AuditStore)(nil)
