package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"inventario/internal/core/entity"
	"inventario/internal/domain/audit"
)

// AuditTable stores the document audit trail.
const AuditTable = "sys_audit_log"

// DefaultCompressThreshold is the payload size above which changes are stored
// zstd-compressed.
const DefaultCompressThreshold = 1024

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditRow is a sys_audit_log row.
type AuditRow struct {
	ID                entity.ID       `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          entity.ID       `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	UserID            string          `db:"user_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditLogger implements audit.Recorder on top of the current transaction.
type AuditLogger struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditLogger)(nil)

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(txManager *TxManager) (*AuditLogger, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditLogger{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder.
func (l *AuditLogger) Record(ctx context.Context, entry audit.Entry) error {
	audit.FillDefaults(ctx, &entry)

	row, err := l.encode(entry)
	if err != nil {
		return err
	}

	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert(AuditTable).
		SetMap(StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// encode turns an entry into a row, compressing large payloads.
func (l *AuditLogger) encode(entry audit.Entry) (*AuditRow, error) {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return nil, fmt.Errorf("marshal changes: %w", err)
	}

	row := &AuditRow{
		ID:              entity.NewID(),
		EntityType:      entry.EntityType,
		EntityID:        entry.EntityID,
		Action:          entry.Action,
		UserID:          entry.UserID,
		Changes:         changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.At,
	}
	if len(changes) > l.compressThreshold {
		row.ChangesCompressed = l.encoder.EncodeAll(changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row, nil
}

// decode is the inverse of encode.
func (l *AuditLogger) decode(row AuditRow) (audit.Entry, error) {
	payload := []byte(row.Changes)
	if row.CompressionAlgo == CompressionZstd && len(row.ChangesCompressed) > 0 {
		raw, err := l.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("decompress changes: %w", err)
		}
		payload = raw
	}

	entry := audit.Entry{
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Action:     row.Action,
		UserID:     row.UserID,
		At:         row.CreatedAt,
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &entry.Changes); err != nil {
			return audit.Entry{}, fmt.Errorf("unmarshal changes: %w", err)
		}
	}
	return entry, nil
}

// History returns the newest entries of one entity first.
func (l *AuditLogger) History(ctx context.Context, entityType string, entityID entity.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(ExtractDBColumns[AuditRow]()...).
		From(AuditTable).
		Where(squirrel.Eq{"entity_type": entityType}).
		Where(squirrel.Expr("entity_id = ?", entityID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []AuditRow
	if err := pgxscan.Select(ctx, l.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := l.decode(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
