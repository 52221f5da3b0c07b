package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "takoyaki/internal/core/context"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/posting"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// PostingAudit is a snapshot of the ledger entries one posting
// iteration produced.
type PostingAudit struct {
	ID                id.ID           `db:"id"`
	RefType           entity.RefType  `db:"ref_type"`
	RefID             id.ID           `db:"ref_id"`
	RefVersion        int             `db:"ref_version"`
	UserID            string          `db:"user_id"`
	EntryCount        int             `db:"entry_count"`
	Entries           json.RawMessage `db:"entries"`
	EntriesCompressed []byte          `db:"entries_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

var _ posting.AuditSink = (*AuditService)(nil)

// AuditService records posting snapshots. Large entry sets are stored
// zstd-compressed.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// RecordPosting stores the entries a document's posting wrote.
func (s *AuditService) RecordPosting(ctx context.Context, refType entity.RefType, refID id.ID, version int, entries []entity.LedgerEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	record := PostingAudit{
		ID:              id.New(),
		RefType:         refType,
		RefID:           refID,
		RefVersion:      version,
		EntryCount:      len(entries),
		Entries:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		record.UserID = user.UserID
	}

	if len(payload) > s.compressThreshold {
		record.EntriesCompressed = s.encoder.EncodeAll(payload, nil)
		record.Entries = nil
		record.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO posting_audit (
			id, ref_type, ref_id, ref_version, user_id, entry_count,
			entries, entries_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		record.ID, record.RefType, record.RefID, record.RefVersion,
		record.UserID, record.EntryCount,
		record.Entries, record.EntriesCompressed, record.CompressionAlgo,
		record.CreatedAt,
	)
	return err
}

// History retrieves posting snapshots for a document, newest first.
func (s *AuditService) History(ctx context.Context, refType entity.RefType, refID id.ID, limit int) ([]PostingAudit, error) {
	sql := `
		SELECT id, ref_type, ref_id, ref_version, user_id, entry_count,
			   entries, entries_compressed, compression_algo, created_at
		FROM posting_audit
		WHERE ref_type = $1 AND ref_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, refType, refID, limit)
	if err != nil {
		return nil, fmt.Errorf("query posting audit: %w", err)
	}
	defer rows.Close()

	var records []PostingAudit
	for rows.Next() {
		var rec PostingAudit
		err := rows.Scan(
			&rec.ID, &rec.RefType, &rec.RefID, &rec.RefVersion,
			&rec.UserID, &rec.EntryCount,
			&rec.Entries, &rec.EntriesCompressed, &rec.CompressionAlgo,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan posting audit: %w", err)
		}

		if rec.CompressionAlgo == CompressionZstd && len(rec.EntriesCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(rec.EntriesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress entries: %w", err)
			}
			rec.Entries = decompressed
			rec.EntriesCompressed = nil
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}
