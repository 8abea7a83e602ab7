package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// Repository implements the ArchiveRepository port using GORM
type Repository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewRepository creates a new archive repository instance
func NewRepository(db *gorm.DB, logger coreport.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// entityToModel converts a transaction record to a database row
func (r *Repository) entityToModel(record *entity.TransactionRecord) (ArchivedRecord, error) {
	refs := make([]archivedChainRef, 0, len(record.ChainRefs))
	for _, ref := range record.ChainRefs {
		refs = append(refs, archivedChainRef{
			Chain:      string(ref.Chain),
			TxHash:     ref.TxHash.Hex(),
			Attempt:    ref.Attempt,
			ObservedAt: ref.ObservedAt,
		})
	}
	encoded, err := json.Marshal(refs)
	if err != nil {
		return ArchivedRecord{}, fmt.Errorf("encode chain refs: %w", err)
	}

	return ArchivedRecord{
		RecordID:              record.ID,
		Kind:                  string(record.Kind),
		Status:                string(record.Status),
		Initiator:             record.Initiator.Hex(),
		SeedTypeID:            record.Payload.SeedTypeID,
		SeedID:                record.Payload.SeedID,
		Amount:                record.Payload.Amount.String(),
		GasEstimate:           record.Payload.GasEstimate,
		ChainRefs:             string(encoded),
		Note:                  record.Note,
		FailureReason:         record.FailureReason,
		RetryCount:            record.RetryCount,
		CreatedAt:             record.CreatedAt,
		UpdatedAt:             record.UpdatedAt,
		EstimatedCompletionAt: record.EstimatedCompletionAt,
	}, nil
}

// modelToEntity converts a database row back to a transaction record
func (r *Repository) modelToEntity(row *ArchivedRecord) (*entity.TransactionRecord, error) {
	kind, err := entity.ParseKind(row.Kind)
	if err != nil {
		return nil, err
	}
	status, err := entity.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("decode archived amount %q: %w", row.Amount, err)
	}

	var refs []archivedChainRef
	if row.ChainRefs != "" {
		if err := json.Unmarshal([]byte(row.ChainRefs), &refs); err != nil {
			return nil, fmt.Errorf("decode chain refs for %s: %w", row.RecordID, err)
		}
	}
	chainRefs := make([]entity.ChainReference, 0, len(refs))
	for _, ref := range refs {
		chainRefs = append(chainRefs, entity.ChainReference{
			Chain:      entity.ChainName(ref.Chain),
			TxHash:     common.HexToHash(ref.TxHash),
			Attempt:    ref.Attempt,
			ObservedAt: ref.ObservedAt,
		})
	}

	return &entity.TransactionRecord{
		ID:        row.RecordID,
		Kind:      kind,
		Status:    status,
		Initiator: common.HexToAddress(row.Initiator),
		Payload: entity.Payload{
			SeedTypeID:  row.SeedTypeID,
			SeedID:      row.SeedID,
			Amount:      amount,
			GasEstimate: row.GasEstimate,
		},
		ChainRefs:             chainRefs,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
		EstimatedCompletionAt: row.EstimatedCompletionAt,
		Note:                  row.Note,
		FailureReason:         row.FailureReason,
		RetryCount:            row.RetryCount,
	}, nil
}

// SaveRecord stores a terminal record. Saving the same record id twice
// overwrites the previous row, so re-archiving after a sweep is harmless.
func (r *Repository) SaveRecord(ctx context.Context, record *entity.TransactionRecord) error {
	row, err := r.entityToModel(record)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}},
		UpdateAll: true,
	}).Create(&row)
	if result.Error != nil {
		r.logger.Error("failed to archive record", map[string]any{
			"record_id": record.ID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: archive %s: %v", errs.ErrStateStore, record.ID, result.Error)
	}

	r.logger.Debug("record archived", map[string]any{
		"record_id": record.ID,
		"kind":      string(record.Kind),
		"status":    string(record.Status),
	})
	return nil
}

// RecentByInitiator returns up to limit archived records for a wallet,
// newest first
func (r *Repository) RecentByInitiator(ctx context.Context, initiator common.Address, limit int) ([]*entity.TransactionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []ArchivedRecord
	result := r.db.WithContext(ctx).
		Where("initiator = ?", initiator.Hex()).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		r.logger.Error("failed to query archive", map[string]any{
			"initiator": initiator.Hex(),
			"error":     result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: query archive: %v", errs.ErrStateStore, result.Error)
	}

	records := make([]*entity.TransactionRecord, 0, len(rows))
	for i := range rows {
		record, err := r.modelToEntity(&rows[i])
		if err != nil {
			r.logger.Warn("skipping undecodable archive row", map[string]any{
				"record_id": rows[i].RecordID,
				"error":     err.Error(),
			})
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
