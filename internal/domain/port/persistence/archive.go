package persistence

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// ArchiveRepository keeps terminal records beyond the in-memory history cap.
// The working set stays bounded; the archive is where evicted history goes to
// be queried later.
type ArchiveRepository interface {
	// SaveRecord stores a terminal record. Saving the same record id twice
	// overwrites the previous row.
	SaveRecord(ctx context.Context, record *entity.TransactionRecord) error
	// RecentByInitiator returns up to limit archived records for a wallet,
	// newest first
	RecentByInitiator(ctx context.Context, initiator common.Address, limit int) ([]*entity.TransactionRecord, error)
}
