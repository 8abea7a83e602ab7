package usecase

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// RecordPatch is a partial update to an active record. Every patch carries
// the attempt it belongs to; patches from superseded attempts are dropped so
// late-arriving async callbacks cannot corrupt a retried record.
type RecordPatch struct {
	Attempt               int
	Status                *entity.TransactionStatus
	Note                  *string
	EstimatedCompletionAt *time.Time
}

// RecordLedger is the in-memory source of truth for transaction records. It
// performs pure data operations; durability and archiving are layered on by
// a persistence wrapper implementing the same interface.
type RecordLedger interface {
	// Add creates a record in the preparing phase and returns a copy of it
	Add(kind entity.TransactionKind, initiator common.Address, payload entity.Payload) (*entity.TransactionRecord, error)

	// Update merges a patch into an active record. It reports false without
	// touching anything when the id is unknown, the record is terminal, the
	// patch's attempt is stale, or the status change would move backwards.
	Update(id string, patch RecordPatch) bool

	// AppendChainRef adds an observed transaction hash for the given attempt
	AppendChainRef(id string, attempt int, chain entity.ChainName, txHash common.Hash) bool

	// Complete finishes an active record and moves it into history, evicting
	// the oldest entry beyond the history cap. Returns the finished copy.
	Complete(id string, attempt int) (*entity.TransactionRecord, bool)

	// Fail marks an active record failed with a short reason. The record
	// stays in the active set for inspection and retry.
	Fail(id string, attempt int, reason string) (*entity.TransactionRecord, bool)

	// Retry rewinds a failed record to preparing with a bumped attempt
	Retry(id string) (*entity.TransactionRecord, error)

	// ClearCompleted empties history and drops terminal records from the
	// active set, returning everything swept
	ClearCompleted() []*entity.TransactionRecord

	// Active returns copies of active records, newest first
	Active() []*entity.TransactionRecord
	// History returns copies of completed records, newest first
	History() []*entity.TransactionRecord
	// Get returns a copy of a record from either partition
	Get(id string) (*entity.TransactionRecord, error)
	// Counts returns the sizes of both partitions
	Counts() (active int, history int)

	// Snapshot serializes the full ledger state
	Snapshot() ([]byte, error)
	// Restore replaces the ledger state from a snapshot
	Restore(data []byte) error
}
