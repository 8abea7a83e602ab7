package archive

import (
	"time"
)

// ArchivedRecord is the database row for a terminal transaction record.
// Chain references travel as a JSON column; the archive is an append-mostly
// log of finished lifecycles, not a relational model of them.
type ArchivedRecord struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement"`
	RecordID              string    `gorm:"uniqueIndex;not null;size:64"`
	Kind                  string    `gorm:"not null;size:32;index"`
	Status                string    `gorm:"not null;size:32"`
	Initiator             string    `gorm:"not null;size:64;index"`
	SeedTypeID            string    `gorm:"size:64"`
	SeedID                string    `gorm:"size:64"`
	Amount                string    `gorm:"not null;size:80"`
	GasEstimate           uint64    `gorm:"not null"`
	ChainRefs             string    `gorm:"type:text"`
	Note                  string    `gorm:"type:text"`
	FailureReason         string    `gorm:"size:64"`
	RetryCount            int       `gorm:"not null"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null;index"`
	EstimatedCompletionAt *time.Time
}

// TableName specifies the table name for ArchivedRecord
func (ArchivedRecord) TableName() string {
	return "archived_records"
}

// archivedChainRef is the JSON shape of one chain reference inside the
// ChainRefs column
type archivedChainRef struct {
	Chain      string    `json:"chain"`
	TxHash     string    `json:"txHash"`
	Attempt    int       `json:"attempt"`
	ObservedAt time.Time `json:"observedAt"`
}
