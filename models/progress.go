package models

import (
	"time"
)

// Checkpoint is the durable resume point of one ingestion lane.
type Checkpoint struct {
	ID                     string
	BlockNumber            int64
	CommitmentTreeNumber   int64
	CommitmentTreePosition int64
	TransactionIndex       *int64
	UpdatedAt              time.Time
}

func (c Checkpoint) TreePointer() TreePointer {
	return TreePointer{TreeNumber: c.CommitmentTreeNumber, TreePosition: c.CommitmentTreePosition}
}

type IngestProgress struct {
	ChainID                 int64
	LastIngestedBlockNumber int64
	LatestBlockNumber       int64
	Errors                  []IngestError
	PersistErrorCounts      int
	RPCErrorCounts          int
	Since                   time.Time
}

type IngestError struct {
	Timestamp    time.Time
	BlockNumbers string
	Error        string
	Source       string
}
