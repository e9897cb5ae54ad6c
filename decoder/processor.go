package decoder

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/models"
)

// Store is the per-chunk staging area the processor writes to.
type Store interface {
	Upsert(entities ...models.Entity) error
	CommitmentBatchEvent(id string) (models.CommitmentBatchEvent, bool)
	VerificationHash() (models.VerificationHash, bool)
	ExtractBatch() models.Batch
	ClearDirty()
}

type Result struct {
	Batch models.Batch
	// VerificationHash is the chain value after this chunk, nil while the chain is empty.
	VerificationHash *models.VerificationHash
}

type Processor struct {
	log      *slog.Logger
	contract common.Address
	hasher   CommitmentHasher
}

func NewProcessor(log *slog.Logger, contract common.Address, hasher CommitmentHasher) *Processor {
	return &Processor{
		log:      log.With("module", "decoder"),
		contract: contract,
		hasher:   hasher,
	}
}

// ProcessBlocks decodes blocks in order into store and extracts the resulting batch.
// Logs of a block are handled before its transactions so that calldata can resolve
// the commitment batch its outputs were appended with.
func (p *Processor) ProcessBlocks(ctx context.Context, store Store, blocks []Block) (Result, error) {
	for _, block := range blocks {
		for _, log := range block.Logs {
			if log.Address != p.contract || len(log.Topics) == 0 {
				continue
			}
			if err := p.handleLog(ctx, store, eventLog{block: block, log: log}); err != nil {
				return Result{}, errors.Errorf("block %d, tx %s, log %d: %w",
					block.Number, log.TransactionHash.Hex(), uint64(log.LogIndex), err)
			}
		}
		for _, tx := range block.Transactions {
			if tx.To == nil || *tx.To != p.contract || len(tx.Input) < 4 {
				continue
			}
			if err := p.handleCall(store, callContext{block: block, tx: tx}); err != nil {
				return Result{}, errors.Errorf("block %d, tx %s: %w", block.Number, tx.Hash.Hex(), err)
			}
		}
	}

	result := Result{Batch: store.ExtractBatch()}
	if vh, ok := store.VerificationHash(); ok {
		result.VerificationHash = &vh
	}
	store.ClearDirty()
	return result, nil
}

func (p *Processor) handleLog(ctx context.Context, store Store, e eventLog) error {
	var (
		entities   []models.Entity
		batchEvent *models.CommitmentBatchEvent
		err        error
	)
	switch e.log.Topics[0] {
	case nullifiedEvent.ID:
		entities, err = decodeNullified(e)
	case nullifiersEvent.ID:
		entities, err = decodeNullifiers(e)
	case commitmentBatchEvent.ID:
		var event models.CommitmentBatchEvent
		event, entities, err = decodeCommitmentBatch(e)
		batchEvent = &event
	case generatedCommitmentBatchEvent.ID:
		entities, err = decodeGeneratedCommitmentBatch(ctx, p.hasher, e)
	case transactEvent.ID:
		var event models.CommitmentBatchEvent
		event, entities, err = decodeTransact(e)
		batchEvent = &event
	case unshieldEvent.ID:
		entities, err = decodeUnshield(e)
	case legacyShieldEvent.ID:
		entities, err = decodeShield(ctx, p.hasher, legacyShieldEvent, e)
	case shieldEvent.ID:
		entities, err = decodeShield(ctx, p.hasher, shieldEvent, e)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	// the first batch event of a transaction marks where its outputs start
	if batchEvent != nil {
		if _, ok := store.CommitmentBatchEvent(batchEvent.ID); !ok {
			entities = append(entities, *batchEvent)
		}
	}
	return store.Upsert(entities...)
}

func (p *Processor) handleCall(store Store, c callContext) error {
	selector := c.tx.Input[:4]
	legacy := bytes.Equal(selector, legacyTransactMethod.ID)
	if !legacy && !bytes.Equal(selector, transactMethod.ID) {
		return nil
	}

	state := &chainState{
		verificationHash: []byte{},
		treeNumber:       unknownBatchPosition,
		batchStart:       unknownBatchPosition,
	}
	if vh, ok := store.VerificationHash(); ok {
		state.verificationHash = vh.VerificationHash
	}
	batchID := IDFrom2(c.block.Number, int64(c.tx.TransactionIndex))
	if event, ok := store.CommitmentBatchEvent(batchID); ok {
		state.treeNumber = event.TreeNumber
		state.batchStart = event.BatchStartTreePosition
	} else {
		p.log.Warn("Commitment batch event not found for transact call",
			"blockNumber", c.block.Number,
			"transactionIndex", uint64(c.tx.TransactionIndex),
			"transactionHash", c.tx.Hash.Hex(),
		)
	}

	var (
		entities []models.Entity
		err      error
	)
	if legacy {
		entities, err = decodeLegacyTransactCall(c, state)
	} else {
		entities, err = decodeTransactCall(c, state)
	}
	if err != nil {
		return err
	}
	if len(entities) > 0 {
		entities = append(entities, models.VerificationHash{
			ID:               models.VerificationHashID,
			VerificationHash: state.verificationHash,
		})
	}
	return store.Upsert(entities...)
}
