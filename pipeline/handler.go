package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/decoder"
	"github.com/railgun-community/railgun-ingester/models"
	"github.com/railgun-community/railgun-ingester/store/memory"
)

//go:generate moq -out ../mocks/pipeline/deps.go -pkg pipeline_mock . Processor Writer

type Processor interface {
	ProcessBlocks(ctx context.Context, store decoder.Store, blocks []decoder.Block) (decoder.Result, error)
}

// Writer commits a batch and the checkpoint covering it atomically.
type Writer interface {
	Persist(ctx context.Context, batch models.Batch, cp models.Checkpoint) error
}

// State is what one handled chunk hands to the next.
type State struct {
	Pointer models.TreePointer
	// VerificationHash seeds the memory store of the next chunk, nil before the first transaction.
	VerificationHash *models.VerificationHash
}

// Resume computes where a run starts from the saved checkpoint, if any.
func Resume(cp models.Checkpoint, found bool, startBlock int64) (int64, models.TreePointer) {
	if !found {
		return startBlock, models.TreePointer{}
	}
	return ResumeBlock(cp), cp.TreePointer()
}

// ResumeBlock is the first block after the checkpointed range.
func ResumeBlock(cp models.Checkpoint) int64 {
	return cp.BlockNumber + 1
}

// Handler decodes, persists and checkpoints fetched chunks. HandleChunk must be called
// with chunks in ascending contiguous order, which the ingester guarantees.
type Handler struct {
	log       *slog.Logger
	laneID    string
	processor Processor
	writer    Writer
	state     State
}

func NewHandler(log *slog.Logger, laneID string, processor Processor, writer Writer, initial State) *Handler {
	return &Handler{
		log:       log.With("module", "pipeline"),
		laneID:    laneID,
		processor: processor,
		writer:    writer,
		state:     initial,
	}
}

func (h *Handler) State() State {
	return h.state
}

// HandleChunk implements ingester.ChunkHandler. The checkpoint is saved even for chunks
// without contract activity so a restart does not refetch them. The state only advances
// once the batch and checkpoint are committed, so a failed chunk is decoded again from
// the same seed.
func (h *Handler) HandleChunk(ctx context.Context, chunk models.ChunkResult) error {
	start := time.Now()
	blocks := decoder.ConvertChunk(chunk)

	var seed []models.Entity
	if h.state.VerificationHash != nil {
		seed = append(seed, *h.state.VerificationHash)
	}
	store := memory.New(seed...)

	next := h.state
	var batch models.Batch
	if len(blocks) > 0 {
		result, err := h.processor.ProcessBlocks(ctx, store, blocks)
		if err != nil {
			return errors.Errorf("failed to decode blocks %d-%d: %w", chunk.Range.FromBlock, chunk.Range.ToBlock, err)
		}
		batch = result.Batch
		if result.VerificationHash != nil {
			next.VerificationHash = result.VerificationHash
		}
	}

	next.Pointer = h.state.Pointer.Advance(batch)
	cp := models.Checkpoint{
		ID:                     h.laneID,
		BlockNumber:            chunk.Range.ToBlock,
		CommitmentTreeNumber:   next.Pointer.TreeNumber,
		CommitmentTreePosition: next.Pointer.TreePosition,
	}
	if err := h.writer.Persist(ctx, batch, cp); err != nil {
		return errors.Errorf("failed to persist blocks %d-%d: %w", chunk.Range.FromBlock, chunk.Range.ToBlock, err)
	}
	h.state = next

	h.log.Info("Handled chunk",
		"fromBlock", chunk.Range.FromBlock,
		"toBlock", chunk.Range.ToBlock,
		"blocks", len(blocks),
		"logs", len(chunk.Logs),
		"transactions", len(batch.Transactions),
		"treeNumber", next.Pointer.TreeNumber,
		"treePosition", next.Pointer.TreePosition,
		"duration", time.Since(start),
	)
	return nil
}
