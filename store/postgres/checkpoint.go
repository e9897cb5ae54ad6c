package postgres

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5"
	"github.com/railgun-community/railgun-ingester/models"
)

const checkpointTable = "ingest_checkpoint"

// CheckpointStore keeps one resume point per lane id.
type CheckpointStore struct {
	db DB
}

func NewCheckpointStore(db DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

func (s *CheckpointStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createCheckpointTable); err != nil {
		return errors.Errorf("failed to create %s: %w", checkpointTable, err)
	}
	return nil
}

// Load returns the checkpoint of id. ok is false when none was saved yet.
func (s *CheckpointStore) Load(ctx context.Context, id string) (cp models.Checkpoint, ok bool, err error) {
	cp.ID = id
	err = s.db.QueryRow(ctx, `
		SELECT block_number, commitment_tree_number, commitment_tree_position, transaction_index, updated_at
		FROM ingest_checkpoint
		WHERE id = $1`, id,
	).Scan(
		&cp.BlockNumber,
		&cp.CommitmentTreeNumber,
		&cp.CommitmentTreePosition,
		&cp.TransactionIndex,
		&cp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Checkpoint{}, false, nil
	}
	if err != nil {
		return models.Checkpoint{}, false, errors.Errorf("failed to load checkpoint %s: %w", id, err)
	}
	return cp, true, nil
}

// Save upserts cp on db and stamps it with the database time. The writer passes its
// transaction so the checkpoint commits together with the batch it covers.
func (s *CheckpointStore) Save(ctx context.Context, db Execer, cp models.Checkpoint) error {
	_, err := db.Exec(ctx, `
		INSERT INTO ingest_checkpoint
			(id, block_number, commitment_tree_number, commitment_tree_position, transaction_index, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			block_number = excluded.block_number,
			commitment_tree_number = excluded.commitment_tree_number,
			commitment_tree_position = excluded.commitment_tree_position,
			transaction_index = excluded.transaction_index,
			updated_at = now()`,
		cp.ID, cp.BlockNumber, cp.CommitmentTreeNumber, cp.CommitmentTreePosition, cp.TransactionIndex,
	)
	if err != nil {
		return errors.Errorf("failed to save checkpoint %s at block %d: %w", cp.ID, cp.BlockNumber, err)
	}
	return nil
}

// LoadVerificationHash reads the persisted head of the verification hash chain, used to seed
// the memory store on start.
func (s *CheckpointStore) LoadVerificationHash(ctx context.Context) (models.VerificationHash, bool, error) {
	var vh models.VerificationHash
	err := s.db.QueryRow(ctx,
		`SELECT id, verification_hash FROM verification_hash WHERE id = $1 LIMIT 1`,
		models.VerificationHashID,
	).Scan(&vh.ID, &vh.VerificationHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.VerificationHash{}, false, nil
	}
	if err != nil {
		return models.VerificationHash{}, false, errors.Errorf("failed to load verification hash: %w", err)
	}
	return vh, true, nil
}
