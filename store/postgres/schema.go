package postgres

import (
	"context"
	"log/slog"

	"github.com/go-errors/errors"
)

const createCheckpointTable = `
CREATE TABLE IF NOT EXISTS ingest_checkpoint (
	id TEXT PRIMARY KEY,
	block_number BIGINT NOT NULL,
	commitment_tree_number INTEGER NOT NULL,
	commitment_tree_position BIGINT NOT NULL,
	transaction_index INTEGER,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const commitmentTableColumns = `
	id TEXT PRIMARY KEY,
	block_number NUMERIC NOT NULL,
	block_timestamp NUMERIC NOT NULL,
	transaction_hash BYTEA NOT NULL,
	tree_number INTEGER NOT NULL,
	batch_start_tree_position INTEGER NOT NULL,
	tree_position INTEGER NOT NULL,
	commitment_type VARCHAR(25) NOT NULL,
	hash NUMERIC NOT NULL`

// schema creates the entity tables in write order. Reference columns are indexed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS token (
		id TEXT PRIMARY KEY,
		token_type VARCHAR(7) NOT NULL,
		token_address BYTEA NOT NULL,
		token_sub_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS commitment_batch_event_new (
		id TEXT PRIMARY KEY,
		tree_number NUMERIC NOT NULL,
		batch_start_tree_position NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nullifier (
		id TEXT PRIMARY KEY,
		block_number NUMERIC NOT NULL,
		block_timestamp NUMERIC NOT NULL,
		transaction_hash BYTEA NOT NULL,
		tree_number INTEGER NOT NULL,
		nullifier BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ciphertext (
		id TEXT PRIMARY KEY,
		iv BYTEA NOT NULL,
		tag BYTEA NOT NULL,
		data BYTEA[] NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS legacy_commitment_ciphertext (
		id TEXT PRIMARY KEY,
		ciphertext_id TEXT REFERENCES ciphertext (id),
		ephemeral_keys BYTEA[] NOT NULL,
		memo BYTEA[] NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS commitment_ciphertext (
		id TEXT PRIMARY KEY,
		ciphertext_id TEXT REFERENCES ciphertext (id),
		blinded_sender_viewing_key BYTEA NOT NULL,
		blinded_receiver_viewing_key BYTEA NOT NULL,
		annotation_data BYTEA NOT NULL,
		memo BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS legacy_encrypted_commitment (` + commitmentTableColumns + `,
		ciphertext_id TEXT REFERENCES legacy_commitment_ciphertext (id)
	)`,
	`CREATE TABLE IF NOT EXISTS commitment_preimage (
		id TEXT PRIMARY KEY,
		npk BYTEA NOT NULL,
		token_id TEXT REFERENCES token (id),
		value NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS legacy_generated_commitment (` + commitmentTableColumns + `,
		preimage_id TEXT REFERENCES commitment_preimage (id),
		encrypted_random BYTEA[] NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shield_commitment (` + commitmentTableColumns + `,
		preimage_id TEXT REFERENCES commitment_preimage (id),
		encrypted_bundle BYTEA[] NOT NULL,
		shield_key BYTEA NOT NULL,
		fee NUMERIC
	)`,
	`CREATE TABLE IF NOT EXISTS transact_commitment (` + commitmentTableColumns + `,
		ciphertext_id TEXT REFERENCES commitment_ciphertext (id)
	)`,
	`CREATE TABLE IF NOT EXISTS transaction (
		id TEXT PRIMARY KEY,
		block_number NUMERIC NOT NULL,
		transaction_hash BYTEA NOT NULL,
		merkle_root BYTEA NOT NULL,
		nullifiers BYTEA[] NOT NULL,
		commitments BYTEA[] NOT NULL,
		bound_params_hash BYTEA NOT NULL,
		has_unshield BOOLEAN NOT NULL,
		utxo_tree_in NUMERIC NOT NULL,
		utxo_tree_out NUMERIC NOT NULL,
		utxo_batch_start_position_out NUMERIC NOT NULL,
		unshield_token_id TEXT REFERENCES token (id),
		unshield_to_address BYTEA NOT NULL,
		unshield_value NUMERIC NOT NULL,
		block_timestamp NUMERIC NOT NULL,
		verification_hash BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS unshield (
		id TEXT PRIMARY KEY,
		block_number NUMERIC NOT NULL,
		block_timestamp NUMERIC NOT NULL,
		transaction_hash BYTEA NOT NULL,
		"to" BYTEA NOT NULL,
		token_id TEXT REFERENCES token (id),
		amount NUMERIC NOT NULL,
		fee NUMERIC NOT NULL,
		event_log_index NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS verification_hash (
		id TEXT PRIMARY KEY,
		verification_hash BYTEA NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS legacy_commitment_ciphertext_ciphertext_idx ON legacy_commitment_ciphertext (ciphertext_id)`,
	`CREATE INDEX IF NOT EXISTS commitment_ciphertext_ciphertext_idx ON commitment_ciphertext (ciphertext_id)`,
	`CREATE INDEX IF NOT EXISTS legacy_encrypted_commitment_ciphertext_idx ON legacy_encrypted_commitment (ciphertext_id)`,
	`CREATE INDEX IF NOT EXISTS commitment_preimage_token_idx ON commitment_preimage (token_id)`,
	`CREATE INDEX IF NOT EXISTS legacy_generated_commitment_preimage_idx ON legacy_generated_commitment (preimage_id)`,
	`CREATE INDEX IF NOT EXISTS shield_commitment_preimage_idx ON shield_commitment (preimage_id)`,
	`CREATE INDEX IF NOT EXISTS transact_commitment_ciphertext_idx ON transact_commitment (ciphertext_id)`,
	`CREATE INDEX IF NOT EXISTS transaction_unshield_token_idx ON transaction (unshield_token_id)`,
	`CREATE INDEX IF NOT EXISTS unshield_token_idx ON unshield (token_id)`,
	createCheckpointTable,
}

// Migrate creates missing tables and indexes. Existing tables are left untouched.
func Migrate(ctx context.Context, log *slog.Logger, db Execer) error {
	for _, statement := range schema {
		if _, err := db.Exec(ctx, statement); err != nil {
			return errors.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Info("Database schema ready", "module", "postgres", "statements", len(schema))
	return nil
}
