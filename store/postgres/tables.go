package postgres

import (
	"github.com/railgun-community/railgun-ingester/models"
)

// table maps one entity kind to its columns. The first column is always the id.
type table struct {
	kind    models.EntityKind
	columns []string
	rows    func(b models.Batch) [][]any
}

var commitmentColumns = []string{
	"id",
	"block_number",
	"block_timestamp",
	"transaction_hash",
	"tree_number",
	"batch_start_tree_position",
	"tree_position",
	"commitment_type",
	"hash",
}

func commitmentRow(c models.Commitment, extra ...any) []any {
	row := []any{
		c.ID,
		c.BlockNumber,
		c.BlockTimestamp,
		c.TransactionHash,
		c.TreeNumber,
		c.BatchStartTreePosition,
		c.TreePosition,
		c.CommitmentType.String(),
		numeric(c.Hash),
	}
	return append(row, extra...)
}

func withColumns(base []string, extra ...string) []string {
	return append(append([]string{}, base...), extra...)
}

// tables is ordered by models.EntityKinds so referenced rows are written first.
var tables = []table{
	{
		kind:    models.KindToken,
		columns: []string{"id", "token_type", "token_address", "token_sub_id"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.Tokens))
			for i, e := range b.Tokens {
				rows[i] = []any{e.ID, e.TokenType.String(), e.TokenAddress, e.TokenSubID}
			}
			return rows
		},
	},
	{
		kind:    models.KindCommitmentBatchEvent,
		columns: []string{"id", "tree_number", "batch_start_tree_position"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.CommitmentBatchEvents))
			for i, e := range b.CommitmentBatchEvents {
				rows[i] = []any{e.ID, e.TreeNumber, e.BatchStartTreePosition}
			}
			return rows
		},
	},
	{
		kind:    models.KindNullifier,
		columns: []string{"id", "block_number", "block_timestamp", "transaction_hash", "tree_number", "nullifier"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.Nullifiers))
			for i, e := range b.Nullifiers {
				rows[i] = []any{e.ID, e.BlockNumber, e.BlockTimestamp, e.TransactionHash, e.TreeNumber, e.Nullifier}
			}
			return rows
		},
	},
	{
		kind:    models.KindCiphertext,
		columns: []string{"id", "iv", "tag", "data"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.Ciphertexts))
			for i, e := range b.Ciphertexts {
				rows[i] = []any{e.ID, e.IV, e.Tag, e.Data}
			}
			return rows
		},
	},
	{
		kind:    models.KindLegacyCommitmentCiphertext,
		columns: []string{"id", "ciphertext_id", "ephemeral_keys", "memo"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.LegacyCommitmentCiphertexts))
			for i, e := range b.LegacyCommitmentCiphertexts {
				rows[i] = []any{e.ID, e.CiphertextID, e.EphemeralKeys, e.Memo}
			}
			return rows
		},
	},
	{
		kind: models.KindCommitmentCiphertext,
		columns: []string{
			"id",
			"ciphertext_id",
			"blinded_sender_viewing_key",
			"blinded_receiver_viewing_key",
			"annotation_data",
			"memo",
		},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.CommitmentCiphertexts))
			for i, e := range b.CommitmentCiphertexts {
				rows[i] = []any{
					e.ID,
					e.CiphertextID,
					e.BlindedSenderViewingKey,
					e.BlindedReceiverViewingKey,
					e.AnnotationData,
					e.Memo,
				}
			}
			return rows
		},
	},
	{
		kind:    models.KindLegacyEncryptedCommitment,
		columns: withColumns(commitmentColumns, "ciphertext_id"),
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.LegacyEncryptedCommitments))
			for i, e := range b.LegacyEncryptedCommitments {
				rows[i] = commitmentRow(e.Commitment, e.CiphertextID)
			}
			return rows
		},
	},
	{
		kind:    models.KindCommitmentPreimage,
		columns: []string{"id", "npk", "token_id", "value"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.CommitmentPreimages))
			for i, e := range b.CommitmentPreimages {
				rows[i] = []any{e.ID, e.Npk, e.TokenID, numeric(e.Value)}
			}
			return rows
		},
	},
	{
		kind:    models.KindLegacyGeneratedCommitment,
		columns: withColumns(commitmentColumns, "preimage_id", "encrypted_random"),
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.LegacyGeneratedCommitments))
			for i, e := range b.LegacyGeneratedCommitments {
				rows[i] = commitmentRow(e.Commitment, e.PreimageID, e.EncryptedRandom)
			}
			return rows
		},
	},
	{
		kind:    models.KindShieldCommitment,
		columns: withColumns(commitmentColumns, "preimage_id", "encrypted_bundle", "shield_key", "fee"),
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.ShieldCommitments))
			for i, e := range b.ShieldCommitments {
				rows[i] = commitmentRow(e.Commitment, e.PreimageID, e.EncryptedBundle, e.ShieldKey, numeric(e.Fee))
			}
			return rows
		},
	},
	{
		kind:    models.KindTransactCommitment,
		columns: withColumns(commitmentColumns, "ciphertext_id"),
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.TransactCommitments))
			for i, e := range b.TransactCommitments {
				rows[i] = commitmentRow(e.Commitment, e.CiphertextID)
			}
			return rows
		},
	},
	{
		kind: models.KindTransaction,
		columns: []string{
			"id",
			"block_number",
			"transaction_hash",
			"merkle_root",
			"nullifiers",
			"commitments",
			"bound_params_hash",
			"has_unshield",
			"utxo_tree_in",
			"utxo_tree_out",
			"utxo_batch_start_position_out",
			"unshield_token_id",
			"unshield_to_address",
			"unshield_value",
			"block_timestamp",
			"verification_hash",
		},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.Transactions))
			for i, e := range b.Transactions {
				rows[i] = []any{
					e.ID,
					e.BlockNumber,
					e.TransactionHash,
					e.MerkleRoot,
					e.Nullifiers,
					e.Commitments,
					e.BoundParamsHash,
					e.HasUnshield,
					e.UtxoTreeIn,
					e.UtxoTreeOut,
					e.UtxoBatchStartPositionOut,
					e.UnshieldTokenID,
					e.UnshieldToAddress,
					numeric(e.UnshieldValue),
					e.BlockTimestamp,
					e.VerificationHash,
				}
			}
			return rows
		},
	},
	{
		kind: models.KindUnshield,
		columns: []string{
			"id",
			"block_number",
			"block_timestamp",
			"transaction_hash",
			"to",
			"token_id",
			"amount",
			"fee",
			"event_log_index",
		},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.Unshields))
			for i, e := range b.Unshields {
				rows[i] = []any{
					e.ID,
					e.BlockNumber,
					e.BlockTimestamp,
					e.TransactionHash,
					e.To,
					e.TokenID,
					numeric(e.Amount),
					numeric(e.Fee),
					e.EventLogIndex,
				}
			}
			return rows
		},
	},
	{
		kind:    models.KindVerificationHash,
		columns: []string{"id", "verification_hash"},
		rows: func(b models.Batch) [][]any {
			rows := make([][]any, len(b.VerificationHashes))
			for i, e := range b.VerificationHashes {
				rows[i] = []any{e.ID, e.VerificationHash}
			}
			return rows
		},
	},
}
