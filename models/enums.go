package models

type TokenType string

const (
	ERC20   TokenType = "ERC20"
	ERC721  TokenType = "ERC721"
	ERC1155 TokenType = "ERC1155"
)

func (t TokenType) String() string {
	return string(t)
}

// TokenTypeFromUint8 maps the on-chain enum value to its name.
func TokenTypeFromUint8(v uint8) (TokenType, bool) {
	switch v {
	case 0:
		return ERC20, true
	case 1:
		return ERC721, true
	case 2:
		return ERC1155, true
	}
	return "", false
}

type CommitmentType string

const (
	LegacyEncryptedCommitmentType CommitmentType = "LegacyEncryptedCommitment"
	LegacyGeneratedCommitmentType CommitmentType = "LegacyGeneratedCommitment"
	ShieldCommitmentType          CommitmentType = "ShieldCommitment"
	TransactCommitmentType        CommitmentType = "TransactCommitment"
)

func (c CommitmentType) String() string {
	return string(c)
}

// EntityKind tags every persisted entity. The declaration order is the dependency order used when writing.
type EntityKind int

const (
	KindToken EntityKind = iota
	KindCommitmentBatchEvent
	KindNullifier
	KindCiphertext
	KindLegacyCommitmentCiphertext
	KindCommitmentCiphertext
	KindLegacyEncryptedCommitment
	KindCommitmentPreimage
	KindLegacyGeneratedCommitment
	KindShieldCommitment
	KindTransactCommitment
	KindTransaction
	KindUnshield
	KindVerificationHash
)

// EntityKinds lists all kinds in write order.
var EntityKinds = []EntityKind{
	KindToken,
	KindCommitmentBatchEvent,
	KindNullifier,
	KindCiphertext,
	KindLegacyCommitmentCiphertext,
	KindCommitmentCiphertext,
	KindLegacyEncryptedCommitment,
	KindCommitmentPreimage,
	KindLegacyGeneratedCommitment,
	KindShieldCommitment,
	KindTransactCommitment,
	KindTransaction,
	KindUnshield,
	KindVerificationHash,
}

var entityKindNames = map[EntityKind]string{
	KindToken:                      "token",
	KindCommitmentBatchEvent:       "commitment_batch_event_new",
	KindNullifier:                  "nullifier",
	KindCiphertext:                 "ciphertext",
	KindLegacyCommitmentCiphertext: "legacy_commitment_ciphertext",
	KindCommitmentCiphertext:       "commitment_ciphertext",
	KindLegacyEncryptedCommitment:  "legacy_encrypted_commitment",
	KindCommitmentPreimage:         "commitment_preimage",
	KindLegacyGeneratedCommitment:  "legacy_generated_commitment",
	KindShieldCommitment:           "shield_commitment",
	KindTransactCommitment:         "transact_commitment",
	KindTransaction:                "transaction",
	KindUnshield:                   "unshield",
	KindVerificationHash:           "verification_hash",
}

// String returns the table name of the kind.
func (k EntityKind) String() string {
	if name, ok := entityKindNames[k]; ok {
		return name
	}
	return "unknown"
}
