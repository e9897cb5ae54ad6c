package models

// Batch holds the decoded entities of one chunk, grouped by kind.
type Batch struct {
	Tokens                      []Token
	CommitmentBatchEvents       []CommitmentBatchEvent
	Nullifiers                  []Nullifier
	Ciphertexts                 []Ciphertext
	LegacyCommitmentCiphertexts []LegacyCommitmentCiphertext
	CommitmentCiphertexts       []CommitmentCiphertext
	LegacyEncryptedCommitments  []LegacyEncryptedCommitment
	CommitmentPreimages         []CommitmentPreimage
	LegacyGeneratedCommitments  []LegacyGeneratedCommitment
	ShieldCommitments           []ShieldCommitment
	TransactCommitments         []TransactCommitment
	Transactions                []Transaction
	Unshields                   []Unshield
	VerificationHashes          []VerificationHash
}

// Counts returns the number of rows per kind, omitting empty kinds.
func (b Batch) Counts() map[EntityKind]int {
	counts := map[EntityKind]int{
		KindToken:                      len(b.Tokens),
		KindCommitmentBatchEvent:       len(b.CommitmentBatchEvents),
		KindNullifier:                  len(b.Nullifiers),
		KindCiphertext:                 len(b.Ciphertexts),
		KindLegacyCommitmentCiphertext: len(b.LegacyCommitmentCiphertexts),
		KindCommitmentCiphertext:       len(b.CommitmentCiphertexts),
		KindLegacyEncryptedCommitment:  len(b.LegacyEncryptedCommitments),
		KindCommitmentPreimage:         len(b.CommitmentPreimages),
		KindLegacyGeneratedCommitment:  len(b.LegacyGeneratedCommitments),
		KindShieldCommitment:           len(b.ShieldCommitments),
		KindTransactCommitment:         len(b.TransactCommitments),
		KindTransaction:                len(b.Transactions),
		KindUnshield:                   len(b.Unshields),
		KindVerificationHash:           len(b.VerificationHashes),
	}
	for kind, n := range counts {
		if n == 0 {
			delete(counts, kind)
		}
	}
	return counts
}

func (b Batch) IsEmpty() bool {
	return len(b.Counts()) == 0
}

// TreePointer is the highest (tree number, tree position) known to be persisted.
type TreePointer struct {
	TreeNumber   int64
	TreePosition int64
}

func (p TreePointer) Less(other TreePointer) bool {
	if p.TreeNumber != other.TreeNumber {
		return p.TreeNumber < other.TreeNumber
	}
	return p.TreePosition < other.TreePosition
}

// Advance returns the maximum of p and every commitment in the batch.
func (p TreePointer) Advance(b Batch) TreePointer {
	result := p
	consider := func(c Commitment) {
		candidate := TreePointer{TreeNumber: c.TreeNumber, TreePosition: c.TreePosition}
		if result.Less(candidate) {
			result = candidate
		}
	}
	for _, c := range b.LegacyEncryptedCommitments {
		consider(c.Commitment)
	}
	for _, c := range b.LegacyGeneratedCommitments {
		consider(c.Commitment)
	}
	for _, c := range b.TransactCommitments {
		consider(c.Commitment)
	}
	for _, c := range b.ShieldCommitments {
		consider(c.Commitment)
	}
	return result
}
