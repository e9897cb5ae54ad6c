package models

import "math/big"

// Entity is implemented by every decoded record that is staged and persisted.
type Entity interface {
	EntityID() string
	Kind() EntityKind
}

// VerificationHashID is the id of the singleton VerificationHash row.
const VerificationHashID = "0x"

type Token struct {
	ID           string
	TokenType    TokenType
	TokenAddress []byte
	TokenSubID   string
}

// CommitmentBatchEvent records where the outputs of one transaction landed in the tree.
// It is keyed by (block number, transaction index) so calldata decoding can find it.
type CommitmentBatchEvent struct {
	ID                     string
	TreeNumber             int64
	BatchStartTreePosition int64
}

type Nullifier struct {
	ID              string
	BlockNumber     int64
	BlockTimestamp  int64
	TransactionHash []byte
	TreeNumber      int64
	Nullifier       []byte
}

type Ciphertext struct {
	ID   string
	IV   []byte
	Tag  []byte
	Data [][]byte
}

type LegacyCommitmentCiphertext struct {
	ID            string
	CiphertextID  string
	EphemeralKeys [][]byte
	Memo          [][]byte
}

type CommitmentCiphertext struct {
	ID                        string
	CiphertextID              string
	BlindedSenderViewingKey   []byte
	BlindedReceiverViewingKey []byte
	AnnotationData            []byte
	Memo                      []byte
}

type CommitmentPreimage struct {
	ID      string
	Npk     []byte
	TokenID string
	Value   *big.Int
}

// Commitment holds the columns shared by the four commitment variants.
type Commitment struct {
	ID                     string
	BlockNumber            int64
	BlockTimestamp         int64
	TransactionHash        []byte
	TreeNumber             int64
	BatchStartTreePosition int64
	TreePosition           int64
	CommitmentType         CommitmentType
	Hash                   *big.Int
}

type LegacyEncryptedCommitment struct {
	Commitment
	CiphertextID string
}

type LegacyGeneratedCommitment struct {
	Commitment
	PreimageID      string
	EncryptedRandom [][]byte
}

type ShieldCommitment struct {
	Commitment
	PreimageID      string
	EncryptedBundle [][]byte
	ShieldKey       []byte
	// Fee is nil for shields emitted before fees were part of the event.
	Fee *big.Int
}

type TransactCommitment struct {
	Commitment
	CiphertextID string
}

type Transaction struct {
	ID                        string
	BlockNumber               int64
	TransactionHash           []byte
	MerkleRoot                []byte
	Nullifiers                [][]byte
	Commitments               [][]byte
	BoundParamsHash           []byte
	HasUnshield               bool
	UtxoTreeIn                int64
	UtxoTreeOut               int64
	UtxoBatchStartPositionOut int64
	UnshieldTokenID           string
	UnshieldToAddress         []byte
	UnshieldValue             *big.Int
	BlockTimestamp            int64
	VerificationHash          []byte
}

type Unshield struct {
	ID              string
	BlockNumber     int64
	BlockTimestamp  int64
	TransactionHash []byte
	To              []byte
	TokenID         string
	Amount          *big.Int
	Fee             *big.Int
	EventLogIndex   int64
}

type VerificationHash struct {
	ID               string
	VerificationHash []byte
}

func (e Token) EntityID() string                      { return e.ID }
func (e CommitmentBatchEvent) EntityID() string       { return e.ID }
func (e Nullifier) EntityID() string                  { return e.ID }
func (e Ciphertext) EntityID() string                 { return e.ID }
func (e LegacyCommitmentCiphertext) EntityID() string { return e.ID }
func (e CommitmentCiphertext) EntityID() string       { return e.ID }
func (e CommitmentPreimage) EntityID() string         { return e.ID }
func (e LegacyEncryptedCommitment) EntityID() string  { return e.ID }
func (e LegacyGeneratedCommitment) EntityID() string  { return e.ID }
func (e ShieldCommitment) EntityID() string           { return e.ID }
func (e TransactCommitment) EntityID() string         { return e.ID }
func (e Transaction) EntityID() string                { return e.ID }
func (e Unshield) EntityID() string                   { return e.ID }
func (e VerificationHash) EntityID() string           { return e.ID }

func (Token) Kind() EntityKind                      { return KindToken }
func (CommitmentBatchEvent) Kind() EntityKind       { return KindCommitmentBatchEvent }
func (Nullifier) Kind() EntityKind                  { return KindNullifier }
func (Ciphertext) Kind() EntityKind                 { return KindCiphertext }
func (LegacyCommitmentCiphertext) Kind() EntityKind { return KindLegacyCommitmentCiphertext }
func (CommitmentCiphertext) Kind() EntityKind       { return KindCommitmentCiphertext }
func (CommitmentPreimage) Kind() EntityKind         { return KindCommitmentPreimage }
func (LegacyEncryptedCommitment) Kind() EntityKind  { return KindLegacyEncryptedCommitment }
func (LegacyGeneratedCommitment) Kind() EntityKind  { return KindLegacyGeneratedCommitment }
func (ShieldCommitment) Kind() EntityKind           { return KindShieldCommitment }
func (TransactCommitment) Kind() EntityKind         { return KindTransactCommitment }
func (Transaction) Kind() EntityKind                { return KindTransaction }
func (Unshield) Kind() EntityKind                   { return KindUnshield }
func (VerificationHash) Kind() EntityKind           { return KindVerificationHash }
