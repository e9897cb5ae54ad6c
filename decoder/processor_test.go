package decoder_test

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/decoder"
	decoder_mock "github.com/railgun-community/railgun-ingester/mocks/decoder"
	"github.com/railgun-community/railgun-ingester/models"
	"github.com/railgun-community/railgun-ingester/store/memory"
	"github.com/stretchr/testify/require"
)

var (
	contract = common.HexToAddress("0xfa7093cdd9ee6932b4eb2c9e1cde7ce00b1fa4b9")
	erc20    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	parsed   = mustParse(decoder.RailgunABI)
)

// tuple shapes used to encode test logs and calldata

type tokenData struct {
	TokenType    uint8
	TokenAddress common.Address
	TokenSubID   *big.Int
}

type commitmentCiphertext struct {
	Ciphertext                [4][32]byte
	BlindedSenderViewingKey   [32]byte
	BlindedReceiverViewingKey [32]byte
	AnnotationData            []byte
	Memo                      []byte
}

type legacyCommitmentCiphertext struct {
	Ciphertext    [4]*big.Int
	EphemeralKeys [2]*big.Int
	Memo          []*big.Int
}

type commitmentPreimage struct {
	Npk   [32]byte
	Token tokenData
	Value *big.Int
}

type legacyCommitmentPreimage struct {
	Npk   *big.Int
	Token tokenData
	Value *big.Int
}

type shieldCiphertext struct {
	EncryptedBundle [3][32]byte
	ShieldKey       [32]byte
}

type g1Point struct {
	X *big.Int
	Y *big.Int
}

type g2Point struct {
	X [2]*big.Int
	Y [2]*big.Int
}

type snarkProof struct {
	A g1Point
	B g2Point
	C g1Point
}

type boundParams struct {
	TreeNumber           uint16
	MinGasPrice          *big.Int
	Unshield             uint8
	ChainID              uint64
	AdaptContract        common.Address
	AdaptParams          [32]byte
	CommitmentCiphertext []commitmentCiphertext
}

type legacyBoundParams struct {
	TreeNumber           uint16
	Withdraw             uint8
	AdaptContract        common.Address
	AdaptParams          [32]byte
	CommitmentCiphertext []legacyCommitmentCiphertext
}

type transaction struct {
	Proof            snarkProof
	MerkleRoot       [32]byte
	Nullifiers       [][32]byte
	Commitments      [][32]byte
	BoundParams      boundParams
	UnshieldPreimage commitmentPreimage
}

type legacyTransaction struct {
	Proof            snarkProof
	MerkleRoot       *big.Int
	Nullifiers       []*big.Int
	Commitments      []*big.Int
	BoundParams      legacyBoundParams
	WithdrawPreimage legacyCommitmentPreimage
	OverrideOutput   common.Address
}

func mustParse(definition string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return a
}

func word(n int64) [32]byte {
	return common.BigToHash(big.NewInt(n))
}

func wordBytes(n int64) []byte {
	w := word(n)
	return w[:]
}

func zeroProof() snarkProof {
	zero := big.NewInt(0)
	return snarkProof{
		A: g1Point{X: zero, Y: zero},
		B: g2Point{X: [2]*big.Int{zero, zero}, Y: [2]*big.Int{zero, zero}},
		C: g1Point{X: zero, Y: zero},
	}
}

func erc20Token() tokenData {
	return tokenData{TokenType: 0, TokenAddress: erc20, TokenSubID: big.NewInt(0)}
}

func eventLog(t *testing.T, signature string, txHash common.Hash, txIndex, logIndex uint64, args ...any) models.RawLog {
	t.Helper()
	event, err := parsed.EventByID(crypto.Keccak256Hash([]byte(signature)))
	require.NoError(t, err)
	data, err := event.Inputs.Pack(args...)
	require.NoError(t, err)
	return models.RawLog{
		Address:          contract,
		Topics:           []common.Hash{event.ID},
		Data:             data,
		TransactionHash:  txHash,
		TransactionIndex: hexutil.Uint64(txIndex),
		LogIndex:         hexutil.Uint64(logIndex),
	}
}

func transactCall(t *testing.T, selector []byte, txHash common.Hash, txIndex uint64, calls any) models.RawTransaction {
	t.Helper()
	method, err := parsed.MethodById(selector)
	require.NoError(t, err)
	data, err := method.Inputs.Pack(calls)
	require.NoError(t, err)
	to := contract
	return models.RawTransaction{
		Hash:             txHash,
		To:               &to,
		Input:            append(append([]byte{}, method.ID...), data...),
		TransactionIndex: hexutil.Uint64(txIndex),
	}
}

func constantHasher(value int64) *decoder_mock.CommitmentHasherMock {
	return &decoder_mock.CommitmentHasherMock{
		HashCommitmentsFunc: func(_ context.Context, inputs []decoder.CommitmentInput) ([]*big.Int, error) {
			hashes := make([]*big.Int, len(inputs))
			for i := range inputs {
				hashes[i] = big.NewInt(value + int64(i))
			}
			return hashes, nil
		},
	}
}

func newProcessor(hasher decoder.CommitmentHasher) *decoder.Processor {
	return decoder.NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)), contract, hasher)
}

// currentContractBlock holds a transact with an unshield and a shield in a separate transaction.
func currentContractBlock(t *testing.T) (decoder.Block, common.Hash) {
	t.Helper()
	txHash := common.HexToHash("0x01")
	shieldHash := common.HexToHash("0x02")
	current, _ := decoder.TransactSelectors()

	transactCiphertext := commitmentCiphertext{
		Ciphertext:                [4][32]byte{word(0x0102), word(2), word(3), word(4)},
		BlindedSenderViewingKey:   word(5),
		BlindedReceiverViewingKey: word(6),
		AnnotationData:            []byte{7},
		Memo:                      []byte{8, 9},
	}
	npk := common.HexToHash("0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	block := decoder.Block{
		Number:    100,
		Timestamp: 1_700_000_000,
		Logs: []models.RawLog{
			eventLog(t, "Transact(uint256,uint256,bytes32[],(bytes32[4],bytes32,bytes32,bytes,bytes)[])",
				txHash, 3, 0,
				big.NewInt(1), big.NewInt(10),
				[][32]byte{word(0x111), word(0x222)},
				[]commitmentCiphertext{transactCiphertext, transactCiphertext}),
			eventLog(t, "Nullified(uint16,bytes32[])",
				txHash, 3, 1,
				uint16(1), [][32]byte{word(0xaa), word(0xbb)}),
			eventLog(t, "Unshield(address,(uint8,address,uint256),uint256,uint256)",
				txHash, 3, 2,
				common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), erc20Token(), big.NewInt(995), big.NewInt(5)),
			eventLog(t, "Shield(uint256,uint256,(bytes32,(uint8,address,uint256),uint120)[],(bytes32[3],bytes32)[],uint256[])",
				shieldHash, 4, 3,
				big.NewInt(1), big.NewInt(12),
				[]commitmentPreimage{{Npk: word(0x33), Token: erc20Token(), Value: big.NewInt(1000)}},
				[]shieldCiphertext{{EncryptedBundle: [3][32]byte{word(1), word(2), word(3)}, ShieldKey: word(4)}},
				[]*big.Int{big.NewInt(25)}),
		},
		Transactions: []models.RawTransaction{
			transactCall(t, current, txHash, 3, []transaction{{
				Proof:       zeroProof(),
				MerkleRoot:  word(0x7777),
				Nullifiers:  [][32]byte{word(0xaa), word(0xbb)},
				Commitments: [][32]byte{word(0x111), word(0x222)},
				BoundParams: boundParams{
					TreeNumber:           0,
					MinGasPrice:          big.NewInt(1),
					Unshield:             1,
					ChainID:              1,
					CommitmentCiphertext: []commitmentCiphertext{transactCiphertext},
				},
				UnshieldPreimage: commitmentPreimage{Npk: npk, Token: erc20Token(), Value: big.NewInt(995)},
			}}),
		},
	}
	// logs from other contracts are ignored
	foreign := eventLog(t, "Nullified(uint16,bytes32[])", txHash, 3, 4, uint16(1), [][32]byte{word(0xcc)})
	foreign.Address = common.HexToAddress("0x01")
	block.Logs = append(block.Logs, foreign)
	return block, txHash
}

func TestProcessCurrentContract(t *testing.T) {
	block, txHash := currentContractBlock(t)

	hasher := constantHasher(500)
	store := memory.New()
	result, err := newProcessor(hasher).ProcessBlocks(context.Background(), store, []decoder.Block{block})
	require.NoError(t, err)

	batch := result.Batch
	require.Equal(t, map[models.EntityKind]int{
		models.KindToken:                1,
		models.KindCommitmentBatchEvent: 1,
		models.KindNullifier:            2,
		models.KindCiphertext:           2,
		models.KindCommitmentCiphertext: 2,
		models.KindCommitmentPreimage:   1,
		models.KindShieldCommitment:     1,
		models.KindTransactCommitment:   2,
		models.KindTransaction:          1,
		models.KindUnshield:             1,
		models.KindVerificationHash:     1,
	}, batch.Counts())

	require.Equal(t, models.CommitmentBatchEvent{
		ID:                     decoder.IDFrom2(100, 3),
		TreeNumber:             1,
		BatchStartTreePosition: 10,
	}, batch.CommitmentBatchEvents[0])

	commitment := batch.TransactCommitments[1]
	require.Equal(t, decoder.IDFrom2(1, 11), commitment.ID)
	require.Equal(t, int64(11), commitment.TreePosition)
	require.Equal(t, int64(10), commitment.BatchStartTreePosition)
	require.Equal(t, models.TransactCommitmentType, commitment.CommitmentType)
	require.Equal(t, big.NewInt(0x222), commitment.Hash)
	require.Equal(t, int64(1_700_000_000), commitment.BlockTimestamp)

	ciphertext := batch.Ciphertexts[0]
	require.Equal(t, wordBytes(0x0102)[:16], ciphertext.IV)
	require.Equal(t, wordBytes(0x0102)[16:], ciphertext.Tag)
	require.Len(t, ciphertext.Data, 3)
	require.Equal(t, []byte{8, 9}, batch.CommitmentCiphertexts[0].Memo)

	require.Equal(t, txHash.Hex()+"00000001"+"00000001", batch.Nullifiers[1].ID)
	require.Equal(t, wordBytes(0xbb), batch.Nullifiers[1].Nullifier)

	unshield := batch.Unshields[0]
	require.Equal(t, txHash.Hex()+"00000002", unshield.ID)
	require.Equal(t, big.NewInt(995), unshield.Amount)
	require.Equal(t, big.NewInt(5), unshield.Fee)
	require.Equal(t, decoder.TokenID(models.ERC20, erc20, big.NewInt(0)), unshield.TokenID)

	shield := batch.ShieldCommitments[0]
	require.Equal(t, decoder.IDFrom2(1, 12), shield.ID)
	require.Equal(t, big.NewInt(500), shield.Hash)
	require.Equal(t, big.NewInt(25), shield.Fee)
	require.Equal(t, shield.ID, shield.PreimageID)
	require.Len(t, hasher.HashCommitmentsCalls(), 1)
	input := hasher.HashCommitmentsCalls()[0].Inputs[0]
	require.Equal(t, big.NewInt(0x33), input.Npk)
	require.Equal(t, new(big.Int).SetBytes(erc20.Bytes()), input.TokenID)
	require.Equal(t, big.NewInt(1000), input.Value)

	tx := batch.Transactions[0]
	require.Equal(t, decoder.IDFrom3(100, 3, 0), tx.ID)
	require.Equal(t, wordBytes(0x7777), tx.MerkleRoot)
	require.Equal(t, [][]byte{wordBytes(0xaa), wordBytes(0xbb)}, tx.Nullifiers)
	require.True(t, tx.HasUnshield)
	require.Equal(t, int64(1), tx.UtxoTreeOut)
	require.Equal(t, int64(10), tx.UtxoBatchStartPositionOut)
	require.Equal(t, common.FromHex("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), tx.UnshieldToAddress)
	require.Equal(t, big.NewInt(995), tx.UnshieldValue)
	require.Len(t, tx.BoundParamsHash, 32)
	require.Equal(t, -1, new(big.Int).SetBytes(tx.BoundParamsHash).Cmp(decoder.SnarkPrime))

	expectedHash := decoder.NextVerificationHash(nil, wordBytes(0xaa))
	require.Equal(t, expectedHash, tx.VerificationHash)
	require.NotNil(t, result.VerificationHash)
	require.Equal(t, expectedHash, result.VerificationHash.VerificationHash)

	// dirty tracking was reset after extraction
	require.True(t, store.ExtractBatch().IsEmpty())
}

func TestProcessReplayIsDeterministic(t *testing.T) {
	block, _ := currentContractBlock(t)
	seed := models.VerificationHash{ID: models.VerificationHashID, VerificationHash: []byte{0xaa}}

	first, err := newProcessor(constantHasher(500)).ProcessBlocks(context.Background(), memory.New(seed), []decoder.Block{block})
	require.NoError(t, err)
	second, err := newProcessor(constantHasher(500)).ProcessBlocks(context.Background(), memory.New(seed), []decoder.Block{block})
	require.NoError(t, err)

	require.False(t, first.Batch.IsEmpty())
	require.Equal(t, first, second)
	require.Equal(t, decoder.NextVerificationHash([]byte{0xaa}, wordBytes(0xaa)), second.Batch.Transactions[0].VerificationHash)
}

func TestProcessLegacyContract(t *testing.T) {
	txHash := common.HexToHash("0x0a")
	_, legacy := decoder.TransactSelectors()

	legacyCiphertext := legacyCommitmentCiphertext{
		Ciphertext:    [4]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)},
		EphemeralKeys: [2]*big.Int{big.NewInt(5), big.NewInt(6)},
		Memo:          []*big.Int{big.NewInt(7)},
	}
	sub := func(nullifier int64, commitments int, withdraw uint8) legacyTransaction {
		hashes := make([]*big.Int, commitments)
		for i := range hashes {
			hashes[i] = big.NewInt(0x80 + int64(i))
		}
		return legacyTransaction{
			Proof:       zeroProof(),
			MerkleRoot:  big.NewInt(0x8001),
			Nullifiers:  []*big.Int{big.NewInt(nullifier)},
			Commitments: hashes,
			BoundParams: legacyBoundParams{
				TreeNumber:           2,
				Withdraw:             withdraw,
				CommitmentCiphertext: []legacyCommitmentCiphertext{legacyCiphertext},
			},
			WithdrawPreimage: legacyCommitmentPreimage{Npk: big.NewInt(0x0abc), Token: erc20Token(), Value: big.NewInt(0)},
		}
	}

	block := decoder.Block{
		Number:    50,
		Timestamp: 1_600_000_000,
		Logs: []models.RawLog{
			eventLog(t, "CommitmentBatch(uint256,uint256,uint256[],(uint256[4],uint256[2],uint256[])[])",
				txHash, 1, 0,
				big.NewInt(2), big.NewInt(40),
				[]*big.Int{big.NewInt(0x80), big.NewInt(0x81), big.NewInt(0x82)},
				[]legacyCommitmentCiphertext{legacyCiphertext, legacyCiphertext, legacyCiphertext}),
			eventLog(t, "Nullifiers(uint256,uint256[])",
				txHash, 1, 1,
				big.NewInt(2), []*big.Int{big.NewInt(1), big.NewInt(2)}),
			eventLog(t, "GeneratedCommitmentBatch(uint256,uint256,(uint256,(uint8,address,uint256),uint120)[],uint256[2][])",
				txHash, 1, 2,
				big.NewInt(2), big.NewInt(43),
				[]legacyCommitmentPreimage{{Npk: big.NewInt(9), Token: erc20Token(), Value: big.NewInt(10)}},
				[][2]*big.Int{{big.NewInt(11), big.NewInt(12)}}),
		},
		Transactions: []models.RawTransaction{
			transactCall(t, legacy, txHash, 1, []legacyTransaction{sub(1, 2, 1), sub(2, 1, 0)}),
		},
	}

	seed := models.VerificationHash{ID: models.VerificationHashID, VerificationHash: []byte{0xde, 0xad}}
	store := memory.New(seed)
	result, err := newProcessor(constantHasher(900)).ProcessBlocks(context.Background(), store, []decoder.Block{block})
	require.NoError(t, err)
	batch := result.Batch

	require.Len(t, batch.LegacyEncryptedCommitments, 3)
	require.Len(t, batch.LegacyCommitmentCiphertexts, 3)
	require.Equal(t, [][]byte{decoder.Pad32(big.NewInt(5)), decoder.Pad32(big.NewInt(6))},
		batch.LegacyCommitmentCiphertexts[0].EphemeralKeys)
	require.Equal(t, decoder.Pad32(big.NewInt(1))[:16], batch.Ciphertexts[0].IV)

	require.Len(t, batch.LegacyGeneratedCommitments, 1)
	generated := batch.LegacyGeneratedCommitments[0]
	require.Equal(t, decoder.IDFrom2(2, 43), generated.ID)
	require.Equal(t, big.NewInt(900), generated.Hash)
	require.Equal(t, [][]byte{decoder.Pad32(big.NewInt(11)), decoder.Pad32(big.NewInt(12))}, generated.EncryptedRandom)
	require.Equal(t, decoder.Pad32(big.NewInt(9)), batch.CommitmentPreimages[0].Npk)

	require.Len(t, batch.Nullifiers, 2)
	require.Equal(t, int64(2), batch.Nullifiers[0].TreeNumber)

	require.Len(t, batch.Transactions, 2)
	first, second := batch.Transactions[0], batch.Transactions[1]

	// 0x8001 has an even digit count and a high first digit: widened to a word, then reversed
	root := decoder.Pad32(big.NewInt(0x8001))
	require.Equal(t, byte(0x01), first.MerkleRoot[0])
	require.Equal(t, byte(0x80), first.MerkleRoot[1])
	require.Len(t, first.MerkleRoot, len(root))

	require.Equal(t, [][]byte{{0x01}}, first.Nullifiers)
	require.Equal(t, [][]byte{decoder.Pad32(big.NewInt(0x80)), decoder.Pad32(big.NewInt(0x81))}, first.Commitments)
	require.Equal(t, []byte{0x0a, 0xbc}, first.UnshieldToAddress)
	require.True(t, first.HasUnshield)
	require.False(t, second.HasUnshield)
	require.Equal(t, int64(2), first.UtxoTreeIn)
	require.Equal(t, int64(2), first.UtxoTreeOut)

	// outputs of the first sub-transaction, minus its unshield, come before the second
	require.Equal(t, int64(40), first.UtxoBatchStartPositionOut)
	require.Equal(t, int64(41), second.UtxoBatchStartPositionOut)

	firstHash := decoder.NextVerificationHash([]byte{0xde, 0xad}, decoder.Pad32(big.NewInt(1)))
	secondHash := decoder.NextVerificationHash(firstHash, decoder.Pad32(big.NewInt(2)))
	require.Equal(t, firstHash, first.VerificationHash)
	require.Equal(t, secondHash, second.VerificationHash)
	require.Equal(t, secondHash, result.VerificationHash.VerificationHash)
	require.Equal(t, int64(1_600_000_000), first.BlockTimestamp)
}

func TestProcessTransactWithoutBatchEvent(t *testing.T) {
	current, _ := decoder.TransactSelectors()
	txHash := common.HexToHash("0x0b")
	block := decoder.Block{
		Number: 7,
		Transactions: []models.RawTransaction{
			transactCall(t, current, txHash, 0, []transaction{{
				Proof:            zeroProof(),
				Nullifiers:       [][32]byte{word(1)},
				Commitments:      [][32]byte{word(2)},
				BoundParams:      boundParams{MinGasPrice: big.NewInt(0)},
				UnshieldPreimage: commitmentPreimage{Token: erc20Token(), Value: big.NewInt(0)},
			}}),
		},
	}

	result, err := newProcessor(constantHasher(0)).ProcessBlocks(context.Background(), memory.New(), []decoder.Block{block})
	require.NoError(t, err)
	require.Len(t, result.Batch.Transactions, 1)
	require.Equal(t, int64(99999), result.Batch.Transactions[0].UtxoTreeOut)
	require.Equal(t, int64(99999), result.Batch.Transactions[0].UtxoBatchStartPositionOut)
	require.Empty(t, result.Batch.CommitmentBatchEvents)
}

func TestProcessFirstBatchEventWins(t *testing.T) {
	txHash := common.HexToHash("0x0c")
	ct := commitmentCiphertext{AnnotationData: []byte{}, Memo: []byte{}}
	block := decoder.Block{
		Number: 8,
		Logs: []models.RawLog{
			eventLog(t, "Transact(uint256,uint256,bytes32[],(bytes32[4],bytes32,bytes32,bytes,bytes)[])",
				txHash, 0, 0, big.NewInt(0), big.NewInt(5), [][32]byte{word(1)}, []commitmentCiphertext{ct}),
			eventLog(t, "Transact(uint256,uint256,bytes32[],(bytes32[4],bytes32,bytes32,bytes,bytes)[])",
				txHash, 0, 1, big.NewInt(0), big.NewInt(6), [][32]byte{word(2)}, []commitmentCiphertext{ct}),
		},
	}

	result, err := newProcessor(constantHasher(0)).ProcessBlocks(context.Background(), memory.New(), []decoder.Block{block})
	require.NoError(t, err)
	require.Len(t, result.Batch.CommitmentBatchEvents, 1)
	require.Equal(t, int64(5), result.Batch.CommitmentBatchEvents[0].BatchStartTreePosition)
	require.Len(t, result.Batch.TransactCommitments, 2)
}

func TestProcessEmptyBlocks(t *testing.T) {
	result, err := newProcessor(constantHasher(0)).ProcessBlocks(context.Background(), memory.New(), nil)
	require.NoError(t, err)
	require.True(t, result.Batch.IsEmpty())
	require.Nil(t, result.VerificationHash)
}

func TestProcessHasherError(t *testing.T) {
	hasher := &decoder_mock.CommitmentHasherMock{
		HashCommitmentsFunc: func(context.Context, []decoder.CommitmentInput) ([]*big.Int, error) {
			return nil, errors.New("execution reverted")
		},
	}
	block := decoder.Block{
		Number: 9,
		Logs: []models.RawLog{
			eventLog(t, "Shield(uint256,uint256,(bytes32,(uint8,address,uint256),uint120)[],(bytes32[3],bytes32)[])",
				common.HexToHash("0x0d"), 0, 0,
				big.NewInt(0), big.NewInt(0),
				[]commitmentPreimage{{Npk: word(1), Token: erc20Token(), Value: big.NewInt(1)}},
				[]shieldCiphertext{{}}),
		},
	}

	_, err := newProcessor(hasher).ProcessBlocks(context.Background(), memory.New(), []decoder.Block{block})
	require.ErrorContains(t, err, "execution reverted")
}

func TestProcessMalformedLog(t *testing.T) {
	log := eventLog(t, "Nullified(uint16,bytes32[])", common.HexToHash("0x0e"), 0, 0, uint16(1), [][32]byte{word(1)})
	log.Data = log.Data[:40]
	block := decoder.Block{Number: 10, Logs: []models.RawLog{log}}

	_, err := newProcessor(constantHasher(0)).ProcessBlocks(context.Background(), memory.New(), []decoder.Block{block})
	require.Error(t, err)
}
