package decoder

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RailgunABI holds the events and transact entry points of both contract generations.
// Names of overloaded entries are resolved by go-ethereum (Shield/Shield0, transact/transact0),
// lookups below go through the canonical signatures instead.
const RailgunABI = `[
  {
    "type": "event", "name": "Nullifiers", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "nullifier", "type": "uint256[]", "indexed": false }
    ]
  },
  {
    "type": "event", "name": "Nullified", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint16", "indexed": false },
      { "name": "nullifier", "type": "bytes32[]", "indexed": false }
    ]
  },
  {
    "type": "event", "name": "CommitmentBatch", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "startPosition", "type": "uint256", "indexed": false },
      { "name": "hash", "type": "uint256[]", "indexed": false },
      {
        "name": "ciphertext", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "ciphertext", "type": "uint256[4]" },
          { "name": "ephemeralKeys", "type": "uint256[2]" },
          { "name": "memo", "type": "uint256[]" }
        ]
      }
    ]
  },
  {
    "type": "event", "name": "GeneratedCommitmentBatch", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "startPosition", "type": "uint256", "indexed": false },
      {
        "name": "commitments", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "npk", "type": "uint256" },
          {
            "name": "token", "type": "tuple",
            "components": [
              { "name": "tokenType", "type": "uint8" },
              { "name": "tokenAddress", "type": "address" },
              { "name": "tokenSubID", "type": "uint256" }
            ]
          },
          { "name": "value", "type": "uint120" }
        ]
      },
      { "name": "encryptedRandom", "type": "uint256[2][]", "indexed": false }
    ]
  },
  {
    "type": "event", "name": "Transact", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "startPosition", "type": "uint256", "indexed": false },
      { "name": "hash", "type": "bytes32[]", "indexed": false },
      {
        "name": "ciphertext", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "ciphertext", "type": "bytes32[4]" },
          { "name": "blindedSenderViewingKey", "type": "bytes32" },
          { "name": "blindedReceiverViewingKey", "type": "bytes32" },
          { "name": "annotationData", "type": "bytes" },
          { "name": "memo", "type": "bytes" }
        ]
      }
    ]
  },
  {
    "type": "event", "name": "Unshield", "anonymous": false,
    "inputs": [
      { "name": "to", "type": "address", "indexed": false },
      {
        "name": "token", "type": "tuple", "indexed": false,
        "components": [
          { "name": "tokenType", "type": "uint8" },
          { "name": "tokenAddress", "type": "address" },
          { "name": "tokenSubID", "type": "uint256" }
        ]
      },
      { "name": "amount", "type": "uint256", "indexed": false },
      { "name": "fee", "type": "uint256", "indexed": false }
    ]
  },
  {
    "type": "event", "name": "Shield", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "startPosition", "type": "uint256", "indexed": false },
      {
        "name": "commitments", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "npk", "type": "bytes32" },
          {
            "name": "token", "type": "tuple",
            "components": [
              { "name": "tokenType", "type": "uint8" },
              { "name": "tokenAddress", "type": "address" },
              { "name": "tokenSubID", "type": "uint256" }
            ]
          },
          { "name": "value", "type": "uint120" }
        ]
      },
      {
        "name": "shieldCiphertext", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "encryptedBundle", "type": "bytes32[3]" },
          { "name": "shieldKey", "type": "bytes32" }
        ]
      }
    ]
  },
  {
    "type": "event", "name": "Shield", "anonymous": false,
    "inputs": [
      { "name": "treeNumber", "type": "uint256", "indexed": false },
      { "name": "startPosition", "type": "uint256", "indexed": false },
      {
        "name": "commitments", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "npk", "type": "bytes32" },
          {
            "name": "token", "type": "tuple",
            "components": [
              { "name": "tokenType", "type": "uint8" },
              { "name": "tokenAddress", "type": "address" },
              { "name": "tokenSubID", "type": "uint256" }
            ]
          },
          { "name": "value", "type": "uint120" }
        ]
      },
      {
        "name": "shieldCiphertext", "type": "tuple[]", "indexed": false,
        "components": [
          { "name": "encryptedBundle", "type": "bytes32[3]" },
          { "name": "shieldKey", "type": "bytes32" }
        ]
      },
      { "name": "fees", "type": "uint256[]", "indexed": false }
    ]
  },
  {
    "type": "function", "name": "transact", "stateMutability": "nonpayable", "outputs": [],
    "inputs": [
      {
        "name": "_transactions", "type": "tuple[]",
        "components": [
          {
            "name": "proof", "type": "tuple",
            "components": [
              { "name": "a", "type": "tuple", "components": [ { "name": "x", "type": "uint256" }, { "name": "y", "type": "uint256" } ] },
              { "name": "b", "type": "tuple", "components": [ { "name": "x", "type": "uint256[2]" }, { "name": "y", "type": "uint256[2]" } ] },
              { "name": "c", "type": "tuple", "components": [ { "name": "x", "type": "uint256" }, { "name": "y", "type": "uint256" } ] }
            ]
          },
          { "name": "merkleRoot", "type": "bytes32" },
          { "name": "nullifiers", "type": "bytes32[]" },
          { "name": "commitments", "type": "bytes32[]" },
          {
            "name": "boundParams", "type": "tuple",
            "components": [
              { "name": "treeNumber", "type": "uint16" },
              { "name": "minGasPrice", "type": "uint72" },
              { "name": "unshield", "type": "uint8" },
              { "name": "chainID", "type": "uint64" },
              { "name": "adaptContract", "type": "address" },
              { "name": "adaptParams", "type": "bytes32" },
              {
                "name": "commitmentCiphertext", "type": "tuple[]",
                "components": [
                  { "name": "ciphertext", "type": "bytes32[4]" },
                  { "name": "blindedSenderViewingKey", "type": "bytes32" },
                  { "name": "blindedReceiverViewingKey", "type": "bytes32" },
                  { "name": "annotationData", "type": "bytes" },
                  { "name": "memo", "type": "bytes" }
                ]
              }
            ]
          },
          {
            "name": "unshieldPreimage", "type": "tuple",
            "components": [
              { "name": "npk", "type": "bytes32" },
              {
                "name": "token", "type": "tuple",
                "components": [
                  { "name": "tokenType", "type": "uint8" },
                  { "name": "tokenAddress", "type": "address" },
                  { "name": "tokenSubID", "type": "uint256" }
                ]
              },
              { "name": "value", "type": "uint120" }
            ]
          }
        ]
      }
    ]
  },
  {
    "type": "function", "name": "transact", "stateMutability": "payable", "outputs": [],
    "inputs": [
      {
        "name": "_transactions", "type": "tuple[]",
        "components": [
          {
            "name": "proof", "type": "tuple",
            "components": [
              { "name": "a", "type": "tuple", "components": [ { "name": "x", "type": "uint256" }, { "name": "y", "type": "uint256" } ] },
              { "name": "b", "type": "tuple", "components": [ { "name": "x", "type": "uint256[2]" }, { "name": "y", "type": "uint256[2]" } ] },
              { "name": "c", "type": "tuple", "components": [ { "name": "x", "type": "uint256" }, { "name": "y", "type": "uint256" } ] }
            ]
          },
          { "name": "merkleRoot", "type": "uint256" },
          { "name": "nullifiers", "type": "uint256[]" },
          { "name": "commitments", "type": "uint256[]" },
          {
            "name": "boundParams", "type": "tuple",
            "components": [
              { "name": "treeNumber", "type": "uint16" },
              { "name": "withdraw", "type": "uint8" },
              { "name": "adaptContract", "type": "address" },
              { "name": "adaptParams", "type": "bytes32" },
              {
                "name": "commitmentCiphertext", "type": "tuple[]",
                "components": [
                  { "name": "ciphertext", "type": "uint256[4]" },
                  { "name": "ephemeralKeys", "type": "uint256[2]" },
                  { "name": "memo", "type": "uint256[]" }
                ]
              }
            ]
          },
          {
            "name": "withdrawPreimage", "type": "tuple",
            "components": [
              { "name": "npk", "type": "uint256" },
              {
                "name": "token", "type": "tuple",
                "components": [
                  { "name": "tokenType", "type": "uint8" },
                  { "name": "tokenAddress", "type": "address" },
                  { "name": "tokenSubID", "type": "uint256" }
                ]
              },
              { "name": "value", "type": "uint120" }
            ]
          },
          { "name": "overrideOutput", "type": "address" }
        ]
      }
    ]
  }
]`

// PoseidonABI is the single entry point of the PoseidonT4 library used for commitment hashes.
const PoseidonABI = `[
  {
    "type": "function", "name": "poseidon", "stateMutability": "pure",
    "inputs": [ { "name": "input", "type": "bytes32[3]" } ],
    "outputs": [ { "name": "", "type": "bytes32" } ]
  }
]`

const (
	nullifiersSig               = "Nullifiers(uint256,uint256[])"
	nullifiedSig                = "Nullified(uint16,bytes32[])"
	commitmentBatchSig          = "CommitmentBatch(uint256,uint256,uint256[],(uint256[4],uint256[2],uint256[])[])"
	generatedCommitmentBatchSig = "GeneratedCommitmentBatch(uint256,uint256,(uint256,(uint8,address,uint256),uint120)[],uint256[2][])"
	transactEventSig            = "Transact(uint256,uint256,bytes32[],(bytes32[4],bytes32,bytes32,bytes,bytes)[])"
	unshieldSig                 = "Unshield(address,(uint8,address,uint256),uint256,uint256)"
	legacyShieldSig             = "Shield(uint256,uint256,(bytes32,(uint8,address,uint256),uint120)[],(bytes32[3],bytes32)[])"
	shieldSig                   = "Shield(uint256,uint256,(bytes32,(uint8,address,uint256),uint120)[],(bytes32[3],bytes32)[],uint256[])"
	transactSig                 = "transact((((uint256,uint256),(uint256[2],uint256[2]),(uint256,uint256)),bytes32,bytes32[],bytes32[],(uint16,uint72,uint8,uint64,address,bytes32,(bytes32[4],bytes32,bytes32,bytes,bytes)[]),(bytes32,(uint8,address,uint256),uint120))[])"
	legacyTransactSig           = "transact((((uint256,uint256),(uint256[2],uint256[2]),(uint256,uint256)),uint256,uint256[],uint256[],(uint16,uint8,address,bytes32,(uint256[4],uint256[2],uint256[])[]),(uint256,(uint8,address,uint256),uint120),address)[])"
)

var (
	railgunABI  = mustParseABI(RailgunABI)
	poseidonABI = mustParseABI(PoseidonABI)

	nullifiersEvent               = mustEvent(nullifiersSig)
	nullifiedEvent                = mustEvent(nullifiedSig)
	commitmentBatchEvent          = mustEvent(commitmentBatchSig)
	generatedCommitmentBatchEvent = mustEvent(generatedCommitmentBatchSig)
	transactEvent                 = mustEvent(transactEventSig)
	unshieldEvent                 = mustEvent(unshieldSig)
	legacyShieldEvent             = mustEvent(legacyShieldSig)
	shieldEvent                   = mustEvent(shieldSig)

	transactMethod       = mustMethod(transactSig)
	legacyTransactMethod = mustMethod(legacyTransactSig)
)

// SnarkPrime is the order of the BN254 scalar field.
var SnarkPrime, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

func mustEvent(signature string) abi.Event {
	event, err := railgunABI.EventByID(crypto.Keccak256Hash([]byte(signature)))
	if err != nil {
		panic(err)
	}
	return *event
}

func mustMethod(signature string) abi.Method {
	method, err := railgunABI.MethodById(crypto.Keccak256([]byte(signature))[:4])
	if err != nil {
		panic(err)
	}
	return *method
}

// EventTopics returns the topic-0 values of every event the processor decodes.
func EventTopics() []common.Hash {
	return []common.Hash{
		nullifiersEvent.ID,
		nullifiedEvent.ID,
		commitmentBatchEvent.ID,
		generatedCommitmentBatchEvent.ID,
		transactEvent.ID,
		unshieldEvent.ID,
		legacyShieldEvent.ID,
		shieldEvent.ID,
	}
}

// TransactSelectors returns the 4-byte selectors of the current and legacy transact functions.
func TransactSelectors() (current, legacy []byte) {
	return transactMethod.ID, legacyTransactMethod.ID
}

// Go shapes of the ABI tuples. Field order follows the ABI components.

type tokenData struct {
	TokenType    uint8
	TokenAddress common.Address
	TokenSubID   *big.Int
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

type transactionCall struct {
	Proof            snarkProof
	MerkleRoot       [32]byte
	Nullifiers       [][32]byte
	Commitments      [][32]byte
	BoundParams      boundParams
	UnshieldPreimage commitmentPreimage
}

type legacyTransactionCall struct {
	Proof            snarkProof
	MerkleRoot       *big.Int
	Nullifiers       []*big.Int
	Commitments      []*big.Int
	BoundParams      legacyBoundParams
	WithdrawPreimage legacyCommitmentPreimage
	OverrideOutput   common.Address
}

type nullifiersLog struct {
	TreeNumber *big.Int
	Nullifier  []*big.Int
}

type nullifiedLog struct {
	TreeNumber uint16
	Nullifier  [][32]byte
}

type commitmentBatchLog struct {
	TreeNumber    *big.Int
	StartPosition *big.Int
	Hash          []*big.Int
	Ciphertext    []legacyCommitmentCiphertext
}

type generatedCommitmentBatchLog struct {
	TreeNumber      *big.Int
	StartPosition   *big.Int
	Commitments     []legacyCommitmentPreimage
	EncryptedRandom [][2]*big.Int
}

type transactLog struct {
	TreeNumber    *big.Int
	StartPosition *big.Int
	Hash          [][32]byte
	Ciphertext    []commitmentCiphertext
}

type unshieldLog struct {
	To     common.Address
	Token  tokenData
	Amount *big.Int
	Fee    *big.Int
}

// shieldLog covers both Shield shapes. Fees stays nil for the legacy one.
type shieldLog struct {
	TreeNumber       *big.Int
	StartPosition    *big.Int
	Commitments      []commitmentPreimage
	ShieldCiphertext []shieldCiphertext
	Fees             []*big.Int
}
