package decoder

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/lib/hexutils"
	"github.com/railgun-community/railgun-ingester/models"
)

// IDFrom2 renders two values as one id, each as 64 hex digits.
func IDFrom2(a, b int64) string {
	return fmt.Sprintf("0x%064x%064x", a, b)
}

func IDFrom3(a, b, c int64) string {
	return fmt.Sprintf("0x%064x%064x%064x", a, b, c)
}

// logID appends the 8 hex digit log index to the transaction hash.
func logID(txHash common.Hash, logIndex uint64) string {
	return fmt.Sprintf("%s%08x", txHash.Hex(), logIndex)
}

func nullifierID(txHash common.Hash, logIndex uint64, i int) string {
	return fmt.Sprintf("%s%08x", logID(txHash, logIndex), i)
}

// Pad32 returns n as a 32 byte big-endian word.
func Pad32(n *big.Int) []byte {
	return common.LeftPadBytes(n.Bytes(), 32)
}

// PaddedBytes returns the hex digits of n, padded to an even count, as bytes. Zero is one byte.
func PaddedBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	return n.Bytes()
}

// UnconventionalBytes reproduces the encoding historic calldata rows were stored with:
// values whose hex form has an even number of digits and a leading digit above 7 are widened
// to 32 bytes, every other value keeps its minimal width.
func UnconventionalBytes(n *big.Int) []byte {
	digits := n.Text(16)
	if len(digits)%2 == 0 && digits[0] > '7' {
		return Pad32(n)
	}
	return PaddedBytes(n)
}

func reversed(b []byte) []byte {
	out := slices.Clone(b)
	slices.Reverse(out)
	return out
}

func words(values []*big.Int) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = Pad32(v)
	}
	return out
}

func fixedWords[T ~[32]byte](values []T) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = slices.Clone(v[:])
	}
	return out
}

// splitCiphertext maps the first word to iv and tag halves and the rest to data.
func splitCiphertext(id string, ivTag []byte, data [][]byte) models.Ciphertext {
	return models.Ciphertext{
		ID:   id,
		IV:   ivTag[:16],
		Tag:  ivTag[16:],
		Data: data,
	}
}

// NextVerificationHash extends the chain: keccak256(previous || pad32(firstNullifier)).
// The genesis value is empty.
func NextVerificationHash(previous []byte, firstNullifier []byte) []byte {
	return crypto.Keccak256(previous, common.LeftPadBytes(firstNullifier, 32))
}

// TokenID derives the id of a token. ERC20 tokens use their address, every other type
// the keccak256 of the abi encoded descriptor reduced modulo the snark field.
func TokenID(tokenType models.TokenType, address common.Address, subID *big.Int) string {
	if tokenType == models.ERC20 {
		return hexutils.PaddedHex(new(big.Int).SetBytes(address.Bytes()), 32)
	}
	var typeValue uint8
	switch tokenType {
	case models.ERC721:
		typeValue = 1
	case models.ERC1155:
		typeValue = 2
	}
	encoded := slices.Concat(
		common.LeftPadBytes([]byte{typeValue}, 32),
		common.LeftPadBytes(address.Bytes(), 32),
		Pad32(subID),
	)
	return hexutils.PaddedHex(modSnarkPrime(crypto.Keccak256(encoded)), 32)
}

func newToken(data tokenData) (models.Token, error) {
	tokenType, ok := models.TokenTypeFromUint8(data.TokenType)
	if !ok {
		return models.Token{}, errors.Errorf("unknown token type %d", data.TokenType)
	}
	return models.Token{
		ID:           TokenID(tokenType, data.TokenAddress, data.TokenSubID),
		TokenType:    tokenType,
		TokenAddress: data.TokenAddress.Bytes(),
		TokenSubID:   hexutils.PaddedHex(data.TokenSubID, 32),
	}, nil
}

func modSnarkPrime(digest []byte) *big.Int {
	return new(big.Int).Mod(new(big.Int).SetBytes(digest), SnarkPrime)
}

// boundParamsHash is keccak256 of the abi encoded bound params, reduced modulo the snark field.
func boundParamsHash(arg abi.Argument, params any) ([]byte, error) {
	encoded, err := abi.Arguments{arg}.Pack(params)
	if err != nil {
		return nil, errors.Errorf("failed to encode bound params: %w", err)
	}
	return Pad32(modSnarkPrime(crypto.Keccak256(encoded))), nil
}

// boundParamsArgument extracts the bound params tuple type of a transact method.
func boundParamsArgument(method abi.Method) abi.Argument {
	transaction := method.Inputs[0].Type.Elem
	for i, name := range transaction.TupleRawNames {
		if name == "boundParams" {
			return abi.Argument{Name: name, Type: *transaction.TupleElems[i]}
		}
	}
	panic("transact method without bound params")
}

var (
	boundParamsArg       = boundParamsArgument(transactMethod)
	legacyBoundParamsArg = boundParamsArgument(legacyTransactMethod)
)
