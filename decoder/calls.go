package decoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/models"
)

// unknownBatchPosition marks transactions whose commitment batch event was not found in the chunk.
const unknownBatchPosition = 99999

// callContext is one transact call together with the block it was mined in.
type callContext struct {
	block Block
	tx    models.RawTransaction
}

func (c callContext) id(subIndex int) string {
	return IDFrom3(c.block.Number, int64(c.tx.TransactionIndex), int64(subIndex))
}

func unpackCalls(method abi.Method, input []byte, out any) error {
	values, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return errors.Errorf("failed to unpack %s calldata: %w", method.Name, err)
	}
	if err := method.Inputs.Copy(out, values); err != nil {
		return errors.Errorf("failed to copy %s calldata: %w", method.Name, err)
	}
	return nil
}

// chainState is the verification hash and output position threaded through the sub-transactions of one call.
type chainState struct {
	verificationHash []byte
	treeNumber       int64
	batchStart       int64
}

func (s *chainState) advance(firstNullifier []byte) []byte {
	s.verificationHash = NextVerificationHash(s.verificationHash, firstNullifier)
	return s.verificationHash
}

func (s *chainState) consume(commitments int, hasUnshield bool) {
	s.batchStart += int64(commitments)
	if hasUnshield {
		s.batchStart--
	}
}

func decodeTransactCall(c callContext, state *chainState) ([]models.Entity, error) {
	var calls []transactionCall
	if err := unpackCalls(transactMethod, c.tx.Input, &calls); err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, 2*len(calls))
	for i, call := range calls {
		if len(call.Nullifiers) == 0 {
			return nil, errors.Errorf("transaction %d has no nullifiers", i)
		}
		token, err := newToken(call.UnshieldPreimage.Token)
		if err != nil {
			return nil, err
		}
		paramsHash, err := boundParamsHash(boundParamsArg, call.BoundParams)
		if err != nil {
			return nil, err
		}
		hasUnshield := call.BoundParams.Unshield != 0
		npk := call.UnshieldPreimage.Npk
		tx := models.Transaction{
			ID:                        c.id(i),
			BlockNumber:               c.block.Number,
			TransactionHash:           c.tx.Hash.Bytes(),
			MerkleRoot:                common.CopyBytes(call.MerkleRoot[:]),
			Nullifiers:                fixedWords(call.Nullifiers),
			Commitments:               fixedWords(call.Commitments),
			BoundParamsHash:           paramsHash,
			HasUnshield:               hasUnshield,
			UtxoTreeIn:                int64(call.BoundParams.TreeNumber),
			UtxoTreeOut:               state.treeNumber,
			UtxoBatchStartPositionOut: state.batchStart,
			UnshieldTokenID:           token.ID,
			UnshieldToAddress:         common.CopyBytes(npk[12:]),
			UnshieldValue:             call.UnshieldPreimage.Value,
			BlockTimestamp:            c.block.Timestamp,
			VerificationHash:          state.advance(call.Nullifiers[0][:]),
		}
		entities = append(entities, token, tx)
		state.consume(len(call.Commitments), hasUnshield)
	}
	return entities, nil
}

// decodeLegacyTransactCall decodes the pre-upgrade entry point. Its numeric fields are stored with
// UnconventionalBytes and the merkle root additionally byte reversed, matching historic rows.
func decodeLegacyTransactCall(c callContext, state *chainState) ([]models.Entity, error) {
	var calls []legacyTransactionCall
	if err := unpackCalls(legacyTransactMethod, c.tx.Input, &calls); err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, 2*len(calls))
	for i, call := range calls {
		if len(call.Nullifiers) == 0 {
			return nil, errors.Errorf("legacy transaction %d has no nullifiers", i)
		}
		token, err := newToken(call.WithdrawPreimage.Token)
		if err != nil {
			return nil, err
		}
		paramsHash, err := boundParamsHash(legacyBoundParamsArg, call.BoundParams)
		if err != nil {
			return nil, err
		}
		hasUnshield := call.BoundParams.Withdraw != 0
		tx := models.Transaction{
			ID:                        c.id(i),
			BlockNumber:               c.block.Number,
			TransactionHash:           c.tx.Hash.Bytes(),
			MerkleRoot:                reversed(UnconventionalBytes(call.MerkleRoot)),
			Nullifiers:                unconventional(call.Nullifiers),
			Commitments:               unconventional(call.Commitments),
			BoundParamsHash:           paramsHash,
			HasUnshield:               hasUnshield,
			UtxoTreeIn:                int64(call.BoundParams.TreeNumber),
			UtxoTreeOut:               state.treeNumber,
			UtxoBatchStartPositionOut: state.batchStart,
			UnshieldTokenID:           token.ID,
			UnshieldToAddress:         PaddedBytes(call.WithdrawPreimage.Npk),
			UnshieldValue:             call.WithdrawPreimage.Value,
			BlockTimestamp:            c.block.Timestamp,
			VerificationHash:          state.advance(Pad32(call.Nullifiers[0])),
		}
		entities = append(entities, token, tx)
		state.consume(len(call.Commitments), hasUnshield)
	}
	return entities, nil
}

func unconventional(values []*big.Int) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = UnconventionalBytes(v)
	}
	return out
}
