package decoder

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
)

// CommitmentInput is one poseidon(npk, tokenID, value) preimage.
type CommitmentInput struct {
	Npk     *big.Int
	TokenID *big.Int
	Value   *big.Int
}

//go:generate moq -out ../mocks/decoder/hasher.go -pkg decoder_mock . CommitmentHasher

type CommitmentHasher interface {
	HashCommitments(ctx context.Context, inputs []CommitmentInput) ([]*big.Int, error)
}

type ContractCaller interface {
	CallContract(ctx context.Context, to common.Address, calldata [][]byte) ([][]byte, error)
}

// PoseidonHasher hashes commitments with eth_call against the PoseidonT4 library, one batch per event.
type PoseidonHasher struct {
	caller  ContractCaller
	address common.Address
}

func NewPoseidonHasher(caller ContractCaller, address common.Address) *PoseidonHasher {
	return &PoseidonHasher{caller: caller, address: address}
}

func (h *PoseidonHasher) HashCommitments(ctx context.Context, inputs []CommitmentInput) ([]*big.Int, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	calldata := make([][]byte, len(inputs))
	for i, in := range inputs {
		var words [3][32]byte
		copy(words[0][:], Pad32(in.Npk))
		copy(words[1][:], Pad32(in.TokenID))
		copy(words[2][:], Pad32(in.Value))
		data, err := poseidonABI.Pack("poseidon", words)
		if err != nil {
			return nil, errors.Errorf("failed to pack poseidon input: %w", err)
		}
		calldata[i] = data
	}

	outputs, err := h.caller.CallContract(ctx, h.address, calldata)
	if err != nil {
		return nil, err
	}
	if len(outputs) != len(inputs) {
		return nil, errors.Errorf("poseidon returned %d results for %d inputs", len(outputs), len(inputs))
	}

	hashes := make([]*big.Int, len(outputs))
	for i, out := range outputs {
		values, err := poseidonABI.Unpack("poseidon", out)
		if err != nil {
			return nil, errors.Errorf("failed to unpack poseidon output: %w", err)
		}
		word, ok := values[0].([32]byte)
		if !ok {
			return nil, errors.Errorf("unexpected poseidon output type %T", values[0])
		}
		hashes[i] = new(big.Int).SetBytes(word[:])
	}
	return hashes, nil
}
