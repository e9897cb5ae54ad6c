package decoder

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/models"
)

// eventLog is one contract log together with the block it was emitted in.
type eventLog struct {
	block Block
	log   models.RawLog
}

func (e eventLog) unpack(event abi.Event, out any) error {
	if err := railgunABI.UnpackIntoInterface(out, event.Name, e.log.Data); err != nil {
		return errors.Errorf("failed to unpack %s: %w", event.Sig, err)
	}
	return nil
}

func (e eventLog) txHash() []byte {
	return e.log.TransactionHash.Bytes()
}

func (e eventLog) batchEvent(treeNumber, startPosition int64) models.CommitmentBatchEvent {
	return models.CommitmentBatchEvent{
		ID:                     IDFrom2(e.block.Number, int64(e.log.TransactionIndex)),
		TreeNumber:             treeNumber,
		BatchStartTreePosition: startPosition,
	}
}

func (e eventLog) commitment(
	treeNumber, startPosition int64,
	index int,
	commitmentType models.CommitmentType,
	hash *big.Int,
) models.Commitment {
	position := startPosition + int64(index)
	return models.Commitment{
		ID:                     IDFrom2(treeNumber, position),
		BlockNumber:            e.block.Number,
		BlockTimestamp:         e.block.Timestamp,
		TransactionHash:        e.txHash(),
		TreeNumber:             treeNumber,
		BatchStartTreePosition: startPosition,
		TreePosition:           position,
		CommitmentType:         commitmentType,
		Hash:                   hash,
	}
}

func (e eventLog) nullifiers(treeNumber int64, values [][]byte) []models.Entity {
	entities := make([]models.Entity, len(values))
	for i, value := range values {
		entities[i] = models.Nullifier{
			ID:              nullifierID(e.log.TransactionHash, uint64(e.log.LogIndex), i),
			BlockNumber:     e.block.Number,
			BlockTimestamp:  e.block.Timestamp,
			TransactionHash: e.txHash(),
			TreeNumber:      treeNumber,
			Nullifier:       value,
		}
	}
	return entities
}

func decodeNullifiers(e eventLog) ([]models.Entity, error) {
	var ev nullifiersLog
	if err := e.unpack(nullifiersEvent, &ev); err != nil {
		return nil, err
	}
	return e.nullifiers(ev.TreeNumber.Int64(), words(ev.Nullifier)), nil
}

func decodeNullified(e eventLog) ([]models.Entity, error) {
	var ev nullifiedLog
	if err := e.unpack(nullifiedEvent, &ev); err != nil {
		return nil, err
	}
	return e.nullifiers(int64(ev.TreeNumber), fixedWords(ev.Nullifier)), nil
}

func decodeCommitmentBatch(e eventLog) (models.CommitmentBatchEvent, []models.Entity, error) {
	var ev commitmentBatchLog
	if err := e.unpack(commitmentBatchEvent, &ev); err != nil {
		return models.CommitmentBatchEvent{}, nil, err
	}
	if len(ev.Hash) != len(ev.Ciphertext) {
		return models.CommitmentBatchEvent{}, nil, errors.Errorf(
			"commitment batch has %d hashes and %d ciphertexts", len(ev.Hash), len(ev.Ciphertext))
	}
	treeNumber, startPosition := ev.TreeNumber.Int64(), ev.StartPosition.Int64()

	entities := make([]models.Entity, 0, 3*len(ev.Hash))
	for i, hash := range ev.Hash {
		ct := ev.Ciphertext[i]
		c := e.commitment(treeNumber, startPosition, i, models.LegacyEncryptedCommitmentType, hash)
		entities = append(entities,
			splitCiphertext(c.ID, Pad32(ct.Ciphertext[0]), words(ct.Ciphertext[1:])),
			models.LegacyCommitmentCiphertext{
				ID:            c.ID,
				CiphertextID:  c.ID,
				EphemeralKeys: words(ct.EphemeralKeys[:]),
				Memo:          words(ct.Memo),
			},
			models.LegacyEncryptedCommitment{Commitment: c, CiphertextID: c.ID},
		)
	}
	return e.batchEvent(treeNumber, startPosition), entities, nil
}

func decodeTransact(e eventLog) (models.CommitmentBatchEvent, []models.Entity, error) {
	var ev transactLog
	if err := e.unpack(transactEvent, &ev); err != nil {
		return models.CommitmentBatchEvent{}, nil, err
	}
	if len(ev.Hash) != len(ev.Ciphertext) {
		return models.CommitmentBatchEvent{}, nil, errors.Errorf(
			"transact has %d hashes and %d ciphertexts", len(ev.Hash), len(ev.Ciphertext))
	}
	treeNumber, startPosition := ev.TreeNumber.Int64(), ev.StartPosition.Int64()

	entities := make([]models.Entity, 0, 3*len(ev.Hash))
	for i, hash := range ev.Hash {
		ct := ev.Ciphertext[i]
		c := e.commitment(treeNumber, startPosition, i, models.TransactCommitmentType, new(big.Int).SetBytes(hash[:]))
		entities = append(entities,
			splitCiphertext(c.ID, fixedWords(ct.Ciphertext[:1])[0], fixedWords(ct.Ciphertext[1:])),
			models.CommitmentCiphertext{
				ID:                        c.ID,
				CiphertextID:              c.ID,
				BlindedSenderViewingKey:   common.CopyBytes(ct.BlindedSenderViewingKey[:]),
				BlindedReceiverViewingKey: common.CopyBytes(ct.BlindedReceiverViewingKey[:]),
				AnnotationData:            ct.AnnotationData,
				Memo:                      ct.Memo,
			},
			models.TransactCommitment{Commitment: c, CiphertextID: c.ID},
		)
	}
	return e.batchEvent(treeNumber, startPosition), entities, nil
}

func decodeUnshield(e eventLog) ([]models.Entity, error) {
	var ev unshieldLog
	if err := e.unpack(unshieldEvent, &ev); err != nil {
		return nil, err
	}
	token, err := newToken(ev.Token)
	if err != nil {
		return nil, err
	}
	unshield := models.Unshield{
		ID:              logID(e.log.TransactionHash, uint64(e.log.LogIndex)),
		BlockNumber:     e.block.Number,
		BlockTimestamp:  e.block.Timestamp,
		TransactionHash: e.txHash(),
		To:              ev.To.Bytes(),
		TokenID:         token.ID,
		Amount:          ev.Amount,
		Fee:             ev.Fee,
		EventLogIndex:   int64(e.log.LogIndex),
	}
	return []models.Entity{token, unshield}, nil
}

func decodeGeneratedCommitmentBatch(ctx context.Context, hasher CommitmentHasher, e eventLog) ([]models.Entity, error) {
	var ev generatedCommitmentBatchLog
	if err := e.unpack(generatedCommitmentBatchEvent, &ev); err != nil {
		return nil, err
	}
	if len(ev.Commitments) != len(ev.EncryptedRandom) {
		return nil, errors.Errorf("generated commitment batch has %d commitments and %d encrypted randoms",
			len(ev.Commitments), len(ev.EncryptedRandom))
	}
	treeNumber, startPosition := ev.TreeNumber.Int64(), ev.StartPosition.Int64()

	tokens := make([]models.Token, len(ev.Commitments))
	inputs := make([]CommitmentInput, len(ev.Commitments))
	for i, preimage := range ev.Commitments {
		token, err := newToken(preimage.Token)
		if err != nil {
			return nil, err
		}
		tokens[i] = token
		inputs[i] = CommitmentInput{Npk: preimage.Npk, TokenID: tokenIDValue(token), Value: preimage.Value}
	}
	hashes, err := hashCommitments(ctx, hasher, inputs)
	if err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, 3*len(ev.Commitments))
	for i, preimage := range ev.Commitments {
		c := e.commitment(treeNumber, startPosition, i, models.LegacyGeneratedCommitmentType, hashes[i])
		entities = append(entities,
			tokens[i],
			models.CommitmentPreimage{ID: c.ID, Npk: Pad32(preimage.Npk), TokenID: tokens[i].ID, Value: preimage.Value},
			models.LegacyGeneratedCommitment{
				Commitment:      c,
				PreimageID:      c.ID,
				EncryptedRandom: words(ev.EncryptedRandom[i][:]),
			},
		)
	}
	return entities, nil
}

func decodeShield(ctx context.Context, hasher CommitmentHasher, event abi.Event, e eventLog) ([]models.Entity, error) {
	var ev shieldLog
	if err := e.unpack(event, &ev); err != nil {
		return nil, err
	}
	if len(ev.Commitments) != len(ev.ShieldCiphertext) {
		return nil, errors.Errorf("shield has %d commitments and %d ciphertexts",
			len(ev.Commitments), len(ev.ShieldCiphertext))
	}
	treeNumber, startPosition := ev.TreeNumber.Int64(), ev.StartPosition.Int64()

	tokens := make([]models.Token, len(ev.Commitments))
	inputs := make([]CommitmentInput, len(ev.Commitments))
	for i, preimage := range ev.Commitments {
		token, err := newToken(preimage.Token)
		if err != nil {
			return nil, err
		}
		tokens[i] = token
		inputs[i] = CommitmentInput{
			Npk:     new(big.Int).SetBytes(preimage.Npk[:]),
			TokenID: tokenIDValue(token),
			Value:   preimage.Value,
		}
	}
	hashes, err := hashCommitments(ctx, hasher, inputs)
	if err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, 3*len(ev.Commitments))
	for i, preimage := range ev.Commitments {
		c := e.commitment(treeNumber, startPosition, i, models.ShieldCommitmentType, hashes[i])
		var fee *big.Int
		if i < len(ev.Fees) {
			fee = ev.Fees[i]
		}
		ct := ev.ShieldCiphertext[i]
		entities = append(entities,
			tokens[i],
			models.CommitmentPreimage{
				ID:      c.ID,
				Npk:     common.CopyBytes(preimage.Npk[:]),
				TokenID: tokens[i].ID,
				Value:   preimage.Value,
			},
			models.ShieldCommitment{
				Commitment:      c,
				PreimageID:      c.ID,
				EncryptedBundle: fixedWords(ct.EncryptedBundle[:]),
				ShieldKey:       common.CopyBytes(ct.ShieldKey[:]),
				Fee:             fee,
			},
		)
	}
	return entities, nil
}

func hashCommitments(ctx context.Context, hasher CommitmentHasher, inputs []CommitmentInput) ([]*big.Int, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	hashes, err := hasher.HashCommitments(ctx, inputs)
	if err != nil {
		return nil, errors.Errorf("failed to hash %d commitments: %w", len(inputs), err)
	}
	if len(hashes) != len(inputs) {
		return nil, errors.Errorf("hasher returned %d hashes for %d commitments", len(hashes), len(inputs))
	}
	return hashes, nil
}

func tokenIDValue(token models.Token) *big.Int {
	return new(big.Int).SetBytes(common.FromHex(token.ID))
}
