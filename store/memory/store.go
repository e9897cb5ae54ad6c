package memory

import (
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/models"
)

// bucket keeps the entities of one kind by id, in first insertion order.
type bucket struct {
	ids     []string
	records map[string]models.Entity
}

func (b *bucket) put(e models.Entity) {
	id := e.EntityID()
	if _, ok := b.records[id]; !ok {
		b.ids = append(b.ids, id)
	}
	b.records[id] = e
}

// Store stages the entities decoded from one chunk. It is not safe for concurrent use.
type Store struct {
	buckets map[models.EntityKind]*bucket
	dirty   map[models.EntityKind]bool
}

// New creates a store holding the seed entities. Seeds are not dirty.
func New(seed ...models.Entity) *Store {
	s := &Store{
		buckets: make(map[models.EntityKind]*bucket),
		dirty:   make(map[models.EntityKind]bool),
	}
	for _, e := range seed {
		if e == nil || e.EntityID() == "" {
			continue
		}
		s.bucket(e.Kind()).put(e)
	}
	return s
}

func (s *Store) bucket(kind models.EntityKind) *bucket {
	b, ok := s.buckets[kind]
	if !ok {
		b = &bucket{records: make(map[string]models.Entity)}
		s.buckets[kind] = b
	}
	return b
}

// Upsert stores entities by id and marks their kinds dirty.
func (s *Store) Upsert(entities ...models.Entity) error {
	for _, e := range entities {
		if e == nil {
			continue
		}
		if e.EntityID() == "" {
			return errors.Errorf("%s entity is missing id", e.Kind())
		}
		s.bucket(e.Kind()).put(e)
		s.dirty[e.Kind()] = true
	}
	return nil
}

func (s *Store) FindByID(kind models.EntityKind, id string) (models.Entity, bool) {
	b, ok := s.buckets[kind]
	if !ok {
		return nil, false
	}
	e, ok := b.records[id]
	return e, ok
}

// FindOneBy returns the first entity of kind, in insertion order, accepted by match.
func (s *Store) FindOneBy(kind models.EntityKind, match func(models.Entity) bool) (models.Entity, bool) {
	b, ok := s.buckets[kind]
	if !ok {
		return nil, false
	}
	for _, id := range b.ids {
		if e := b.records[id]; match(e) {
			return e, true
		}
	}
	return nil, false
}

func (s *Store) CommitmentBatchEvent(id string) (models.CommitmentBatchEvent, bool) {
	e, ok := s.FindByID(models.KindCommitmentBatchEvent, id)
	if !ok {
		return models.CommitmentBatchEvent{}, false
	}
	event, ok := e.(models.CommitmentBatchEvent)
	return event, ok
}

// VerificationHash returns the current value of the chain, seeded or updated.
func (s *Store) VerificationHash() (models.VerificationHash, bool) {
	e, ok := s.FindByID(models.KindVerificationHash, models.VerificationHashID)
	if !ok {
		return models.VerificationHash{}, false
	}
	vh, ok := e.(models.VerificationHash)
	return vh, ok
}

// ExtractBatch returns every entity of the kinds upserted since the last ClearDirty.
func (s *Store) ExtractBatch() models.Batch {
	var batch models.Batch
	for _, kind := range models.EntityKinds {
		b, ok := s.buckets[kind]
		if !ok || !s.dirty[kind] {
			continue
		}
		for _, id := range b.ids {
			appendEntity(&batch, b.records[id])
		}
	}
	return batch
}

func (s *Store) ClearDirty() {
	clear(s.dirty)
}

func appendEntity(batch *models.Batch, e models.Entity) {
	switch v := e.(type) {
	case models.Token:
		batch.Tokens = append(batch.Tokens, v)
	case models.CommitmentBatchEvent:
		batch.CommitmentBatchEvents = append(batch.CommitmentBatchEvents, v)
	case models.Nullifier:
		batch.Nullifiers = append(batch.Nullifiers, v)
	case models.Ciphertext:
		batch.Ciphertexts = append(batch.Ciphertexts, v)
	case models.LegacyCommitmentCiphertext:
		batch.LegacyCommitmentCiphertexts = append(batch.LegacyCommitmentCiphertexts, v)
	case models.CommitmentCiphertext:
		batch.CommitmentCiphertexts = append(batch.CommitmentCiphertexts, v)
	case models.LegacyEncryptedCommitment:
		batch.LegacyEncryptedCommitments = append(batch.LegacyEncryptedCommitments, v)
	case models.CommitmentPreimage:
		batch.CommitmentPreimages = append(batch.CommitmentPreimages, v)
	case models.LegacyGeneratedCommitment:
		batch.LegacyGeneratedCommitments = append(batch.LegacyGeneratedCommitments, v)
	case models.ShieldCommitment:
		batch.ShieldCommitments = append(batch.ShieldCommitments, v)
	case models.TransactCommitment:
		batch.TransactCommitments = append(batch.TransactCommitments, v)
	case models.Transaction:
		batch.Transactions = append(batch.Transactions, v)
	case models.Unshield:
		batch.Unshields = append(batch.Unshields, v)
	case models.VerificationHash:
		batch.VerificationHashes = append(batch.VerificationHashes, v)
	}
}
