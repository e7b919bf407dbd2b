package policy

import (
	"context"
	"encoding/json"

	cryptoutil "policygen/internal/platform/crypto"
)

// FreePlanPolicyLimit caps how many generated policies a free account may
// keep saved at once. Premium accounts are not limited.
const FreePlanPolicyLimit = 3

type Service struct {
	store  *Store
	crypto *cryptoutil.Service
}

func NewService(store *Store, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

// Preview assembles a document without persisting anything.
func (s *Service) Preview(record DisclosureRecord) (AssembledDocument, error) {
	return Assemble(Normalize(record))
}

// Create assembles and saves a policy for a user. Premium accounts save
// without limit; free accounts are capped at FreePlanPolicyLimit.
func (s *Service) Create(ctx context.Context, userID string, record DisclosureRecord, premium bool) (Policy, error) {
	record = Normalize(record)
	doc, err := Assemble(record)
	if err != nil {
		return Policy{}, err
	}

	if !premium {
		count, err := s.store.Count(ctx, userID)
		if err != nil {
			return Policy{}, err
		}
		if count >= FreePlanPolicyLimit {
			return Policy{}, ErrPolicyLimit
		}
	}

	recordEnc, documentEnc, err := s.seal(record, doc.Text)
	if err != nil {
		return Policy{}, err
	}

	id, err := s.store.Insert(ctx, userID, record.BusinessName, recordEnc, documentEnc)
	if err != nil {
		return Policy{}, err
	}
	return s.Get(ctx, userID, id)
}

// Update replaces a saved policy's record and regenerates its document.
func (s *Service) Update(ctx context.Context, userID, policyID string, record DisclosureRecord) (Policy, error) {
	record = Normalize(record)
	doc, err := Assemble(record)
	if err != nil {
		return Policy{}, err
	}

	recordEnc, documentEnc, err := s.seal(record, doc.Text)
	if err != nil {
		return Policy{}, err
	}

	if err := s.store.Update(ctx, userID, policyID, record.BusinessName, recordEnc, documentEnc); err != nil {
		return Policy{}, err
	}
	return s.Get(ctx, userID, policyID)
}

func (s *Service) Get(ctx context.Context, userID, policyID string) (Policy, error) {
	stored, err := s.store.Get(ctx, userID, policyID)
	if err != nil {
		return Policy{}, err
	}

	recordJSON, err := s.crypto.Decrypt(stored.RecordEnc)
	if err != nil {
		return Policy{}, err
	}
	document, err := s.crypto.DecryptString(stored.DocumentEnc)
	if err != nil {
		return Policy{}, err
	}

	var record DisclosureRecord
	if err := json.Unmarshal(recordJSON, &record); err != nil {
		return Policy{}, err
	}

	return Policy{
		ID:        stored.ID,
		UserID:    stored.UserID,
		Name:      stored.Name,
		Record:    record,
		Document:  document,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]PolicySummary, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func (s *Service) Delete(ctx context.Context, userID, policyID string) error {
	return s.store.Delete(ctx, userID, policyID)
}

func (s *Service) seal(record DisclosureRecord, document string) (recordEnc, documentEnc []byte, err error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, nil, err
	}
	recordEnc, err = s.crypto.Encrypt(recordJSON)
	if err != nil {
		return nil, nil, err
	}
	documentEnc, err = s.crypto.EncryptString(document)
	if err != nil {
		return nil, nil, err
	}
	return recordEnc, documentEnc, nil
}
