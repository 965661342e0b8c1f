package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"
	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

// Sealer is the subset of the org key manager the service depends on.
// Encrypt may return the input unchanged when no key is resident; the
// service persists whichever representation comes back.
type Sealer interface {
	Encrypt(data any) (any, error)
	Decrypt(payload any) (any, error)
}

// Service stores assessments encrypted at rest and produces privacy-filtered
// flat exports.
type Service struct {
	repo   Repository
	keys   Sealer
	logger zerolog.Logger
}

// NewService creates the assessment service.
func NewService(repo Repository, keys Sealer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, keys: keys, logger: logger}
}

// encode seals the document and renders the stored payload text. When the
// key manager degrades to returning the object unchanged, the plaintext
// JSON serialization is stored instead of ciphertext.
func (s *Service) encode(doc map[string]any) (string, error) {
	sealed, err := s.keys.Encrypt(doc)
	if err != nil {
		return "", fmt.Errorf("encrypt assessment: %w", err)
	}
	if payload, ok := sealed.(string); ok {
		return payload, nil
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return "", fmt.Errorf("encode assessment: %w", err)
	}
	return string(raw), nil
}

// decode reverses encode across all three stored representations.
func (s *Service) decode(payload string) (map[string]any, error) {
	plain, err := s.keys.Decrypt(payload)
	if err != nil {
		return nil, err
	}
	doc, ok := plain.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return doc, nil
}

// clientNameOf pulls the client display name from the document for the
// indexable column. Missing identity yields "".
func clientNameOf(doc map[string]any) string {
	section, _ := doc["clientInfo"].(map[string]any)
	name, _ := section["name"].(string)
	return name
}

// Save validates the document shape, encrypts it and persists a new record.
func (s *Service) Save(ctx context.Context, orgID string, doc map[string]any) (*Record, error) {
	if _, ok := doc["clientInfo"]; !ok {
		return nil, fmt.Errorf("save assessment: document has no clientInfo section")
	}
	payload, err := s.encode(doc)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:         uuid.New(),
		OrgID:      orgID,
		ClientName: clientNameOf(doc),
		Payload:    payload,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get loads and decrypts a stored assessment document.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (map[string]any, *Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.decode(rec.Payload)
	if err != nil {
		return nil, nil, err
	}
	return doc, rec, nil
}

// Update re-encrypts the document under the current key state and stores it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, doc map[string]any) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := s.encode(doc)
	if err != nil {
		return nil, err
	}
	rec.ClientName = clientNameOf(doc)
	rec.Payload = payload
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a stored assessment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List returns the org's assessment records without decrypting payloads.
func (s *Service) List(ctx context.Context, orgID string) ([]*Record, error) {
	return s.repo.ListByOrg(ctx, orgID)
}

// Export decrypts and flattens every assessment for the org and applies the
// export privacy policy to each row. A record that cannot be decrypted or
// flattened fails the whole export rather than silently emitting wrong PHI.
func (s *Service) Export(ctx context.Context, orgID string, policy phi.ExportConfig) ([]flat.Record, error) {
	records, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rows := make([]flat.Record, 0, len(records))
	for _, rec := range records {
		doc, err := s.decode(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("export assessment %s: %w", rec.ID, err)
		}
		row, err := Flatten(doc)
		if err != nil {
			return nil, fmt.Errorf("export assessment %s: %w", rec.ID, err)
		}
		rows = append(rows, phi.ApplyExportFilters(row, policy))
	}
	return rows, nil
}
