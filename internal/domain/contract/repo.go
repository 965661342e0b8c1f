package contract

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no contract exists for an id.
var ErrNotFound = errors.New("contract not found")

// Record is a stored contract row. Payload holds the stored representation:
// an org-encrypted payload string or plaintext JSON from before encryption.
type Record struct {
	ID         uuid.UUID `json:"id"`
	OrgID      string    `json:"org_id"`
	ClientName string    `json:"client_name"`
	Payload    string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository persists contract records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOrg(ctx context.Context, orgID string) ([]*Record, error)
}
