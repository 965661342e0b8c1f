package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no assessment exists for an id.
var ErrNotFound = errors.New("assessment not found")

// Record is a stored assessment row. Payload holds whatever representation
// the form was written in: an org-encrypted payload string, or plaintext
// JSON for data written before encryption existed.
type Record struct {
	ID         uuid.UUID `json:"id"`
	OrgID      string    `json:"org_id"`
	ClientName string    `json:"client_name"`
	Payload    string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository persists assessment records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOrg(ctx context.Context, orgID string) ([]*Record, error)
}
