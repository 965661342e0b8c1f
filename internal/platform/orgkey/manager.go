package orgkey

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrKeyUnavailable is returned by Decrypt when asked to open an encrypted
// payload with no resident key. Callers must treat it as "re-authenticate or
// re-fetch the key", never as "treat the payload as plaintext".
var ErrKeyUnavailable = errors.New("org encryption key not available")

// KeyFetcher retrieves raw key material for an organization from the key
// derivation service.
type KeyFetcher interface {
	FetchOrgKey(ctx context.Context, orgID string) ([]byte, error)
}

// Manager holds the resident per-organization key and exposes encrypt and
// decrypt over arbitrary JSON-able values. At most one key is resident at a
// time; it lives only in process memory and is cleared on logout or session
// end. A single Manager is shared process-wide and is safe for concurrent
// use: each Encrypt/Decrypt snapshots the resident AEAD handle at call
// start and runs to completion with that snapshot, and every encryption
// draws its own fresh nonce.
type Manager struct {
	mu     sync.RWMutex
	aead   cipher.AEAD
	orgID  string
	client KeyFetcher
	logger zerolog.Logger
}

// NewManager creates a Manager in the NoKey state.
func NewManager(client KeyFetcher, logger zerolog.Logger) *Manager {
	return &Manager{client: client, logger: logger}
}

// FetchKey fetches and imports the key for orgID. Fetching again for the
// currently resident org is a no-op. Any failure (fetcher not configured,
// network error, bad key material) leaves the resident state unchanged and
// is logged, not returned: encryption degrades gracefully and the caller
// continues in whatever state it was in.
func (m *Manager) FetchKey(ctx context.Context, orgID string) {
	m.mu.RLock()
	resident := m.aead != nil && m.orgID == orgID
	m.mu.RUnlock()
	if resident {
		return
	}

	if m.client == nil {
		m.logger.Warn().Str("org_id", orgID).Msg("org key fetch skipped: no key service configured")
		return
	}

	raw, err := m.client.FetchOrgKey(ctx, orgID)
	if err != nil {
		m.logger.Warn().Err(err).Str("org_id", orgID).Msg("org key fetch failed, keeping current key state")
		return
	}

	aead, err := newAEAD(raw)
	if err != nil {
		m.logger.Warn().Err(err).Str("org_id", orgID).Msg("org key import failed, keeping current key state")
		return
	}

	m.mu.Lock()
	m.aead = aead
	m.orgID = orgID
	m.mu.Unlock()
	m.logger.Info().Str("org_id", orgID).Msg("org encryption key loaded")
}

// ClearKey unconditionally resets the manager to the NoKey state. Called on
// logout so no key outlives its authenticated session.
func (m *Manager) ClearKey() {
	m.mu.Lock()
	m.aead = nil
	m.orgID = ""
	m.mu.Unlock()
}

// HasKey reports whether a key is resident.
func (m *Manager) HasKey() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aead != nil
}

// OrgID returns the organization the resident key is scoped to, or "" in
// the NoKey state.
func (m *Manager) OrgID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orgID
}

func (m *Manager) snapshot() cipher.AEAD {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aead
}

// Encrypt serialises data to JSON and seals it under the resident key,
// returning the prefixed payload string. With no resident key the input is
// returned unchanged (an object, not a string): callers must handle both
// result shapes. The asymmetry with Decrypt is deliberate: writing degraded
// is always allowed, silently under-decrypting is not.
func (m *Manager) Encrypt(data any) (any, error) {
	aead := m.snapshot()
	if aead == nil {
		return data, nil
	}
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("org encrypt: marshal: %w", err)
	}
	return seal(aead, plaintext)
}

// Decrypt reverses Encrypt across the three stored representations:
//
//  1. Non-string values pass through unchanged (already-plain objects,
//     the pre-encryption migration path).
//  2. Strings with the payload prefix require a resident key; without one
//     Decrypt fails with ErrKeyUnavailable.
//  3. Any other string is parsed as legacy plaintext JSON; a parse failure
//     is logged and yields an empty object rather than an error.
func (m *Manager) Decrypt(payload any) (any, error) {
	kind, s := classifyPayload(payload)
	switch kind {
	case kindObject:
		return payload, nil

	case kindCiphertext:
		aead := m.snapshot()
		if aead == nil {
			return nil, fmt.Errorf("org decrypt: %w", ErrKeyUnavailable)
		}
		plaintext, err := open(aead, s)
		if err != nil {
			return nil, err
		}
		var out any
		if err := json.Unmarshal(plaintext, &out); err != nil {
			return nil, fmt.Errorf("org decrypt: parse plaintext: %w", err)
		}
		return out, nil

	default: // kindLegacy
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			m.logger.Warn().Err(err).Msg("legacy payload is not valid JSON, returning empty object")
			return map[string]any{}, nil
		}
		return out, nil
	}
}
