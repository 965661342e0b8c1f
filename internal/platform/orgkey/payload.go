// Package orgkey implements per-organization envelope encryption for form
// data at rest. One 256-bit AES-GCM key per organization is derived from a
// master secret, fetched over an authenticated channel, held only in process
// memory, and used to seal whole form documents into prefixed base64
// payloads. Stored data co-exists in three representations (encrypted
// string, plaintext object, legacy plaintext JSON string) and decryption
// dispatches across all three without data loss.
package orgkey

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// PayloadPrefix marks org-level ciphertext. The settings layer uses the
// similarly named "devenc:v1:" prefix for device-scoped values; the two
// scopes are distinct keys and must never be conflated.
const PayloadPrefix = "orgenc:v1:"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// NonceSize is the GCM nonce length in bytes (96 bits).
const NonceSize = 12

// payloadKind classifies a stored value before decrypt dispatch, so the
// three-representation handling is a single exhaustive switch rather than
// type checks scattered through the decrypt body.
type payloadKind int

const (
	// kindObject: not a string at all; already-plain stored data.
	kindObject payloadKind = iota
	// kindCiphertext: string carrying the org payload prefix.
	kindCiphertext
	// kindLegacy: any other string; plaintext JSON written before
	// encryption existed.
	kindLegacy
)

func classifyPayload(v any) (payloadKind, string) {
	s, ok := v.(string)
	if !ok {
		return kindObject, ""
	}
	if strings.HasPrefix(s, PayloadPrefix) {
		return kindCiphertext, s
	}
	return kindLegacy, s
}

// IsEncrypted reports whether v is an org-level encrypted payload: a string
// beginning with PayloadPrefix. Every non-string value, including nil, is
// false, as is any string carrying a different prefix.
func IsEncrypted(v any) bool {
	kind, _ := classifyPayload(v)
	return kind == kindCiphertext
}

// newAEAD builds the AES-256-GCM primitive for a raw key. The returned
// cipher.AEAD is stateless per operation and safe for concurrent use.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("org key: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("org key: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("org key: create GCM: %w", err)
	}
	return aead, nil
}

// seal encrypts plaintext under aead with a fresh random nonce and returns
// the prefixed base64 payload. The nonce is drawn from crypto/rand on every
// call; two calls on identical plaintext produce different payloads.
func seal(aead cipher.AEAD, plaintext []byte) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("org encrypt: generate nonce: %w", err)
	}
	// Seal appends ciphertext to nonce, so the result is nonce + ciphertext.
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return PayloadPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// open strips the prefix, base64-decodes, splits off the 12-byte nonce and
// authenticates/decrypts the remainder.
func open(aead cipher.AEAD, payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, PayloadPrefix))
	if err != nil {
		return nil, fmt.Errorf("org decrypt: base64 decode: %w", err)
	}
	if len(raw) < NonceSize {
		return nil, fmt.Errorf("org decrypt: payload too short")
	}
	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("org decrypt: %w", err)
	}
	return plaintext, nil
}
