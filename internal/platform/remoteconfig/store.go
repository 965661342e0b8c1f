package remoteconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// devicePayloadPrefix marks device-scoped encrypted values in local
// storage. It is a different encryption scope from the org-level
// "orgenc:v1:" prefix and the two must never be conflated: a device
// payload is not decryptable with an org key and vice versa.
const devicePayloadPrefix = "devenc:v1:"

// IsDeviceEncrypted reports whether v is a device-scoped encrypted value.
func IsDeviceEncrypted(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, devicePayloadPrefix)
}

// LocalStore persists device-local settings.
type LocalStore interface {
	Load() (StoredSettings, error)
	Save(s StoredSettings) error
}

// FileStore is a JSON-file LocalStore.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at path. A missing file loads as zero
// settings, not an error.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (StoredSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var s StoredSettings
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("load local settings: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return StoredSettings{}, fmt.Errorf("parse local settings: %w", err)
	}
	return s, nil
}

func (f *FileStore) Save(s StoredSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local settings: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("write local settings: %w", err)
	}
	return nil
}
