// Package remoteconfig resolves the organization's settings by merging the
// server-distributed shared settings document with device-local settings.
// The resolver fails open: any fetch failure, timeout, or shape mismatch
// falls back to the locally persisted settings, and per-device fields are
// never taken from the remote document even when the fetch succeeds.
package remoteconfig

import "github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"

// SourceRemote and SourceLocal label where the resolved shared settings
// came from.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// sharedSourceMarker is the required shape marker on the remote document.
// A response without it is treated as invalid regardless of HTTP status.
const sharedSourceMarker = "netlify"

// SharedSettings are org-wide fields distributed by the server.
type SharedSettings struct {
	OrgName       string           `json:"orgName"`
	ExportPrivacy phi.ExportConfig `json:"exportPrivacy"`
	SyncEnabled   bool             `json:"syncEnabled"`
	SpreadsheetID string           `json:"spreadsheetId"`
}

// DeviceSettings are per-device fields: tokens, sync bookkeeping, and
// local-only privacy preferences. They always come from local storage.
type DeviceSettings struct {
	DeviceToken      string `json:"deviceToken"`
	LastSyncAt       string `json:"lastSyncAt"`
	LocalPrivacyLock bool   `json:"localPrivacyLock"`
}

// StoredSettings is the on-device persisted form.
type StoredSettings struct {
	Shared SharedSettings `json:"shared"`
	Device DeviceSettings `json:"device"`
}

// Settings is the resolved view handed to the application.
type Settings struct {
	SharedSettings
	DeviceSettings
	Source string `json:"source"`
}

// remoteDocument is the shared-settings wire shape.
type remoteDocument struct {
	Meta struct {
		Source string `json:"source"`
	} `json:"_meta"`
	SharedSettings
}
