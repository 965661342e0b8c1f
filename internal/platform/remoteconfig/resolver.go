package remoteconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"
)

// resolveTimeout bounds the shared-settings fetch. A slow server must not
// stall the user flow; timeout is an ordinary failure.
const resolveTimeout = 3 * time.Second

// Resolver merges remote shared settings with device-local settings.
type Resolver struct {
	url    string
	store  LocalStore
	http   *http.Client
	logger zerolog.Logger
}

// NewResolver creates a Resolver. An empty url disables remote fetching
// entirely; resolution is then always local.
func NewResolver(url string, store LocalStore, logger zerolog.Logger) *Resolver {
	return &Resolver{
		url:    url,
		store:  store,
		http:   &http.Client{Timeout: resolveTimeout},
		logger: logger,
	}
}

// Resolve returns the effective settings. Shared fields come from the
// remote document when the fetch succeeds and carries the expected shape
// marker; otherwise from local storage. Device fields always come from
// local storage. Resolve never fails; every failure path degrades to the
// local settings with Source set to "local".
func (r *Resolver) Resolve(ctx context.Context) Settings {
	local, err := r.store.Load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("local settings unreadable, using defaults")
		local = StoredSettings{}
	}

	shared, err := r.fetchShared(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("shared settings fetch failed, falling back to local")
		return Settings{
			SharedSettings: local.Shared,
			DeviceSettings: local.Device,
			Source:         SourceLocal,
		}
	}

	return Settings{
		SharedSettings: *shared,
		DeviceSettings: local.Device,
		Source:         SourceRemote,
	}
}

// ExportPolicy returns the resolved export privacy policy.
func (r *Resolver) ExportPolicy(ctx context.Context) phi.ExportConfig {
	return r.Resolve(ctx).ExportPrivacy
}

func (r *Resolver) fetchShared(ctx context.Context) (*SharedSettings, error) {
	if r.url == "" {
		return nil, fmt.Errorf("shared settings URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var doc remoteDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if doc.Meta.Source != sharedSourceMarker {
		return nil, fmt.Errorf("unexpected document source %q", doc.Meta.Source)
	}
	return &doc.SharedSettings, nil
}
