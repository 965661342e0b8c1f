package remoteconfig

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"
)

type memStore struct {
	settings StoredSettings
	err      error
}

func (m *memStore) Load() (StoredSettings, error) { return m.settings, m.err }
func (m *memStore) Save(s StoredSettings) error   { m.settings = s; return nil }

func localFixture() StoredSettings {
	return StoredSettings{
		Shared: SharedSettings{
			OrgName:       "Local Org",
			ExportPrivacy: phi.ExportConfig{IncludeNames: true},
		},
		Device: DeviceSettings{
			DeviceToken:      "device-token-1",
			LastSyncAt:       "2025-08-01T00:00:00Z",
			LocalPrivacyLock: true,
		},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("remote document wins for shared fields", func(t *testing.T) {
		e := echo.New()
		NewHandler(SharedSettings{OrgName: "Remote Org", SyncEnabled: true}).RegisterRoutes(e.Group("/api"))
		srv := httptest.NewServer(e)
		defer srv.Close()

		r := NewResolver(srv.URL+"/api/shared-settings", &memStore{settings: localFixture()}, zerolog.Nop())
		got := r.Resolve(ctx)

		if got.Source != SourceRemote {
			t.Fatalf("source = %q, want remote", got.Source)
		}
		if got.OrgName != "Remote Org" || !got.SyncEnabled {
			t.Fatalf("shared fields not taken from remote: %+v", got.SharedSettings)
		}
		if got.DeviceToken != "device-token-1" || !got.LocalPrivacyLock {
			t.Fatalf("device fields must stay local: %+v", got.DeviceSettings)
		}
	})

	t.Run("http error falls back to local", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		r := NewResolver(srv.URL, &memStore{settings: localFixture()}, zerolog.Nop())
		got := r.Resolve(ctx)
		if got.Source != SourceLocal {
			t.Fatalf("source = %q, want local", got.Source)
		}
		if got.OrgName != "Local Org" {
			t.Fatalf("orgName = %q", got.OrgName)
		}
	})

	t.Run("unreachable server falls back to local", func(t *testing.T) {
		r := NewResolver("http://127.0.0.1:1", &memStore{settings: localFixture()}, zerolog.Nop())
		got := r.Resolve(ctx)
		if got.Source != SourceLocal || got.OrgName != "Local Org" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("document without the shape marker is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"_meta":{"source":"somewhere-else"},"orgName":"Imposter Org"}`))
		}))
		defer srv.Close()

		r := NewResolver(srv.URL, &memStore{settings: localFixture()}, zerolog.Nop())
		got := r.Resolve(ctx)
		if got.Source != SourceLocal {
			t.Fatalf("source = %q, want local for an unmarked document", got.Source)
		}
		if got.OrgName != "Local Org" {
			t.Fatalf("imposter document was trusted: %q", got.OrgName)
		}
	})

	t.Run("no url configured resolves locally", func(t *testing.T) {
		r := NewResolver("", &memStore{settings: localFixture()}, zerolog.Nop())
		got := r.Resolve(ctx)
		if got.Source != SourceLocal || got.OrgName != "Local Org" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("unreadable local store degrades to defaults", func(t *testing.T) {
		r := NewResolver("", &memStore{err: context.DeadlineExceeded}, zerolog.Nop())
		got := r.Resolve(ctx)
		if got.Source != SourceLocal || got.OrgName != "" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestExportPolicy(t *testing.T) {
	local := localFixture()
	r := NewResolver("", &memStore{settings: local}, zerolog.Nop())
	policy := r.ExportPolicy(context.Background())
	if !policy.IncludeNames {
		t.Fatalf("policy = %+v, want the locally stored privacy config", policy)
	}
}

func TestIsDeviceEncrypted(t *testing.T) {
	if !IsDeviceEncrypted("devenc:v1:abc") {
		t.Fatal("device payload not recognized")
	}
	for _, v := range []any{"orgenc:v1:abc", "plain", nil, 42} {
		if IsDeviceEncrypted(v) {
			t.Fatalf("IsDeviceEncrypted(%v) = true", v)
		}
	}
}
