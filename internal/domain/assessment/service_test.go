package assessment

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sushil-negi/intake-automation-sub003/internal/platform/orgkey"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/phi"
)

type staticFetcher struct{ key []byte }

func (f staticFetcher) FetchOrgKey(_ context.Context, _ string) ([]byte, error) {
	return f.key, nil
}

func newTestService(t *testing.T, withKey bool) (*Service, *orgkey.Manager) {
	t.Helper()
	keys := orgkey.NewManager(staticFetcher{key: bytes.Repeat([]byte{0x42}, orgkey.KeySize)}, zerolog.Nop())
	if withKey {
		keys.FetchKey(context.Background(), "org-a")
		if !keys.HasKey() {
			t.Fatal("test key did not load")
		}
	}
	return NewService(NewMemRepo(), keys, zerolog.Nop()), keys
}

func sampleDoc() map[string]any {
	return map[string]any{
		"clientInfo": map[string]any{
			"name":           "Jane Doe",
			"address":        "12 Oak St",
			"phone":          "555-0100",
			"ssn":            "123-45-6789",
			"assessmentDate": "2025-06-01",
		},
		"medical": map[string]any{
			"primaryDiagnosis": "Hypertension",
		},
	}
}

func TestServiceSaveAndGet(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "org-a", sampleDoc())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ClientName != "Jane Doe" {
		t.Fatalf("clientName = %q", rec.ClientName)
	}
	if !orgkey.IsEncrypted(rec.Payload) {
		t.Fatal("payload should be encrypted at rest when a key is resident")
	}
	if strings.Contains(rec.Payload, "Jane Doe") || strings.Contains(rec.Payload, "123-45-6789") {
		t.Fatal("stored payload leaks plaintext")
	}

	doc, got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("record id mismatch")
	}
	info := doc["clientInfo"].(map[string]any)
	if info["name"] != "Jane Doe" {
		t.Fatalf("decrypted doc = %+v", doc)
	}
}

func TestServiceSaveRejectsWrongShape(t *testing.T) {
	svc, _ := newTestService(t, true)
	_, err := svc.Save(context.Background(), "org-a", map[string]any{"serviceInfo": map[string]any{}})
	if err == nil || !strings.Contains(err.Error(), "clientInfo") {
		t.Fatalf("err = %v", err)
	}
}

func TestServiceDegradedSaveStoresPlaintext(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "org-a", sampleDoc())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if orgkey.IsEncrypted(rec.Payload) {
		t.Fatal("no key was resident, payload should be plaintext JSON")
	}

	doc, _, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	info := doc["clientInfo"].(map[string]any)
	if info["name"] != "Jane Doe" {
		t.Fatalf("legacy decode failed: %+v", doc)
	}
}

func TestServiceGetEncryptedWithoutKey(t *testing.T) {
	svc, keys := newTestService(t, true)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "org-a", sampleDoc())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	keys.ClearKey()
	_, _, err = svc.Get(ctx, rec.ID)
	if !errors.Is(err, orgkey.ErrKeyUnavailable) {
		t.Fatalf("err = %v, want ErrKeyUnavailable", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "org-a", sampleDoc())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	doc := sampleDoc()
	doc["clientInfo"].(map[string]any)["name"] = "Jane Smith"
	updated, err := svc.Update(ctx, rec.ID, doc)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ClientName != "Jane Smith" {
		t.Fatalf("clientName = %q", updated.ClientName)
	}

	got, _, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["clientInfo"].(map[string]any)["name"] != "Jane Smith" {
		t.Fatalf("doc = %+v", got)
	}
}

func TestServiceDelete(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "org-a", sampleDoc())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestServiceExport(t *testing.T) {
	svc, keys := newTestService(t, true)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "org-a", sampleDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	other := sampleDoc()
	other["clientInfo"].(map[string]any)["name"] = "John Roe"
	if _, err := svc.Save(ctx, "org-b", other); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Run("rows are flattened and filtered", func(t *testing.T) {
		policy := phi.AllowAll()
		policy.IncludeNames = false
		rows, err := svc.Export(ctx, "org-a", policy)
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want only org-a's", len(rows))
		}
		if _, ok := rows[0]["clientName"]; ok {
			t.Fatal("names were disabled but clientName survived")
		}
		if _, ok := rows[0]["clientSSN"]; ok {
			t.Fatal("ssn is never exported")
		}
		if rows[0]["primaryDiagnosis"] != "Hypertension" {
			t.Fatalf("row = %+v", rows[0])
		}
	})

	t.Run("undecryptable record fails the export", func(t *testing.T) {
		keys.ClearKey()
		if _, err := svc.Export(ctx, "org-a", phi.AllowAll()); !errors.Is(err, orgkey.ErrKeyUnavailable) {
			t.Fatalf("err = %v, want ErrKeyUnavailable", err)
		}
	})
}
