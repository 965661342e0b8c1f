package orgkey

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

type stubFetcher struct {
	key   []byte
	err   error
	calls int
}

func (s *stubFetcher) FetchOrgKey(ctx context.Context, orgID string) ([]byte, error) {
	s.calls++
	return s.key, s.err
}

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func loadedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(&stubFetcher{key: testKey()}, zerolog.Nop())
	m.FetchKey(context.Background(), "org-a")
	if !m.HasKey() {
		t.Fatal("manager should hold a key after a successful fetch")
	}
	return m
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	m := loadedManager(t)
	doc := map[string]any{
		"clientInfo": map[string]any{"name": "Jane Doe"},
		"medical":    map[string]any{"allergies": "Penicillin"},
	}

	sealed, err := m.Encrypt(doc)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	payload, ok := sealed.(string)
	if !ok {
		t.Fatalf("encrypted payload should be a string, got %T", sealed)
	}
	if !IsEncrypted(payload) {
		t.Fatalf("payload lacks the prefix: %q", payload[:20])
	}

	got, err := m.Decrypt(payload)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	m := loadedManager(t)
	doc := map[string]any{"name": "Jane Doe"}

	first, err := m.Encrypt(doc)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := m.Encrypt(doc)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if first == second {
		t.Fatal("identical plaintext produced identical payloads")
	}
	for _, payload := range []any{first, second} {
		got, err := m.Decrypt(payload)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !reflect.DeepEqual(got, doc) {
			t.Fatalf("decrypt mismatch: %+v", got)
		}
	}
}

func TestEncryptWithoutKeyReturnsInput(t *testing.T) {
	m := NewManager(nil, zerolog.Nop())
	doc := map[string]any{"name": "Jane Doe"}

	out, err := m.Encrypt(doc)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !reflect.DeepEqual(out, doc) {
		t.Fatalf("degraded encrypt should return the input unchanged, got %+v", out)
	}
	if _, ok := out.(string); ok {
		t.Fatal("degraded encrypt must not produce a string payload")
	}
}

func TestDecryptDispatch(t *testing.T) {
	t.Run("non-string passes through", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop())
		doc := map[string]any{"name": "Jane Doe"}
		out, err := m.Decrypt(doc)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !reflect.DeepEqual(out, doc) {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("prefixed payload without key fails", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop())
		_, err := m.Decrypt(PayloadPrefix + "AAAA")
		if !errors.Is(err, ErrKeyUnavailable) {
			t.Fatalf("err = %v, want ErrKeyUnavailable", err)
		}
	})

	t.Run("legacy plaintext JSON parses", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop())
		out, err := m.Decrypt(`{"name":"Jane Doe"}`)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		doc, ok := out.(map[string]any)
		if !ok || doc["name"] != "Jane Doe" {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("malformed legacy yields empty object", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop())
		out, err := m.Decrypt("not json at all")
		if err != nil {
			t.Fatalf("decrypt must not fail on legacy garbage: %v", err)
		}
		doc, ok := out.(map[string]any)
		if !ok || len(doc) != 0 {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("tampered ciphertext fails authentication", func(t *testing.T) {
		m := loadedManager(t)
		sealed, err := m.Encrypt(map[string]any{"name": "Jane Doe"})
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		payload := sealed.(string)
		tampered := payload[:len(payload)-4] + "AAA="
		if _, err := m.Decrypt(tampered); err == nil {
			t.Fatal("tampered payload decrypted without error")
		}
	})
}

func TestIsEncrypted(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{PayloadPrefix + "abc", true},
		{"devenc:v1:abc", false},
		{`{"name":"Jane"}`, false},
		{"", false},
		{nil, false},
		{42, false},
		{map[string]any{"k": "v"}, false},
	}
	for _, tc := range cases {
		if got := IsEncrypted(tc.value); got != tc.want {
			t.Fatalf("IsEncrypted(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestFetchKey(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat fetch for resident org is a no-op", func(t *testing.T) {
		fetcher := &stubFetcher{key: testKey()}
		m := NewManager(fetcher, zerolog.Nop())
		m.FetchKey(ctx, "org-a")
		m.FetchKey(ctx, "org-a")
		if fetcher.calls != 1 {
			t.Fatalf("fetcher called %d times, want 1", fetcher.calls)
		}
		if m.OrgID() != "org-a" {
			t.Fatalf("orgID = %q", m.OrgID())
		}
	})

	t.Run("switching orgs refetches", func(t *testing.T) {
		fetcher := &stubFetcher{key: testKey()}
		m := NewManager(fetcher, zerolog.Nop())
		m.FetchKey(ctx, "org-a")
		m.FetchKey(ctx, "org-b")
		if fetcher.calls != 2 {
			t.Fatalf("fetcher called %d times, want 2", fetcher.calls)
		}
		if m.OrgID() != "org-b" {
			t.Fatalf("orgID = %q", m.OrgID())
		}
	})

	t.Run("fetch failure keeps current state", func(t *testing.T) {
		m := NewManager(&stubFetcher{key: testKey()}, zerolog.Nop())
		m.FetchKey(ctx, "org-a")

		m.client = &stubFetcher{err: fmt.Errorf("service down")}
		m.FetchKey(ctx, "org-b")
		if m.OrgID() != "org-a" || !m.HasKey() {
			t.Fatalf("failed fetch changed state: org=%q hasKey=%v", m.OrgID(), m.HasKey())
		}
	})

	t.Run("bad key material keeps current state", func(t *testing.T) {
		m := NewManager(&stubFetcher{key: []byte("short")}, zerolog.Nop())
		m.FetchKey(ctx, "org-a")
		if m.HasKey() {
			t.Fatal("truncated key should not be imported")
		}
	})

	t.Run("no fetcher configured degrades silently", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop())
		m.FetchKey(ctx, "org-a")
		if m.HasKey() {
			t.Fatal("manager acquired a key from nowhere")
		}
	})
}

func TestClearKey(t *testing.T) {
	m := loadedManager(t)
	m.ClearKey()
	if m.HasKey() || m.OrgID() != "" {
		t.Fatal("clear did not reset the manager")
	}

	_, err := m.Decrypt(PayloadPrefix + "AAAA")
	if !errors.Is(err, ErrKeyUnavailable) {
		t.Fatalf("decrypt after clear: %v, want ErrKeyUnavailable", err)
	}
}
