package orgkey

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// fetchTimeout bounds the key service round trip. A timeout is an ordinary
// fetch failure and triggers the manager's graceful-degradation path.
const fetchTimeout = 5 * time.Second

// keyEnvelope is the key service response body.
type keyEnvelope struct {
	OK    bool   `json:"ok"`
	Data  *struct {
		Key string `json:"key"`
	} `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client fetches org key material from the key derivation service over an
// authenticated channel.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a key service client. token is the bearer credential
// presented on every request; an empty token or baseURL makes every fetch
// fail, which the manager treats as graceful degradation.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// FetchOrgKey requests the raw 32-byte key for orgID.
func (c *Client) FetchOrgKey(ctx context.Context, orgID string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("org key client: service URL not configured")
	}
	if c.token == "" {
		return nil, fmt.Errorf("org key client: auth token not configured")
	}

	u := fmt.Sprintf("%s/api/admin/org-key?org=%s", c.baseURL, url.QueryEscape(orgID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("org key client: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("org key client: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("org key client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("org key client: status %d", resp.StatusCode)
	}

	var envelope keyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("org key client: parse response: %w", err)
	}
	if !envelope.OK || envelope.Data == nil || envelope.Data.Key == "" {
		if envelope.Error != "" {
			return nil, fmt.Errorf("org key client: service error: %s", envelope.Error)
		}
		return nil, fmt.Errorf("org key client: malformed response")
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Data.Key)
	if err != nil {
		return nil, fmt.Errorf("org key client: decode key: %w", err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("org key client: key must be %d bytes, got %d", KeySize, len(raw))
	}
	return raw, nil
}
