package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError represents a non-2xx response from the sync backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("sync backend error: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("sync backend error: %s (%d)", e.Code, e.Status)
	}
	if e.Message != "" {
		return fmt.Sprintf("sync backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("sync backend error (%d)", e.Status)
}

type apiErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the remote clipboard record service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a client for the backend at baseURL.
func NewClient(baseURL string) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: normalized,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// NormalizeBaseURL normalizes a backend base URL and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("sync url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid sync url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("sync url must include scheme (https://)")
	}
	value = strings.TrimRight(value, "/")
	return value, nil
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Reachable probes the backend health endpoint. Best-effort: any transport
// error or non-2xx status counts as unreachable.
func (c *Client) Reachable(ctx context.Context) bool {
	endpoint, err := c.buildURL("/v1/health", nil)
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// UpsertItems uploads records, upserting by id.
func (c *Client) UpsertItems(ctx context.Context, records []Record) error {
	req := upsertRequest{Items: records}
	return c.doJSON(ctx, http.MethodPost, "/v1/clipboard/items", nil, req, nil)
}

// FetchItems downloads the full record collection for the user, ordered by
// remote timestamp descending.
func (c *Client) FetchItems(ctx context.Context, userID string) ([]Record, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	var resp fetchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clipboard/items", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteItems removes the given record ids from the backend.
func (c *Client) DeleteItems(ctx context.Context, ids []string) error {
	req := deleteRequest{IDs: ids}
	return c.doJSON(ctx, http.MethodPost, "/v1/clipboard/items/delete", nil, req, nil)
}

// RegisterDevice upserts device registration info, keyed by device id.
func (c *Client) RegisterDevice(ctx context.Context, info DeviceInfo) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/devices", nil, info, nil)
}

// LogSyncEvent records a sync-history audit entry.
func (c *Client) LogSyncEvent(ctx context.Context, event SyncEvent) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/sync-events", nil, event, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, respBody any) error {
	endpoint, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload apiErrorPayload
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return apiErr
	}

	if respBody == nil {
		return nil
	}
	if len(respData) == 0 {
		return nil
	}
	return json.Unmarshal(respData, respBody)
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	endpoint := base.ResolveReference(ref)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}
