package watchsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a typed HTTP client for the watch service API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UpdateStatus posts a presence change and returns the service's envelope.
// A non-2xx status is not an error here; callers inspect SimpleResponse.
func (c *Client) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (SimpleResponse, error) {
	var out SimpleResponse
	err := c.post(ctx, "/status", req, &out)
	return out, err
}

// GetStatus fetches the presence view for a user.
func (c *Client) GetStatus(ctx context.Context, userID int64) (StatusResponse, error) {
	var out StatusResponse
	err := c.get(ctx, "/status", userID, &out)
	return out, err
}

// SetContact designates the emergency contact for a user.
func (c *Client) SetContact(ctx context.Context, userID int64, contact string) (SimpleResponse, error) {
	var out SimpleResponse
	err := c.post(ctx, "/contact", UpdateContactRequest{UserID: userID, Contact: contact}, &out)
	return out, err
}

// GetContact fetches the designated emergency contact handle.
func (c *Client) GetContact(ctx context.Context, userID int64) (ContactResponse, error) {
	var out ContactResponse
	err := c.get(ctx, "/contact", userID, &out)
	return out, err
}

// SetTimer configures the away timeout in seconds.
func (c *Client) SetTimer(ctx context.Context, userID int64, seconds int) (SimpleResponse, error) {
	var out SimpleResponse
	err := c.post(ctx, "/timer", UpdateTimerRequest{UserID: userID, TimerSeconds: seconds}, &out)
	return out, err
}

// GetTimer fetches the configured away timeout.
func (c *Client) GetTimer(ctx context.Context, userID int64) (TimerResponse, error) {
	var out TimerResponse
	err := c.get(ctx, "/timer", userID, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, userID int64, out any) error {
	q := url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
