package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebAppClient talks to a spreadsheet web app exposing one URL:
// GET returns both row sets, POST replaces them.
type WebAppClient struct {
	url        string
	httpClient *http.Client
	codec      *Codec
}

type webAppPayload struct {
	Appointments [][]any `json:"appointments"`
	Masseurs     [][]any `json:"masseurs"`
}

type webAppResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewWebAppClient(url string, timeout time.Duration, codec *Codec) *WebAppClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebAppClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		codec:      codec,
	}
}

func (c *WebAppClient) Pull(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteSync, err)
	}

	var payload webAppPayload
	if err := c.do(req, &payload); err != nil {
		return nil, fmt.Errorf("%w: pull: %v", ErrRemoteSync, err)
	}

	return &Snapshot{
		Bookings:  c.codec.DecodeBookings(payload.Appointments),
		Providers: c.codec.DecodeProviders(payload.Masseurs),
	}, nil
}

func (c *WebAppClient) Push(ctx context.Context, snap Snapshot) error {
	payload := webAppPayload{
		Appointments: c.codec.EncodeBookings(snap.Bookings, snap.Providers),
		Masseurs:     c.codec.EncodeProviders(snap.Providers),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrRemoteSync, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteSync, err)
	}
	// The script host does not answer preflight requests.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	var result webAppResult
	if err := c.do(req, &result); err != nil {
		return fmt.Errorf("%w: push: %v", ErrRemoteSync, err)
	}
	if result.Status != "success" {
		return fmt.Errorf("%w: push: remote status %q %s", ErrRemoteSync, result.Status, result.Message)
	}
	return nil
}

func (c *WebAppClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
