// Package fishapi fetches raw fish definitions from the remote mock API.
package fishapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
)

// ErrFetchFailed is returned for any non-success response from the fish API.
var ErrFetchFailed = errors.New("fish could not be loaded")

const (
	DefaultBaseURL = "https://run.mocky.io/v3"
	DefaultPath    = "/e80be173-df55-404b-833b-670e53a4743d"

	// Bodies larger than this fail with ErrFetchFailed.
	maxBodyBytes = 1 << 20
)

// Client talks to the fish API.
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL, path string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if path == "" {
		path = DefaultPath
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       "/" + strings.TrimLeft(path, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint the client fetches.
func (c *Client) URL() string {
	return c.baseURL + c.path
}

// FetchRawFish downloads the fish list. Status != 200, an empty or oversized
// body and undecodable JSON all wrap ErrFetchFailed.
func (c *Client) FetchRawFish(ctx context.Context) ([]fish.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fish request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body too large (over %d bytes)", ErrFetchFailed, maxBodyBytes)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, fmt.Errorf("%w: empty body", ErrFetchFailed)
	}

	var records []fish.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrFetchFailed, err)
	}
	return records, nil
}
