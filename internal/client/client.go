// Package client calls the hotel search API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alex-user-go/hotelsearch/internal/response"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

const (
	locationsPath = "/api/v1/locations/search"
	hotelsPath    = "/api/v1/hotels/search"
)

// SearchRequest is the body of a hotel search.
type SearchRequest struct {
	Location   types.Location    `json:"location"`
	CheckIn    string            `json:"checkIn"`
	CheckOut   string            `json:"checkOut"`
	Adults     int               `json:"adults"`
	Radius     int               `json:"radius"`
	Page       int               `json:"page"`
	Ratings    []string          `json:"ratings,omitempty"`
	PriceRange *types.PriceRange `json:"priceRange,omitempty"`
	SortBy     string            `json:"sortBy,omitempty"`
}

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Body       response.ErrorResponse
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("server returned %d", e.StatusCode)
	if e.Body.Error != "" {
		msg += ": " + e.Body.Error
	}
	if e.Body.Code != "" {
		msg += " (" + e.Body.Code + ")"
	}
	if e.Body.Details != "" {
		msg += ": " + e.Body.Details
	}
	return msg
}

// Client talks to one API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Locations returns autocomplete candidates for keyword.
func (c *Client) Locations(ctx context.Context, keyword string) ([]types.Location, error) {
	u := c.baseURL + locationsPath + "?" + url.Values{"keyword": {keyword}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out []types.Location
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search runs a hotel search.
func (c *Client) Search(ctx context.Context, sr SearchRequest) (*types.Result, error) {
	body, err := json.Marshal(sr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+hotelsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out types.Result
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = json.Unmarshal(b, &apiErr.Body)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
