package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/alex-user-go/hotelsearch/internal/obs"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

const (
	locationsPath   = "/v1/reference-data/locations"
	hotelOffersPath = "/v3/shopping/hotel-offers"

	subTypeCity = "CITY"
)

// Client calls the provider's reference-data and shopping endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	metrics    *obs.Metrics
	logger     *slog.Logger
}

// NewClient creates a new Client. The token manager is shared with any
// other component talking to the same provider.
func NewClient(baseURL string, httpClient *http.Client, tokens *TokenManager, metrics *obs.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		metrics:    metrics,
		logger:     logger,
	}
}

// LocationsQuery is the query of the city search endpoint.
type LocationsQuery struct {
	Keyword string `url:"keyword"`
	SubType string `url:"subType"`
	Limit   int    `url:"page[limit],omitempty"`
}

// OffersQuery is the query of the hotel-offers search endpoint.
type OffersQuery struct {
	CityCode     string   `url:"cityCode"`
	RoomQuantity int      `url:"roomQuantity"`
	Adults       int      `url:"adults"`
	CheckInDate  string   `url:"checkInDate"`
	CheckOutDate string   `url:"checkOutDate"`
	PriceRange   string   `url:"priceRange,omitempty"`
	Currency     string   `url:"currency"`
	Ratings      []string `url:"ratings,comma,omitempty"`
	BestRateOnly bool     `url:"bestRateOnly"`
	Radius       int      `url:"radius"`
	RadiusUnit   string   `url:"radiusUnit"`
	HotelSource  string   `url:"hotelSource"`
	Lang         string   `url:"lang"`
}

type locationRecord struct {
	Type     string `json:"type"`
	SubType  string `json:"subType"`
	Name     string `json:"name"`
	IATACode string `json:"iataCode"`
	Address  struct {
		CityName    string `json:"cityName"`
		CountryName string `json:"countryName"`
		CountryCode string `json:"countryCode"`
	} `json:"address"`
}

// SearchLocations returns cities matching keyword, at most limit of them.
func (c *Client) SearchLocations(ctx context.Context, keyword string, limit int) ([]types.Location, error) {
	c.metrics.IncLocationLookups()

	var body struct {
		Data []locationRecord `json:"data"`
	}
	q := LocationsQuery{Keyword: keyword, SubType: subTypeCity, Limit: limit}
	if err := c.get(ctx, locationsPath, q, &body); err != nil {
		return nil, err
	}

	locations := make([]types.Location, 0, len(body.Data))
	for _, rec := range body.Data {
		if rec.SubType != subTypeCity {
			continue
		}
		cityName := rec.Address.CityName
		if cityName == "" {
			cityName = rec.Name
		}
		locations = append(locations, types.Location{
			Name:     rec.Name,
			CityName: cityName,
			Country:  rec.Address.CountryName,
			CityCode: rec.IATACode,
		})
	}
	return locations, nil
}

// SearchHotelOffers returns all hotel offers the provider has for q.
func (c *Client) SearchHotelOffers(ctx context.Context, q OffersQuery) ([]types.HotelOffer, error) {
	var body struct {
		Data []types.HotelOffer `json:"data"`
	}
	if err := c.get(ctx, hotelOffersPath, q, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return []types.HotelOffer{}, nil
	}
	return body.Data, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
// A 401 clears the cached token; the call is not retried.
func (c *Client) get(ctx context.Context, path string, params any, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	values, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("provider request", "path", path, "query", u.RawQuery)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncProviderErrors()
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
		c.metrics.IncAuthFailures()
		c.logger.Warn("provider rejected access token, cache cleared", "path", path)
		return fmt.Errorf("%w: %s returned status 401", ErrAuth, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.IncProviderErrors()
		apiErr := newAPIError(path, resp.StatusCode, body)
		c.logger.Error("provider returned error",
			"path", path,
			"status", resp.StatusCode,
			"detail", apiErr.Detail,
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.IncProviderErrors()
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
