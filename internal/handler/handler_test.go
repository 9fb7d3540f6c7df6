package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/hotelsearch/internal/amadeus"
	"github.com/alex-user-go/hotelsearch/internal/amadeus/amadeustest"
	"github.com/alex-user-go/hotelsearch/internal/handler"
	"github.com/alex-user-go/hotelsearch/internal/location"
	"github.com/alex-user-go/hotelsearch/internal/obs"
	"github.com/alex-user-go/hotelsearch/internal/response"
	"github.com/alex-user-go/hotelsearch/internal/search"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

type fixture struct {
	provider *amadeustest.Provider
	tokens   *amadeus.TokenManager
	handler  *handler.Handler
	metrics  *obs.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider := amadeustest.New()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := obs.NewMetrics(logger)
	creds := amadeus.Credentials{ClientID: amadeustest.ClientID, ClientSecret: amadeustest.ClientSecret}
	tokens := amadeus.NewTokenManager(srv.URL, creds, srv.Client(), metrics, logger)
	client := amadeus.NewClient(srv.URL, srv.Client(), tokens, metrics, logger)

	catalog, err := location.DefaultCatalog()
	require.NoError(t, err)
	resolver := location.NewResolver(catalog, client, metrics, logger)
	aggregator := search.NewAggregator(client, search.Options{DefaultCityCode: "AMS"}, logger)

	return &fixture{
		provider: provider,
		tokens:   tokens,
		handler:  handler.New(resolver, aggregator, metrics, logger),
		metrics:  metrics,
	}
}

func (f *fixture) locations(t *testing.T, keyword string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/search?keyword="+keyword, nil)
	rec := httptest.NewRecorder()
	f.handler.SearchLocations(rec, req)
	return rec
}

func (f *fixture) search(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hotels/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.SearchHotels(rec, req)
	return rec
}

type searchResponse struct {
	Data       []json.RawMessage `json:"data"`
	Pagination types.Pagination  `json:"pagination"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

const amsterdamSearch = `{
	"location": {"name": "Amsterdam", "cityName": "Amsterdam", "country": "Netherlands", "cityCode": "AMS"},
	"checkIn": "2026-05-01",
	"checkOut": "2026-05-03",
	"adults": 2,
	"radius": 5,
	"page": %d,
	"sortBy": ""
}`

func amsterdamPage(page int) string {
	return fmt.Sprintf(amsterdamSearch, page)
}

func TestSearchLocations(t *testing.T) {
	tests := []struct {
		name          string
		keyword       string
		wantNames     []string
		wantRemote    int
		wantEmptyBody bool
	}{
		{name: "short keyword", keyword: "a", wantNames: []string{}, wantRemote: 0, wantEmptyBody: true},
		{name: "static city", keyword: "amst", wantNames: []string{"Amsterdam"}, wantRemote: 0},
		{name: "remote city", keyword: "lis", wantNames: []string{"LISBON"}, wantRemote: 1},
		{name: "remote miss", keyword: "zzz", wantNames: []string{}, wantRemote: 1, wantEmptyBody: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.provider.SetCities(amadeustest.City{Name: "LISBON", IATACode: "LIS", CityName: "LISBON", CountryName: "PORTUGAL"})

			rec := f.locations(t, tt.keyword)
			require.Equal(t, http.StatusOK, rec.Code)
			if tt.wantEmptyBody {
				assert.JSONEq(t, `[]`, rec.Body.String())
			}

			var got []types.Location
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			names := make([]string, 0, len(got))
			for _, l := range got {
				names = append(names, l.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantRemote, f.provider.Calls().Locations)
		})
	}
}

func TestSearchLocations_StaticCityHasDistricts(t *testing.T) {
	f := newFixture(t)

	rec := f.locations(t, "Amsterdam")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []types.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "AMS", got[0].CityCode)
	assert.Len(t, got[0].Districts, 5)
}

func TestSearchLocations_ProviderDownIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.provider.FailTokens(http.StatusInternalServerError)

	rec := f.locations(t, "berlin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearchHotels_Pagination(t *testing.T) {
	tests := []struct {
		page      int
		wantItems int
	}{
		{page: 1, wantItems: 10},
		{page: 2, wantItems: 10},
		{page: 3, wantItems: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			f := newFixture(t)
			f.provider.SetHotels(amadeustest.Generate(rand.New(rand.NewSource(1)), "Amsterdam", 23)...)

			rec := f.search(t, amsterdamPage(tt.page))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got searchResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Len(t, got.Data, tt.wantItems)
			assert.Equal(t, types.Pagination{Page: tt.page, TotalPages: 3, TotalResults: 23}, got.Pagination)
			assert.Equal(t, "AMS", f.provider.LastOffersQuery().Get("cityCode"))
		})
	}
}

func TestSearchHotels_SortAndFilters(t *testing.T) {
	f := newFixture(t)
	f.provider.SetHotels(
		amadeustest.Hotel{Name: "Mid", Rating: "3", Total: "50.00"}.JSON(),
		amadeustest.Hotel{Name: "Cheap", Rating: "2", Total: "20.00"}.JSON(),
		amadeustest.Hotel{Name: "Dear", Rating: "5", Total: "80.00"}.JSON(),
	)

	rec := f.search(t, `{
		"location": {"name": "Amsterdam", "cityCode": "AMS"},
		"checkIn": "2026-05-01", "checkOut": "2026-05-02", "adults": 1,
		"ratings": ["4", 5], "priceRange": {"min": 0, "max": 100},
		"sortBy": "price-desc"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Data []types.HotelOffer `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Data, 3)
	assert.Equal(t, "Dear", got.Data[0].Hotel.Name)
	assert.Equal(t, "Mid", got.Data[1].Hotel.Name)
	assert.Equal(t, "Cheap", got.Data[2].Hotel.Name)

	q := f.provider.LastOffersQuery()
	assert.Equal(t, "4,5", q.Get("ratings"))
	assert.Equal(t, "0-100", q.Get("priceRange"))
	assert.Equal(t, "50", q.Get("radius"))
}

func TestSearchHotels_InvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantError   string
		wantDetails string
	}{
		{
			name:        "missing checkIn",
			body:        `{"location": {"name": "Amsterdam"}, "checkOut": "2026-05-03", "adults": 2}`,
			wantError:   "Missing required parameters",
			wantDetails: "checkIn is required",
		},
		{
			name:        "missing adults",
			body:        `{"checkIn": "2026-05-01", "checkOut": "2026-05-03"}`,
			wantError:   "Missing required parameters",
			wantDetails: "adults is required",
		},
		{
			name:        "bad date",
			body:        `{"checkIn": "01/05/2026", "checkOut": "2026-05-03", "adults": 2}`,
			wantError:   "Invalid search parameters",
			wantDetails: "checkIn must be a date in YYYY-MM-DD format",
		},
		{
			name:        "checkOut before checkIn",
			body:        `{"checkIn": "2026-05-03", "checkOut": "2026-05-01", "adults": 2}`,
			wantError:   "Invalid search parameters",
			wantDetails: "checkOut must be after checkIn",
		},
		{
			name:        "rating out of range",
			body:        `{"checkIn": "2026-05-01", "checkOut": "2026-05-03", "adults": 2, "ratings": ["7"]}`,
			wantError:   "Invalid search parameters",
			wantDetails: "ratings must be star levels",
		},
		{
			name:        "inverted price range",
			body:        `{"checkIn": "2026-05-01", "checkOut": "2026-05-03", "adults": 2, "priceRange": {"min": 200, "max": 100}}`,
			wantError:   "Invalid search parameters",
			wantDetails: "priceRange.max must be greater than priceRange.min",
		},
		{
			name:      "malformed json",
			body:      `{"checkIn": `,
			wantError: "Malformed request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.search(t, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, response.CodeInvalidInput, body.Code)
			assert.Contains(t, body.Details, tt.wantDetails)

			calls := f.provider.Calls()
			assert.Zero(t, calls.Offers, "no remote search")
			assert.Zero(t, calls.Token, "no token exchange")
		})
	}
}

func TestSearchHotels_UnauthorizedClearsToken(t *testing.T) {
	f := newFixture(t)
	f.provider.SetHotels(amadeustest.Generate(rand.New(rand.NewSource(2)), "Amsterdam", 3)...)

	rec := f.search(t, amsterdamPage(1))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, f.tokens.State().Token)

	f.provider.RevokeTokens()

	rec = f.search(t, amsterdamPage(1))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Authentication failed. Please try again.", body.Error)
	assert.Equal(t, response.CodeAuth, body.Code)

	assert.Empty(t, f.tokens.State().Token)
	assert.True(t, f.tokens.State().ExpiresAt.IsZero())
	assert.Equal(t, 1, f.provider.Calls().Token, "no automatic retry")

	// The next search exchanges a fresh token and succeeds.
	rec = f.search(t, amsterdamPage(1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, f.provider.Calls().Token)
}

func TestSearchHotels_TokenExchangeFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.FailTokens(http.StatusUnauthorized)

	rec := f.search(t, amsterdamPage(1))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.CodeAuth, decodeError(t, rec).Code)
	assert.Zero(t, f.provider.Calls().Offers)
}

func TestSearchHotels_UpstreamError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		detail      string
		wantDetails string
	}{
		{name: "bad request with detail", status: http.StatusBadRequest, detail: "Invalid date", wantDetails: "Invalid date"},
		{name: "unavailable falls back to title", status: http.StatusServiceUnavailable, wantDetails: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.provider.FailOffers(tt.status, tt.detail)

			rec := f.search(t, amsterdamPage(1))
			require.Equal(t, tt.status, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, "Failed to fetch hotel offers", body.Error)
			assert.Empty(t, body.Code)
			assert.Equal(t, tt.wantDetails, body.Details)
			assert.Equal(t, int64(1), f.metrics.Snapshot().ProviderErrors)
		})
	}
}
