// Package amadeustest provides an in-process fake of the provider endpoints
// used by this service: token exchange, city search and hotel offers.
package amadeustest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default credentials accepted by a new Provider.
const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
)

// City is a record served by the locations endpoint.
type City struct {
	Name        string
	IATACode    string
	CityName    string
	CountryName string
	SubType     string
}

// Calls counts requests per endpoint.
type Calls struct {
	Token     int
	Locations int
	Offers    int
}

// Provider is an http.Handler imitating the provider API.
type Provider struct {
	mu sync.Mutex

	clientID     string
	clientSecret string
	tokenTTL     time.Duration
	issued       int
	valid        map[string]bool

	cities        []City
	hotels        []json.RawMessage
	offersFunc    func(q url.Values) []json.RawMessage
	offersStatus  int
	offersDetail  string
	tokenStatus   int
	lastOffers    url.Values
	lastLocations url.Values
	calls         Calls
}

// New creates a Provider with default credentials and a 30 minute token TTL.
func New() *Provider {
	return &Provider{
		clientID:     ClientID,
		clientSecret: ClientSecret,
		tokenTTL:     30 * time.Minute,
		valid:        make(map[string]bool),
	}
}

// SetCredentials changes the accepted client id and secret.
func (p *Provider) SetCredentials(clientID, clientSecret string) {
	p.mu.Lock()
	p.clientID = clientID
	p.clientSecret = clientSecret
	p.mu.Unlock()
}

// SetTokenTTL changes the expires_in of issued tokens.
func (p *Provider) SetTokenTTL(ttl time.Duration) {
	p.mu.Lock()
	p.tokenTTL = ttl
	p.mu.Unlock()
}

// SetCities replaces the cities served by the locations endpoint.
func (p *Provider) SetCities(cities ...City) {
	p.mu.Lock()
	p.cities = cities
	p.mu.Unlock()
}

// SetHotels replaces the hotel offers returned by the offers endpoint.
func (p *Provider) SetHotels(hotels ...json.RawMessage) {
	p.mu.Lock()
	p.hotels = hotels
	p.mu.Unlock()
}

// SetOffersFunc makes the offers endpoint answer with fn(query) instead of
// the fixed hotel list. fn runs under the provider lock.
func (p *Provider) SetOffersFunc(fn func(q url.Values) []json.RawMessage) {
	p.mu.Lock()
	p.offersFunc = fn
	p.mu.Unlock()
}

// FailOffers makes the offers endpoint answer with status and an error
// payload carrying detail. A zero status restores normal behaviour.
func (p *Provider) FailOffers(status int, detail string) {
	p.mu.Lock()
	p.offersStatus = status
	p.offersDetail = detail
	p.mu.Unlock()
}

// FailTokens makes the token endpoint answer with status.
func (p *Provider) FailTokens(status int) {
	p.mu.Lock()
	p.tokenStatus = status
	p.mu.Unlock()
}

// RevokeTokens invalidates every token issued so far.
func (p *Provider) RevokeTokens() {
	p.mu.Lock()
	p.valid = make(map[string]bool)
	p.mu.Unlock()
}

// Calls returns the request counters.
func (p *Provider) Calls() Calls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastOffersQuery returns the query of the most recent offers request.
func (p *Provider) LastOffersQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOffers
}

// LastLocationsQuery returns the query of the most recent locations request.
func (p *Provider) LastLocationsQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLocations
}

// ServeHTTP routes to the fake endpoints.
func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/security/oauth2/token":
		p.serveToken(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/reference-data/locations":
		p.serveLocations(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/v3/shopping/hotel-offers":
		p.serveOffers(w, r)
	default:
		writeErrors(w, http.StatusNotFound, "Resource not found")
	}
}

func (p *Provider) serveToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Token++

	if p.tokenStatus != 0 {
		writeErrors(w, p.tokenStatus, "token endpoint unavailable")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid form")
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" ||
		r.PostForm.Get("client_id") != p.clientID ||
		r.PostForm.Get("client_secret") != p.clientSecret {
		writeErrors(w, http.StatusUnauthorized, "Client credentials are invalid")
		return
	}

	p.issued++
	token := fmt.Sprintf("token-%d", p.issued)
	p.valid[token] = true

	writeJSON(w, http.StatusOK, map[string]any{
		"type":         "amadeusOAuth2Token",
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(p.tokenTTL / time.Second),
		"state":        "approved",
	})
}

// authorized must be called with p.mu held.
func (p *Provider) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && p.valid[token]
}

func (p *Provider) serveLocations(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Locations++
	p.lastLocations = r.URL.Query()

	if !p.authorized(r) {
		writeErrors(w, http.StatusUnauthorized, "Access token expired")
		return
	}

	keyword := strings.ToLower(r.URL.Query().Get("keyword"))
	data := make([]map[string]any, 0)
	for _, c := range p.cities {
		if !strings.Contains(strings.ToLower(c.Name), keyword) {
			continue
		}
		subType := c.SubType
		if subType == "" {
			subType = "CITY"
		}
		data = append(data, map[string]any{
			"type":     "location",
			"subType":  subType,
			"name":     c.Name,
			"iataCode": c.IATACode,
			"address": map[string]any{
				"cityName":    c.CityName,
				"countryName": c.CountryName,
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (p *Provider) serveOffers(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Offers++
	p.lastOffers = r.URL.Query()

	if !p.authorized(r) {
		writeErrors(w, http.StatusUnauthorized, "Access token expired")
		return
	}
	if p.offersStatus != 0 {
		writeErrors(w, p.offersStatus, p.offersDetail)
		return
	}
	q := r.URL.Query()
	if q.Get("cityCode") == "" || q.Get("checkInDate") == "" || q.Get("checkOutDate") == "" {
		writeErrors(w, http.StatusBadRequest, "Missing mandatory query parameter")
		return
	}

	hotels := p.hotels
	if p.offersFunc != nil {
		hotels = p.offersFunc(q)
	}
	if hotels == nil {
		hotels = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": hotels})
}

// Hotel describes a generated hotel offer.
type Hotel struct {
	Name         string
	Rating       string
	Total        string
	Currency     string
	CityName     string
	Category     string
	Cancellation string
}

// JSON renders h in the provider's hotel-offer shape. Empty fields are left out.
func (h Hotel) JSON() json.RawMessage {
	hotel := map[string]any{
		"type":    "hotel",
		"hotelId": strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		"name":    h.Name,
	}
	if h.Rating != "" {
		hotel["rating"] = h.Rating
	}
	if h.CityName != "" {
		hotel["address"] = map[string]any{
			"lines":       []string{"1 Main Street"},
			"postalCode":  "1000 AA",
			"cityName":    h.CityName,
			"countryCode": "NL",
		}
	}

	offer := map[string]any{"id": uuid.NewString()}
	if h.Total != "" {
		currency := h.Currency
		if currency == "" {
			currency = "EUR"
		}
		offer["price"] = map[string]any{"currency": currency, "total": h.Total}
	}
	if h.Category != "" {
		offer["room"] = map[string]any{"typeEstimated": map[string]any{"category": h.Category}}
	}
	if h.Cancellation != "" {
		offer["policies"] = map[string]any{
			"cancellation": map[string]any{"description": map[string]any{"text": h.Cancellation}},
		}
	}

	b, _ := json.Marshal(map[string]any{
		"type":      "hotel-offers",
		"available": true,
		"hotel":     hotel,
		"offers":    []any{offer},
	})
	return b
}

var hotelNames = []string{"Grand Hotel", "City Center Inn", "Budget Stay", "Luxury Palace", "Canal House", "Harbour View"}

var roomCategories = []string{"STANDARD_ROOM", "SUPERIOR_ROOM", "DELUXE_ROOM", "SUITE"}

// Generate creates n hotels in city with random ratings and prices.
func Generate(rng *rand.Rand, city string, n int) []json.RawMessage {
	hotels := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		price := 50 + rng.Float64()*350
		hotels = append(hotels, Hotel{
			Name:         fmt.Sprintf("%s %s %d", city, hotelNames[i%len(hotelNames)], i+1),
			Rating:       fmt.Sprintf("%d", 1+rng.Intn(5)),
			Total:        fmt.Sprintf("%.2f", price),
			CityName:     strings.ToUpper(city),
			Category:     roomCategories[rng.Intn(len(roomCategories))],
			Cancellation: "Free cancellation until 48 hours before arrival",
		}.JSON())
	}
	return hotels
}

func writeErrors(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{
			"status": status,
			"code":   status,
			"title":  http.StatusText(status),
			"detail": detail,
		}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/vnd.amadeus+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
