package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alex-user-go/hotelsearch/internal/amadeus"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

// Fixed parts of every provider query.
const (
	roomQuantity  = 1
	currency      = "EUR"
	defaultRadius = 50
	radiusUnit    = "KM"
	hotelSource   = "ALL"
	lang          = "EN"
)

// ErrInvalidInput is returned when required criteria are missing.
var ErrInvalidInput = errors.New("missing required parameters")

// OffersSearcher queries the provider for hotel offers.
type OffersSearcher interface {
	SearchHotelOffers(ctx context.Context, q amadeus.OffersQuery) ([]types.HotelOffer, error)
}

// Criteria holds one search submission.
type Criteria struct {
	Location   types.Location
	CheckIn    string
	CheckOut   string
	Adults     int
	RadiusKm   int
	Ratings    []string
	PriceRange *types.PriceRange
	SortBy     SortKey
	Page       int
}

// Options tunes query building.
type Options struct {
	// ForwardRadius sends the client's radius instead of the fixed 50 km.
	ForwardRadius bool
	// DefaultCityCode is used when the location has neither code nor name.
	DefaultCityCode string
}

// Aggregator runs a provider search and shapes the result into pages.
type Aggregator struct {
	offers OffersSearcher
	opts   Options
	logger *slog.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(offers OffersSearcher, opts Options, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		offers: offers,
		opts:   opts,
		logger: logger,
	}
}

// Search fetches all offers for c, sorts them and returns the requested page.
func (a *Aggregator) Search(ctx context.Context, c Criteria) (*types.Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	q := a.Query(c)
	a.logger.Info("searching hotel offers",
		"city_code", q.CityCode,
		"check_in", q.CheckInDate,
		"check_out", q.CheckOutDate,
		"adults", q.Adults,
		"sort", c.SortBy,
		"page", c.Page,
	)

	hotels, err := a.offers.SearchHotelOffers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("hotel offers search: %w", err)
	}
	a.logger.Info("hotel offers received", "city_code", q.CityCode, "count", len(hotels))

	Sort(hotels, c.SortBy)
	page, pagination := Paginate(hotels, c.Page, PageSize)

	return &types.Result{
		Data:       page,
		Pagination: pagination,
	}, nil
}

// Query builds the provider query for c.
func (a *Aggregator) Query(c Criteria) amadeus.OffersQuery {
	radius := defaultRadius
	if a.opts.ForwardRadius && c.RadiusKm > 0 {
		radius = c.RadiusKm
	}

	var priceRange string
	if c.PriceRange != nil {
		priceRange = c.PriceRange.String()
	}

	return amadeus.OffersQuery{
		CityCode:     CityCode(c.Location, a.opts.DefaultCityCode),
		RoomQuantity: roomQuantity,
		Adults:       c.Adults,
		CheckInDate:  c.CheckIn,
		CheckOutDate: c.CheckOut,
		PriceRange:   priceRange,
		Currency:     currency,
		Ratings:      c.Ratings,
		BestRateOnly: true,
		Radius:       radius,
		RadiusUnit:   radiusUnit,
		HotelSource:  hotelSource,
		Lang:         lang,
	}
}

// CityCode picks the provider city code for loc: its own code, else the
// first three letters of its name upper-cased, else fallback.
func CityCode(loc types.Location, fallback string) string {
	if code := strings.TrimSpace(loc.CityCode); code != "" {
		return code
	}
	name := strings.TrimSpace(loc.Name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > 3 {
		name = string([]rune(name)[:3])
	}
	return strings.ToUpper(name)
}

func (c Criteria) validate() error {
	var missing []string
	if strings.TrimSpace(c.CheckIn) == "" {
		missing = append(missing, "checkIn")
	}
	if strings.TrimSpace(c.CheckOut) == "" {
		missing = append(missing, "checkOut")
	}
	if c.Adults < 1 {
		missing = append(missing, "adults")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
