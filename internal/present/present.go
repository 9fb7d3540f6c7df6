// Package present turns search results into display-ready values and text.
package present

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

// Fallback texts shown when the provider leaves a field out.
const (
	NoName    = "Hotel Name Not Available"
	NoAddress = "Address not available"
	NoPrice   = "Price on request"
)

const (
	star       = "⭐"
	mapsSearch = "https://www.google.com/maps"
	dateLayout = "2006-01-02"
)

// Stars repeats the star glyph once per whole rating point.
// Missing or unparsable ratings give "".
func Stars(rating string) string {
	n := types.FlexString(rating).Int()
	if n <= 0 {
		return ""
	}
	return strings.Repeat(star, n)
}

// FormatAddress joins address lines, postal code, city and country.
func FormatAddress(addr *types.Address) string {
	if addr == nil {
		return NoAddress
	}
	var parts []string
	for _, line := range addr.Lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	for _, p := range []string{addr.PostalCode, addr.CityName, addr.CountryCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return NoAddress
	}
	return strings.Join(parts, ", ")
}

// FormatPrice renders the first offer's total in euros with two decimals.
func FormatPrice(offers []types.Offer) string {
	if len(offers) == 0 || offers[0].Price == nil {
		return NoPrice
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(string(offers[0].Price.Total)), 64)
	if err != nil {
		return NoPrice
	}
	return fmt.Sprintf("€%.2f", total)
}

// MapURL links to a map search for the hotel's name and address.
func MapURL(h types.Hotel) string {
	q := strings.TrimSpace(h.Name + " " + FormatAddress(h.Address))
	return mapsSearch + "?q=" + url.QueryEscape(q)
}

// Card is one rendered hotel.
type Card struct {
	Name         string
	Stars        string
	Address      string
	Price        string
	RoomCategory string
	Cancellation string
	MapURL       string
}

// NewCard builds the card of one hotel offer.
func NewCard(offer types.HotelOffer) Card {
	name := strings.TrimSpace(offer.Hotel.Name)
	if name == "" {
		name = NoName
	}

	c := Card{
		Name:    name,
		Stars:   Stars(string(offer.Hotel.Rating)),
		Address: FormatAddress(offer.Hotel.Address),
		Price:   FormatPrice(offer.Offers),
		MapURL:  MapURL(offer.Hotel),
	}
	if len(offer.Offers) > 0 {
		first := offer.Offers[0]
		if first.Room != nil && first.Room.TypeEstimated != nil {
			c.RoomCategory = first.Room.TypeEstimated.Category
		}
		if first.Policies != nil && first.Policies.Cancellation != nil {
			c.Cancellation = string(first.Policies.Cancellation.Description)
		}
	}
	return c
}

// Pagination is the state of the prev/next controls.
type Pagination struct {
	Visible      bool
	Page         int
	TotalPages   int
	PrevDisabled bool
	NextDisabled bool
	Label        string
}

// NewPagination derives control state from result metadata. Controls are
// shown only when there is more than one page.
func NewPagination(p types.Pagination) Pagination {
	return Pagination{
		Visible:      p.TotalPages > 1,
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		PrevDisabled: p.Page <= 1,
		NextDisabled: p.Page >= p.TotalPages,
		Label:        fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages),
	}
}

// ClampPage keeps a requested page within [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	return max(1, min(page, totalPages))
}

// Price range presets offered by the search form.
var PricePresets = map[string]types.PriceRange{
	"budget":   {Min: 0, Max: 100},
	"moderate": {Min: 100, Max: 200},
	"luxury":   {Min: 200, Max: 10000},
}

// DefaultDates returns tomorrow and the day after as YYYY-MM-DD.
func DefaultDates(now time.Time) (checkIn, checkOut string) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, 1).Format(dateLayout), today.AddDate(0, 0, 2).Format(dateLayout)
}

// RenderText writes a plain-text rendering of result.
func RenderText(w io.Writer, result *types.Result) error {
	ew := &errWriter{w: w}

	if result == nil || result.Pagination.TotalResults == 0 {
		ew.printf("No hotels found for your search criteria.\n")
		ew.printf("Try different dates, another location, or fewer filters.\n")
		return ew.err
	}

	ew.printf("Found %d hotels\n", result.Pagination.TotalResults)
	if len(result.Data) == 0 {
		ew.printf("\nNo hotels on this page.\n")
	}

	for _, offer := range result.Data {
		c := NewCard(offer)
		ew.printf("\n%s", c.Name)
		if c.Stars != "" {
			ew.printf("  %s", c.Stars)
		}
		ew.printf("\n  %s\n  Price: %s\n", c.Address, c.Price)
		if c.RoomCategory != "" {
			ew.printf("  Room: %s\n", c.RoomCategory)
		}
		if c.Cancellation != "" {
			ew.printf("  %s\n", c.Cancellation)
		}
		ew.printf("  Map: %s\n", c.MapURL)
	}

	if p := NewPagination(result.Pagination); p.Visible {
		ew.printf("\n%s\n", p.Label)
	}
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
