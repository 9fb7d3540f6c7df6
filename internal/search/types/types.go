package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Result represents one page of sorted hotel offers.
type Result struct {
	Data       []HotelOffer `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page         int `json:"page"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
}

// Location is a search candidate returned by the location resolver.
type Location struct {
	Name      string     `json:"name"`
	CityName  string     `json:"cityName,omitempty"`
	Country   string     `json:"country,omitempty"`
	CityCode  string     `json:"cityCode,omitempty"`
	Districts []District `json:"districts,omitempty"`
	GeoCode   *GeoCode   `json:"geoCode,omitempty"`
}

// District is a selectable sub-area of a location.
type District struct {
	Name      string   `json:"name" yaml:"name"`
	Code      string   `json:"code" yaml:"code"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// GeoCode holds coordinates attached by the client when a district is picked.
type GeoCode struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// PriceRange bounds the total price of an offer.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// String renders the range the way the provider expects it ("min-max").
func (p PriceRange) String() string {
	return strconv.FormatFloat(p.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(p.Max, 'f', -1, 64)
}

// HotelOffer is a provider hotel with its offers. Only a handful of fields
// are decoded; the original payload is kept and written back unchanged.
type HotelOffer struct {
	Hotel  Hotel   `json:"hotel"`
	Offers []Offer `json:"offers,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the interpreted fields and keeps the raw payload.
func (h *HotelOffer) UnmarshalJSON(b []byte) error {
	type plain HotelOffer
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*h = HotelOffer(p)
	h.raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON writes the payload exactly as the provider sent it.
func (h HotelOffer) MarshalJSON() ([]byte, error) {
	if h.raw != nil {
		return h.raw, nil
	}
	type plain HotelOffer
	return json.Marshal(plain(h))
}

// PriceTotal returns the first offer's total price, or 0 when absent or unparsable.
func (h HotelOffer) PriceTotal() float64 {
	price := h.FirstPrice()
	if price == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(price.Total)), 64)
	if err != nil {
		return 0
	}
	return v
}

// FirstPrice returns the first offer's price, if any.
func (h HotelOffer) FirstPrice() *Price {
	if len(h.Offers) == 0 {
		return nil
	}
	return h.Offers[0].Price
}

// RatingValue returns the integer star rating, or 0 when absent or unparsable.
func (h HotelOffer) RatingValue() int {
	return h.Hotel.Rating.Int()
}

// Hotel is the hotel part of a provider offer.
type Hotel struct {
	HotelID string     `json:"hotelId,omitempty"`
	Name    string     `json:"name,omitempty"`
	Rating  FlexString `json:"rating,omitempty"`
	Address *Address   `json:"address,omitempty"`
}

// Address is a provider hotel address.
type Address struct {
	Lines       []string `json:"lines,omitempty"`
	PostalCode  string   `json:"postalCode,omitempty"`
	CityName    string   `json:"cityName,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
}

// Offer is a bookable room/rate option.
type Offer struct {
	ID       string    `json:"id,omitempty"`
	Price    *Price    `json:"price,omitempty"`
	Room     *Room     `json:"room,omitempty"`
	Policies *Policies `json:"policies,omitempty"`
}

// Price is an offer price. Totals arrive as decimal strings.
type Price struct {
	Currency string     `json:"currency,omitempty"`
	Total    FlexString `json:"total,omitempty"`
}

// Room describes the offered room.
type Room struct {
	TypeEstimated *RoomType `json:"typeEstimated,omitempty"`
}

// RoomType is the provider's estimate of the room category.
type RoomType struct {
	Category string `json:"category,omitempty"`
}

// Policies holds offer policies.
type Policies struct {
	Cancellation *Cancellation `json:"cancellation,omitempty"`
}

// Cancellation is the cancellation policy of an offer.
type Cancellation struct {
	Description FlexString `json:"description,omitempty"`
}

// FlexString accepts a JSON string, a number or an object with a "text"
// field, and keeps its textual value.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case b[0] == '{':
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*f = FlexString(obj.Text)
	default:
		*f = FlexString(b)
	}
	return nil
}

// Int parses f as a whole number. Fractions truncate toward zero and
// anything unparsable is 0.
func (f FlexString) Int() int {
	s := strings.TrimSpace(string(f))
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
