package search

import (
	"slices"

	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

// PageSize is the number of hotels per result page.
const PageSize = 10

// SortKey selects the order of the full result set.
type SortKey string

// Supported sort keys. Any other value keeps the provider order.
const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating-desc"
)

// Sort orders hotels in place. Missing prices and ratings count as 0 and
// ties keep their provider order.
func Sort(hotels []types.HotelOffer, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(hotels, func(a, b types.HotelOffer) int {
			return compareFloat(a.PriceTotal(), b.PriceTotal())
		})
	case SortPriceDesc:
		slices.SortStableFunc(hotels, func(a, b types.HotelOffer) int {
			return compareFloat(b.PriceTotal(), a.PriceTotal())
		})
	case SortRating:
		slices.SortStableFunc(hotels, func(a, b types.HotelOffer) int {
			return b.RatingValue() - a.RatingValue()
		})
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Paginate returns the given page of hotels and its metadata. Pages below 1
// are treated as 1; pages past the end are empty.
func Paginate(hotels []types.HotelOffer, page, size int) ([]types.HotelOffer, types.Pagination) {
	if page < 1 {
		page = 1
	}
	total := len(hotels)
	pagination := types.Pagination{
		Page:         page,
		TotalPages:   TotalPages(total, size),
		TotalResults: total,
	}

	start := (page - 1) * size
	if start >= total {
		return []types.HotelOffer{}, pagination
	}
	end := min(start+size, total)
	return hotels[start:end], pagination
}

// TotalPages is ceil(total / size).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
