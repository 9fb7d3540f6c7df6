package location

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alex-user-go/hotelsearch/internal/obs"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

const (
	// MinKeywordLength is the shortest keyword that triggers a search.
	MinKeywordLength = 2

	// MaxRemoteResults caps the provider lookup.
	MaxRemoteResults = 10
)

// Lookup searches the provider for cities.
type Lookup interface {
	SearchLocations(ctx context.Context, keyword string, limit int) ([]types.Location, error)
}

// Resolver turns a partial place name into candidate locations.
type Resolver struct {
	catalog *Catalog
	remote  Lookup
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(catalog *Catalog, remote Lookup, metrics *obs.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		remote:  remote,
		metrics: metrics,
		logger:  logger,
	}
}

// Search returns candidate locations for keyword. It never fails: provider
// errors are logged and yield an empty slice.
func (r *Resolver) Search(ctx context.Context, keyword string) []types.Location {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) < MinKeywordLength {
		return []types.Location{}
	}

	if city, ok := r.catalog.Match(keyword); ok {
		r.metrics.IncCatalogHits()
		r.logger.Debug("location matched city table", "keyword", keyword, "city_code", city.Code)
		return []types.Location{city.Location()}
	}

	locations, err := r.remote.SearchLocations(ctx, keyword, MaxRemoteResults)
	if err != nil {
		r.logger.Error("location search failed", "keyword", keyword, "error", err)
		return []types.Location{}
	}
	if locations == nil {
		return []types.Location{}
	}
	if len(locations) > MaxRemoteResults {
		locations = locations[:MaxRemoteResults]
	}

	r.logger.Debug("locations found", "keyword", keyword, "count", len(locations))
	return locations
}
