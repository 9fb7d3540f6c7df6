// Package handler exposes location autocomplete and hotel search over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alex-user-go/hotelsearch/internal/middleware"
	"github.com/alex-user-go/hotelsearch/internal/obs"
	"github.com/alex-user-go/hotelsearch/internal/response"
	"github.com/alex-user-go/hotelsearch/internal/search"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

const maxBodyBytes = 64 << 10

// LocationSearcher resolves an autocomplete keyword. It never fails.
type LocationSearcher interface {
	Search(ctx context.Context, keyword string) []types.Location
}

// HotelSearcher runs one hotel search.
type HotelSearcher interface {
	Search(ctx context.Context, c search.Criteria) (*types.Result, error)
}

// Handler handles HTTP requests.
type Handler struct {
	locations LocationSearcher
	hotels    HotelSearcher
	validator *Validator
	metrics   *obs.Metrics
	logger    *slog.Logger
}

// New creates a new Handler.
func New(locations LocationSearcher, hotels HotelSearcher, metrics *obs.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		locations: locations,
		hotels:    hotels,
		validator: NewValidator(),
		metrics:   metrics,
		logger:    logger,
	}
}

// SearchLocations handles GET /api/v1/locations/search?keyword=.
// It always answers 200 with a JSON array.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncRequests()

	keyword := r.URL.Query().Get("keyword")
	locations := h.locations.Search(r.Context(), keyword)
	if locations == nil {
		locations = []types.Location{}
	}

	middleware.Logger(r.Context(), h.logger).Debug("locations resolved",
		"keyword", keyword,
		"count", len(locations),
	)
	response.JSON(w, http.StatusOK, locations)
}

// SearchHotels handles POST /api/v1/hotels/search.
func (h *Handler) SearchHotels(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncRequests()
	logger := middleware.Logger(r.Context(), h.logger)

	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logger.Debug("malformed search body", "error", err)
		response.Error(w, http.StatusBadRequest, msgMalformedBody, response.CodeInvalidInput, err.Error())
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		logger.Debug("invalid search request", "error", err)
		writeValidationError(w, err)
		return
	}

	result, err := h.hotels.Search(r.Context(), req.Criteria())
	if err != nil {
		writeSearchError(w, logger, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Error messages of the search endpoint.
const (
	msgMissingParams = "Missing required parameters"
	msgInvalidParams = "Invalid search parameters"
	msgMalformedBody = "Malformed request body"
	msgAuthFailed    = "Authentication failed. Please try again."
	msgSearchFailed  = "Failed to fetch hotel offers"
)

func writeValidationError(w http.ResponseWriter, err error) {
	msg := msgInvalidParams
	var verrs ValidationErrors
	if errors.As(err, &verrs) && verrs.HasMissing() {
		msg = msgMissingParams
	}
	response.Error(w, http.StatusBadRequest, msg, response.CodeInvalidInput, err.Error())
}
