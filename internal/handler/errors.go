package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alex-user-go/hotelsearch/internal/amadeus"
	"github.com/alex-user-go/hotelsearch/internal/response"
	"github.com/alex-user-go/hotelsearch/internal/search"
)

// writeSearchError maps a search failure onto the API error envelope.
func writeSearchError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		logger.Debug("search rejected", "error", err)
		response.Error(w, http.StatusBadRequest, msgMissingParams, response.CodeInvalidInput, err.Error())

	case errors.Is(err, amadeus.ErrAuth):
		logger.Warn("provider authentication failed", "error", err)
		response.Error(w, http.StatusUnauthorized, msgAuthFailed, response.CodeAuth, "")

	default:
		status := http.StatusInternalServerError
		details := err.Error()

		var apiErr *amadeus.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status()
			if apiErr.Detail != "" {
				details = apiErr.Detail
			}
		}

		logger.Error("hotel search failed", "error", err, "status", status)
		response.Error(w, status, msgSearchFailed, "", details)
	}
}
