package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffersByCity_StablePerCity(t *testing.T) {
	offers := offersByCity(12)

	ams := offers(url.Values{"cityCode": {"ams"}})
	require.Len(t, ams, 12)
	assert.Equal(t, ams, offers(url.Values{"cityCode": {"AMS"}}))

	par := offers(url.Values{"cityCode": {"PAR"}})
	require.Len(t, par, 12)

	var hotel struct {
		Hotel struct {
			Name string `json:"name"`
		} `json:"hotel"`
	}
	require.NoError(t, json.Unmarshal(par[0], &hotel))
	assert.Contains(t, hotel.Hotel.Name, "PAR")
}

func TestChaos(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		rate       float64
		wantStatus int
	}{
		{name: "never fails", rate: 0, wantStatus: http.StatusOK},
		{name: "always fails", rate: 1, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			chaos(tt.rate, logger)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v3/shopping/hotel-offers", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("HOTELS_PER_CITY", "7")
	assert.Equal(t, 7, getEnvInt("HOTELS_PER_CITY", 35))

	t.Setenv("HOTELS_PER_CITY", "many")
	assert.Equal(t, 35, getEnvInt("HOTELS_PER_CITY", 35))
}
