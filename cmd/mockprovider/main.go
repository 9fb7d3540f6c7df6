// Command mockprovider serves a local stand-in for the hotel provider API so
// the search service can run without real credentials.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/alex-user-go/hotelsearch/internal/amadeus/amadeustest"
)

var cities = []amadeustest.City{
	{Name: "PARIS", IATACode: "PAR", CityName: "PARIS", CountryName: "FRANCE"},
	{Name: "LONDON", IATACode: "LON", CityName: "LONDON", CountryName: "UNITED KINGDOM"},
	{Name: "BERLIN", IATACode: "BER", CityName: "BERLIN", CountryName: "GERMANY"},
	{Name: "LISBON", IATACode: "LIS", CityName: "LISBON", CountryName: "PORTUGAL"},
	{Name: "NEW YORK", IATACode: "NYC", CityName: "NEW YORK", CountryName: "UNITED STATES OF AMERICA"},
	{Name: "ROME", IATACode: "ROM", CityName: "ROME", CountryName: "ITALY"},
	{Name: "BARCELONA", IATACode: "BCN", CityName: "BARCELONA", CountryName: "SPAIN"},
	{Name: "VIENNA", IATACode: "VIE", CityName: "VIENNA", CountryName: "AUSTRIA"},
}

func main() {
	port := getEnv("PORT", "9100")
	failureRate := getEnvFloat("FAILURE_RATE", 0.1)
	hotelsPerCity := getEnvInt("HOTELS_PER_CITY", 35)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	provider := amadeustest.New()
	provider.SetCredentials(
		getEnv("AMADEUS_API_KEY", amadeustest.ClientID),
		getEnv("AMADEUS_API_SECRET", amadeustest.ClientSecret),
	)
	provider.SetCities(cities...)
	provider.SetOffersFunc(offersByCity(hotelsPerCity))

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write healthz response", "error", err)
		}
	})
	r.With(chaos(failureRate, logger)).Handle("/v3/shopping/hotel-offers", provider)
	r.Handle("/*", provider)

	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("mock provider listening", "addr", addr, "failure_rate", failureRate, "hotels_per_city", hotelsPerCity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// offersByCity generates n hotels per city code on first request and serves
// the same set afterwards. The returned func is called under the provider
// lock, so the map needs no extra guard.
func offersByCity(n int) func(q url.Values) []json.RawMessage {
	generated := make(map[string][]json.RawMessage)
	return func(q url.Values) []json.RawMessage {
		code := strings.ToUpper(q.Get("cityCode"))
		if hotels, ok := generated[code]; ok {
			return hotels
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(code))
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		hotels := amadeustest.Generate(rng, code, n)
		generated[code] = hotels
		return hotels
	}
}

// chaos delays each request by 50 to 200ms and fails a share of them with
// 503.
func chaos(failureRate float64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			latency := time.Duration(50+rand.Intn(150)) * time.Millisecond
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}

			if rand.Float64() < failureRate {
				logger.Warn("simulated provider failure", "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/vnd.amadeus+json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"errors": []map[string]any{{
						"status": http.StatusServiceUnavailable,
						"code":   141,
						"title":  "SYSTEM ERROR HAS OCCURRED",
						"detail": "provider unavailable",
					}},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}
