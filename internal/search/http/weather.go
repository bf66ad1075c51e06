package http

import (
	"errors"
	"net/http"

	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

type WeatherHandler struct {
	WeatherService *service.WeatherService
}

// ServeHTTP serves the cached current weather report.
//
//	@Summary		Current weather
//	@Description	Returns the current weather for the configured city, cached for a short TTL.
//	@Tags			Weather
//	@Produce		json
//	@Success		200	{object}	WeatherResponse			"Current weather"
//	@Failure		502	{object}	httpx.ErrorResponse		"Upstream provider failed"
//	@Failure		503	{object}	httpx.ErrorResponse		"No provider API key configured"
//	@Router			/api/weather [get].
func (h *WeatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	report, err := h.WeatherService.Current(ctx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeatherNotConfigured):
			httpx.WriteError(w, http.StatusServiceUnavailable, "weather is not configured")
		case errors.Is(err, service.ErrWeatherUnavailable):
			log.Warn("weather upstream unavailable", "err", err)
			httpx.WriteError(w, http.StatusBadGateway, "weather is temporarily unavailable")
		default:
			log.Error("weather lookup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "weather lookup failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, WeatherResponse{Data: report})
}
