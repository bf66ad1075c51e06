package http

import "github.com/nordsearch/pagefinder/internal/search/domain"

// SearchResponse carries ordered results plus the original query echoed
// back for display.
type SearchResponse struct {
	Data  []domain.Page `json:"data"`
	Query string        `json:"query"`
}

// OutcomeResponse is the structured success outcome for account endpoints.
// Redirect is a signal only; the boundary layer decides whether to follow it.
type OutcomeResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
}

// WeatherResponse wraps the current weather report.
type WeatherResponse struct {
	Data domain.Weather `json:"data"`
}

// HealthResponse is returned by the livez/readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
