package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nordsearch/pagefinder/internal/search/domain"
)

const defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

var (
	// ErrWeatherNotConfigured reports a missing upstream API key.
	ErrWeatherNotConfigured = errors.New("weather: api key not configured")
	// ErrWeatherUnavailable reports an upstream fetch or decode failure.
	ErrWeatherUnavailable = errors.New("weather: upstream unavailable")
)

// WeatherService fetches the current weather for a fixed city from
// OpenWeatherMap, caching the last successful report so the upstream is not
// hit on every request.
type WeatherService struct {
	APIKey   string
	City     string
	BaseURL  string // defaults to the OpenWeatherMap endpoint; overridable in tests
	CacheTTL time.Duration
	Client   *http.Client

	mu        sync.Mutex
	cached    domain.Weather
	fetchedAt time.Time
}

// weatherReport mirrors the upstream response shape.
type weatherReport struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

// Current returns the cached report when fresh, otherwise fetches a new one.
func (s *WeatherService) Current(ctx context.Context) (domain.Weather, error) {
	if s.APIKey == "" {
		return domain.Weather{}, ErrWeatherNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < s.CacheTTL {
		return s.cached, nil
	}

	report, err := s.fetch(ctx)
	if err != nil {
		return domain.Weather{}, err
	}

	s.cached = report
	s.fetchedAt = time.Now()
	return report, nil
}

func (s *WeatherService) fetch(ctx context.Context) (domain.Weather, error) {
	base := s.BaseURL
	if base == "" {
		base = defaultWeatherBaseURL
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := fmt.Sprintf("%s?q=%s&units=metric&APPID=%s",
		base, url.QueryEscape(s.City), url.QueryEscape(s.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Weather{}, fmt.Errorf("%w: unexpected status %d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var report weatherReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return domain.Weather{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	if len(report.Weather) == 0 {
		return domain.Weather{}, fmt.Errorf("%w: empty report", ErrWeatherUnavailable)
	}

	return domain.Weather{
		Temperature: report.Main.Temp,
		Condition:   report.Weather[0].Main,
		Description: report.Weather[0].Description,
		Location:    report.Name,
	}, nil
}
