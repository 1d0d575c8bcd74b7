// Package weather looks up current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/pkg/metrics"
)

// Domain errors surfaced to callers.
var (
	// ErrInvalidLocation is returned when the city name is too short to
	// query.
	ErrInvalidLocation = errors.New("有効な市区町村名を入力してください")

	// ErrLocationNotFound is returned when the upstream does not know
	// the location.
	ErrLocationNotFound = errors.New("指定された地域の天気情報が見つかりません")

	// ErrFetch is returned for any other upstream failure.
	ErrFetch = errors.New("天気情報の取得に失敗しました")
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client queries the OpenWeatherMap current-weather endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a weather client with the given upstream timeout.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// upstreamResponse is the subset of the OpenWeatherMap payload we read.
type upstreamResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// CurrentWeather returns a normalized snapshot for a Japanese city,
// optionally qualified by prefecture.
func (c *Client) CurrentWeather(ctx context.Context, city, prefecture string) (*model.WeatherSnapshot, error) {
	if len([]rune(strings.TrimSpace(city))) < 2 {
		return nil, ErrInvalidLocation
	}

	query := city + ",JP"
	if prefecture != "" {
		query = city + "," + prefecture + ",JP"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "ja")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordWeatherLookup("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.RecordWeatherLookup("not_found", time.Since(start).Seconds())
		return nil, ErrLocationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordWeatherLookup("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.RecordWeatherLookup("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if len(body.Weather) == 0 {
		metrics.RecordWeatherLookup("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: empty weather payload", ErrFetch)
	}
	metrics.RecordWeatherLookup("success", time.Since(start).Seconds())

	rainfall := "0mm"
	if body.Rain.OneHour > 0 {
		rainfall = strconv.FormatFloat(body.Rain.OneHour, 'f', -1, 64) + "mm"
	}

	return &model.WeatherSnapshot{
		Temperature: fmt.Sprintf("%d°C", int(math.Round(body.Main.Temp))),
		Humidity:    fmt.Sprintf("%d%%", body.Main.Humidity),
		Condition:   strings.ToLower(body.Weather[0].Main),
		Description: body.Weather[0].Description,
		Rainfall:    rainfall,
	}, nil
}
