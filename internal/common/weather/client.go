// internal/common/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	commonhttp "compliance-copilot/internal/common/http"
)

// Insight summarizes the forecast signals relevant to load shifting.
type Insight struct {
	SunHours       float64 `json:"sunHours"`
	Temperature    float64 `json:"temperature"`
	Recommendation string  `json:"recommendation"`
	Source         string  `json:"source"` // "api" or "offline"
}

// Client fetches current conditions from OpenWeatherMap. When no API key is
// configured or the call fails, it degrades to a synthetic average profile so
// load-shift suggestions keep working offline.
type Client struct {
	httpClient *commonhttp.Client
	baseURL    string
	apiKey     string
}

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// maxDaylightHours bounds the sun-hour estimate derived from cloud cover.
const maxDaylightHours = 12.0

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: commonhttp.NewClient(timeout),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// apiResponse mirrors the subset of the OpenWeatherMap payload we read.
type apiResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
}

// Fetch returns the weather insight for a city. It never fails: any API
// problem yields the offline fallback, with the error returned alongside so
// callers can log the degradation.
func (c *Client) Fetch(ctx context.Context, city, country string) (*Insight, error) {
	if c.apiKey == "" {
		return offlineInsight(), nil
	}
	if country == "" {
		country = "DE"
	}

	endpoint := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(city+","+country), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return offlineInsight(), err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return offlineInsight(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return offlineInsight(), fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return offlineInsight(), fmt.Errorf("failed to decode weather response: %w", err)
	}

	sunHours := maxDaylightHours * (1 - payload.Clouds.All/100)

	return &Insight{
		SunHours:       round1(sunHours),
		Temperature:    round1(payload.Main.Temp),
		Recommendation: recommendationFor(sunHours),
		Source:         "api",
	}, nil
}

func recommendationFor(sunHours float64) string {
	switch {
	case sunHours > 6:
		return "High solar potential. Excellent for PV utilization and load shifting."
	case sunHours > 4:
		return "Moderate solar potential. Consider load shifting to midday hours."
	default:
		return "Low solar potential today. Grid consumption recommended."
	}
}

// offlineInsight is the synthetic average profile used without API access.
func offlineInsight() *Insight {
	return &Insight{
		SunHours:       5.0,
		Temperature:    12.0,
		Recommendation: "Weather data unavailable. Using average estimates.",
		Source:         "offline",
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
