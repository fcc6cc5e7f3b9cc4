package wttr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/harunnryd/kirana/pkg/tools"
	"github.com/tidwall/gjson"
)

const defaultTimeout = 6 * time.Second

// Client reads current conditions from a wttr.in-compatible endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: "https://wttr.in",
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Current(ctx context.Context, location string) (tools.WeatherReport, error) {
	endpoint := fmt.Sprintf("%s/%s?format=j1", c.BaseURL, url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return tools.WeatherReport{}, err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return tools.WeatherReport{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tools.WeatherReport{}, fmt.Errorf("wttr: unexpected status %d", resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return tools.WeatherReport{}, err
	}

	condition := gjson.GetBytes(payload, "current_condition.0")
	if !condition.Exists() {
		return tools.WeatherReport{}, fmt.Errorf("wttr: response has no current condition")
	}

	area := gjson.GetBytes(payload, "nearest_area.0.areaName.0.value").String()
	if area == "" {
		area = location
	}
	humidity := condition.Get("humidity").String()
	if humidity == "" {
		humidity = "?"
	}
	tempC := condition.Get("temp_C").Float()
	tempF := condition.Get("temp_F").Float()
	feelsC := condition.Get("FeelsLikeC").Float()
	feelsF := condition.Get("FeelsLikeF").Float()

	return tools.WeatherReport{
		Location:    area,
		Summary:     condition.Get("weatherDesc.0.value").String(),
		TempC:       tempC,
		TempF:       tempF,
		FeelsLikeC:  feelsC,
		FeelsLikeF:  feelsF,
		HumidityPct: humidity + "%",
		Source:      "wttr.in",
	}, nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
