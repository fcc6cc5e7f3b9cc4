package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

type weatherArgs struct {
	Location string `mapstructure:"location"`
	Unit     string `mapstructure:"unit"`
}

// WeatherTool returns a concise current-conditions report for a
// location. Temperatures are rendered to zero decimal places with the
// unit symbol of the resolved unit.
func WeatherTool(provider WeatherProvider) Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        "get_weather_forecast",
			Description: "Returns a concise 12-hour weather forecast for the provided location.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "City and state (or country) to get the short-term forecast for.",
					},
					"unit": map[string]any{
						"type":        "string",
						"description": "Temperature unit, either 'fahrenheit' or 'celsius'.",
						"enum":        []string{"fahrenheit", "celsius"},
					},
				},
				"required": []string{"location"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) Result {
			var in weatherArgs
			if err := decodeArgs(args, &in); err != nil {
				return Result{"error": fmt.Sprintf("Invalid arguments: %v", err)}
			}
			location := strings.TrimSpace(in.Location)
			unit := strings.ToLower(strings.TrimSpace(in.Unit))
			if unit != "fahrenheit" && unit != "celsius" {
				unit = "fahrenheit"
			}
			if location == "" {
				return Result{"error": "Missing location."}
			}

			report, err := provider.Current(ctx, location)
			if err != nil {
				return Result{
					"location": location,
					"error":    fmt.Sprintf("Weather provider unavailable: %v", err),
				}
			}

			temp, feels, symbol := report.TempF, report.FeelsLikeF, "°F"
			if unit == "celsius" {
				temp, feels, symbol = report.TempC, report.FeelsLikeC, "°C"
			}
			resolved := report.Location
			if resolved == "" {
				resolved = location
			}
			return Result{
				"location":    resolved,
				"summary":     report.Summary,
				"temperature": fmt.Sprintf("%.0f%s", temp, symbol),
				"feels_like":  fmt.Sprintf("%.0f%s", feels, symbol),
				"humidity":    report.HumidityPct,
				"source":      report.Source,
			}
		},
	}
}
