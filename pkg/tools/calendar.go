package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

type calendarArgs struct {
	Date string `mapstructure:"date"`
}

// CalendarTool lists the seeded agenda for a date. Read-only: calling
// it twice with the same date returns identical results.
func CalendarTool(state *AssistantState) Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        "list_calendar_agenda",
			Description: "Returns upcoming events for the requested date.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "ISO-8601 date to review upcoming events for (YYYY-MM-DD).",
					},
				},
				"required": []string{"date"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) Result {
			var in calendarArgs
			if err := decodeArgs(args, &in); err != nil {
				return Result{"error": fmt.Sprintf("Invalid arguments: %v", err)}
			}
			raw := strings.TrimSpace(in.Date)
			if raw == "" {
				return Result{"error": "Provide a date in YYYY-MM-DD format."}
			}
			date, err := parseDate(raw)
			if err != nil {
				return Result{"error": fmt.Sprintf("Invalid date: %v", err)}
			}
			return Result{"date": date, "events": state.Agenda(date)}
		},
	}
}
