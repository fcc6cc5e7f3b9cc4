package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

type reminderArgs struct {
	Summary string `mapstructure:"summary"`
	DueTime string `mapstructure:"due_time"`
}

// ReminderTool stores a reminder in the session state and reports the
// total count after the append.
func ReminderTool(state *AssistantState) Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        "create_reminder",
			Description: "Stores a reminder with the provided summary and due time.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary": map[string]any{
						"type":        "string",
						"description": "Reminder text (<= 120 characters).",
					},
					"due_time": map[string]any{
						"type":        "string",
						"description": "ISO-8601 timestamp indicating when the reminder should fire.",
					},
				},
				"required": []string{"summary", "due_time"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) Result {
			var in reminderArgs
			if err := decodeArgs(args, &in); err != nil {
				return Result{"error": fmt.Sprintf("Invalid arguments: %v", err)}
			}
			summary := strings.TrimSpace(in.Summary)
			dueRaw := strings.TrimSpace(in.DueTime)
			if summary == "" {
				return Result{"error": "Reminder summary cannot be empty."}
			}
			if dueRaw == "" {
				return Result{"error": "Provide a due_time in ISO-8601 format."}
			}
			due, err := parseTimestamp(dueRaw)
			if err != nil {
				return Result{"error": fmt.Sprintf("Invalid due_time: %v", err)}
			}
			reminder := Reminder{Summary: summary, DueTime: due}
			total := state.AddReminder(reminder)
			return Result{
				"status":   "stored",
				"reminder": map[string]any{"summary": reminder.Summary, "due_time": reminder.DueTime},
				"total":    total,
			}
		},
	}
}
