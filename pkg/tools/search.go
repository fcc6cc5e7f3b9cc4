package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

type searchArgs struct {
	Topic string `mapstructure:"topic"`
}

// SearchTool fetches a concise factual summary for a topic from the
// configured encyclopedia provider.
func SearchTool(provider SummaryProvider) Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        "search_public_info",
			Description: "Fetches a concise factual summary for the requested topic from Wikipedia.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "Short topic or entity name to look up on Wikipedia.",
					},
				},
				"required": []string{"topic"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) Result {
			var in searchArgs
			if err := decodeArgs(args, &in); err != nil {
				return Result{"error": fmt.Sprintf("Invalid arguments: %v", err)}
			}
			topic := strings.TrimSpace(in.Topic)
			if topic == "" {
				return Result{"error": "Topic cannot be empty."}
			}
			summary, err := provider.Summarize(ctx, topic)
			if err != nil {
				return Result{
					"topic": topic,
					"error": fmt.Sprintf("Wikipedia lookup failed: %v", err),
				}
			}
			title := summary.Title
			if title == "" {
				title = topic
			}
			return Result{
				"title":   title,
				"summary": summary.Summary,
				"url":     summary.URL,
				"source":  summary.Source,
			}
		},
	}
}
