package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

type emailArgs struct {
	Recipient string `mapstructure:"recipient"`
	Subject   string `mapstructure:"subject"`
	Outline   string `mapstructure:"outline"`
}

// EmailTool assembles a structured email draft from an outline. Pure
// text assembly: it cannot fail once defaults are applied and makes no
// external calls.
func EmailTool() Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        "draft_email_outline",
			Description: "Returns a structured email draft using the provided subject outline.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"recipient": map[string]any{
						"type":        "string",
						"description": "Recipient name or email to personalize the greeting.",
					},
					"subject": map[string]any{
						"type":        "string",
						"description": "Concise subject line the email should address.",
					},
					"outline": map[string]any{
						"type":        "string",
						"description": "Bullet list or short description describing the talking points.",
					},
				},
				"required": []string{"recipient", "subject", "outline"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) Result {
			var in emailArgs
			if err := decodeArgs(args, &in); err != nil {
				return Result{"error": fmt.Sprintf("Invalid arguments: %v", err)}
			}
			recipient := strings.TrimSpace(in.Recipient)
			if recipient == "" {
				recipient = "there"
			}
			subject := strings.TrimSpace(in.Subject)
			if subject == "" {
				subject = "Quick update"
			}

			var bullets []string
			for _, line := range strings.Split(in.Outline, "\n") {
				line = strings.Trim(strings.TrimSpace(line), "-• \t")
				if line != "" {
					bullets = append(bullets, line)
				}
			}

			paragraphs := []string{
				fmt.Sprintf("Hi %s,", recipient),
				fmt.Sprintf("I hope you're doing well. I'm reaching out about %s.", strings.ToLower(subject)),
			}
			if len(bullets) > 0 {
				paragraphs = append(paragraphs, "Here are the key points:")
				for _, b := range bullets {
					paragraphs = append(paragraphs, "- "+b)
				}
			}
			paragraphs = append(paragraphs,
				"Let me know if you have any questions or need more detail.",
				"Best,\nYour Assistant",
			)

			return Result{
				"subject": subject,
				"body":    strings.Join(paragraphs, "\n"),
			}
		},
	}
}
