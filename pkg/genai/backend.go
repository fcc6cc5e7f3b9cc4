package genai

import (
	"context"
	"errors"
)

// ToolDefinition is a static tool declaration exposed to the backend for
// function calling. Parameters follow the backend's object-schema subset:
// {type: "object", properties: {...}, required: [...]}.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is one full submission to the backend: the ordered transcript,
// the declared tool set, and the fixed system instruction.
type Request struct {
	SystemInstruction string
	Messages          []Message
	Tools             []ToolDefinition
}

// Backend is the generative-language capability. It returns a single
// model-role message whose parts are any mix of text and function calls.
type Backend interface {
	Generate(ctx context.Context, req Request) (Message, error)
	Name() string
}

// ImageGenerator is the single-shot image-synthesis capability. It is
// not part of the orchestration loop.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// ErrNoImageData indicates the image capability answered without any
// binary payload.
var ErrNoImageData = errors.New("image generation returned no image data")
