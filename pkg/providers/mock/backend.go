package mock

import (
	"context"
	"sync"

	"github.com/harunnryd/kirana/pkg/genai"
)

// Backend replays a scripted sequence of model messages. When the
// script runs out the last message repeats, which lets tests model a
// backend that keeps requesting tool calls forever.
type Backend struct {
	mu        sync.Mutex
	responses []genai.Message
	next      int
	err       error
	requests  []genai.Request
}

func NewBackend(responses ...genai.Message) *Backend {
	return &Backend{responses: responses}
}

// FailWith makes every subsequent Generate call return err.
func (b *Backend) FailWith(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

func (b *Backend) Name() string { return "mock" }

func (b *Backend) Generate(ctx context.Context, req genai.Request) (genai.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return genai.Message{}, b.err
	}
	if len(b.responses) == 0 {
		return genai.Message{Role: genai.RoleModel, Parts: []genai.Part{genai.NewTextPart("ok")}}, nil
	}
	msg := b.responses[b.next]
	if b.next < len(b.responses)-1 {
		b.next++
	}
	return msg, nil
}

// Requests returns every request the backend has seen.
func (b *Backend) Requests() []genai.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]genai.Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// TextResponse builds a plain text model message.
func TextResponse(text string) genai.Message {
	return genai.Message{Role: genai.RoleModel, Parts: []genai.Part{genai.NewTextPart(text)}}
}

// ToolCallResponse builds a model message requesting the given calls.
func ToolCallResponse(calls ...genai.FunctionCall) genai.Message {
	parts := make([]genai.Part, 0, len(calls))
	for i := range calls {
		call := calls[i]
		parts = append(parts, genai.Part{FunctionCall: &call})
	}
	return genai.Message{Role: genai.RoleModel, Parts: parts}
}
