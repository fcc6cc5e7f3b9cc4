package genai

import "strings"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Part is a tagged union: exactly one of the fields is populated.
type Part struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *Blob             `json:"inlineData,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// Blob carries a binary attachment. Data is base64-encoded on the wire
// by the standard JSON marshaller.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// FunctionCall is a tool invocation requested by the backend.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse returns a tool result to the backend, bound to the
// originating call by tool name.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Message is one transcript entry. A well-formed message has at least
// one part.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

func NewTextPart(text string) Part {
	return Part{Text: text}
}

func NewBlobPart(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// FunctionCalls returns the tool invocations in the message, in the
// order the backend emitted them.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}

// Text joins the non-empty text parts of the message with newlines.
func (m Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}
