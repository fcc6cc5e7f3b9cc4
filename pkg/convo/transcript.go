package convo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

// ErrInvalidInput is returned when a user turn carries neither text nor
// an attachment, or when an attachment payload fails to decode.
var ErrInvalidInput = errors.New("provide text, an attachment, or both")

// Transcript is the ordered conversation history submitted in full on
// every backend call. Messages are immutable once appended; the only
// mutation paths are Append*, TruncateTo, and Reset.
type Transcript struct {
	messages []genai.Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser records a user turn built from prompt text and an optional
// attachment.
func (t *Transcript) AppendUser(text string, attachment *genai.Blob) error {
	var parts []genai.Part
	if strings.TrimSpace(text) != "" {
		parts = append(parts, genai.NewTextPart(text))
	}
	if attachment != nil && len(attachment.Data) > 0 {
		parts = append(parts, genai.NewBlobPart(attachment.MIMEType, attachment.Data))
	}
	if len(parts) == 0 {
		return ErrInvalidInput
	}
	t.messages = append(t.messages, genai.Message{Role: genai.RoleUser, Parts: parts})
	return nil
}

// Append records a model or tool turn produced by the orchestration loop.
func (t *Transcript) Append(msg genai.Message) {
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []genai.Message {
	out := make([]genai.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (genai.Message, bool) {
	if len(t.messages) == 0 {
		return genai.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// TruncateTo discards every message appended after position n. Used to
// roll the transcript back to its pre-turn state when a turn fails.
func (t *Transcript) TruncateTo(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(t.messages) {
		t.messages = t.messages[:n]
	}
}

// Reset clears the transcript. Auxiliary assistant state is not touched.
func (t *Transcript) Reset() {
	t.messages = nil
}

// AttachmentFromBase64 decodes a base64 payload into an attachment blob.
// A decoding failure is an input precondition violation, not a tool error.
func AttachmentFromBase64(mimeType, data string) (genai.Blob, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return genai.Blob{}, fmt.Errorf("%w: bad attachment encoding: %v", ErrInvalidInput, err)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return genai.Blob{MIMEType: mimeType, Data: raw}, nil
}
