package assistant

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/kirana/pkg/convo"
	"github.com/harunnryd/kirana/pkg/errorsx"
	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/harunnryd/kirana/pkg/metrics"
	"github.com/harunnryd/kirana/pkg/redact"
	"github.com/harunnryd/kirana/pkg/resilience"
	"github.com/harunnryd/kirana/pkg/tools"
)

// DefaultSystemInstruction mirrors the assistant's standing guidance to
// the backend. Overridable via Options.SystemInstruction.
const DefaultSystemInstruction = "You are a proactive personal assistant who can call tools when they can provide " +
	"more precise information than guessing. Stay concise, cite tool results, and " +
	"never fabricate tool data. When you receive image inputs, incorporate visual " +
	"details in the answer."

const defaultMaxRounds = 8

// ErrRoundLimit is returned when the backend keeps requesting tool
// calls past the configured round cap.
var ErrRoundLimit = errors.New("tool-call round limit exceeded")

// ErrInvalidInput mirrors the transcript precondition: a user turn
// needs text, an attachment, or both.
var ErrInvalidInput = convo.ErrInvalidInput

type Options struct {
	SystemInstruction string
	// MaxRounds bounds the submit/dispatch cycles of one Chat call.
	MaxRounds int
	Images    genai.ImageGenerator
	Logger    *slog.Logger
	Observer  metrics.Observer
}

// Session owns one conversation: the transcript, the assistant state,
// and the orchestration loop driving the backend. A session is driven
// by one caller at a time; internal locking only enforces the
// single-writer discipline when callers misbehave.
type Session struct {
	id         string
	backend    genai.Backend
	images     genai.ImageGenerator
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	state      *tools.AssistantState
	transcript *convo.Transcript
	system     string
	maxRounds  int
	logger     *slog.Logger
	obs        metrics.Observer

	mu sync.Mutex
}

func NewSession(backend genai.Backend, registry *tools.Registry, dispatcher *tools.Dispatcher, state *tools.AssistantState, opts Options) *Session {
	if opts.SystemInstruction == "" {
		opts.SystemInstruction = DefaultSystemInstruction
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = defaultMaxRounds
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = metrics.NoopObserver{}
	}
	id := uuid.NewString()
	return &Session{
		id:         id,
		backend:    backend,
		images:     opts.Images,
		registry:   registry,
		dispatcher: dispatcher,
		state:      state,
		transcript: convo.NewTranscript(),
		system:     opts.SystemInstruction,
		maxRounds:  opts.MaxRounds,
		logger:     opts.Logger.With(slog.String("session_id", id)),
		obs:        opts.Observer,
	}
}

func (s *Session) ID() string { return s.id }

// State exposes the session's assistant state for inspection.
func (s *Session) State() *tools.AssistantState { return s.state }

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []genai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Reset clears the transcript. Assistant state (reminders, calendar)
// survives a reset.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Reset()
}

// Chat submits one user turn and drives the backend through tool-call
// rounds until it produces a final text answer.
//
// Tool failures are contained into tool results and never abort the
// loop. Backend failures, invalid input, and round-cap exhaustion are
// fatal for the turn: the error propagates and the transcript rolls
// back to its pre-turn state, so a successful call always leaves the
// transcript ending in a model message with no pending calls.
func (s *Session) Chat(ctx context.Context, prompt string, attachment *genai.Blob) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turnID := uuid.NewString()
	mark := s.transcript.Len()
	if err := s.transcript.AppendUser(prompt, attachment); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonInvalidInput)
	}

	s.logger.Info("turn_started",
		"turn_id", turnID,
		"prompt", redact.Text(prompt),
		"has_attachment", attachment != nil,
	)
	start := time.Now()

	for round := 1; round <= s.maxRounds; round++ {
		resp, err := s.backend.Generate(ctx, genai.Request{
			SystemInstruction: s.system,
			Messages:          s.transcript.Messages(),
			Tools:             s.registry.Declarations(),
		})
		if err != nil {
			s.transcript.TruncateTo(mark)
			reason := errorsx.ReasonBackendGenerate
			if resilience.IsRateLimit(err) {
				reason = errorsx.ReasonBackendRateLimit
			}
			err = errorsx.Wrap(err, reason)
			s.logger.Error("backend_generate_error",
				"turn_id", turnID,
				"round", round,
				"reason_code", string(errorsx.Reason(err)),
				"error", err,
			)
			return "", err
		}
		s.transcript.Append(resp)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			s.record("turn_completed", turnID, map[string]any{
				"rounds":      round,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return resp.Text(), nil
		}

		s.logger.Info("tools_requested", "turn_id", turnID, "round", round, "count", len(calls))
		invs := make([]tools.Invocation, len(calls))
		for i, call := range calls {
			invs[i] = tools.Invocation{Name: call.Name, Args: call.Args}
		}
		results := s.dispatcher.DispatchAll(ctx, invs)
		for i, call := range calls {
			s.transcript.Append(genai.Message{
				Role: genai.RoleTool,
				Parts: []genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     call.Name,
						Response: results[i],
					},
				}},
			})
		}
	}

	s.transcript.TruncateTo(mark)
	s.record("turn_round_limit", turnID, map[string]any{"max_rounds": s.maxRounds})
	return "", errorsx.Wrap(ErrRoundLimit, errorsx.ReasonRoundLimit)
}

// AnalyzeImage is a shortcut for one-off image reasoning: the running
// conversation is cleared first.
func (s *Session) AnalyzeImage(ctx context.Context, prompt string, attachment genai.Blob) (string, error) {
	s.Reset()
	return s.Chat(ctx, prompt, &attachment)
}

// GenerateImage delegates to the image-synthesis capability. Single
// shot: no transcript involvement.
func (s *Session) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if s.images == nil {
		return nil, errorsx.Wrap(errors.New("no image generator configured"), errorsx.ReasonConfig)
	}
	data, err := s.images.GenerateImage(ctx, prompt, aspectRatio)
	if err != nil {
		reason := errorsx.ReasonImageGenerate
		if errors.Is(err, genai.ErrNoImageData) {
			reason = errorsx.ReasonImageNoData
		}
		return nil, errorsx.Wrap(err, reason)
	}
	return data, nil
}

func (s *Session) record(name, turnID string, fields map[string]any) {
	s.obs.RecordEvent(metrics.MetricsEvent{
		Name: name,
		Time: time.Now(),
		Tags: map[string]string{
			"session_id": s.id,
			"turn_id":    turnID,
			"provider":   s.backend.Name(),
		},
		Fields: fields,
	})
}
