package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/kirana/pkg/metrics"
	"github.com/harunnryd/kirana/pkg/resilience"
)

// Invocation is one tool call requested by the backend. Args is kept
// untyped at this boundary because the backend may emit anything; the
// dispatcher normalizes it before the handler runs.
type Invocation struct {
	Name string
	Args any
}

type DispatcherOptions struct {
	// Timeout bounds one handler execution. Defaults to 6 seconds.
	Timeout time.Duration
	// Retries re-invokes a handler that timed out or panicked.
	// Defaults to 0: the first failure is contained immediately.
	Retries      int
	RetryBackoff time.Duration
	// Concurrency > 1 dispatches the calls of one round in parallel.
	// Results are always returned in declared order.
	Concurrency int
}

// Dispatcher routes invocations to registered handlers. It never
// returns an error and never panics: every failure mode is folded into
// a Result carrying an "error" key, because the backend must see some
// response for every call it issued.
type Dispatcher struct {
	registry *Registry
	opts     DispatcherOptions
	obs      metrics.Observer
}

func NewDispatcher(registry *Registry, opts DispatcherOptions) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 6 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 150 * time.Millisecond
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Dispatcher{registry: registry, opts: opts, obs: metrics.NoopObserver{}}
}

func (d *Dispatcher) SetObserver(obs metrics.Observer) {
	if obs != nil {
		d.obs = obs
	}
}

// Dispatch executes one invocation and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Result {
	callID := uuid.NewString()
	start := time.Now()

	tool, ok := d.registry.Lookup(inv.Name)
	if !ok {
		res := Result{"error": fmt.Sprintf("Tool '%s' is not available.", inv.Name)}
		d.record(inv.Name, callID, "unknown_tool", start)
		return res
	}

	args, ok := coerceArgs(inv.Args)
	if !ok {
		d.record(inv.Name, callID, "bad_args", start)
		return Result{"error": fmt.Sprintf("Tool '%s' received malformed arguments.", inv.Name)}
	}

	res := d.invokeWithRetry(ctx, tool, inv.Name, args)
	status := "ok"
	if _, failed := res["error"]; failed {
		status = "error"
	}
	d.record(inv.Name, callID, status, start)
	return res
}

// DispatchAll executes a round's invocations and returns results in the
// declared order, regardless of the configured concurrency.
func (d *Dispatcher) DispatchAll(ctx context.Context, invs []Invocation) []Result {
	results := make([]Result, len(invs))
	if d.opts.Concurrency <= 1 || len(invs) < 2 {
		for i, inv := range invs {
			results[i] = d.Dispatch(ctx, inv)
		}
		return results
	}

	sem := make(chan struct{}, d.opts.Concurrency)
	var wg sync.WaitGroup
	for i, inv := range invs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, inv Invocation) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = d.Dispatch(ctx, inv)
		}(i, inv)
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) invokeWithRetry(ctx context.Context, tool Tool, name string, args map[string]any) Result {
	policy := resilience.RetryPolicy{MaxRetries: d.opts.Retries, Backoff: d.opts.RetryBackoff}
	var res Result
	attempt := 0
	err := policy.Do(func() error {
		attempt++
		r, err := d.invoke(ctx, tool, args)
		if err != nil {
			slog.Warn("tool_attempt_failed", "tool_name", name, "attempt", attempt, "error", err)
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return Result{"error": fmt.Sprintf("Tool '%s' failed: %v", name, err)}
	}
	return res
}

// invoke runs the handler under the configured timeout and converts a
// panic into an error. The handler goroutine is left to finish on its
// own after a timeout; it only writes to a buffered channel.
func (d *Dispatcher) invoke(ctx context.Context, tool Tool, args map[string]any) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	done := make(chan Result, 1)
	panicked := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- fmt.Errorf("handler panic: %v", r)
			}
		}()
		done <- tool.Handler(ctx, args)
	}()

	select {
	case res := <-done:
		if res == nil {
			res = Result{}
		}
		return res, nil
	case err := <-panicked:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out after %s", d.opts.Timeout)
	}
}

// coerceArgs normalizes the backend-supplied argument payload into the
// map the handler expects. The copy is defensive: handlers may not
// observe later mutations of the original payload.
func coerceArgs(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func (d *Dispatcher) record(name, callID, status string, start time.Time) {
	d.obs.RecordEvent(metrics.MetricsEvent{
		Name: "tool_exec",
		Time: time.Now(),
		Tags: map[string]string{
			"tool":    name,
			"call_id": callID,
			"status":  status,
		},
		Fields: map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})
}
