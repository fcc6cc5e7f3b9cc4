package tools

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harunnryd/kirana/pkg/genai"
)

func testTool(name string, handler Handler) Tool {
	return Tool{
		Definition: genai.ToolDefinition{
			Name:        name,
			Description: "test tool",
			Parameters:  map[string]any{"type": "object"},
		},
		Handler: handler,
	}
}

func mustRegistry(t *testing.T, ts ...Tool) *Registry {
	t.Helper()
	r, err := NewRegistry(ts...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(mustRegistry(t), DispatcherOptions{})
	res := d.Dispatch(context.Background(), Invocation{Name: "send_raven", Args: map[string]any{}})
	if res["error"] != "Tool 'send_raven' is not available." {
		t.Fatalf("error = %v", res["error"])
	}
}

func TestDispatchMalformedArgs(t *testing.T) {
	reg := mustRegistry(t, testTool("echo", func(ctx context.Context, args map[string]any) Result {
		return Result{"ok": true}
	}))
	d := NewDispatcher(reg, DispatcherOptions{})

	res := d.Dispatch(context.Background(), Invocation{Name: "echo", Args: []any{"not", "a", "map"}})
	if res["error"] != "Tool 'echo' received malformed arguments." {
		t.Fatalf("error = %v", res["error"])
	}

	res = d.Dispatch(context.Background(), Invocation{Name: "echo", Args: nil})
	if res["error"] != nil {
		t.Fatalf("nil args should dispatch with an empty map, got error %v", res["error"])
	}
}

func TestDispatchContainsPanic(t *testing.T) {
	reg := mustRegistry(t, testTool("boom", func(ctx context.Context, args map[string]any) Result {
		panic("kaput")
	}))
	d := NewDispatcher(reg, DispatcherOptions{})

	res := d.Dispatch(context.Background(), Invocation{Name: "boom"})
	msg, _ := res["error"].(string)
	if !strings.HasPrefix(msg, "Tool 'boom' failed:") || !strings.Contains(msg, "kaput") {
		t.Fatalf("error = %q", msg)
	}
}

func TestDispatchTimeout(t *testing.T) {
	reg := mustRegistry(t, testTool("slow", func(ctx context.Context, args map[string]any) Result {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		return Result{"ok": true}
	}))
	d := NewDispatcher(reg, DispatcherOptions{Timeout: 20 * time.Millisecond})

	start := time.Now()
	res := d.Dispatch(context.Background(), Invocation{Name: "slow"})
	if time.Since(start) > 2*time.Second {
		t.Fatal("dispatch did not respect the timeout")
	}
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "timed out") {
		t.Fatalf("error = %q", msg)
	}
}

func TestDispatchRetriesTimedOutHandler(t *testing.T) {
	var attempts atomic.Int64
	reg := mustRegistry(t, testTool("flaky", func(ctx context.Context, args map[string]any) Result {
		if attempts.Add(1) == 1 {
			<-ctx.Done()
			return nil
		}
		return Result{"attempt": int(attempts.Load())}
	}))
	d := NewDispatcher(reg, DispatcherOptions{
		Timeout:      20 * time.Millisecond,
		Retries:      1,
		RetryBackoff: time.Millisecond,
	})

	res := d.Dispatch(context.Background(), Invocation{Name: "flaky"})
	if res["error"] != nil {
		t.Fatalf("unexpected error: %v", res["error"])
	}
	if res["attempt"] != 2 {
		t.Fatalf("attempt = %v, want the retry's result", res["attempt"])
	}
}

func TestDispatchNilResultBecomesEmpty(t *testing.T) {
	reg := mustRegistry(t, testTool("void", func(ctx context.Context, args map[string]any) Result {
		return nil
	}))
	d := NewDispatcher(reg, DispatcherOptions{})
	res := d.Dispatch(context.Background(), Invocation{Name: "void"})
	if res == nil {
		t.Fatal("result is nil, want empty map")
	}
}

func TestDispatchAllPreservesOrder(t *testing.T) {
	reg := mustRegistry(t, testTool("tag", func(ctx context.Context, args map[string]any) Result {
		// Later calls finish first so ordering cannot come from timing.
		if n, ok := args["sleep_ms"].(int); ok {
			time.Sleep(time.Duration(n) * time.Millisecond)
		}
		return Result{"id": args["id"]}
	}))
	d := NewDispatcher(reg, DispatcherOptions{Concurrency: 4})

	invs := make([]Invocation, 5)
	for i := range invs {
		invs[i] = Invocation{Name: "tag", Args: map[string]any{
			"id":       fmt.Sprintf("call-%d", i),
			"sleep_ms": (len(invs) - i) * 10,
		}}
	}
	results := d.DispatchAll(context.Background(), invs)
	if len(results) != len(invs) {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, res := range results {
		want := fmt.Sprintf("call-%d", i)
		if res["id"] != want {
			t.Errorf("results[%d][id] = %v, want %s", i, res["id"], want)
		}
	}
}

func TestDispatchHandlerSeesArgCopy(t *testing.T) {
	var seen map[string]any
	reg := mustRegistry(t, testTool("inspect", func(ctx context.Context, args map[string]any) Result {
		seen = args
		return Result{}
	}))
	d := NewDispatcher(reg, DispatcherOptions{})

	original := map[string]any{"key": "before"}
	d.Dispatch(context.Background(), Invocation{Name: "inspect", Args: original})
	original["key"] = "after"
	if seen["key"] != "before" {
		t.Fatalf("handler observed caller mutation: %v", seen["key"])
	}
}
