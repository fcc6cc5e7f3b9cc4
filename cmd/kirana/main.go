package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/harunnryd/kirana/pkg/assistant"
	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/harunnryd/kirana/pkg/kirana"
	"github.com/harunnryd/kirana/pkg/logging"
	"github.com/harunnryd/kirana/pkg/metrics"
	"github.com/harunnryd/kirana/pkg/redact"
	"github.com/harunnryd/kirana/pkg/runner"
	prettyjson "github.com/hokaccha/go-prettyjson"
)

const turnTimeout = 2 * time.Minute

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	debug := flag.Bool("debug", false, "print the transcript after every turn")
	flag.Parse()

	cfg, err := kirana.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	redact.SetEnabled(cfg.Privacy.RedactPII)

	session, obs, err := kirana.BuildSession(cfg, kirana.DefaultProviderRegistry(), logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lr := runner.NewLifecycleRunner(observerDrainer{obs}, runner.Hooks{
		OnStart: func() {
			go func() {
				repl(ctx, session, *debug)
				stop()
			}()
		},
	}, 5*time.Second)

	if err := lr.Run(ctx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
}

func repl(ctx context.Context, session *assistant.Session, debug bool) {
	fmt.Println("Type a message, :reset, :image <prompt>, :analyze <path> <prompt>, or :quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == ":quit":
			return
		case line == ":reset":
			session.Reset()
			fmt.Println("conversation cleared")
		case strings.HasPrefix(line, ":image "):
			generateImage(ctx, session, strings.TrimPrefix(line, ":image "))
		case strings.HasPrefix(line, ":analyze "):
			analyzeImage(ctx, session, strings.TrimPrefix(line, ":analyze "))
		default:
			chat(ctx, session, line, debug)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func chat(ctx context.Context, session *assistant.Session, prompt string, debug bool) {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	answer, err := session.Chat(turnCtx, prompt, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(answer)
	if debug {
		if out, err := prettyjson.Marshal(session.Transcript()); err == nil {
			fmt.Println(string(out))
		}
	}
}

func generateImage(ctx context.Context, session *assistant.Session, prompt string) {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	data, err := session.GenerateImage(turnCtx, prompt, "1:1")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	name := fmt.Sprintf("kirana-%d.png", time.Now().Unix())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("saved", name)
}

func analyzeImage(ctx context.Context, session *assistant.Session, rest string) {
	path, prompt, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(prompt) == "" {
		fmt.Println("usage: :analyze <path> <prompt>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	answer, err := session.AnalyzeImage(turnCtx, prompt, genai.Blob{MIMEType: mimeForPath(path), Data: data})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(answer)
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

func initLogger(cfg kirana.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	var logger *slog.Logger
	if strings.ToLower(cfg.LogFormat) == "json" {
		logger = logging.InitLogger(level)
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	slog.SetDefault(logger)
	return logger
}

type observerDrainer struct {
	obs metrics.Observer
}

func (d observerDrainer) Drain() error {
	if closer, ok := d.obs.(*metrics.AsyncObserver); ok {
		closer.Close()
	}
	return nil
}
