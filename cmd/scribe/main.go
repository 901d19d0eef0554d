// Package main is the scribe command line: it sends one prompt to the agent
// engine, streams turn progress to stderr and renders the final answer as
// markdown on stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Cyclone1070/scribe/internal/calc"
	"github.com/Cyclone1070/scribe/internal/config"
	"github.com/Cyclone1070/scribe/internal/engine/dispatch"
	"github.com/Cyclone1070/scribe/internal/engine/turn"
	"github.com/Cyclone1070/scribe/internal/provider/gemini"
	"github.com/Cyclone1070/scribe/internal/script"
	"github.com/Cyclone1070/scribe/internal/vfs"
	"github.com/Cyclone1070/scribe/internal/workflow"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/genai"
)

// fileFlags collects repeated --file name=content seed arguments.
type fileFlags []string

func (f *fileFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *fileFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	var files fileFlags
	flag.Var(&files, "file", "seed a workspace file as name=content (repeatable)")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: scribe [--debug] [--file name=content]... <prompt>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, files, prompt); err != nil {
		if errors.Is(err, turn.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stderr"}
	if debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapConfig.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, files fileFlags, prompt string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	client := gemini.NewRealClient(genaiClient)
	provider := gemini.New(client, cfg.Model)
	collab := dispatch.Collaborators{
		Images:     gemini.NewImageStudio(client),
		Videos:     gemini.NewVideoStudio(client),
		Search:     gemini.NewSearchService(client),
		Calculator: calc.NewEvaluator(),
		Scripts:    script.NewRunner(time.Duration(cfg.Dispatch.ScriptTimeoutSec) * time.Second),
	}
	dispatcher := dispatch.New(cfg, collab, logger)
	controller := turn.NewController(cfg, provider, dispatcher, logger)

	for _, spec := range files {
		name, content, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --file value %q, expected name=content", spec)
		}
		controller.Seed(vfs.NewTextFile(name, content))
	}

	renderer := newEventRenderer(os.Stderr)
	answer, err := controller.Send(ctx, prompt, renderer.render)
	if err != nil {
		return err
	}

	rendered, rErr := glamour.Render(answer, "dark")
	if rErr != nil {
		fmt.Println(answer)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// eventRenderer writes turn progress to out so stdout stays clean for the
// final answer. Plan lines are printed as the stream completes them; the
// trailing element of a partial snapshot may still be arriving, so only the
// elements before it count as settled.
type eventRenderer struct {
	out         io.Writer
	style       lipgloss.Style
	planPrinted int
}

func newEventRenderer(out io.Writer) *eventRenderer {
	return &eventRenderer{out: out, style: lipgloss.NewStyle().Faint(true)}
}

func (r *eventRenderer) render(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.TurnStartEvent:
		r.planPrinted = 0
		fmt.Fprintln(r.out, r.style.Render(fmt.Sprintf("turn %d", e.Turn)))
	case workflow.StreamEvent:
		for settled := len(e.Partial.Plan) - 1; r.planPrinted < settled; r.planPrinted++ {
			fmt.Fprintln(r.out, r.style.Render("  plan: "+e.Partial.Plan[r.planPrinted]))
		}
	case workflow.RetryEvent:
		r.planPrinted = 0
		fmt.Fprintln(r.out, r.style.Render(fmt.Sprintf("  retrying model call (attempt %d)", e.Attempt)))
	case workflow.ActionEvent:
		fmt.Fprintln(r.out, r.style.Render(fmt.Sprintf("  %s %s", e.Type, e.Path)))
	case workflow.ObservationEvent:
		if first, _, _ := strings.Cut(e.Text, "\n"); first != "" {
			fmt.Fprintln(r.out, r.style.Render("  -> "+first))
		}
	}
}
