// Package turn owns the conversation state machine: it alternates model
// calls and action dispatches until the model produces a final answer, the
// turn budget runs out, or the run is cancelled. The controller is the only
// writer of the authoritative workspace snapshot; the dispatcher works on a
// clone that is swapped in after each batch.
package turn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/scribe/internal/config"
	"github.com/Cyclone1070/scribe/internal/engine/dispatch"
	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"github.com/Cyclone1070/scribe/internal/vfs"
	"github.com/Cyclone1070/scribe/internal/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelProvider is the model-call collaborator.
type ModelProvider interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*protocol.StructuredResponse, error)
}

// Dispatcher applies one action batch to a snapshot.
type Dispatcher interface {
	Run(ctx context.Context, snap vfs.Snapshot, actions []protocol.Action) *dispatch.Result
}

const (
	continuePrompt = "You produced a thought but no actions and no final answer. " +
		"Either request concrete actions or finish with a finalAnswer."
	emptyTurnWarning = "Your response contained no actions, no thought and no final answer. " +
		"Respond with a batch of actions or a finalAnswer."
	repetitionWarning = "You are repeating the exact action you just performed. This is forbidden; " +
		"change your approach or finish with a finalAnswer."
)

// verifyKey identifies one write-verification retry counter.
type verifyKey struct {
	Type protocol.ActionType
	Path string
}

type entryOptions struct {
	isObservation bool
	isError       bool
	attachments   []*vfs.File
	structured    *protocol.StructuredResponse
}

// Controller runs turn sequences for one conversation. It is not safe for
// concurrent Sends; a new Send cancels any in-flight run first.
type Controller struct {
	cfg        *config.Config
	provider   ModelProvider
	dispatcher Dispatcher
	logger     *zap.Logger

	mu           sync.Mutex
	cancelActive context.CancelFunc

	history        []protocol.ConversationEntry
	store          vfs.Snapshot
	verifyCounts   map[verifyKey]int
	pendingContext []string
}

// NewController creates a Controller over an empty workspace. A nil logger
// is replaced with a no-op one.
func NewController(cfg *config.Config, provider ModelProvider, dispatcher Dispatcher, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:          cfg,
		provider:     provider,
		dispatcher:   dispatcher,
		logger:       logger,
		store:        vfs.NewSnapshot(),
		verifyCounts: make(map[verifyKey]int),
	}
}

// Seed places files into the workspace before the first send.
func (c *Controller) Seed(files ...*vfs.File) {
	for _, f := range files {
		c.store.Put(f)
	}
}

// Store returns the authoritative workspace snapshot.
func (c *Controller) Store() vfs.Snapshot {
	return c.store
}

// History returns the conversation so far.
func (c *Controller) History() []protocol.ConversationEntry {
	return c.history
}

// Cancel aborts the in-flight turn sequence, if any. Mutations already
// applied are kept.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelActive != nil {
		c.cancelActive()
	}
}

// Send appends a user message and runs the turn loop until the model
// finishes, the turn budget is exhausted, the context is cancelled, or the
// retry controller gives up. Events are delivered to sink as the run
// progresses; a nil sink is allowed.
func (c *Controller) Send(ctx context.Context, message string, sink func(workflow.Event)) (string, error) {
	runCtx := c.beginRun(ctx)
	defer c.endRun()

	c.appendEntry(protocol.RoleUser, message, entryOptions{})

	for turnNo := 1; turnNo <= c.cfg.Engine.MaxTurns; turnNo++ {
		if err := runCtx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		c.notify(sink, workflow.TurnStartEvent{Turn: turnNo})

		resp, err := c.generateWithRetry(runCtx, sink)
		if err != nil {
			return "", err
		}
		c.pendingContext = nil
		if cErr := runCtx.Err(); cErr != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, cErr)
		}

		c.appendEntry(protocol.RoleModel, resp.RawText, entryOptions{structured: resp})

		if resp.FinalAnswer != "" {
			c.notify(sink, workflow.DoneEvent{FinalAnswer: resp.FinalAnswer})
			return resp.FinalAnswer, nil
		}

		switch {
		case len(resp.Actions) > 0:
			for _, a := range resp.Actions {
				c.notify(sink, workflow.ActionEvent{Type: string(a.Type), Path: a.Path})
			}
			result := c.dispatcher.Run(runCtx, c.store.Clone(), resp.Actions)
			c.store = result.Snapshot

			observations := append([]string(nil), result.Observations...)
			observations = append(observations, c.verifyWrites(resp.Actions)...)
			obsText := strings.Join(observations, "\n")
			c.appendEntry(protocol.RoleUser, obsText, entryOptions{
				isObservation: true,
				attachments:   result.Attachments,
			})
			c.notify(sink, workflow.ObservationEvent{Text: obsText})

		case strings.TrimSpace(resp.Thought) != "":
			c.appendEntry(protocol.RoleUser, continuePrompt, entryOptions{isObservation: true})

		default:
			c.appendEntry(protocol.RoleUser, emptyTurnWarning, entryOptions{isObservation: true})
		}

		if c.isRepeating() {
			c.logger.Warn("repeated first action detected")
			c.pendingContext = append(c.pendingContext, repetitionWarning)
		}

		select {
		case <-runCtx.Done():
			return "", fmt.Errorf("%w: %v", ErrCancelled, runCtx.Err())
		case <-time.After(time.Duration(c.cfg.Engine.TurnYieldMs) * time.Millisecond):
		}
	}

	notice := fmt.Sprintf("Stopped after %d turns without a final answer.", c.cfg.Engine.MaxTurns)
	c.appendEntry(protocol.RoleUser, notice, entryOptions{isObservation: true})
	c.notify(sink, workflow.DoneEvent{FinalAnswer: notice})
	return notice, nil
}

func (c *Controller) beginRun(ctx context.Context) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelActive != nil {
		c.cancelActive()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancelActive = cancel
	return runCtx
}

func (c *Controller) endRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelActive != nil {
		c.cancelActive()
		c.cancelActive = nil
	}
}

// requestHistory copies the history and augments the most recent user entry
// with the workspace listing and any pending directives. The stored entries
// are never mutated; only the copy sent to the model carries the context.
func (c *Controller) requestHistory() []protocol.ConversationEntry {
	history := append([]protocol.ConversationEntry(nil), c.history...)

	parts := []string{"Workspace files:\n" + c.store.Summary()}
	parts = append(parts, c.pendingContext...)

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == protocol.RoleUser {
			history[i].Text = history[i].Text + "\n\n" + strings.Join(parts, "\n\n")
			break
		}
	}
	return history
}

// verifyWrites checks that write and mkdir targets exist after dispatch and
// issues retry directives while the per-key budget lasts, then a terminal
// notice. Other action types are deliberately not verified.
func (c *Controller) verifyWrites(actions []protocol.Action) []string {
	var directives []string
	for _, a := range actions {
		if a.Type != protocol.ActionWrite && a.Type != protocol.ActionMkdir {
			continue
		}
		if c.store.Get(a.Path) != nil {
			continue
		}
		key := verifyKey{Type: a.Type, Path: a.Path}
		if c.verifyCounts[key] < c.cfg.Engine.WriteVerifyAttempts {
			c.verifyCounts[key]++
			directives = append(directives,
				fmt.Sprintf("Verification: the %s action on %q did not take effect. Retry this exact action.", a.Type, a.Path))
		} else {
			directives = append(directives,
				fmt.Sprintf("Verification: the %s action on %q has failed repeatedly. Do not retry it; report the failure in your final answer.", a.Type, a.Path))
		}
	}
	return directives
}

// isRepeating reports whether the two most recent model turns opened with
// the same action, compared by type, path and content.
func (c *Controller) isRepeating() bool {
	var recent []*protocol.StructuredResponse
	for i := len(c.history) - 1; i >= 0 && len(recent) < 2; i-- {
		e := c.history[i]
		if e.Role == protocol.RoleModel && e.Structured != nil {
			recent = append(recent, e.Structured)
		}
	}
	if len(recent) < 2 || len(recent[0].Actions) == 0 || len(recent[1].Actions) == 0 {
		return false
	}
	a, b := recent[0].Actions[0], recent[1].Actions[0]
	return a.Type == b.Type && a.Path == b.Path && a.Content == b.Content
}

func (c *Controller) appendEntry(role protocol.Role, text string, opts entryOptions) {
	c.history = append(c.history, protocol.ConversationEntry{
		ID:            uuid.NewString(),
		Role:          role,
		Text:          text,
		Attachments:   opts.attachments,
		Structured:    opts.structured,
		IsObservation: opts.isObservation,
		IsError:       opts.isError,
		CreatedAt:     time.Now(),
	})
}

func (c *Controller) notify(sink func(workflow.Event), ev workflow.Event) {
	if sink != nil {
		sink(ev)
	}
}
