// Package dispatch executes one ordered batch of model-requested actions
// against a workspace snapshot. Actions run strictly sequentially because
// later actions may depend on earlier mutations; a failure in one action is
// contained to that action and reported as an observation, never aborting
// the rest of the batch.
package dispatch

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/scribe/internal/config"
	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/vfs"
	"go.uber.org/zap"
)

// Dispatcher applies action batches to workspace snapshots.
type Dispatcher struct {
	cfg    *config.Config
	collab Collaborators
	logger *zap.Logger
}

// New creates a Dispatcher. A nil logger is replaced with a no-op one.
func New(cfg *config.Config, collab Collaborators, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, collab: collab, logger: logger}
}

// Result is the outcome of one dispatched batch: the mutated snapshot, the
// ordered observation strings fed back to the model, and any files that
// must be surfaced as attachments rather than quoted as text.
type Result struct {
	Snapshot     vfs.Snapshot
	Observations []string
	Attachments  []*vfs.File
}

// Run executes the actions in order against snap and returns the result.
// The snapshot is owned by this call for its duration; the caller publishes
// the returned one.
func (d *Dispatcher) Run(ctx context.Context, snap vfs.Snapshot, actions []protocol.Action) *Result {
	result := &Result{Snapshot: snap}
	seen := make(map[string]bool, len(actions))

	for _, action := range actions {
		sig := signature(action)
		if seen[sig] {
			d.logger.Warn("skipping duplicate action",
				zap.String("type", string(action.Type)),
				zap.String("path", action.Path))
			result.Observations = append(result.Observations,
				fmt.Sprintf("Warning: skipped duplicate %s action on %q (already executed in this batch).", action.Type, action.Path))
			continue
		}
		seen[sig] = true

		obs, attachments, err := d.execute(ctx, snap, action)
		if err != nil {
			d.logger.Warn("action failed",
				zap.String("type", string(action.Type)),
				zap.String("path", action.Path),
				zap.Error(err))
			result.Observations = append(result.Observations,
				fmt.Sprintf("Action %s on %q failed: %v", action.Type, action.Path, err))
			continue
		}
		result.Observations = append(result.Observations, obs...)
		result.Attachments = append(result.Attachments, attachments...)
	}
	return result
}

// execute runs a single action. Panics are converted to errors here so the
// per-action isolation boundary holds even for programming mistakes in
// collaborators.
func (d *Dispatcher) execute(ctx context.Context, snap vfs.Snapshot, a protocol.Action) (obs []string, attachments []*vfs.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			obs, attachments = nil, nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	switch a.Type {
	case protocol.ActionRead:
		return d.read(ctx, snap, a)
	case protocol.ActionWrite:
		return d.write(snap, a)
	case protocol.ActionAppend:
		return d.appendFile(ctx, snap, a)
	case protocol.ActionMove:
		return d.move(snap, a)
	case protocol.ActionDelete:
		return d.deleteFile(snap, a)
	case protocol.ActionMkdir:
		return d.mkdir(snap, a)
	case protocol.ActionGenerateImage:
		return d.generateImage(ctx, snap, a)
	case protocol.ActionEditImage:
		return d.editImage(ctx, snap, a)
	case protocol.ActionComposeImage:
		return d.composeImage(ctx, snap, a)
	case protocol.ActionGenerateVideo:
		return d.generateVideo(ctx, snap, a)
	case protocol.ActionTrimVideo:
		return d.trimVideo(ctx, snap, a)
	case protocol.ActionCalculate:
		return d.calculate(a)
	case protocol.ActionRunScript:
		return d.runScript(ctx, snap, a)
	case protocol.ActionWebSearch:
		return d.webSearch(ctx, a)
	default:
		return nil, nil, fmt.Errorf("unknown action type %q", a.Type)
	}
}
