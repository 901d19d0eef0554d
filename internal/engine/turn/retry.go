package turn

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"github.com/Cyclone1070/scribe/internal/workflow"
	"go.uber.org/zap"
)

const correctiveMessage = "Your last response was not valid JSON matching the required schema. " +
	"Resend your full response as strict JSON with the fields thought, plan, actions and riskAssessment."

// generateWithRetry wraps one model call in the bounded retry loop. Malformed
// or transient failures re-issue the call after appending a corrective entry
// to the conversation, so the model sees its own error corpus on the next
// attempt. Permission-class errors short-circuit immediately; the last error
// propagates once attempts are exhausted.
func (c *Controller) generateWithRetry(ctx context.Context, sink func(workflow.Event)) (*protocol.StructuredResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Engine.ModelRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		if attempt > 1 {
			c.notify(sink, workflow.RetryEvent{Attempt: attempt, Reason: lastErr.Error()})
		}

		req := &models.GenerateRequest{
			History: c.requestHistory(),
			OnPartial: func(p protocol.PartialResponse) {
				c.notify(sink, workflow.StreamEvent{Partial: p})
			},
		}
		resp, err := c.provider.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		if models.IsFatal(err) {
			c.logger.Error("fatal model error, not retrying", zap.Error(err))
			return nil, err
		}

		lastErr = err
		c.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if errors.Is(err, protocol.ErrMalformedResponse) || errors.Is(err, protocol.ErrEmptyResponse) {
			c.appendEntry(protocol.RoleUser, correctiveMessage, entryOptions{isError: true})
		}
	}
	return nil, lastErr
}
