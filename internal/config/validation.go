package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Model == "" {
		errs = append(errs, "model must not be empty")
	}

	if c.Engine.MaxTurns < 1 {
		errs = append(errs, "engine.max_turns must be >= 1")
	}
	if c.Engine.ModelRetryAttempts < 1 {
		errs = append(errs, "engine.model_retry_attempts must be >= 1")
	}
	if c.Engine.WriteVerifyAttempts < 0 {
		errs = append(errs, "engine.write_verify_attempts must be >= 0")
	}
	if c.Engine.TurnYieldMs < 0 {
		errs = append(errs, "engine.turn_yield_ms must be >= 0")
	}

	if c.Dispatch.InlineTextSize < 1 {
		errs = append(errs, "dispatch.inline_text_size must be >= 1")
	}
	if c.Dispatch.MaxAttachmentSize < 1 {
		errs = append(errs, "dispatch.max_attachment_size must be >= 1")
	}
	if c.Dispatch.MaxAppendSize < 1 {
		errs = append(errs, "dispatch.max_append_size must be >= 1")
	}
	if c.Dispatch.ScriptTimeoutSec < 1 {
		errs = append(errs, "dispatch.script_timeout_sec must be >= 1")
	}

	// Semantic validation: inline threshold must sit under the ceiling.
	if c.Dispatch.InlineTextSize > c.Dispatch.MaxAttachmentSize {
		errs = append(errs, "dispatch.inline_text_size must be <= dispatch.max_attachment_size")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
