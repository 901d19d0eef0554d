package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero
// values for keys that are present. Missing keys keep their defaults.
type Config struct {
	Model    string         `json:"model"`
	Engine   EngineConfig   `json:"engine"`
	Dispatch DispatchConfig `json:"dispatch"`
}

type EngineConfig struct {
	// MaxTurns bounds the model-call/dispatch loop per conversation send.
	MaxTurns int `json:"max_turns"` // Default: 16

	// ModelRetryAttempts bounds re-issued calls after a malformed response.
	ModelRetryAttempts int `json:"model_retry_attempts"` // Default: 3

	// WriteVerifyAttempts bounds retry directives per (type, path) when a
	// write/mkdir target is missing after dispatch.
	WriteVerifyAttempts int `json:"write_verify_attempts"` // Default: 2

	// TurnYieldMs is the cooperative sleep between turns.
	TurnYieldMs int `json:"turn_yield_ms"` // Default: 50
}

type DispatchConfig struct {
	// InlineTextSize is the largest text file inlined into a read observation.
	InlineTextSize int64 `json:"inline_text_size"` // Default: 16 KiB

	// MaxAttachmentSize is the hard ceiling for attaching a read file.
	MaxAttachmentSize int64 `json:"max_attachment_size"` // Default: 8 MiB

	// MaxAppendSize caps the existing file size an append may extend.
	MaxAppendSize int64 `json:"max_append_size"` // Default: 4 MiB

	// ScriptTimeoutSec bounds a single run-script execution.
	ScriptTimeoutSec int `json:"script_timeout_sec"` // Default: 30
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: "gemini-2.5-flash",
		Engine: EngineConfig{
			MaxTurns:            16,
			ModelRetryAttempts:  3,
			WriteVerifyAttempts: 2,
			TurnYieldMs:         50,
		},
		Dispatch: DispatchConfig{
			InlineTextSize:    16 * 1024,
			MaxAttachmentSize: 8 * 1024 * 1024,
			MaxAppendSize:     4 * 1024 * 1024,
			ScriptTimeoutSec:  30,
		},
	}
}
