package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse deserializes the complete accumulated stream text into a
// StructuredResponse. The text may be wrapped in a markdown code fence
// (optionally tagged "json"); the wrapper is stripped before decoding.
// Any structural problem is a hard ErrMalformedResponse for the retry
// controller; there is no lenient fallback.
func Parse(text string) (*StructuredResponse, error) {
	raw := text
	cleaned := stripFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, ErrEmptyResponse)
	}

	// Pointer fields distinguish absent keys from present-but-empty ones.
	var decoded struct {
		Thought        *string         `json:"thought"`
		Plan           *[]string       `json:"plan"`
		Actions        *[]Action       `json:"actions"`
		RiskAssessment *RiskAssessment `json:"riskAssessment"`
		FinalAnswer    string          `json:"finalAnswer"`
	}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var missing []string
	if decoded.Thought == nil {
		missing = append(missing, "thought")
	}
	if decoded.Plan == nil {
		missing = append(missing, "plan")
	}
	if decoded.Actions == nil {
		missing = append(missing, "actions")
	}
	if decoded.RiskAssessment == nil {
		missing = append(missing, "riskAssessment")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields %v", ErrMalformedResponse, missing)
	}

	for i, a := range *decoded.Actions {
		if !a.Type.Valid() {
			return nil, fmt.Errorf("%w: actions[%d] has unknown type %q", ErrMalformedResponse, i, a.Type)
		}
		if a.Path == "" {
			return nil, fmt.Errorf("%w: actions[%d] (%s) is missing path", ErrMalformedResponse, i, a.Type)
		}
	}

	return &StructuredResponse{
		Thought:        *decoded.Thought,
		Plan:           *decoded.Plan,
		Actions:        *decoded.Actions,
		RiskAssessment: *decoded.RiskAssessment,
		FinalAnswer:    decoded.FinalAnswer,
		RawText:        raw,
	}, nil
}

// stripFence removes a leading/trailing markdown code-fence wrapper and trims
// surrounding whitespace. Text without a fence passes through untouched.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
