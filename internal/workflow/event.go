package workflow

import "github.com/Cyclone1070/scribe/internal/protocol"

// Event is the interface for all engine events.
// The CLI renderer handles events via type switch.
type Event interface {
	isEvent()
}

// TurnStartEvent is emitted when a new turn's model call begins.
type TurnStartEvent struct {
	Turn int
}

func (TurnStartEvent) isEvent() {}

// StreamEvent carries the partial display fields extracted from the
// still-open model stream.
type StreamEvent struct {
	Partial protocol.PartialResponse
}

func (StreamEvent) isEvent() {}

// RetryEvent is emitted when the model call is re-issued after a
// malformed response.
type RetryEvent struct {
	Attempt int
	Reason  string
}

func (RetryEvent) isEvent() {}

// ActionEvent is emitted before each action executes.
type ActionEvent struct {
	Type string
	Path string
}

func (ActionEvent) isEvent() {}

// ObservationEvent carries the synthesized observation text fed back to
// the model after a dispatch batch.
type ObservationEvent struct {
	Text string
}

func (ObservationEvent) isEvent() {}

// DoneEvent is emitted when the turn loop terminates.
type DoneEvent struct {
	FinalAnswer string
}

func (DoneEvent) isEvent() {}
