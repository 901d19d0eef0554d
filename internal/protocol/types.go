package protocol

import (
	"time"

	"github.com/Cyclone1070/scribe/internal/vfs"
)

// ActionType is the closed set of operations the model may request.
type ActionType string

const (
	ActionRead          ActionType = "read"
	ActionWrite         ActionType = "write"
	ActionAppend        ActionType = "append"
	ActionMove          ActionType = "move"
	ActionDelete        ActionType = "delete"
	ActionMkdir         ActionType = "mkdir"
	ActionGenerateImage ActionType = "generate-image"
	ActionEditImage     ActionType = "edit-image"
	ActionComposeImage  ActionType = "compose-image"
	ActionCalculate     ActionType = "calculate"
	ActionGenerateVideo ActionType = "generate-video"
	ActionTrimVideo     ActionType = "trim-video"
	ActionRunScript     ActionType = "run-script"
	ActionWebSearch     ActionType = "web-search"
)

var actionTypes = map[ActionType]bool{
	ActionRead: true, ActionWrite: true, ActionAppend: true, ActionMove: true,
	ActionDelete: true, ActionMkdir: true, ActionGenerateImage: true,
	ActionEditImage: true, ActionComposeImage: true, ActionCalculate: true,
	ActionGenerateVideo: true, ActionTrimVideo: true, ActionRunScript: true,
	ActionWebSearch: true,
}

// Valid reports whether t is a member of the closed enum.
func (t ActionType) Valid() bool {
	return actionTypes[t]
}

// Action is one requested operation. Immutable once parsed; produced once per
// model turn and never persisted beyond the entry that carries it.
// Path is always required; its meaning depends on the type (target file,
// output path for generation, expression holder for calculate, script file
// for run-script, query holder for web-search).
type Action struct {
	ID          string     `json:"id"`
	Type        ActionType `json:"type"`
	Path        string     `json:"path"`
	Content     string     `json:"content,omitempty"`
	SourcePath  string     `json:"sourcePath,omitempty"`
	SourcePaths []string   `json:"sourcePaths,omitempty"`
	Description string     `json:"description,omitempty"`
	StartTime   *float64   `json:"startTime,omitempty"`
	EndTime     *float64   `json:"endTime,omitempty"`
}

// RiskAssessment flags actions the model itself considers destructive.
type RiskAssessment struct {
	IsRisky        bool     `json:"isRisky"`
	RiskyActionIDs []string `json:"riskyActionIds"`
}

// StructuredResponse is one fully parsed model turn. FinalAnswer present
// means the turn loop terminates; absent means Thought must carry the
// reasoning for the requested actions.
type StructuredResponse struct {
	Thought        string         `json:"thought"`
	Plan           []string       `json:"plan"`
	Actions        []Action       `json:"actions"`
	RiskAssessment RiskAssessment `json:"riskAssessment"`
	FinalAnswer    string         `json:"finalAnswer,omitempty"`

	// RawText echoes the accumulated stream the response was parsed from.
	RawText string `json:"-"`
}

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ConversationEntry is one message in the append-only history. Only the most
// recently appended model entry's Structured field is ever replaced, once
// streaming completes.
type ConversationEntry struct {
	ID            string
	Role          Role
	Text          string
	Attachments   []*vfs.File
	Structured    *StructuredResponse
	IsObservation bool
	IsError       bool
	CreatedAt     time.Time
}

// PartialResponse is the incremental snapshot surfaced to the caller while
// the stream is still open. Fields hold best-effort values extracted from
// the incomplete JSON text.
type PartialResponse struct {
	Thought     string
	Plan        []string
	FinalAnswer string
	RawText     string
}
