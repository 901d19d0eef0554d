package models

import "github.com/Cyclone1070/scribe/internal/protocol"

// GenerateRequest carries one model call: the full conversation so far and a
// callback receiving partial display snapshots as stream chunks arrive.
type GenerateRequest struct {
	History []protocol.ConversationEntry

	// OnPartial, when non-nil, is invoked after every received chunk with the
	// fields extracted from the accumulated (still incomplete) stream text.
	OnPartial func(protocol.PartialResponse)
}

// SourceImage is a resolved binary image input to a generation call.
type SourceImage struct {
	Data     []byte
	MimeType string
}

// SearchResult is the outcome of a grounded web search.
type SearchResult struct {
	Summary   string
	Citations []Citation
}

// Citation is one source backing a search summary.
type Citation struct {
	Title string
	URI   string
}

// VideoMetadata is best-effort duration/resolution info for a video payload.
type VideoMetadata struct {
	DurationSeconds float64
	Width           int
	Height          int
}
