package dispatch

import (
	"context"

	"github.com/Cyclone1070/scribe/internal/provider/models"
	"github.com/Cyclone1070/scribe/internal/script"
)

// ImageStudio generates and edits images. Implemented by the Gemini
// provider in production; stubbed in tests.
type ImageStudio interface {
	Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
	Edit(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error)
}

// VideoStudio generates and trims videos.
type VideoStudio interface {
	Generate(ctx context.Context, prompt string, source *models.SourceImage) ([]byte, error)
	Trim(ctx context.Context, src []byte, mimeType string, startTime, endTime float64) ([]byte, error)
}

// SearchService answers web queries with citations.
type SearchService interface {
	Search(ctx context.Context, query string) (*models.SearchResult, error)
}

// Calculator evaluates textual expressions.
type Calculator interface {
	Evaluate(expression string) (string, error)
}

// ScriptRunner executes workspace scripts under capability injection.
type ScriptRunner interface {
	Run(ctx context.Context, source string, caps script.Capabilities) (string, error)
}

// Collaborators bundles the external services a dispatcher may call.
// Any nil field turns the corresponding action types into failure
// observations instead of panics.
type Collaborators struct {
	Images     ImageStudio
	Videos     VideoStudio
	Search     SearchService
	Calculator Calculator
	Scripts    ScriptRunner
}
