package gemini

import (
	"context"
	"strings"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"google.golang.org/genai"
)

// Provider is the model-call collaborator: it streams one structured turn
// from Gemini, feeding partial display snapshots to the caller as chunks
// arrive, then parses the completed stream against the response schema.
type Provider struct {
	client    Client
	modelName string
}

// New creates a Provider for the given client and model.
func New(client Client, modelName string) *Provider {
	return &Provider{client: client, modelName: modelName}
}

// Model returns the active model name.
func (p *Provider) Model() string {
	return p.modelName
}

// Generate runs one streaming model call. The accumulated text is parsed
// only once the stream closes; a malformed final payload surfaces as
// protocol.ErrMalformedResponse for the retry controller.
func (p *Provider) Generate(ctx context.Context, req *models.GenerateRequest) (*protocol.StructuredResponse, error) {
	contents := toContents(req.History)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(SystemPrompt())}, genai.RoleUser),
		ResponseMIMEType: "application/json",
	}

	var accumulated strings.Builder
	for resp, err := range p.client.GenerateContentStream(ctx, p.modelName, contents, config) {
		if err != nil {
			return nil, mapError(err)
		}
		if chunk := resp.Text(); chunk != "" {
			accumulated.WriteString(chunk)
			if req.OnPartial != nil {
				req.OnPartial(protocol.ExtractPartial(accumulated.String()))
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if accumulated.Len() == 0 {
		return nil, &models.ProviderError{
			Code:       models.ErrorCodeUnknown,
			Message:    "model produced no output",
			Underlying: models.ErrEmptyStream,
		}
	}
	return protocol.Parse(accumulated.String())
}
