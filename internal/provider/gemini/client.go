package gemini

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// Client defines the slice of the Gemini API this package uses.
// The abstraction keeps the SDK out of tests and the rest of the engine.
type Client interface {
	// GenerateContentStream streams a model response chunk by chunk.
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

	// GenerateContent performs a single non-streaming call.
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	// GenerateImages calls a dedicated image generation model.
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

	// GenerateVideos starts a long-running video generation operation.
	GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)

	// GetVideosOperation polls a video generation operation.
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// RealClient wraps the official SDK client to satisfy Client.
type RealClient struct {
	client *genai.Client
}

// NewRealClient creates a RealClient from an SDK client.
func NewRealClient(client *genai.Client) *RealClient {
	return &RealClient{client: client}
}

func (c *RealClient) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return c.client.Models.GenerateContentStream(ctx, model, contents, config)
}

func (c *RealClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

func (c *RealClient) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return c.client.Models.GenerateImages(ctx, model, prompt, config)
}

func (c *RealClient) GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return c.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (c *RealClient) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return c.client.Operations.GetVideosOperation(ctx, op, nil)
}
