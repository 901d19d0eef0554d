package gemini

import (
	"context"
	"time"

	"github.com/Cyclone1070/scribe/internal/provider/models"
	"google.golang.org/genai"
)

const (
	imageModel     = "imagen-4.0-generate-001"
	imageEditModel = "gemini-2.5-flash-image"
	videoModel     = "veo-3.0-generate-001"
	searchModel    = "gemini-2.5-flash"

	videoPollInterval = 10 * time.Second
)

// ImageStudio generates and edits images through the Gemini image models.
type ImageStudio struct {
	client Client
}

// NewImageStudio creates an ImageStudio over the given client.
func NewImageStudio(client Client) *ImageStudio {
	return &ImageStudio{client: client}
}

// Generate renders a new image from a prompt and returns PNG bytes.
func (s *ImageStudio) Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	}
	if aspectRatio != "" {
		config.AspectRatio = aspectRatio
	}
	resp, err := s.client.GenerateImages(ctx, imageModel, prompt, config)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, &models.ProviderError{Code: models.ErrorCodeContentBlocked, Message: "no image returned", Underlying: models.ErrContentBlocked}
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// Edit transforms one or more source images according to a prompt and
// returns the edited image bytes. Used for both edit and compose.
func (s *ImageStudio) Edit(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error) {
	parts := make([]*genai.Part, 0, len(sources)+1)
	for _, src := range sources {
		parts = append(parts, genai.NewPartFromBytes(src.Data, src.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	resp, err := s.client.GenerateContent(ctx, imageEditModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return nil, mapError(err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, &models.ProviderError{Code: models.ErrorCodeContentBlocked, Message: "no image in response", Underlying: models.ErrContentBlocked}
}

// VideoStudio generates videos through the Veo long-running operation API.
type VideoStudio struct {
	client Client
}

// NewVideoStudio creates a VideoStudio over the given client.
func NewVideoStudio(client Client) *VideoStudio {
	return &VideoStudio{client: client}
}

// Generate starts a video generation operation and polls it to completion.
// An optional source image seeds image-to-video generation.
func (s *VideoStudio) Generate(ctx context.Context, prompt string, source *models.SourceImage) ([]byte, error) {
	var image *genai.Image
	if source != nil {
		image = &genai.Image{ImageBytes: source.Data, MIMEType: source.MimeType}
	}

	op, err := s.client.GenerateVideos(ctx, videoModel, prompt, image, nil)
	if err != nil {
		return nil, mapError(err)
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(videoPollInterval):
		}
		if op, err = s.client.GetVideosOperation(ctx, op); err != nil {
			return nil, mapError(err)
		}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, &models.ProviderError{Code: models.ErrorCodeContentBlocked, Message: "no video returned", Underlying: models.ErrContentBlocked}
	}
	return op.Response.GeneratedVideos[0].Video.VideoBytes, nil
}

// Trim is not available through the Gemini backend; the dispatcher surfaces
// the failure as a per-action observation.
func (s *VideoStudio) Trim(ctx context.Context, src []byte, mimeType string, startTime, endTime float64) ([]byte, error) {
	return nil, &models.ProviderError{
		Code:       models.ErrorCodeUnsupported,
		Message:    "video trimming requires an external media service",
		Underlying: models.ErrNotSupported,
	}
}

// SearchService answers queries with Google Search grounding.
type SearchService struct {
	client Client
}

// NewSearchService creates a SearchService over the given client.
func NewSearchService(client Client) *SearchService {
	return &SearchService{client: client}
}

// Search runs a grounded query and returns the summary plus citations.
func (s *SearchService) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := s.client.GenerateContent(ctx, searchModel,
		[]*genai.Content{genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(query)}, genai.RoleUser)}, config)
	if err != nil {
		return nil, mapError(err)
	}

	result := &models.SearchResult{Summary: resp.Text()}
	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			result.Citations = append(result.Citations, models.Citation{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}
	return result, nil
}
