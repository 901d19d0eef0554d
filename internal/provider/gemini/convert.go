package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"google.golang.org/genai"
)

// toContents converts conversation entries into Gemini contents. Resolved
// attachments ride along after the entry text: text files as labelled text
// parts, everything else as inline data parts. Unresolved attachments are
// represented by their listing only (the dispatcher resolves anything it
// wants the model to actually see).
func toContents(history []protocol.ConversationEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, entry := range history {
		role := genai.RoleUser
		if entry.Role == protocol.RoleModel {
			role = genai.RoleModel
		}

		parts := []*genai.Part{genai.NewPartFromText(entry.Text)}
		for _, att := range entry.Attachments {
			if !att.Content.Resolved() {
				continue
			}
			if att.IsText() {
				parts = append(parts, genai.NewPartFromText(
					fmt.Sprintf("Contents of %s:\n%s", att.Path, att.Content.Text())))
				continue
			}
			parts = append(parts, genai.NewPartFromBytes(att.Content.Bytes(), att.MimeType))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.Role(role)))
	}
	return contents
}

// mapError classifies SDK failures into the provider taxonomy so the retry
// controller can tell fatal permission errors from transient ones.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			return &models.ProviderError{Code: models.ErrorCodeAuth, Message: apiErr.Message, Underlying: models.ErrAuthentication}
		case 403:
			return &models.ProviderError{Code: models.ErrorCodePermission, Message: apiErr.Message, Underlying: models.ErrPermissionDenied}
		case 429:
			return &models.ProviderError{Code: models.ErrorCodeRateLimit, Message: apiErr.Message, Underlying: models.ErrRateLimit}
		case 503:
			return &models.ProviderError{Code: models.ErrorCodeUnavailable, Message: apiErr.Message, Underlying: models.ErrServiceUnavailable}
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key"):
		return &models.ProviderError{Code: models.ErrorCodeAuth, Message: msg, Underlying: models.ErrAuthentication}
	case strings.Contains(msg, "PERMISSION_DENIED"):
		return &models.ProviderError{Code: models.ErrorCodePermission, Message: msg, Underlying: models.ErrPermissionDenied}
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return &models.ProviderError{Code: models.ErrorCodeQuota, Message: msg, Underlying: models.ErrQuotaExceeded}
	}
	return &models.ProviderError{Code: models.ErrorCodeUnknown, Message: msg, Underlying: err}
}
