package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"github.com/Cyclone1070/scribe/internal/vfs"
	"github.com/mitchellh/mapstructure"
)

// Generated images and videos are stored with fixed output MIME types
// regardless of the target path's extension.
const (
	imageOutputMime = "image/png"
	videoOutputMime = "video/mp4"
)

// imageParams is the optional serialized parameter object a generation
// action may carry in its content field. Plain-text content is treated as
// the prompt itself.
type imageParams struct {
	Prompt      string `mapstructure:"prompt"`
	AspectRatio string `mapstructure:"aspectRatio"`
}

func decodeImageParams(content string) imageParams {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err == nil {
		var p imageParams
		if err := mapstructure.Decode(raw, &p); err == nil && p.Prompt != "" {
			return p
		}
	}
	return imageParams{Prompt: content}
}

func (d *Dispatcher) generateImage(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Images == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	p := decodeImageParams(a.Content)
	if p.Prompt == "" {
		return nil, nil, ErrContentRequired
	}

	data, err := d.collab.Images.Generate(ctx, p.Prompt, p.AspectRatio)
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewBinaryFile(a.Path, data, imageOutputMime))
	return []string{fmt.Sprintf("Generated image %s (%s).", a.Path, vfs.HumanSize(int64(len(data))))}, nil, nil
}

func (d *Dispatcher) editImage(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Images == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	p := decodeImageParams(a.Content)
	if p.Prompt == "" {
		return nil, nil, ErrContentRequired
	}

	var warnings []string
	sourcePath := a.SourcePath
	if sourcePath == "" {
		inferred, ok := smartDefaultImage(snap)
		if !ok {
			return nil, nil, ErrNoImageSource
		}
		sourcePath = inferred
		warnings = append(warnings, fmt.Sprintf("Warning: no sourcePath given for edit-image; using the only image in the workspace, %s.", sourcePath))
	}

	source, err := resolveImageSource(ctx, snap, sourcePath)
	if err != nil {
		return nil, nil, err
	}
	data, err := d.collab.Images.Edit(ctx, p.Prompt, []models.SourceImage{*source})
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewBinaryFile(a.Path, data, imageOutputMime))
	return append(warnings, fmt.Sprintf("Edited %s into %s (%s).", sourcePath, a.Path, vfs.HumanSize(int64(len(data))))), nil, nil
}

func (d *Dispatcher) composeImage(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Images == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	p := decodeImageParams(a.Content)
	if p.Prompt == "" {
		return nil, nil, ErrContentRequired
	}

	var warnings []string
	paths := a.SourcePaths
	if len(paths) == 0 && a.SourcePath != "" {
		paths = []string{a.SourcePath}
	}
	if len(paths) == 0 {
		inferred, ok := smartDefaultImage(snap)
		if !ok {
			return nil, nil, ErrNoImageSource
		}
		paths = []string{inferred}
		warnings = append(warnings, fmt.Sprintf("Warning: no sourcePaths given for compose-image; using the only image in the workspace, %s.", inferred))
	}

	sources := make([]models.SourceImage, 0, len(paths))
	for _, sp := range paths {
		source, err := resolveImageSource(ctx, snap, sp)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, *source)
	}

	data, err := d.collab.Images.Edit(ctx, p.Prompt, sources)
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewBinaryFile(a.Path, data, imageOutputMime))
	return append(warnings, fmt.Sprintf("Composed %d image(s) into %s (%s).", len(sources), a.Path, vfs.HumanSize(int64(len(data))))), nil, nil
}

func (d *Dispatcher) generateVideo(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Videos == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	p := decodeImageParams(a.Content)
	if p.Prompt == "" {
		return nil, nil, ErrContentRequired
	}

	var source *models.SourceImage
	if a.SourcePath != "" {
		resolved, err := resolveImageSource(ctx, snap, a.SourcePath)
		if err != nil {
			return nil, nil, err
		}
		source = resolved
	}

	data, err := d.collab.Videos.Generate(ctx, p.Prompt, source)
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewBinaryFile(a.Path, data, videoOutputMime))
	return []string{fmt.Sprintf("Generated video %s (%s).", a.Path, vfs.HumanSize(int64(len(data))))}, nil, nil
}

func (d *Dispatcher) trimVideo(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Videos == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	if a.SourcePath == "" {
		return nil, nil, ErrSourcePathRequired
	}
	if a.StartTime == nil || a.EndTime == nil {
		return nil, nil, ErrTimeRangeRequired
	}

	f := snap.Get(a.SourcePath)
	if f == nil {
		return nil, nil, vfs.ErrSourceMissing
	}
	data, err := f.Content.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}

	trimmed, err := d.collab.Videos.Trim(ctx, data, f.MimeType, *a.StartTime, *a.EndTime)
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewBinaryFile(a.Path, trimmed, videoOutputMime))
	return []string{fmt.Sprintf("Trimmed %s [%.1fs-%.1fs] into %s.", a.SourcePath, *a.StartTime, *a.EndTime, a.Path)}, nil, nil
}

// smartDefaultImage returns the path of the only image in the workspace,
// if there is exactly one.
func smartDefaultImage(snap vfs.Snapshot) (string, bool) {
	images := snap.Images()
	if len(images) != 1 {
		return "", false
	}
	return images[0].Path, true
}

// resolveImageSource materializes a workspace file as a generation input.
func resolveImageSource(ctx context.Context, snap vfs.Snapshot, path string) (*models.SourceImage, error) {
	f := snap.Get(path)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", vfs.ErrSourceMissing, path)
	}
	data, err := f.Content.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SourceImage{Data: data, MimeType: f.MimeType}, nil
}
