package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/scribe/internal/config"
	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/provider/models"
	"github.com/Cyclone1070/scribe/internal/script"
	"github.com/Cyclone1070/scribe/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Stub collaborators --

type stubImages struct {
	generateFunc func(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
	editFunc     func(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error)
}

func (s *stubImages) Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	return s.generateFunc(ctx, prompt, aspectRatio)
}

func (s *stubImages) Edit(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error) {
	return s.editFunc(ctx, prompt, sources)
}

type stubVideos struct {
	generateFunc func(ctx context.Context, prompt string, source *models.SourceImage) ([]byte, error)
	trimFunc     func(ctx context.Context, src []byte, mimeType string, startTime, endTime float64) ([]byte, error)
}

func (s *stubVideos) Generate(ctx context.Context, prompt string, source *models.SourceImage) ([]byte, error) {
	return s.generateFunc(ctx, prompt, source)
}

func (s *stubVideos) Trim(ctx context.Context, src []byte, mimeType string, startTime, endTime float64) ([]byte, error) {
	return s.trimFunc(ctx, src, mimeType, startTime, endTime)
}

type stubSearch struct {
	searchFunc func(ctx context.Context, query string) (*models.SearchResult, error)
}

func (s *stubSearch) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	return s.searchFunc(ctx, query)
}

type stubCalculator struct {
	evaluateFunc func(expression string) (string, error)
}

func (s *stubCalculator) Evaluate(expression string) (string, error) {
	return s.evaluateFunc(expression)
}

type stubScripts struct {
	runFunc func(ctx context.Context, source string, caps script.Capabilities) (string, error)
}

func (s *stubScripts) Run(ctx context.Context, source string, caps script.Capabilities) (string, error) {
	return s.runFunc(ctx, source, caps)
}

func newDispatcher(collab Collaborators) *Dispatcher {
	return New(config.DefaultConfig(), collab, nil)
}

// -- File actions --

func TestRun_WriteThenAppend(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot()

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionWrite, Path: "a/b.txt", Content: "hi"},
		{Type: protocol.ActionAppend, Path: "a/b.txt", Content: "!"},
	})

	f := snap.Get("a/b.txt")
	require.NotNil(t, f)
	assert.Equal(t, "hi!", f.Content.Text())
	assert.Equal(t, int64(3), f.Size)
	require.Len(t, result.Observations, 2)
	assert.Contains(t, result.Observations[0], "Wrote")
	assert.Contains(t, result.Observations[1], "Appended")
}

func TestRun_AppendCreatesMissingFile(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot()

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionAppend, Path: "notes.txt", Content: "first"},
	})

	f := snap.Get("notes.txt")
	require.NotNil(t, f)
	assert.Equal(t, "first", f.Content.Text())
	assert.Contains(t, result.Observations[0], "did not exist")
}

func TestRun_DuplicateActionsSuppressed(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot()

	same := protocol.Action{Type: protocol.ActionAppend, Path: "log.txt", Content: "x"}
	result := d.Run(context.Background(), snap, []protocol.Action{same, same})

	f := snap.Get("log.txt")
	require.NotNil(t, f)
	assert.Equal(t, "x", f.Content.Text(), "second append must be skipped")
	require.Len(t, result.Observations, 2)
	assert.Contains(t, result.Observations[1], "skipped duplicate")
}

func TestRun_DifferingContentNotDuplicates(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot()

	d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionAppend, Path: "log.txt", Content: "a"},
		{Type: protocol.ActionAppend, Path: "log.txt", Content: "b"},
	})

	assert.Equal(t, "ab", snap.Get("log.txt").Content.Text())
}

func TestRun_FailureIsolatedToOneAction(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot(vfs.NewTextFile("keep.txt", "data"))

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionMove, Path: "dst.txt", SourcePath: "ghost.txt"},
		{Type: protocol.ActionWrite, Path: "after.txt", Content: "still ran"},
	})

	require.Len(t, result.Observations, 2)
	assert.Contains(t, result.Observations[0], "failed")
	assert.Contains(t, result.Observations[1], "Wrote")
	assert.NotNil(t, snap.Get("keep.txt"))
	assert.NotNil(t, snap.Get("after.txt"))
	assert.Nil(t, snap.Get("dst.txt"))
}

func TestRun_ReadSmallTextInlined(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot(vfs.NewTextFile("readme.md", "# Hello"))

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionRead, Path: "readme.md"},
	})

	require.Len(t, result.Observations, 1)
	assert.Contains(t, result.Observations[0], "# Hello")
	assert.Empty(t, result.Attachments)
}

func TestRun_ReadBinaryAttached(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot(vfs.NewBinaryFile("pic.png", []byte{0x89, 0x50}, "image/png"))

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionRead, Path: "pic.png"},
	})

	assert.Contains(t, result.Observations[0], "Attached pic.png")
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "pic.png", result.Attachments[0].Path)
}

func TestRun_ReadMidSizeTextAttachedResolved(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dispatch.InlineTextSize = 8
	d := New(cfg, Collaborators{}, nil)
	snap := vfs.NewSnapshot(vfs.NewTextFile("notes.md", "well past the inline threshold"))

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionRead, Path: "notes.md"},
	})

	assert.Contains(t, result.Observations[0], "Attached notes.md")
	require.Len(t, result.Attachments, 1)
	assert.True(t, result.Attachments[0].Content.Resolved(),
		"attached text must carry resolved content for the provider to send")
	assert.Equal(t, "well past the inline threshold", result.Attachments[0].Content.Text())
}

func TestRun_ReadOversizedFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dispatch.MaxAttachmentSize = 4
	d := New(cfg, Collaborators{}, nil)
	snap := vfs.NewSnapshot(vfs.NewBinaryFile("big.bin", []byte("12345678"), "application/octet-stream"))

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionRead, Path: "big.bin"},
	})

	assert.Contains(t, result.Observations[0], "failed")
	assert.Empty(t, result.Attachments)
}

func TestRun_ReadMissingFile(t *testing.T) {
	d := newDispatcher(Collaborators{})
	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionRead, Path: "nope.txt"},
	})
	assert.Contains(t, result.Observations[0], "failed")
}

func TestRun_MkdirAndDelete(t *testing.T) {
	d := newDispatcher(Collaborators{})
	snap := vfs.NewSnapshot()

	d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionMkdir, Path: "src"},
	})
	require.NotNil(t, snap.Get("src"))
	assert.Equal(t, vfs.KindDirectory, snap.Get("src").Kind)

	d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionDelete, Path: "src"},
	})
	assert.Nil(t, snap.Get("src"))
}

// -- Generation actions --

func TestRun_GenerateImageStoresPNG(t *testing.T) {
	images := &stubImages{
		generateFunc: func(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
			assert.Equal(t, "a red fox", prompt)
			return []byte("png-bytes"), nil
		},
	}
	d := newDispatcher(Collaborators{Images: images})
	snap := vfs.NewSnapshot()

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionGenerateImage, Path: "fox.png", Content: "a red fox"},
	})

	f := snap.Get("fox.png")
	require.NotNil(t, f)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Contains(t, result.Observations[0], "Generated image fox.png")
}

func TestRun_GenerateImageParamsObject(t *testing.T) {
	var gotAspect string
	images := &stubImages{
		generateFunc: func(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
			gotAspect = aspectRatio
			assert.Equal(t, "sunset", prompt)
			return []byte("png"), nil
		},
	}
	d := newDispatcher(Collaborators{Images: images})

	d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionGenerateImage, Path: "s.png", Content: `{"prompt":"sunset","aspectRatio":"16:9"}`},
	})

	assert.Equal(t, "16:9", gotAspect)
}

func TestRun_EditImageSmartDefaultSource(t *testing.T) {
	var gotSources []models.SourceImage
	images := &stubImages{
		editFunc: func(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error) {
			gotSources = sources
			return []byte("edited"), nil
		},
	}
	d := newDispatcher(Collaborators{Images: images})
	snap := vfs.NewSnapshot(
		vfs.NewBinaryFile("only.png", []byte("original"), "image/png"),
		vfs.NewTextFile("notes.txt", "not an image"),
	)

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionEditImage, Path: "out.png", Content: "make it blue"},
	})

	require.Len(t, gotSources, 1)
	assert.Equal(t, []byte("original"), gotSources[0].Data)
	assert.Contains(t, result.Observations[0], "Warning")
	assert.Contains(t, result.Observations[0], "only.png")
	assert.NotNil(t, snap.Get("out.png"))
}

func TestRun_EditImageNoSourceAmbiguous(t *testing.T) {
	d := newDispatcher(Collaborators{Images: &stubImages{}})
	snap := vfs.NewSnapshot(
		vfs.NewBinaryFile("a.png", []byte("a"), "image/png"),
		vfs.NewBinaryFile("b.png", []byte("b"), "image/png"),
	)

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionEditImage, Path: "out.png", Content: "blend"},
	})

	assert.Contains(t, result.Observations[0], "failed")
}

func TestRun_ComposeImageMultipleSources(t *testing.T) {
	var gotSources []models.SourceImage
	images := &stubImages{
		editFunc: func(ctx context.Context, prompt string, sources []models.SourceImage) ([]byte, error) {
			gotSources = sources
			return []byte("composite"), nil
		},
	}
	d := newDispatcher(Collaborators{Images: images})
	snap := vfs.NewSnapshot(
		vfs.NewBinaryFile("a.png", []byte("a"), "image/png"),
		vfs.NewBinaryFile("b.png", []byte("b"), "image/png"),
	)

	d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionComposeImage, Path: "c.png", Content: "side by side", SourcePaths: []string{"a.png", "b.png"}},
	})

	require.Len(t, gotSources, 2)
	assert.NotNil(t, snap.Get("c.png"))
}

func TestRun_GenerateVideoWithImageSeed(t *testing.T) {
	var gotSource *models.SourceImage
	videos := &stubVideos{
		generateFunc: func(ctx context.Context, prompt string, source *models.SourceImage) ([]byte, error) {
			gotSource = source
			return []byte("mp4"), nil
		},
	}
	d := newDispatcher(Collaborators{Videos: videos})
	snap := vfs.NewSnapshot(vfs.NewBinaryFile("seed.png", []byte("seed"), "image/png"))

	d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionGenerateVideo, Path: "clip.mp4", Content: "pan across", SourcePath: "seed.png"},
	})

	require.NotNil(t, gotSource)
	assert.Equal(t, []byte("seed"), gotSource.Data)
	assert.Equal(t, "video/mp4", snap.Get("clip.mp4").MimeType)
}

func TestRun_TrimVideoRequiresTimeRange(t *testing.T) {
	d := newDispatcher(Collaborators{Videos: &stubVideos{}})
	snap := vfs.NewSnapshot(vfs.NewBinaryFile("clip.mp4", []byte("mp4"), "video/mp4"))

	start := 1.0
	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionTrimVideo, Path: "cut.mp4", SourcePath: "clip.mp4", StartTime: &start},
	})

	assert.Contains(t, result.Observations[0], "startTime and endTime")
}

func TestRun_TrimVideo(t *testing.T) {
	videos := &stubVideos{
		trimFunc: func(ctx context.Context, src []byte, mimeType string, startTime, endTime float64) ([]byte, error) {
			assert.Equal(t, 1.5, startTime)
			assert.Equal(t, 4.0, endTime)
			return []byte("short"), nil
		},
	}
	d := newDispatcher(Collaborators{Videos: videos})
	snap := vfs.NewSnapshot(vfs.NewBinaryFile("clip.mp4", []byte("mp4"), "video/mp4"))

	start, end := 1.5, 4.0
	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionTrimVideo, Path: "cut.mp4", SourcePath: "clip.mp4", StartTime: &start, EndTime: &end},
	})

	assert.Contains(t, result.Observations[0], "Trimmed")
	assert.NotNil(t, snap.Get("cut.mp4"))
}

// -- Calculation, search, scripts --

func TestRun_Calculate(t *testing.T) {
	calc := &stubCalculator{
		evaluateFunc: func(expression string) (string, error) {
			assert.Equal(t, "2 + 2", expression)
			return "4", nil
		},
	}
	d := newDispatcher(Collaborators{Calculator: calc})

	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionCalculate, Path: "calc", Content: "2 + 2"},
	})

	assert.Equal(t, "Calculated 2 + 2 = 4", result.Observations[0])
}

func TestRun_WebSearchWithCitations(t *testing.T) {
	search := &stubSearch{
		searchFunc: func(ctx context.Context, query string) (*models.SearchResult, error) {
			return &models.SearchResult{
				Summary: "Go 1.25 was released in 2025.",
				Citations: []models.Citation{
					{Title: "Go Blog", URI: "https://go.dev/blog"},
				},
			}, nil
		},
	}
	d := newDispatcher(Collaborators{Search: search})

	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionWebSearch, Path: "search", Content: "go release"},
	})

	obs := result.Observations[0]
	assert.Contains(t, obs, "Go 1.25 was released")
	assert.Contains(t, obs, "Sources:")
	assert.Contains(t, obs, "https://go.dev/blog")
}

func TestRun_RunScriptCapsBoundToSnapshot(t *testing.T) {
	scripts := &stubScripts{
		runFunc: func(ctx context.Context, source string, caps script.Capabilities) (string, error) {
			in, err := caps.ReadFile("in.txt")
			if err != nil {
				return "", err
			}
			if err := caps.WriteFile("out.txt", strings.ToUpper(in)); err != nil {
				return "", err
			}
			return "done", nil
		},
	}
	d := newDispatcher(Collaborators{Scripts: scripts})
	snap := vfs.NewSnapshot(
		vfs.NewTextFile("job.go", `ws.Log("hi")`),
		vfs.NewTextFile("in.txt", "hello"),
	)

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionRunScript, Path: "job.go"},
	})

	assert.Contains(t, result.Observations[0], "Script job.go output:\ndone")
	require.NotNil(t, snap.Get("out.txt"))
	assert.Equal(t, "HELLO", snap.Get("out.txt").Content.Text())
}

func TestRun_RunScriptMissingFile(t *testing.T) {
	d := newDispatcher(Collaborators{Scripts: &stubScripts{}})
	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionRunScript, Path: "ghost.go"},
	})
	assert.Contains(t, result.Observations[0], "failed")
}

func TestRun_CollaboratorUnset(t *testing.T) {
	d := newDispatcher(Collaborators{})
	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionGenerateImage, Path: "x.png", Content: "anything"},
	})
	assert.Contains(t, result.Observations[0], "failed")
	assert.Contains(t, result.Observations[0], ErrCollaboratorUnset.Error())
}

func TestRun_CollaboratorErrorIsolated(t *testing.T) {
	images := &stubImages{
		generateFunc: func(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
			return nil, errors.New("backend exploded")
		},
	}
	d := newDispatcher(Collaborators{Images: images})
	snap := vfs.NewSnapshot()

	result := d.Run(context.Background(), snap, []protocol.Action{
		{Type: protocol.ActionGenerateImage, Path: "x.png", Content: "anything"},
		{Type: protocol.ActionWrite, Path: "y.txt", Content: "ok"},
	})

	assert.Contains(t, result.Observations[0], "backend exploded")
	assert.NotNil(t, snap.Get("y.txt"))
	assert.Nil(t, snap.Get("x.png"))
}

func TestRun_CollaboratorPanicRecovered(t *testing.T) {
	calc := &stubCalculator{
		evaluateFunc: func(expression string) (string, error) {
			panic("bad expression table")
		},
	}
	d := newDispatcher(Collaborators{Calculator: calc})

	result := d.Run(context.Background(), vfs.NewSnapshot(), []protocol.Action{
		{Type: protocol.ActionCalculate, Path: "calc", Content: "1"},
	})

	assert.Contains(t, result.Observations[0], "internal error")
}

func TestSignature_OrderInsensitiveSourcePaths(t *testing.T) {
	a := protocol.Action{Type: protocol.ActionComposeImage, Path: "c.png", SourcePaths: []string{"a.png", "b.png"}}
	b := protocol.Action{Type: protocol.ActionComposeImage, Path: "c.png", SourcePaths: []string{"b.png", "a.png"}}
	assert.Equal(t, signature(a), signature(b))
}

func TestSignature_DescriptionExcluded(t *testing.T) {
	a := protocol.Action{Type: protocol.ActionWrite, Path: "f.txt", Content: "x", Description: "first"}
	b := protocol.Action{Type: protocol.ActionWrite, Path: "f.txt", Content: "x", Description: "second"}
	assert.Equal(t, signature(a), signature(b))
}
