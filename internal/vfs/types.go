package vfs

import (
	"path"
	"time"
)

// Kind distinguishes regular files from directory placeholders.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// File is a single entry in the virtual workspace.
// Path is the unique key; slash-delimited and stored as given.
// Size is authoritative even while Content is still unresolved.
type File struct {
	Path         string
	Name         string
	Content      Content
	Size         int64
	MimeType     string
	LastModified time.Time
	Kind         Kind
}

// NewTextFile creates a resolved text file entry. MIME type is derived
// from the path extension.
func NewTextFile(p, content string) *File {
	return &File{
		Path:         p,
		Name:         path.Base(p),
		Content:      TextContent(content),
		Size:         int64(len(content)),
		MimeType:     TypeByPath(p),
		LastModified: time.Now(),
		Kind:         KindFile,
	}
}

// NewBinaryFile creates a resolved binary file entry with an explicit MIME type.
func NewBinaryFile(p string, data []byte, mimeType string) *File {
	return &File{
		Path:         p,
		Name:         path.Base(p),
		Content:      BinaryContent(data),
		Size:         int64(len(data)),
		MimeType:     mimeType,
		LastModified: time.Now(),
		Kind:         KindFile,
	}
}

// NewLazyFile creates an entry whose bytes are loaded on first resolve.
// The declared size stands in for the payload until then.
func NewLazyFile(p string, size int64, mimeType string, h Handle) *File {
	return &File{
		Path:         p,
		Name:         path.Base(p),
		Content:      LazyContent(h),
		Size:         size,
		MimeType:     mimeType,
		LastModified: time.Now(),
		Kind:         KindFile,
	}
}

// NewDirectory creates a zero-size directory placeholder entry.
func NewDirectory(p string) *File {
	return &File{
		Path:         p,
		Name:         path.Base(p),
		Content:      TextContent(""),
		Size:         0,
		MimeType:     "inode/directory",
		LastModified: time.Now(),
		Kind:         KindDirectory,
	}
}

// IsText reports whether the entry's MIME type is text-classified,
// i.e. safe to inline into an observation.
func (f *File) IsText() bool {
	return IsTextMime(f.MimeType)
}

// IsImage reports whether the entry holds image data.
func (f *File) IsImage() bool {
	return hasMimePrefix(f.MimeType, "image/")
}

// IsVideo reports whether the entry holds video data.
func (f *File) IsVideo() bool {
	return hasMimePrefix(f.MimeType, "video/")
}
