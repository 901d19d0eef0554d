package vfs

import (
	"mime"
	"path"
	"strings"
)

// Extra types the stdlib mime table tends to miss, plus overrides for
// source files the agent works with frequently.
var extensionTypes = map[string]string{
	".md":   "text/markdown",
	".txt":  "text/plain",
	".go":   "text/x-go",
	".py":   "text/x-python",
	".ts":   "text/typescript",
	".tsx":  "text/typescript",
	".js":   "text/javascript",
	".jsx":  "text/javascript",
	".json": "application/json",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".toml": "text/toml",
	".csv":  "text/csv",
	".html": "text/html",
	".css":  "text/css",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
}

// TypeByPath derives a MIME type from a path's extension, falling back to
// application/octet-stream when nothing matches.
func TypeByPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// Strip parameters like "; charset=utf-8"
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}

// Text-classified application types that are safe to inline.
var textApplicationTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-sh":       true,
	"application/toml":       true,
}

// IsTextMime reports whether a MIME type denotes inlineable text.
func IsTextMime(mimeType string) bool {
	return hasMimePrefix(mimeType, "text/") ||
		textApplicationTypes[mimeType] ||
		strings.HasSuffix(mimeType, "+json") ||
		strings.HasSuffix(mimeType, "+xml")
}

func hasMimePrefix(mimeType, prefix string) bool {
	return strings.HasPrefix(mimeType, prefix)
}
