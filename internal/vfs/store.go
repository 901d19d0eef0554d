package vfs

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// Snapshot is the workspace state at a single point in time: a keyed mapping
// of path to entry. A dispatch batch owns its snapshot exclusively for the
// duration of the call; the turn controller is the only writer that publishes
// it back. Last writer wins on path collision.
type Snapshot map[string]*File

// NewSnapshot builds a snapshot from ingested entries. Later entries win on
// duplicate paths.
func NewSnapshot(files ...*File) Snapshot {
	s := make(Snapshot, len(files))
	for _, f := range files {
		s[f.Path] = f
	}
	return s
}

// Get returns the entry at path, or nil when absent.
func (s Snapshot) Get(p string) *File {
	return s[p]
}

// Put inserts or replaces the entry under its own path.
func (s Snapshot) Put(f *File) {
	s[f.Path] = f
}

// Delete removes the entry at path. Returns ErrFileMissing when absent.
func (s Snapshot) Delete(p string) error {
	if _, ok := s[p]; !ok {
		return ErrFileMissing
	}
	delete(s, p)
	return nil
}

// Rename re-keys the entry at from under to, updating its path, name and
// MIME type. Returns ErrSourceMissing when from is absent.
func (s Snapshot) Rename(from, to string) error {
	f, ok := s[from]
	if !ok {
		return ErrSourceMissing
	}
	delete(s, from)
	f.Path = to
	f.Name = path.Base(to)
	if f.Kind == KindFile {
		f.MimeType = TypeByPath(to)
	}
	f.LastModified = time.Now()
	s[to] = f
	return nil
}

// Clone returns a shallow copy of the map. Entries are shared; only the
// keying is independent.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Paths returns all keys in sorted order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Images returns the file entries with an image MIME type, sorted by path.
func (s Snapshot) Images() []*File {
	var out []*File
	for _, p := range s.Paths() {
		if f := s[p]; f.Kind == KindFile && f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// Summary renders a sorted human-readable listing of the workspace, one
// entry per line. An empty workspace renders as an explicit notice.
func (s Snapshot) Summary() string {
	if len(s) == 0 {
		return "(workspace is empty)"
	}
	var b strings.Builder
	for _, p := range s.Paths() {
		f := s[p]
		if f.Kind == KindDirectory {
			fmt.Fprintf(&b, "- %s/ (directory)\n", p)
			continue
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", p, f.MimeType, HumanSize(f.Size))
	}
	return strings.TrimRight(b.String(), "\n")
}

// HumanSize formats a byte count for listings and observations.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
