package dispatch

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/vfs"
)

// read inlines small text files into the observation, attaches anything
// else under the hard ceiling, and rejects the rest.
func (d *Dispatcher) read(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	f := snap.Get(a.Path)
	if f == nil {
		return nil, nil, vfs.ErrFileMissing
	}
	if f.Kind == vfs.KindDirectory {
		return nil, nil, vfs.ErrIsDirectory
	}

	if f.IsText() && f.Size <= d.cfg.Dispatch.InlineTextSize {
		data, err := f.Content.Resolve(ctx)
		if err != nil {
			return nil, nil, err
		}
		obs := fmt.Sprintf("Read %s (%s):\n%s", f.Path, vfs.HumanSize(f.Size), string(data))
		return []string{obs}, nil, nil
	}

	if f.Size > d.cfg.Dispatch.MaxAttachmentSize {
		return nil, nil, fmt.Errorf("%w: %s is %s, attachment limit is %s",
			ErrFileTooLarge, f.Path, vfs.HumanSize(f.Size), vfs.HumanSize(d.cfg.Dispatch.MaxAttachmentSize))
	}

	data, err := f.Content.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	obs := fmt.Sprintf("Attached %s (%s, %s) for inspection.", f.Path, f.MimeType, vfs.HumanSize(f.Size))
	if f.IsVideo() {
		if meta, ok := probeMP4(data); ok {
			obs += fmt.Sprintf(" Video metadata: %.1fs, %dx%d.", meta.DurationSeconds, meta.Width, meta.Height)
		}
	}
	return []string{obs}, []*vfs.File{f}, nil
}

// write replaces or creates the entry wholesale. Size and MIME type are
// recomputed from the new content and path.
func (d *Dispatcher) write(snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	snap.Put(vfs.NewTextFile(a.Path, a.Content))
	return []string{fmt.Sprintf("Wrote %s to %s.", vfs.HumanSize(int64(len(a.Content))), a.Path)}, nil, nil
}

// appendFile concatenates onto an existing entry, or creates it when
// absent. Oversized existing files fail the action instead of ballooning
// memory.
func (d *Dispatcher) appendFile(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	f := snap.Get(a.Path)
	if f == nil {
		snap.Put(vfs.NewTextFile(a.Path, a.Content))
		return []string{fmt.Sprintf("File %s did not exist; created it with %s.", a.Path, vfs.HumanSize(int64(len(a.Content))))}, nil, nil
	}
	if f.Kind == vfs.KindDirectory {
		return nil, nil, vfs.ErrIsDirectory
	}
	if f.Size > d.cfg.Dispatch.MaxAppendSize {
		return nil, nil, fmt.Errorf("%w: %s is %s, append limit is %s",
			ErrFileTooLarge, f.Path, vfs.HumanSize(f.Size), vfs.HumanSize(d.cfg.Dispatch.MaxAppendSize))
	}

	existing, err := f.Content.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	snap.Put(vfs.NewTextFile(a.Path, string(existing)+a.Content))
	combined := int64(len(existing) + len(a.Content))
	return []string{fmt.Sprintf("Appended %s to %s (now %s).", vfs.HumanSize(int64(len(a.Content))), a.Path, vfs.HumanSize(combined))}, nil, nil
}

// move re-keys an entry under a new path.
func (d *Dispatcher) move(snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if a.SourcePath == "" {
		return nil, nil, ErrSourcePathRequired
	}
	if err := snap.Rename(a.SourcePath, a.Path); err != nil {
		return nil, nil, err
	}
	return []string{fmt.Sprintf("Moved %s to %s.", a.SourcePath, a.Path)}, nil, nil
}

// deleteFile removes an entry; deleting a missing path is an error.
func (d *Dispatcher) deleteFile(snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if err := snap.Delete(a.Path); err != nil {
		return nil, nil, err
	}
	return []string{fmt.Sprintf("Deleted %s.", a.Path)}, nil, nil
}

// mkdir inserts a zero-size directory entry.
func (d *Dispatcher) mkdir(snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	snap.Put(vfs.NewDirectory(a.Path))
	return []string{fmt.Sprintf("Created directory %s.", a.Path)}, nil, nil
}
