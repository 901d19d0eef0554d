package dispatch

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/script"
	"github.com/Cyclone1070/scribe/internal/vfs"
)

// runScript interprets the Go script stored at the action path. The script's
// file capabilities are bound to the live snapshot, so its reads and writes
// are visible to later actions in the same batch.
func (d *Dispatcher) runScript(ctx context.Context, snap vfs.Snapshot, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Scripts == nil {
		return nil, nil, ErrCollaboratorUnset
	}

	f := snap.Get(a.Path)
	if f == nil {
		return nil, nil, vfs.ErrFileMissing
	}
	if f.Kind == vfs.KindDirectory {
		return nil, nil, vfs.ErrIsDirectory
	}
	source, err := f.Content.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}

	caps := script.Capabilities{
		ReadFile: func(path string) (string, error) {
			target := snap.Get(path)
			if target == nil {
				return "", fmt.Errorf("file not found: %s", path)
			}
			data, err := target.Content.Resolve(ctx)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
		WriteFile: func(path, content string) error {
			snap.Put(vfs.NewTextFile(path, content))
			return nil
		},
	}

	output, err := d.collab.Scripts.Run(ctx, string(source), caps)
	if err != nil {
		return nil, nil, err
	}
	if output == "" {
		return []string{fmt.Sprintf("Script %s ran with no output.", a.Path)}, nil, nil
	}
	return []string{fmt.Sprintf("Script %s output:\n%s", a.Path, output)}, nil, nil
}
