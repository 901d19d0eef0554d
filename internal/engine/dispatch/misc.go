package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/scribe/internal/protocol"
	"github.com/Cyclone1070/scribe/internal/vfs"
)

func (d *Dispatcher) calculate(a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Calculator == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	if strings.TrimSpace(a.Content) == "" {
		return nil, nil, ErrContentRequired
	}
	result, err := d.collab.Calculator.Evaluate(a.Content)
	if err != nil {
		return nil, nil, err
	}
	return []string{fmt.Sprintf("Calculated %s = %s", a.Content, result)}, nil, nil
}

func (d *Dispatcher) webSearch(ctx context.Context, a protocol.Action) ([]string, []*vfs.File, error) {
	if d.collab.Search == nil {
		return nil, nil, ErrCollaboratorUnset
	}
	if strings.TrimSpace(a.Content) == "" {
		return nil, nil, ErrContentRequired
	}
	result, err := d.collab.Search.Search(ctx, a.Content)
	if err != nil {
		return nil, nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n%s", a.Content, result.Summary)
	if len(result.Citations) > 0 {
		b.WriteString("\nSources:")
		for _, c := range result.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(&b, "\n- %s (%s)", title, c.URI)
		}
	}
	return []string{b.String()}, nil, nil
}
