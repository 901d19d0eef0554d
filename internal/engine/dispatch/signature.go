package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/scribe/internal/protocol"
)

// signature fingerprints an action's semantic fields for duplicate
// suppression within one batch. Two actions with the same signature would
// perform the same mutation; only the first runs. The ID and description
// are deliberately excluded.
func signature(a protocol.Action) string {
	sourcePaths := append([]string(nil), a.SourcePaths...)
	sort.Strings(sourcePaths)

	fields := []string{
		string(a.Type),
		a.Path,
		a.Content,
		a.SourcePath,
		strings.Join(sourcePaths, ","),
		formatTime(a.StartTime),
		formatTime(a.EndTime),
	}
	return strings.Join(fields, "\x1f")
}

func formatTime(t *float64) string {
	if t == nil {
		return ""
	}
	return fmt.Sprintf("%g", *t)
}
