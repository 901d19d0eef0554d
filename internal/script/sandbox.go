// Package script executes model-authored Go scripts inside a yaegi
// interpreter. The sandbox exposes exactly two capabilities through the
// injected "ws" package: log capture and a read/write pair bound to the
// current workspace snapshot. Only a whitelist of stdlib packages is
// importable; everything else fails symbol resolution inside the
// interpreter.
package script

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Capabilities is the full set of operations a script may perform against
// the workspace. Log output is captured and returned as the script result.
type Capabilities struct {
	ReadFile  func(path string) (string, error)
	WriteFile func(path, content string) error
}

// Safe stdlib packages scripts may import. Notably absent: os, os/exec,
// net, net/http, syscall, unsafe.
var allowedPackages = map[string]bool{
	"fmt":           true,
	"strings":       true,
	"strconv":       true,
	"math":          true,
	"math/rand":     true,
	"sort":          true,
	"regexp":        true,
	"bytes":         true,
	"unicode":       true,
	"time":          true,
	"encoding/json": true,
	"encoding/csv":  true,
	"errors":        true,
}

// Runner interprets scripts with a per-run time limit.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner. A non-positive timeout disables the limit.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run evaluates source with the given capabilities and returns the captured
// log output. Scripts are plain Go statement sequences; they call ws.Log,
// ws.ReadFile and ws.WriteFile.
func (r *Runner) Run(ctx context.Context, source string, caps Capabilities) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("script is empty")
	}

	var logs []string
	i := interp.New(interp.Options{})
	if err := i.Use(safeSymbols()); err != nil {
		return "", fmt.Errorf("failed to load stdlib subset: %w", err)
	}

	exports := interp.Exports{
		"ws/ws": {
			"Log": reflect.ValueOf(func(args ...any) {
				logs = append(logs, fmt.Sprintln(args...))
			}),
			"ReadFile":  reflect.ValueOf(caps.ReadFile),
			"WriteFile": reflect.ValueOf(caps.WriteFile),
		},
	}
	if err := i.Use(exports); err != nil {
		return "", fmt.Errorf("failed to inject workspace capabilities: %w", err)
	}
	if _, err := i.Eval(`import "ws"`); err != nil {
		return "", fmt.Errorf("failed to import workspace package: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// yaegi evaluation cannot be preempted; run it in a goroutine and give
	// up waiting when the context expires. A runaway script keeps its
	// goroutine until it finishes on its own.
	done := make(chan error, 1)
	go func() {
		_, err := i.Eval(source)
		done <- err
	}()

	select {
	case err := <-done:
		output := strings.TrimRight(strings.Join(logs, ""), "\n")
		if err != nil {
			return output, fmt.Errorf("script error: %w", err)
		}
		return output, nil
	case <-ctx.Done():
		return "", fmt.Errorf("script execution timed out: %w", ctx.Err())
	}
}

// safeSymbols filters the full stdlib symbol table down to the whitelist.
func safeSymbols() interp.Exports {
	out := make(interp.Exports, len(allowedPackages))
	for key, symbols := range stdlib.Symbols {
		pkg := key
		if i := strings.LastIndex(key, "/"); i >= 0 {
			pkg = key[:i]
		}
		if allowedPackages[pkg] {
			out[key] = symbols
		}
	}
	return out
}
